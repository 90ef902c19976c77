package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mesadesk/ticketdesk/internal/logging"
	"github.com/mesadesk/ticketdesk/internal/server/models"
)

// TicketProvider is the slice of TicketService the ticket endpoints need.
type TicketProvider interface {
	List(ctx context.Context) ([]*models.Ticket, error)
	SearchByName(ctx context.Context, name string) (*models.Ticket, error)
	Categories(ctx context.Context) ([]*models.Category, error)
	Statuses(ctx context.Context) ([]*models.Status, error)
	Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error)
	Update(ctx context.Context, id int64, ticket *models.Ticket) error
	Delete(ctx context.Context, id int64) error
}

// ReportProvider generates the xlsx ticket report and archives copies in
// object storage.
type ReportProvider interface {
	Generate(ctx context.Context) (string, []byte, error)
	Archive(ctx context.Context, filename string, data []byte) (string, error)
}

// TicketHandler serves the /api/TicketForm endpoints. All of them sit behind
// the access-token middleware.
type TicketHandler struct {
	tickets TicketProvider
	reports ReportProvider
	logger  logging.Logger
}

func NewTicketHandler(tickets TicketProvider, reports ReportProvider, logger logging.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, reports: reports, logger: logger}
}

func TicketRouter(r chi.Router, tickets TicketProvider, reports ReportProvider,
	logger logging.Logger, requireAuth func(http.Handler) http.Handler) {
	h := NewTicketHandler(tickets, reports, logger)

	r.Use(requireAuth)
	r.Get("/GetCategories", h.GetCategories)
	r.Get("/GetStatuses", h.GetStatuses)
	r.Get("/GetTickets", h.GetTickets)
	r.Get("/SearchTicketByName", h.SearchTicketByName)
	r.Get("/DownloadReport", h.DownloadReport)
	r.Post("/RegisterTicket", h.RegisterTicket)
	r.Put("/Update/{id}", h.Update)
	r.Delete("/Delete/{id}", h.Delete)
}

type TicketRequest struct {
	Name               string `json:"name"`
	Department         string `json:"department"`
	Affair             string `json:"affair"`
	ProblemDescription string `json:"problemDescription"`
	CategoryID         *int64 `json:"categoryId"`
	StatusID           int64  `json:"statusId"`
}

type TicketResponse struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	Department         string     `json:"department"`
	Affair             string     `json:"affair"`
	ProblemDescription string     `json:"problemDescription"`
	CategoryID         *int64     `json:"categoryId"`
	StatusID           int64      `json:"statusId"`
	Category           string     `json:"category"`
	Status             string     `json:"status"`
	RegistrationDate   time.Time  `json:"registrationDate"`
	ResolutionDate     *time.Time `json:"resolutionDate"`
}

type LookupResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func ticketResponseFrom(t *models.Ticket) TicketResponse {
	return TicketResponse{
		ID:                 t.ID,
		Name:               t.Name,
		Department:         t.Department,
		Affair:             t.Affair,
		ProblemDescription: t.ProblemDescription,
		CategoryID:         t.CategoryID,
		StatusID:           t.StatusID,
		Category:           t.CategoryName,
		Status:             t.StatusName,
		RegistrationDate:   t.RegistrationDate,
		ResolutionDate:     t.ResolutionDate,
	}
}

func ticketFromRequest(req *TicketRequest) *models.Ticket {
	return &models.Ticket{
		Name:               strings.TrimSpace(req.Name),
		Department:         strings.TrimSpace(req.Department),
		Affair:             strings.TrimSpace(req.Affair),
		ProblemDescription: req.ProblemDescription,
		CategoryID:         req.CategoryID,
		StatusID:           req.StatusID,
	}
}

func (h *TicketHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.tickets.Categories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := make([]LookupResponse, 0, len(cats))
	for _, c := range cats {
		result = append(result, LookupResponse{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TicketHandler) GetStatuses(w http.ResponseWriter, r *http.Request) {
	sts, err := h.tickets.Statuses(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := make([]LookupResponse, 0, len(sts))
	for _, s := range sts {
		result = append(result, LookupResponse{ID: s.ID, Name: s.Name})
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TicketHandler) GetTickets(w http.ResponseWriter, r *http.Request) {
	all, err := h.tickets.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := make([]TicketResponse, 0, len(all))
	for _, t := range all {
		result = append(result, ticketResponseFrom(t))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TicketHandler) SearchTicketByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}

	ticket, err := h.tickets.SearchByName(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticketResponseFrom(ticket))
}

func (h *TicketHandler) RegisterTicket(w http.ResponseWriter, r *http.Request) {
	var req TicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "missing requester name")
		return
	}

	created, err := h.tickets.Create(r.Context(), ticketFromRequest(&req))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ticketResponseFrom(created))
}

// DownloadReport streams the xlsx workbook. A copy is archived to object
// storage; when that succeeds the presigned URL is exposed in a header, and
// when it fails the download still proceeds.
func (h *TicketHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	filename, data, err := h.reports.Generate(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if url, err := h.reports.Archive(r.Context(), filename, data); err != nil {
		h.logger.Error(r.Context(), "error archiving report", "error", err)
	} else {
		w.Header().Set("X-Report-Url", url)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req TicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.tickets.Update(r.Context(), id, ticketFromRequest(&req)); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TicketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.tickets.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
