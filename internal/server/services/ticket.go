package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/mesadesk/ticketdesk/internal/common"
	"github.com/mesadesk/ticketdesk/internal/dbx"
	"github.com/mesadesk/ticketdesk/internal/logging"
	"github.com/mesadesk/ticketdesk/internal/server/config"
	"github.com/mesadesk/ticketdesk/internal/server/models"
	"github.com/mesadesk/ticketdesk/internal/server/repositories/repomanager"
)

// TicketService implements ticket CRUD, lookups and the new-ticket mail
// notification.
type TicketService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      Mailer
	recipients  []string
	logger      logging.Logger
}

func NewTicketService(db *sql.DB, rm repomanager.RepositoryManager, mailer Mailer,
	cfg *config.Config, logger logging.Logger) *TicketService {
	return &TicketService{
		db:          db,
		repomanager: rm,
		mailer:      mailer,
		recipients:  cfg.NotifyRecipients,
		logger:      logger,
	}
}

// List returns all tickets, newest first.
func (s *TicketService) List(ctx context.Context) ([]*models.Ticket, error) {
	return s.repomanager.Tickets(s.db).List(ctx)
}

// SearchByName returns the newest ticket whose requester name contains the
// given fragment.
func (s *TicketService) SearchByName(ctx context.Context, name string) (*models.Ticket, error) {
	return s.repomanager.Tickets(s.db).SearchByName(ctx, name)
}

// Categories lists the available ticket categories.
func (s *TicketService) Categories(ctx context.Context) ([]*models.Category, error) {
	return s.repomanager.Categories(s.db).List(ctx)
}

// Statuses lists the available ticket statuses.
func (s *TicketService) Statuses(ctx context.Context) ([]*models.Status, error) {
	return s.repomanager.Statuses(s.db).List(ctx)
}

// Create registers a new ticket. Every new ticket starts in the pending
// status regardless of the submitted payload, and the support team is
// notified by mail. Notification failures are logged, never surfaced.
func (s *TicketService) Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	ticketRepo := s.repomanager.Tickets(s.db)

	ticket.StatusID = models.StatusPendingID
	ticket.ResolutionDate = nil

	created, err := ticketRepo.Create(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("error creating ticket: %w", err)
	}

	// Re-read so the notification carries the joined category name.
	full, err := ticketRepo.GetByID(ctx, created.ID)
	if err != nil {
		full = created
	}
	s.notifyNewTicket(ctx, full)

	return created, nil
}

// Update overwrites a ticket's mutable fields inside a transaction, so the
// status transition is judged against the row actually being replaced.
// Moving into the resolved status stamps the resolution date; moving out of
// it clears the stamp.
func (s *TicketService) Update(ctx context.Context, id int64, ticket *models.Ticket) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ticketRepo := s.repomanager.Tickets(tx)

		current, err := ticketRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		ticket.ID = id
		switch {
		case ticket.StatusID == models.StatusResolvedID && current.StatusID != models.StatusResolvedID:
			now := time.Now()
			ticket.ResolutionDate = &now
		case ticket.StatusID != models.StatusResolvedID:
			ticket.ResolutionDate = nil
		default:
			ticket.ResolutionDate = current.ResolutionDate
		}

		return ticketRepo.Update(ctx, ticket)
	})

	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error updating ticket: %w", err)
	}
	return nil
}

// Delete removes a ticket.
func (s *TicketService) Delete(ctx context.Context, id int64) error {
	return s.repomanager.Tickets(s.db).Delete(ctx, id)
}

func (s *TicketService) notifyNewTicket(ctx context.Context, ticket *models.Ticket) {
	if s.mailer == nil || len(s.recipients) == 0 {
		return
	}

	category := ticket.CategoryName
	if category == "" {
		category = "Sin categoría"
	}

	body := fmt.Sprintf(`<h2>Nuevo ticket registrado</h2>
<p><b>Solicitante:</b> %s</p>
<p><b>Departamento:</b> %s</p>
<p><b>Asunto:</b> %s</p>
<p><b>Categoría:</b> %s</p>
<p><b>Descripción:</b> %s</p>`,
		html.EscapeString(ticket.Name),
		html.EscapeString(ticket.Department),
		html.EscapeString(ticket.Affair),
		html.EscapeString(category),
		html.EscapeString(ticket.ProblemDescription),
	)

	subject := fmt.Sprintf("Nuevo ticket: %s", ticket.Affair)
	if err := s.mailer.Send(ctx, s.recipients, subject, body); err != nil {
		s.logger.Error(ctx, "error sending ticket notification", "ticket_id", ticket.ID, "error", err)
	}
}
