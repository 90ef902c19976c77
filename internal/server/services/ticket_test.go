package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesadesk/ticketdesk/internal/common"
	"github.com/mesadesk/ticketdesk/internal/dbx"
	"github.com/mesadesk/ticketdesk/internal/logging"
	"github.com/mesadesk/ticketdesk/internal/server/config"
	"github.com/mesadesk/ticketdesk/internal/server/models"
	"github.com/mesadesk/ticketdesk/internal/server/repositories/categories"
	"github.com/mesadesk/ticketdesk/internal/server/repositories/roles"
	"github.com/mesadesk/ticketdesk/internal/server/repositories/statuses"
	"github.com/mesadesk/ticketdesk/internal/server/repositories/tickets"
	"github.com/mesadesk/ticketdesk/internal/server/repositories/users"
)

type fakeTicketRepo struct {
	nextID int64
	byID   map[int64]*models.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{byID: make(map[int64]*models.Ticket)}
}

func (r *fakeTicketRepo) List(ctx context.Context) ([]*models.Ticket, error) {
	result := make([]*models.Ticket, 0, len(r.byID))
	for _, t := range r.byID {
		c := *t
		result = append(result, &c)
	}
	return result, nil
}

func (r *fakeTicketRepo) SearchByName(ctx context.Context, name string) (*models.Ticket, error) {
	for _, t := range r.byID {
		if t.Name == name {
			c := *t
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	r.nextID++
	c := *ticket
	c.ID = r.nextID
	c.RegistrationDate = time.Now()
	r.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, ticket *models.Ticket) error {
	if _, ok := r.byID[ticket.ID]; !ok {
		return common.ErrorNotFound
	}
	c := *ticket
	r.byID[ticket.ID] = &c
	return nil
}

func (r *fakeTicketRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

type fakeCategoryRepo struct{}

func (fakeCategoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	return []*models.Category{{ID: 1, Name: "Hardware"}, {ID: 2, Name: "Software"}}, nil
}

type fakeStatusRepo struct{}

func (fakeStatusRepo) List(ctx context.Context) ([]*models.Status, error) {
	return []*models.Status{
		{ID: models.StatusPendingID, Name: "Pendiente"},
		{ID: models.StatusInProgressID, Name: "En progreso"},
		{ID: models.StatusResolvedID, Name: "Resuelto"},
	}, nil
}

// fakeRepoManager hands out the in-memory fakes regardless of the handle.
type fakeRepoManager struct {
	tickets *fakeTicketRepo
}

func (f *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(db dbx.DBTX) users.Repository                  { return nil }
func (f *fakeRepoManager) Roles(db dbx.DBTX) roles.Repository                  { return nil }
func (f *fakeRepoManager) Tickets(db dbx.DBTX) tickets.Repository              { return f.tickets }
func (f *fakeRepoManager) Categories(db dbx.DBTX) categories.Repository        { return fakeCategoryRepo{} }
func (f *fakeRepoManager) Statuses(db dbx.DBTX) statuses.Repository            { return fakeStatusRepo{} }

type fakeMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

func (m *fakeMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func newTicketService(t *testing.T, repo *fakeTicketRepo, mailer Mailer) (*TicketService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.NotifyRecipients = []string{"soporte@mesa.ms"}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewTicketService(db, &fakeRepoManager{tickets: repo}, mailer, cfg, logger), mock
}

func TestTicketService_Create(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTicketRepo()
	mailer := &fakeMailer{}
	svc, _ := newTicketService(t, repo, mailer)

	categoryID := int64(1)
	created, err := svc.Create(ctx, &models.Ticket{
		Name:               "Laura Díaz",
		Department:         "Finanzas",
		Affair:             "No enciende el equipo",
		ProblemDescription: "La computadora no da video",
		CategoryID:         &categoryID,
		StatusID:           models.StatusResolvedID, // ignored
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, models.StatusPendingID, created.StatusID)
	assert.Nil(t, created.ResolutionDate)
	assert.False(t, created.RegistrationDate.IsZero())

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"soporte@mesa.ms"}, mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].subject, "No enciende el equipo")
	assert.Contains(t, mailer.sent[0].body, "Laura Díaz")
	assert.Contains(t, mailer.sent[0].body, "Finanzas")
}

func TestTicketService_Create_MailFailureDoesNotFail(t *testing.T) {
	repo := newFakeTicketRepo()
	mailer := &fakeMailer{err: errors.New("smtp unreachable")}
	svc, _ := newTicketService(t, repo, mailer)

	created, err := svc.Create(context.Background(), &models.Ticket{Name: "Laura Díaz"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestTicketService_Update_ResolutionDateLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTicketRepo()
	svc, mock := newTicketService(t, repo, &fakeMailer{})

	created, err := svc.Create(ctx, &models.Ticket{Name: "Laura Díaz"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	// Pending to resolved stamps the resolution date.
	err = svc.Update(ctx, created.ID, &models.Ticket{Name: "Laura Díaz", StatusID: models.StatusResolvedID})
	require.NoError(t, err)
	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResolutionDate)
	firstResolution := *stored.ResolutionDate

	// Staying resolved keeps the original stamp.
	err = svc.Update(ctx, created.ID, &models.Ticket{Name: "Laura D. Díaz", StatusID: models.StatusResolvedID})
	require.NoError(t, err)
	stored, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResolutionDate)
	assert.Equal(t, firstResolution, *stored.ResolutionDate)

	// Reopening clears it.
	err = svc.Update(ctx, created.ID, &models.Ticket{Name: "Laura Díaz", StatusID: models.StatusInProgressID})
	require.NoError(t, err)
	stored, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResolutionDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_Update_NotFound(t *testing.T) {
	svc, mock := newTicketService(t, newFakeTicketRepo(), &fakeMailer{})

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := svc.Update(context.Background(), 42, &models.Ticket{StatusID: models.StatusPendingID})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTicketRepo()
	svc, _ := newTicketService(t, repo, &fakeMailer{})

	created, err := svc.Create(ctx, &models.Ticket{Name: "Laura Díaz"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), common.ErrorNotFound)
}

func TestTicketService_Lookups(t *testing.T) {
	svc, _ := newTicketService(t, newFakeTicketRepo(), &fakeMailer{})

	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 2)

	sts, err := svc.Statuses(context.Background())
	require.NoError(t, err)
	assert.Len(t, sts, 3)
}
