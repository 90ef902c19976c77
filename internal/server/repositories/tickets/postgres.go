package tickets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesadesk/ticketdesk/internal/common"
	"github.com/mesadesk/ticketdesk/internal/dbx"
	"github.com/mesadesk/ticketdesk/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const ticketSelect = `
	SELECT t.id, t.name, t.department, t.affair, t.problem_description,
	       t.category_id, t.status_id, COALESCE(c.name, ''), s.name,
	       t.registration_date, t.resolution_date
	FROM tickets t
	LEFT JOIN tk_categories c ON c.id = t.category_id
	JOIN tk_statuses s ON s.id = t.status_id
`

func scanTicket(scan func(dest ...any) error) (*models.Ticket, error) {
	t := &models.Ticket{}
	var categoryID sql.NullInt64
	var resolution sql.NullTime

	err := scan(&t.ID, &t.Name, &t.Department, &t.Affair, &t.ProblemDescription,
		&categoryID, &t.StatusID, &t.CategoryName, &t.StatusName,
		&t.RegistrationDate, &resolution)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	if resolution.Valid {
		t.ResolutionDate = &resolution.Time
	}
	return t, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Ticket, error) {
	query := ticketSelect + `
		ORDER BY t.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) SearchByName(ctx context.Context, name string) (*models.Ticket, error) {
	query := ticketSelect + `
		WHERE t.name ILIKE '%' || $1 || '%'
		ORDER BY t.id DESC
		LIMIT 1
	`

	row := r.db.QueryRowContext(ctx, query, name)
	t, err := scanTicket(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	query := ticketSelect + `
		WHERE t.id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	t, err := scanTicket(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	query := `
		INSERT INTO tickets (name, department, affair, problem_description, category_id, status_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, registration_date
	`

	err := r.db.QueryRowContext(ctx, query,
		ticket.Name, ticket.Department, ticket.Affair, ticket.ProblemDescription,
		ticket.CategoryID, ticket.StatusID).
		Scan(&ticket.ID, &ticket.RegistrationDate)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ticket, nil
}

func (r *PostgresRepository) Update(ctx context.Context, ticket *models.Ticket) error {
	query := `
		UPDATE tickets
		SET name = $1, department = $2, affair = $3, problem_description = $4,
		    category_id = $5, status_id = $6, resolution_date = $7
		WHERE id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		ticket.Name, ticket.Department, ticket.Affair, ticket.ProblemDescription,
		ticket.CategoryID, ticket.StatusID, ticket.ResolutionDate, ticket.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM tickets
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
