package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mesadesk/ticketdesk/internal/common"
	"github.com/mesadesk/ticketdesk/internal/dbx"
	"github.com/mesadesk/ticketdesk/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `
	u.id, u.name, u.payroll_number, u.rol_id, r.name,
	u.password_hash, u.refresh_token, u.refresh_token_expires_at
`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var token sql.NullString
	var expires sql.NullTime

	err := row.Scan(&user.ID, &user.Name, &user.PayrollNumber, &user.RoleID, &user.RoleName,
		&user.PasswordHash, &token, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if token.Valid {
		user.RefreshToken = &token.String
	}
	if expires.Valid {
		user.RefreshTokenExpiresAt = &expires.Time
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (name, payroll_number, rol_id, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.PayrollNumber, user.RoleID, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, common.ErrDuplicateUser
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByPayrollNumber(ctx context.Context, payrollNumber int) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.rol_id
		WHERE u.payroll_number = $1
	`
	return scanUser(r.db.QueryRowContext(ctx, query, payrollNumber))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.rol_id
		WHERE u.id = $1
	`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) SetSession(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = $1, refresh_token_expires_at = $2
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, token, expiresAt, userID)
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

// RotateSession is a single conditional UPDATE keyed on the token value that
// was presented. The future-expiry predicate makes expired tokens unmatchable
// without ever purging them.
func (r *PostgresRepository) RotateSession(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	query := `
		UPDATE users u
		SET refresh_token = $1, refresh_token_expires_at = $2
		FROM roles r
		WHERE r.id = u.rol_id
		  AND u.refresh_token = $3
		  AND u.refresh_token_expires_at > now()
		RETURNING u.id, u.name, u.payroll_number, u.rol_id, r.name, u.password_hash
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, newToken, expiresAt, oldToken).
		Scan(&user.ID, &user.Name, &user.PayrollNumber, &user.RoleID, &user.RoleName, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.RefreshToken = &newToken
	user.RefreshTokenExpiresAt = &expiresAt
	return user, nil
}

func (r *PostgresRepository) ClearSession(ctx context.Context, userID int64) error {
	query := `
		UPDATE users
		SET refresh_token = NULL, refresh_token_expires_at = NULL
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, userID)
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
