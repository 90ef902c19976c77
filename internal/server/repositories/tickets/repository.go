// Package tickets declares the persistence contract for ticket rows.
package tickets

import (
	"context"

	"github.com/mesadesk/ticketdesk/internal/server/models"
)

type Repository interface {
	// List returns all tickets, newest first, with category and status names
	// joined in.
	List(ctx context.Context) ([]*models.Ticket, error)

	// SearchByName returns the newest ticket whose requester name contains
	// the fragment (case-insensitive), or common.ErrorNotFound.
	SearchByName(ctx context.Context, name string) (*models.Ticket, error)

	// GetByID returns the ticket or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)

	// Create inserts a ticket; the database stamps the registration date.
	Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error)

	// Update overwrites the mutable fields. Returns common.ErrorNotFound
	// when the ticket does not exist.
	Update(ctx context.Context, ticket *models.Ticket) error

	// Delete removes the ticket or returns common.ErrorNotFound.
	Delete(ctx context.Context, id int64) error
}
