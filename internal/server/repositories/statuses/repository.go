// Package statuses declares the repository contract for ticket-status
// lookups.
package statuses

import (
	"context"

	"github.com/mesadesk/ticketdesk/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Status, error)
}
