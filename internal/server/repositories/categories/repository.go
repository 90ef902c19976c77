// Package categories declares the repository contract for ticket-category
// lookups.
package categories

import (
	"context"

	"github.com/mesadesk/ticketdesk/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Category, error)
}
