// Package roles declares the read-only repository contract for role lookups.
package roles

import (
	"context"

	"github.com/mesadesk/ticketdesk/internal/server/models"
)

type Repository interface {
	// GetByName returns the role or common.ErrorNotFound. Matching is exact.
	GetByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]*models.Role, error)
}
