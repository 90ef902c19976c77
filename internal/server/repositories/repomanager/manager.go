// Package repomanager vends repository implementations bound to a database
// handle and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/mesadesk/ticketdesk/internal/dbx"
	"github.com/mesadesk/ticketdesk/internal/server/repositories/categories"
	"github.com/mesadesk/ticketdesk/internal/server/repositories/roles"
	"github.com/mesadesk/ticketdesk/internal/server/repositories/statuses"
	"github.com/mesadesk/ticketdesk/internal/server/repositories/tickets"
	"github.com/mesadesk/ticketdesk/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Roles(db dbx.DBTX) roles.Repository
	Tickets(db dbx.DBTX) tickets.Repository
	Categories(db dbx.DBTX) categories.Repository
	Statuses(db dbx.DBTX) statuses.Repository
}
