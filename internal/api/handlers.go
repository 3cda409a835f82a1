package api

import (
	"context"
	"database/sql"

	"github.com/printmechecks/server/internal/domain"
	"github.com/printmechecks/server/internal/service/document"
	"github.com/printmechecks/server/internal/service/sendjob"
)

// UserStore persists user profiles seen in verified tokens.
type UserStore interface {
	Upsert(ctx context.Context, u *domain.User) error
}

// Handlers carries the services the HTTP layer dispatches into.
type Handlers struct {
	docs           *document.Service
	jobs           *sendjob.Service
	users          UserStore
	db             *sql.DB
	authConfigured bool
	maxUploadBytes int64
}

// NewHandlers creates the handler set. db is only probed by the health
// endpoint.
func NewHandlers(docs *document.Service, jobs *sendjob.Service, users UserStore, db *sql.DB, authConfigured bool, maxUploadBytes int64) *Handlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 * 1024 * 1024
	}
	return &Handlers{
		docs:           docs,
		jobs:           jobs,
		users:          users,
		db:             db,
		authConfigured: authConfigured,
		maxUploadBytes: maxUploadBytes,
	}
}
