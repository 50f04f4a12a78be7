// Package sqlite provides the public API for the SQLite silk backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/silk/internal/sqlite"
	"github.com/mesh-intelligence/silk/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend(nil)
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".silk",
//	})
//	defer backend.Detach()
//	repo := model.NewRepo(backend)
//
// A nil logger discards backend logs.
func NewBackend(logger *slog.Logger) types.Backend {
	return sqlite.NewBackend(sqlite.WithLogger(logger))
}
