package cli

import (
	"fmt"

	"github.com/mesh-intelligence/silk/internal/guard"
	"github.com/mesh-intelligence/silk/internal/paths"
	"github.com/mesh-intelligence/silk/internal/postgres"
	"github.com/mesh-intelligence/silk/pkg/model"
	"github.com/mesh-intelligence/silk/pkg/sqlite"
	"github.com/mesh-intelligence/silk/pkg/types"
)

// session is an attached store for the duration of one command.
type session struct {
	store   types.Store
	repo    *model.Repo
	backend types.Backend
	dataDir string
}

// backendConfig resolves the data directory and assembles the Attach config.
func (a *app) backendConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.conf.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg := types.Config{
		Backend: a.conf.GetString(cfgKeyBackend),
		DataDir: dataDir,
		DSN:     a.conf.GetString(cfgKeyDSN),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// open attaches the configured backend. The caller must call close.
func (a *app) open() (*session, error) {
	cfg, err := a.backendConfig()
	if err != nil {
		return nil, err
	}

	var backend types.Backend
	switch cfg.Backend {
	case types.BackendPostgres:
		backend = postgres.NewBackend(a.logger)
	default:
		backend = sqlite.NewBackend(a.logger)
	}
	if err := backend.Attach(cfg); err != nil {
		return nil, sysError(fmt.Errorf("attach %s backend: %w", cfg.Backend, err))
	}

	var store types.Store = backend
	if gc, on := guardConfig(a.conf); on {
		store = guard.New(backend, gc, a.logger)
		a.logger.Debug("store guard enabled", "timeout", gc.Timeout, "max_failures", gc.MaxFailures, "rate", gc.Rate)
	}
	return &session{store: store, repo: model.NewRepo(store), backend: backend, dataDir: cfg.DataDir}, nil
}

func (a *app) close(s *session) {
	if err := s.backend.Detach(); err != nil {
		a.logger.Warn("detach backend", "err", err)
	}
}
