package main

import (
	"database/sql"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/emzola/prolibrary/clients"
	"github.com/emzola/prolibrary/config"
	"github.com/emzola/prolibrary/internal/jsonlog"
	"github.com/emzola/prolibrary/internal/postgrest"
	"github.com/emzola/prolibrary/repository"
	"github.com/emzola/prolibrary/repository/postgres"
	"github.com/emzola/prolibrary/service"
)

// app defines the application's layers and shared resources.
type app struct {
	config  config.Config
	logger  *jsonlog.Logger
	wg      *sync.WaitGroup
	db      *sql.DB
	repo    repository.Repository
	service service.Service
}

// newApp loads the configuration and wires the repository selected by the
// remote backend setting into a catalog. Log entries go to logOut.
func newApp(logOut io.Writer) (*app, error) {
	cfg, err := config.Decode()
	if err != nil {
		return nil, err
	}
	level, err := jsonlog.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		return nil, err
	}
	a := &app{
		config: cfg,
		logger: jsonlog.New(logOut, level),
		wg:     &sync.WaitGroup{},
	}
	switch cfg.Remote.Backend {
	case "rest", "":
		timeout, err := time.ParseDuration(cfg.Remote.Timeout)
		if err != nil {
			return nil, fmt.Errorf("remote timeout: %w", err)
		}
		client := postgrest.New(cfg.Remote.URL, cfg.Remote.Key, clients.NewHTTPClient(timeout))
		a.repo = repository.New(client, cfg.Remote.Table)
	case "postgres":
		db, err := postgres.OpenDBConn(cfg)
		if err != nil {
			return nil, err
		}
		a.logger.PrintInfo("database connection pool established", nil)
		a.db = db
		a.repo = postgres.New(db, cfg.Remote.Table)
	default:
		return nil, fmt.Errorf("unknown remote backend %q", cfg.Remote.Backend)
	}
	a.service = service.New(cfg, a.wg, a.logger, a.repo)
	return a, nil
}

// close stops the catalog and releases the database pool, if any.
func (a *app) close() {
	a.service.Close()
	a.service.Wait()
	if a.db != nil {
		a.db.Close()
	}
}
