package main

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/CTAG07/namehunt/pkg/ledger"
	"github.com/CTAG07/namehunt/pkg/markov"
)

// app holds what every command needs once the config has been loaded.
type app struct {
	config *Config
	logger *slog.Logger
	db     *sql.DB
	store  *markov.Store
	ledger *ledger.Ledger
}

// openApp loads the config, opens the database and prepares both schemas.
// Logs go to logOut so stdout stays free for results.
func openApp(configPath string, logOut io.Writer) (*app, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: parseLogLevel(config.App.LogLevel)}))

	if config.App.DataDir != "" {
		if err = os.MkdirAll(config.App.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	db, err := initDB(config.App.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err = markov.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup markov schema: %w", err)
	}
	if err = ledger.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup ledger schema: %w", err)
	}

	store, err := markov.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error creating model store: %w", err)
	}
	store.SetLogger(logger)

	l := ledger.New(db)
	l.SetLogger(logger)

	return &app{
		config: config,
		logger: logger,
		db:     db,
		store:  store,
		ledger: l,
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database", slog.Any("error", err))
	}
}
