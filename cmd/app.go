package cmd

import (
	"fmt"

	"github.com/prateeksi/gupshup/internal/auth"
	"github.com/prateeksi/gupshup/internal/config"
	"github.com/prateeksi/gupshup/internal/db"
	"github.com/prateeksi/gupshup/internal/localcache"
	"github.com/prateeksi/gupshup/internal/message"
	"github.com/prateeksi/gupshup/internal/migrate"
	"github.com/prateeksi/gupshup/internal/pubsub"
	"github.com/prateeksi/gupshup/internal/session"
)

// app wires the shared service graph used by every command.
type app struct {
	cfg      *config.Config
	db       *db.DB
	hub      *pubsub.Hub
	identity auth.Provider
	sessions *session.Service
	messages *message.Service
	migrator *migrate.Migrator
}

func newApp(cfg *config.Config) (*app, error) {
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	hub := pubsub.NewHub()
	identity := auth.NewConfigProvider(cfg)

	msgStore := message.NewSQLiteStore(database)
	sessStore := session.NewSQLiteStore(database)

	sessions := session.NewService(sessStore, msgStore, identity, hub.Session)
	messages := message.NewService(msgStore, hub.Session)

	cache := localcache.New(cfg.DataDir())
	migrator := migrate.New(cache, sessStore, msgStore, identity, hub.Session)

	return &app{
		cfg:      cfg,
		db:       database,
		hub:      hub,
		identity: identity,
		sessions: sessions,
		messages: messages,
		migrator: migrator,
	}, nil
}

func (a *app) close() {
	a.hub.Shutdown()
	if err := a.db.Close(); err != nil {
		fmt.Printf("Warning: closing database: %v\n", err)
	}
}
