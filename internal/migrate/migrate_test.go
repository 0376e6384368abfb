package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prateeksi/gupshup/internal/auth"
	"github.com/prateeksi/gupshup/internal/db"
	"github.com/prateeksi/gupshup/internal/localcache"
	"github.com/prateeksi/gupshup/internal/message"
	"github.com/prateeksi/gupshup/internal/session"
)

type fixture struct {
	cache    *localcache.Cache
	sessions *session.SQLiteStore
	messages *message.SQLiteStore
}

func setup(t *testing.T, identity auth.Provider) (*Migrator, fixture) {
	t.Helper()

	dir := t.TempDir()
	database, err := db.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	f := fixture{
		cache:    localcache.New(dir),
		sessions: session.NewSQLiteStore(database),
		messages: message.NewSQLiteStore(database),
	}
	return New(f.cache, f.sessions, f.messages, identity, nil), f
}

func seedCache(t *testing.T, cache *localcache.Cache) {
	t.Helper()

	err := cache.Save([]localcache.CachedSession{
		{
			ID:           "local-1",
			Title:        "Constitution questions",
			LastModified: 1700000005000,
			Messages: []localcache.CachedMessage{
				{ID: "m1", Role: "user", Text: "what is article 356", Timestamp: 1700000000000},
				{ID: "m2", Role: "model", Text: "President's rule...", Timestamp: 1700000005000},
			},
		},
		{
			ID:           "local-2",
			Title:        "Quick note",
			LastModified: 1700000100000,
			Messages: []localcache.CachedMessage{
				{ID: "m3", Role: "user", Text: "remind me later", Timestamp: 1700000100000},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestMigrator_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("migrates sessions and clears cache", func(t *testing.T) {
		m, f := setup(t, auth.Static{Identity: auth.Identity{ID: "user-1"}})
		seedCache(t, f.cache)

		ok, err := m.Run(ctx)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !ok {
			t.Fatal("Run() = false, want true")
		}

		sessions, err := f.sessions.ListSummaries(ctx, "user-1")
		if err != nil {
			t.Fatal(err)
		}
		if len(sessions) != 2 {
			t.Fatalf("len(sessions) = %d, want 2", len(sessions))
		}
		// Preserved last_modified keeps the original ordering.
		if sessions[0].Title != "Quick note" {
			t.Errorf("sessions[0].Title = %q, want Quick note", sessions[0].Title)
		}
		if got := sessions[1].LastModified; !got.Equal(time.UnixMilli(1700000005000)) {
			t.Errorf("LastModified = %v, want preserved timestamp", got)
		}

		var migrated *session.Session
		for _, s := range sessions {
			if s.Title == "Constitution questions" {
				migrated = s
			}
		}
		if migrated == nil {
			t.Fatal("migrated session not found")
		}

		msgs, err := f.messages.GetBySession(ctx, migrated.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(msgs) != 2 {
			t.Fatalf("len(msgs) = %d, want 2", len(msgs))
		}
		if msgs[0].Text != "what is article 356" || msgs[0].Role != message.RoleUser {
			t.Errorf("msgs[0] = %+v", msgs[0])
		}
		if !msgs[0].Timestamp.Equal(time.UnixMilli(1700000000000)) {
			t.Errorf("Timestamp = %v, want preserved", msgs[0].Timestamp)
		}

		if _, err := os.Stat(f.cache.Path()); !os.IsNotExist(err) {
			t.Error("cache should be cleared after migration")
		}
	})

	t.Run("no identity leaves cache untouched", func(t *testing.T) {
		m, f := setup(t, auth.Static{Err: auth.ErrUnauthenticated})
		seedCache(t, f.cache)

		ok, err := m.Run(ctx)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if ok {
			t.Error("Run() = true, want false without identity")
		}

		cached, err := f.cache.Load()
		if err != nil {
			t.Fatal(err)
		}
		if len(cached) != 2 {
			t.Errorf("cache should be untouched, got %d sessions", len(cached))
		}
	})

	t.Run("empty cache is a successful no-op", func(t *testing.T) {
		m, _ := setup(t, auth.Static{Identity: auth.Identity{ID: "user-1"}})

		ok, err := m.Run(ctx)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !ok {
			t.Error("Run() = false, want true for empty cache")
		}
	})

	t.Run("corrupt cache fails without clearing", func(t *testing.T) {
		m, f := setup(t, auth.Static{Identity: auth.Identity{ID: "user-1"}})
		if err := os.MkdirAll(filepath.Dir(f.cache.Path()), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(f.cache.Path(), []byte("{corrupt"), 0o600); err != nil {
			t.Fatal(err)
		}

		ok, err := m.Run(ctx)
		if err == nil {
			t.Fatal("Run() should fail for corrupt cache")
		}
		if ok {
			t.Error("Run() = true, want false")
		}

		if _, err := os.Stat(f.cache.Path()); err != nil {
			t.Error("corrupt cache must not be deleted")
		}
	})
}
