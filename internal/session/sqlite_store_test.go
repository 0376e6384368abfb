package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prateeksi/gupshup/internal/db"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewSQLiteStore(database)
}

func TestSQLiteStore_Create(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "user-1", "My Chat")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.ID == "" {
		t.Error("Create() should assign an ID")
	}
	if sess.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", sess.UserID)
	}
	if sess.IsShared {
		t.Error("new session should not be shared")
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "My Chat" {
		t.Errorf("Title = %q, want My Chat", got.Title)
	}

	t.Run("empty title falls back", func(t *testing.T) {
		sess, err := store.Create(ctx, "user-1", "")
		if err != nil {
			t.Fatal(err)
		}
		if sess.Title != DefaultTitle {
			t.Errorf("Title = %q, want %q", sess.Title, DefaultTitle)
		}
	})
}

func TestSQLiteStore_Get_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_ListSummaries(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	t.Run("ordered by last_modified desc", func(t *testing.T) {
		base := time.Now().Add(-time.Hour)
		for i, title := range []string{"oldest", "middle", "newest"} {
			_, err := store.CreateWithTime(ctx, "user-1", title, base.Add(time.Duration(i)*time.Minute))
			if err != nil {
				t.Fatal(err)
			}
		}
		// Another user's session must not appear.
		if _, err := store.Create(ctx, "user-2", "other"); err != nil {
			t.Fatal(err)
		}

		sessions, err := store.ListSummaries(ctx, "user-1")
		if err != nil {
			t.Fatalf("ListSummaries() error = %v", err)
		}
		if len(sessions) != 3 {
			t.Fatalf("len(sessions) = %d, want 3", len(sessions))
		}
		for i, want := range []string{"newest", "middle", "oldest"} {
			if sessions[i].Title != want {
				t.Errorf("sessions[%d].Title = %q, want %q", i, sessions[i].Title, want)
			}
		}
		if sessions[0].Messages != nil {
			t.Error("summaries must not carry messages")
		}
	})

	t.Run("caps at the list limit", func(t *testing.T) {
		base := time.Now()
		for i := 0; i < ListLimit+5; i++ {
			_, err := store.CreateWithTime(ctx, "user-3", "s", base.Add(time.Duration(i)*time.Second))
			if err != nil {
				t.Fatal(err)
			}
		}

		sessions, err := store.ListSummaries(ctx, "user-3")
		if err != nil {
			t.Fatal(err)
		}
		if len(sessions) != ListLimit {
			t.Errorf("len(sessions) = %d, want %d", len(sessions), ListLimit)
		}
	})
}

func TestSQLiteStore_Share(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "user-1", "To Share")
	if err != nil {
		t.Fatal(err)
	}

	code, err := store.Share(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Share() error = %v", err)
	}
	if len(code) != shareCodeLen {
		t.Errorf("len(code) = %d, want %d", len(code), shareCodeLen)
	}
	for _, r := range code {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			t.Errorf("code %q contains invalid character %q", code, r)
		}
	}

	got, err := store.GetByShareCode(ctx, code)
	if err != nil {
		t.Fatalf("GetByShareCode() error = %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("GetByShareCode() ID = %q, want %q", got.ID, sess.ID)
	}
	if !got.IsShared {
		t.Error("shared session should have IsShared set")
	}

	t.Run("re-share invalidates the old code", func(t *testing.T) {
		newCode, err := store.Share(ctx, sess.ID)
		if err != nil {
			t.Fatalf("Share() error = %v", err)
		}
		if newCode == code {
			t.Fatal("re-share should generate a fresh code")
		}

		if _, err := store.GetByShareCode(ctx, code); !errors.Is(err, ErrNotFound) {
			t.Errorf("old code should no longer resolve, got %v", err)
		}
		if _, err := store.GetByShareCode(ctx, newCode); err != nil {
			t.Errorf("new code should resolve, got %v", err)
		}
	})

	t.Run("unshared session never matches", func(t *testing.T) {
		private, err := store.Create(ctx, "user-1", "Private")
		if err != nil {
			t.Fatal(err)
		}
		_ = private

		if _, err := store.GetByShareCode(ctx, "NOSUCHCODE"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetByShareCode() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("sharing a missing session fails", func(t *testing.T) {
		if _, err := store.Share(ctx, "nonexistent"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Share() error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStore_UpdateTitleAndTouch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "user-1", "Before")
	if err != nil {
		t.Fatal(err)
	}

	if err := store.UpdateTitle(ctx, sess.ID, "After"); err != nil {
		t.Fatalf("UpdateTitle() error = %v", err)
	}

	ts := time.UnixMilli(123456789)
	if err := store.Touch(ctx, sess.ID, ts); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "After" {
		t.Errorf("Title = %q, want After", got.Title)
	}
	if !got.LastModified.Equal(ts) {
		t.Errorf("LastModified = %v, want %v", got.LastModified, ts)
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "user-1", "Doomed")
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	t.Run("missing session", func(t *testing.T) {
		if err := store.Delete(ctx, "nonexistent"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Delete() error = %v, want ErrNotFound", err)
		}
	})
}
