package localcache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCache_LoadSaveClear(t *testing.T) {
	dir := t.TempDir()
	cache := New(dir)

	t.Run("missing file means no history", func(t *testing.T) {
		sessions, err := cache.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if sessions != nil {
			t.Errorf("Load() = %v, want nil", sessions)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		saved := []CachedSession{
			{
				ID:           "local-1",
				Title:        "Old chat",
				LastModified: 1700000000000,
				Messages: []CachedMessage{
					{ID: "m1", Role: "user", Text: "hello", Timestamp: 1700000000000},
					{ID: "m2", Role: "model", Text: "greetings", Timestamp: 1700000001000},
				},
			},
		}
		if err := cache.Save(saved); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		loaded, err := cache.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(loaded) != 1 {
			t.Fatalf("len(loaded) = %d, want 1", len(loaded))
		}
		if loaded[0].Title != "Old chat" {
			t.Errorf("Title = %q", loaded[0].Title)
		}
		if len(loaded[0].Messages) != 2 {
			t.Errorf("len(Messages) = %d, want 2", len(loaded[0].Messages))
		}
		if got := loaded[0].Messages[0].MessageTime().UnixMilli(); got != 1700000000000 {
			t.Errorf("MessageTime() = %d", got)
		}
	})

	t.Run("clear removes the file", func(t *testing.T) {
		if err := cache.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if _, err := os.Stat(cache.Path()); !os.IsNotExist(err) {
			t.Error("history file should be gone")
		}

		// Clearing again is fine.
		if err := cache.Clear(); err != nil {
			t.Errorf("second Clear() error = %v", err)
		}
	})

	t.Run("corrupt file errors", func(t *testing.T) {
		path := filepath.Join(dir, FileName)
		if err := os.WriteFile(path, []byte("{corrupt"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := cache.Load(); err == nil {
			t.Error("expected error for corrupt history")
		}
	})
}
