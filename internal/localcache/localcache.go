// Package localcache reads the pre-account local chat history file.
// Chats created before an identity was configured live here until they
// are migrated into the store.
package localcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prateeksi/gupshup/internal/message"
)

// FileName is the history file kept under the data directory.
const FileName = "chat_history.json"

// CachedSession mirrors the legacy on-disk session shape.
type CachedSession struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Messages     []CachedMessage `json:"messages"`
	LastModified int64           `json:"lastModified"` // unix milliseconds
}

// CachedMessage mirrors the legacy on-disk message shape.
type CachedMessage struct {
	ID          string               `json:"id"`
	Role        string               `json:"role"`
	Text        string               `json:"text"`
	Timestamp   int64                `json:"timestamp"` // unix milliseconds
	Attachments []message.Attachment `json:"attachments,omitempty"`
}

// Cache is a JSON-file backed chat history.
type Cache struct {
	path string
}

// New creates a cache rooted at the given data directory.
func New(dataDir string) *Cache {
	return &Cache{path: filepath.Join(dataDir, FileName)}
}

// Path returns the history file path.
func (c *Cache) Path() string {
	return c.path
}

// Load reads all cached sessions. A missing file means no history.
func (c *Cache) Load() ([]CachedSession, error) {
	data, err := os.ReadFile(c.path) //nolint:gosec // Path lives under the app data dir.
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading local history: %w", err)
	}

	var sessions []CachedSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("parsing local history: %w", err)
	}

	return sessions, nil
}

// Save writes the cached sessions. Used by the REPL when no identity is
// configured yet.
func (c *Cache) Save(sessions []CachedSession) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("marshaling local history: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("writing local history: %w", err)
	}

	return nil
}

// Clear removes the history file. A missing file is not an error.
func (c *Cache) Clear() error {
	err := os.Remove(c.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing local history: %w", err)
	}
	return nil
}

// MessageTime converts a cached millisecond timestamp.
func (m CachedMessage) MessageTime() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// LastModifiedTime converts the session's millisecond timestamp.
func (s CachedSession) LastModifiedTime() time.Time {
	return time.UnixMilli(s.LastModified)
}
