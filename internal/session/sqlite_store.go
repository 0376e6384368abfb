package session

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prateeksi/gupshup/internal/db"
)

// ErrNotFound is returned when a session is not found.
var ErrNotFound = errors.New("session not found")

// shareCodeLen matches the original 10-character upper alphanumeric codes.
const shareCodeLen = 10

const shareCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new SQLite-backed session store.
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

// Create creates a new session owned by the given user.
func (s *SQLiteStore) Create(ctx context.Context, userID, title string) (*Session, error) {
	return s.CreateWithTime(ctx, userID, title, time.Now())
}

// CreateWithTime creates a session with an explicit last_modified.
func (s *SQLiteStore) CreateWithTime(ctx context.Context, userID, title string, lastModified time.Time) (*Session, error) {
	if title == "" {
		title = DefaultTitle
	}

	sess := &Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        title,
		LastModified: lastModified,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, title, last_modified, is_shared, share_code)
		 VALUES (?, ?, ?, ?, 0, NULL)`,
		sess.ID, sess.UserID, sess.Title, sess.LastModified.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return sess, nil
}

// Get retrieves a session by ID without its messages.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, last_modified, is_shared, share_code
		 FROM sessions WHERE id = ?`, id)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}

	return sess, nil
}

// ListSummaries returns the user's sessions, most recent first.
func (s *SQLiteStore) ListSummaries(ctx context.Context, userID string) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, last_modified, is_shared, share_code
		 FROM sessions WHERE user_id = ?
		 ORDER BY last_modified DESC LIMIT ?`, userID, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	return sessions, nil
}

// UpdateTitle updates the title of a session.
func (s *SQLiteStore) UpdateTitle(ctx context.Context, id, title string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("updating title: %w", err)
	}
	return requireAffected(res)
}

// Touch sets a session's last_modified timestamp.
func (s *SQLiteStore) Touch(ctx context.Context, id string, lastModified time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_modified = ? WHERE id = ?`,
		lastModified.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	return requireAffected(res)
}

// Share marks a session shared under a fresh code. Re-sharing overwrites
// the stored code, so any previously handed-out code stops resolving.
func (s *SQLiteStore) Share(ctx context.Context, id string) (string, error) {
	code, err := generateShareCode()
	if err != nil {
		return "", fmt.Errorf("generating share code: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET is_shared = 1, share_code = ? WHERE id = ?`, code, id)
	if err != nil {
		return "", fmt.Errorf("sharing session: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return "", err
	}

	return code, nil
}

// GetByShareCode retrieves a shared session by its exact share code.
func (s *SQLiteStore) GetByShareCode(ctx context.Context, code string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, last_modified, is_shared, share_code
		 FROM sessions WHERE is_shared = 1 AND share_code = ?`, code)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting shared session: %w", err)
	}

	return sess, nil
}

// Delete removes a session by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return requireAffected(res)
}

func generateShareCode() (string, error) {
	buf := make([]byte, shareCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = shareCodeCharset[int(b)%len(shareCodeCharset)]
	}
	return string(buf), nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var (
		sess         Session
		lastModified int64
		isShared     int64
		shareCode    sql.NullString
	)

	err := row.Scan(&sess.ID, &sess.UserID, &sess.Title, &lastModified, &isShared, &shareCode)
	if err != nil {
		return nil, err
	}

	sess.LastModified = time.UnixMilli(lastModified)
	sess.IsShared = isShared == 1
	if shareCode.Valid {
		sess.ShareCode = shareCode.String
	}

	return &sess, nil
}
