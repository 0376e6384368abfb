package message

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prateeksi/gupshup/internal/db"
)

// ErrNotFound is returned when a message is not found.
var ErrNotFound = errors.New("message not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new SQLite-backed message store.
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

// Create persists a new message and bumps the owning session's
// last_modified, atomically.
func (s *SQLiteStore) Create(ctx context.Context, msg *Message) error {
	prepareForInsert(msg)

	attachJSON, err := marshalAttachments(msg.Attachments)
	if err != nil {
		return err
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (id, session_id, role, text, timestamp, attachments)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			msg.ID, msg.SessionID, string(msg.Role), msg.Text,
			msg.Timestamp.UnixMilli(), attachJSON)
		if err != nil {
			return fmt.Errorf("creating message: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE sessions SET last_modified = ? WHERE id = ?`,
			msg.Timestamp.UnixMilli(), msg.SessionID)
		if err != nil {
			return fmt.Errorf("touching session: %w", err)
		}

		return nil
	})
}

// CreateBatch persists messages in one transaction, preserving their
// timestamps. The owning session's last_modified is left untouched so
// migrated history keeps its original ordering.
func (s *SQLiteStore) CreateBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO messages (id, session_id, role, text, timestamp, attachments)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for _, msg := range msgs {
			prepareForInsert(msg)

			attachJSON, err := marshalAttachments(msg.Attachments)
			if err != nil {
				return err
			}

			_, err = stmt.ExecContext(ctx,
				msg.ID, msg.SessionID, string(msg.Role), msg.Text,
				msg.Timestamp.UnixMilli(), attachJSON)
			if err != nil {
				return fmt.Errorf("creating message %s: %w", msg.ID, err)
			}
		}

		return nil
	})
}

// Get retrieves a message by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, role, text, timestamp, attachments
		 FROM messages WHERE id = ?`, id)

	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting message: %w", err)
	}

	return msg, nil
}

// GetBySession returns all messages for a session ordered by timestamp.
func (s *SQLiteStore) GetBySession(ctx context.Context, sessionID string) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, text, timestamp, attachments
		 FROM messages WHERE session_id = ? ORDER BY timestamp ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("getting session messages: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return msgs, nil
}

// UpdateText replaces a message's text.
func (s *SQLiteStore) UpdateText(ctx context.Context, id, text string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET text = ? WHERE id = ?`, text, id)
	if err != nil {
		return fmt.Errorf("updating message: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating message: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Count returns the number of messages in a session.
func (s *SQLiteStore) Count(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}

	return count, nil
}

// Delete removes a message by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}

	return nil
}

func prepareForInsert(msg *Message) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
}

func marshalAttachments(attachments []Attachment) (string, error) {
	if len(attachments) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(attachments)
	if err != nil {
		return "", fmt.Errorf("marshaling attachments: %w", err)
	}
	return string(data), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (*Message, error) {
	var (
		msg        Message
		role       string
		timestamp  int64
		attachJSON string
	)

	err := row.Scan(&msg.ID, &msg.SessionID, &role, &msg.Text, &timestamp, &attachJSON)
	if err != nil {
		return nil, err
	}

	msg.Role = Role(role)
	msg.Timestamp = time.UnixMilli(timestamp)

	if attachJSON != "" && attachJSON != "[]" {
		if err := json.Unmarshal([]byte(attachJSON), &msg.Attachments); err != nil {
			return nil, fmt.Errorf("unmarshaling attachments: %w", err)
		}
	}

	return &msg, nil
}
