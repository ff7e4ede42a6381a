package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kuitang/chat-notes/internal/notes"
)

// schema holds the counter row per user plus the note rows in insertion
// order (seq). created_at is stored as unix nanoseconds.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    user_id      TEXT PRIMARY KEY,
    next_note_id INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
    user_id    TEXT    NOT NULL,
    seq        INTEGER NOT NULL,
    note_id    INTEGER NOT NULL,
    title      TEXT    NOT NULL,
    content    TEXT    NOT NULL,
    category   TEXT    NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (user_id, seq)
);
`

// SQLite persists user records in a single database file using the CGO-free
// modernc driver. SaveUser rewrites the user's rows in one transaction, which
// matches the whole-record load/save contract.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	// Whole-record rewrites serialize fine on a single connection and avoid
	// SQLITE_BUSY between concurrent per-user saves.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// LoadUser reads the counter row and note rows, or (nil, nil) when absent.
func (s *SQLite) LoadUser(ctx context.Context, userID string) (*notes.UserRecord, error) {
	rec := &notes.UserRecord{UserID: userID}

	err := s.db.QueryRowContext(ctx,
		`SELECT next_note_id FROM users WHERE user_id = ?`, userID,
	).Scan(&rec.NextNoteID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user counter: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT note_id, title, content, category, created_at
		 FROM notes WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("load user notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n notes.Note
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Category, &createdAt); err != nil {
			return nil, fmt.Errorf("scan note row: %w", err)
		}
		n.CreatedAt = time.Unix(0, createdAt).UTC()
		rec.Notes = append(rec.Notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate note rows: %w", err)
	}
	return rec, nil
}

// SaveUser replaces the user's rows and counter in one transaction.
func (s *SQLite) SaveUser(ctx context.Context, userID string, rec *notes.UserRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (user_id, next_note_id) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET next_note_id = excluded.next_note_id`,
		userID, rec.NextNoteID); err != nil {
		return fmt.Errorf("save user counter: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear user notes: %w", err)
	}

	for seq, n := range rec.Notes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO notes (user_id, seq, note_id, title, content, category, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, seq, n.ID, n.Title, n.Content, n.Category, n.CreatedAt.UnixNano()); err != nil {
			return fmt.Errorf("save note row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
