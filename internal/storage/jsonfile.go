package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kuitang/chat-notes/internal/notes"
	"github.com/kuitang/chat-notes/internal/obs"
)

// JSONFile persists one JSON document per user under a data directory.
// Writes go through a temp file and rename so a crashed write never leaves a
// half-written record behind.
type JSONFile struct {
	dir string
	log interface {
		Warn(msg string, args ...any)
	}
}

// NewJSONFile creates the data directory if needed and returns the backend.
func NewJSONFile(dir string) (*JSONFile, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return &JSONFile{dir: dir, log: obs.Pkg("storage")}, nil
}

// LoadUser reads the user's record. A missing file means an absent user; an
// unreadable or corrupted file is logged and reported as absent, per the
// recovery policy for corrupted persisted data.
func (j *JSONFile) LoadUser(_ context.Context, userID string) (*notes.UserRecord, error) {
	data, err := os.ReadFile(j.userPath(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user record: %w", err)
	}

	var rec notes.UserRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		j.log.Warn("corrupted user record, starting empty", "user_id", userID, "error", err)
		return nil, nil
	}
	return &rec, nil
}

// SaveUser writes the record atomically (temp file + rename).
func (j *JSONFile) SaveUser(_ context.Context, userID string, rec *notes.UserRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}

	path := j.userPath(userID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write user record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace user record: %w", err)
	}
	return nil
}

// Close implements the backend lifecycle; nothing to release.
func (j *JSONFile) Close() error { return nil }

func (j *JSONFile) userPath(userID string) string {
	return filepath.Join(j.dir, fileNameForUser(userID)+".json")
}

// fileNameForUser maps an opaque user id to a safe file name. Ids made of
// plain word characters keep their name; anything else is sanitized and
// suffixed with a hash so distinct ids cannot collide.
func fileNameForUser(userID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, userID)

	if safe == userID && safe != "" {
		return safe
	}

	h := fnv.New32a()
	h.Write([]byte(userID))
	if safe == "" {
		safe = "user"
	}
	return fmt.Sprintf("%s-%08x", safe, h.Sum32())
}
