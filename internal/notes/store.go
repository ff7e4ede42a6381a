// Package notes owns the note data model and its per-user CRUD and query
// operations. Persistence is write-through against an injected Backend;
// mutations for the same user are serialized by a per-user lock because
// load-then-rewrite on shared storage is not atomic.
package notes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kuitang/chat-notes/internal/errs"
	"github.com/kuitang/chat-notes/internal/obs"
)

// Store exposes note CRUD, search and projection operations keyed by user id.
type Store struct {
	backend Backend
	clock   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the creation timestamp source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// NewStore creates a store writing through the given backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		clock:   func() time.Time { return time.Now().UTC() },
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// load returns the user's record, or a fresh empty record when absent.
func (s *Store) load(ctx context.Context, userID string) (*UserRecord, error) {
	rec, err := s.backend.LoadUser(ctx, userID)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "could not load notes", err)
	}
	if rec == nil {
		return &UserRecord{UserID: userID, NextNoteID: 1}, nil
	}
	if rec.NextNoteID < 1 {
		rec.NextNoteID = 1
	}
	return rec, nil
}

func (s *Store) save(ctx context.Context, userID string, rec *UserRecord) error {
	if err := s.backend.SaveUser(ctx, userID, rec); err != nil {
		obs.From(ctx).Error("save user record failed", "user_id", userID, "error", err)
		return errs.Wrap(errs.Unavailable, "could not save notes", err)
	}
	return nil
}

// List returns the user's notes newest-created first. The sort is stable, so
// notes sharing a timestamp keep their insertion order.
func (s *Store) List(ctx context.Context, userID string) ([]Note, error) {
	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Note, len(rec.Notes))
	copy(out, rec.Notes)
	sortNewestFirst(out)
	return out, nil
}

// ListByCategory returns the user's notes in one category, newest first.
func (s *Store) ListByCategory(ctx context.Context, userID, category string) ([]Note, error) {
	all, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, n := range all {
		if n.Category == category {
			out = append(out, n)
		}
	}
	return out, nil
}

// Create assigns the next note id, appends the note and persists. The
// counter only advances when the save succeeds.
func (s *Store) Create(ctx context.Context, userID string, draft Draft) (Note, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.load(ctx, userID)
	if err != nil {
		return Note{}, err
	}

	category := draft.Category
	if category == "" {
		category = DefaultCategory
	}
	title := draft.Title
	if title == "" {
		title = DeriveTitle(draft.Content)
	}

	note := Note{
		ID:        rec.NextNoteID,
		Title:     title,
		Content:   draft.Content,
		Category:  category,
		CreatedAt: s.clock(),
	}
	rec.NextNoteID++
	rec.Notes = append(rec.Notes, note)

	if err := s.save(ctx, userID, rec); err != nil {
		return Note{}, err
	}
	obs.From(ctx).Info("note created", "user_id", userID, "note_id", note.ID, "category", note.Category)
	return note, nil
}

// Get returns the note with the given id, or a not_found error.
func (s *Store) Get(ctx context.Context, userID string, noteID int64) (Note, error) {
	rec, err := s.load(ctx, userID)
	if err != nil {
		return Note{}, err
	}
	for _, n := range rec.Notes {
		if n.ID == noteID {
			return n, nil
		}
	}
	return Note{}, errs.New(errs.NotFound, "note not found")
}

// Delete removes the note with the given id. Returns false when no such note
// exists; persists only on success.
func (s *Store) Delete(ctx context.Context, userID string, noteID int64) (bool, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.load(ctx, userID)
	if err != nil {
		return false, err
	}

	idx := -1
	for i, n := range rec.Notes {
		if n.ID == noteID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	rec.Notes = append(rec.Notes[:idx], rec.Notes[idx+1:]...)

	if err := s.save(ctx, userID, rec); err != nil {
		return false, err
	}
	obs.From(ctx).Info("note deleted", "user_id", userID, "note_id", noteID)
	return true, nil
}

// UpdateCategory relabels one note. Returns false when no such note exists.
func (s *Store) UpdateCategory(ctx context.Context, userID string, noteID int64, newCategory string) (bool, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.load(ctx, userID)
	if err != nil {
		return false, err
	}

	for i := range rec.Notes {
		if rec.Notes[i].ID == noteID {
			rec.Notes[i].Category = newCategory
			if err := s.save(ctx, userID, rec); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Search returns notes whose title, content or category contains the query,
// case-insensitively, newest first.
func (s *Store) Search(ctx context.Context, userID, query string) ([]Note, error) {
	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	folded := strings.ToLower(query)
	var out []Note
	for _, n := range rec.Notes {
		if strings.Contains(strings.ToLower(n.Title), folded) ||
			strings.Contains(strings.ToLower(n.Content), folded) ||
			strings.Contains(strings.ToLower(n.Category), folded) {
			out = append(out, n)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// Categories returns the user's distinct category names, alphabetically.
func (s *Store) Categories(ctx context.Context, userID string) ([]string, error) {
	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	for _, n := range rec.Notes {
		if !seen[n.Category] {
			seen[n.Category] = true
			out = append(out, n.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Stats summarizes the user's collection.
func (s *Store) Stats(ctx context.Context, userID string) (Stats, error) {
	rec, err := s.load(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	cats, err := s.Categories(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{TotalNotes: len(rec.Notes), TotalCategories: len(cats)}, nil
}

// Clear empties the user's notes and resets the id counter to 1. Returns
// false when there was nothing to clear.
func (s *Store) Clear(ctx context.Context, userID string) (bool, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.load(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(rec.Notes) == 0 {
		return false, nil
	}

	rec.Notes = nil
	rec.NextNoteID = 1
	if err := s.save(ctx, userID, rec); err != nil {
		return false, err
	}
	obs.From(ctx).Info("notes cleared", "user_id", userID)
	return true, nil
}

func sortNewestFirst(ns []Note) {
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].CreatedAt.After(ns[j].CreatedAt)
	})
}
