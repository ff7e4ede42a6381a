package notes

import (
	"context"
	"time"
)

const (
	// DefaultCategory is assigned when a draft names no category.
	DefaultCategory = "General"

	// QuickCategory is assigned to bare text received outside any flow.
	QuickCategory = "Quick Notes"

	// TitleMaxRunes bounds auto-derived titles before the ellipsis is added.
	TitleMaxRunes = 50

	// PlaceholderTitle is used when a note has no title and no content to
	// derive one from.
	PlaceholderTitle = "Untitled Note"
)

// Note is a user-owned record. IDs are unique per user and come from the
// user's monotonic counter; they are never reused after deletion.
type Note struct {
	ID        int64     `json:"note_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRecord is everything persisted for one user: the note list in
// insertion order plus the id counter. Clearing notes resets the counter to 1
// but keeps the record.
type UserRecord struct {
	UserID     string `json:"user_id"`
	Notes      []Note `json:"notes"`
	NextNoteID int64  `json:"next_note_id"`
}

// Clone returns a deep copy so callers can hand records across the storage
// boundary without aliasing the backend's memory.
func (r *UserRecord) Clone() *UserRecord {
	if r == nil {
		return nil
	}
	out := &UserRecord{
		UserID:     r.UserID,
		NextNoteID: r.NextNoteID,
	}
	if r.Notes != nil {
		out.Notes = make([]Note, len(r.Notes))
		copy(out.Notes, r.Notes)
	}
	return out
}

// Stats summarizes a user's collection for the statistics command.
type Stats struct {
	TotalNotes      int
	TotalCategories int
}

// Backend is the persistence contract the store writes through. LoadUser
// returns (nil, nil) when the user has no record yet; backends that find a
// corrupted record log it and report the user as absent rather than failing.
type Backend interface {
	LoadUser(ctx context.Context, userID string) (*UserRecord, error)
	SaveUser(ctx context.Context, userID string, rec *UserRecord) error
}
