// Package action encodes button actions as opaque tokens.
//
// A token is the url.Values encoding of a typed payload, so parameters that
// contain '=', '&', or any other delimiter (category names in particular)
// round-trip without escaping hacks. The front end never interprets tokens;
// it returns them verbatim when the user presses the matching button.
package action

import (
	"net/url"
	"strconv"

	"github.com/kuitang/chat-notes/internal/errs"
)

// Kind identifies the operation a button press requests.
type Kind string

const (
	KindMenu           Kind = "menu"
	KindNewNote        Kind = "new_note"
	KindViewNotes      Kind = "view_notes"
	KindViewNote       Kind = "view_note"
	KindDeleteNote     Kind = "delete_note"
	KindEditCategory   Kind = "edit_category"
	KindSearchNotes    Kind = "search_notes"
	KindSearchPage     Kind = "search_page"
	KindViewCategories Kind = "view_categories"
	KindStats          Kind = "stats"
	KindHelp           Kind = "help"
)

var knownKinds = map[Kind]bool{
	KindMenu:           true,
	KindNewNote:        true,
	KindViewNotes:      true,
	KindViewNote:       true,
	KindDeleteNote:     true,
	KindEditCategory:   true,
	KindSearchNotes:    true,
	KindSearchPage:     true,
	KindViewCategories: true,
	KindStats:          true,
	KindHelp:           true,
}

// Action is the decoded payload of a button token.
type Action struct {
	Kind     Kind
	NoteID   int64  // view_note, delete_note, edit_category
	Page     int    // view_notes, search_page
	Category string // optional filter on view_notes
}

// Token serializes the action into an opaque string.
func (a Action) Token() string {
	v := url.Values{}
	v.Set("k", string(a.Kind))
	if a.NoteID != 0 {
		v.Set("id", strconv.FormatInt(a.NoteID, 10))
	}
	if a.Page != 0 {
		v.Set("p", strconv.Itoa(a.Page))
	}
	if a.Category != "" {
		v.Set("cat", a.Category)
	}
	return v.Encode()
}

// Parse decodes a token back into an action. Malformed tokens return an
// invalid_argument error; callers render the "invalid request" reply.
func Parse(token string) (Action, error) {
	v, err := url.ParseQuery(token)
	if err != nil {
		return Action{}, errs.Wrap(errs.InvalidArgument, "malformed action token", err)
	}

	kind := Kind(v.Get("k"))
	if !knownKinds[kind] {
		return Action{}, errs.New(errs.InvalidArgument, "unknown action kind")
	}

	a := Action{Kind: kind, Category: v.Get("cat")}

	if raw := v.Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return Action{}, errs.New(errs.InvalidArgument, "invalid note id in action token")
		}
		a.NoteID = id
	}
	if raw := v.Get("p"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return Action{}, errs.New(errs.InvalidArgument, "invalid page in action token")
		}
		a.Page = p
	}

	switch kind {
	case KindViewNote, KindDeleteNote, KindEditCategory:
		if a.NoteID == 0 {
			return Action{}, errs.New(errs.InvalidArgument, "action token missing note id")
		}
	}

	return a, nil
}
