// Package bot dispatches front-end events through the conversation state
// machine to the note store and renders replies with action buttons.
package bot

import (
	"context"
	"strings"

	"github.com/kuitang/chat-notes/internal/action"
	"github.com/kuitang/chat-notes/internal/errs"
	"github.com/kuitang/chat-notes/internal/notes"
	"github.com/kuitang/chat-notes/internal/obs"
	"github.com/kuitang/chat-notes/internal/page"
	"github.com/kuitang/chat-notes/internal/ratelimit"
	"github.com/kuitang/chat-notes/internal/session"
)

const (
	// DefaultPageSize is how many notes one list or search page shows.
	DefaultPageSize = 5

	// DefaultPreviewRunes bounds the content preview on save confirmations.
	DefaultPreviewRunes = 150
)

// Engine is the core of the assistant. Each inbound event is processed to
// completion before a reply is returned; per-user mutation ordering is the
// store's concern.
type Engine struct {
	store        *notes.Store
	sessions     *session.Manager
	limiter      *ratelimit.Limiter
	pageSize     int
	previewRunes int
}

// Option customizes an Engine.
type Option func(*Engine)

// WithPageSize overrides the notes-per-page constant.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithPreviewRunes overrides the content preview bound.
func WithPreviewRunes(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.previewRunes = n
		}
	}
}

// WithLimiter applies per-user rate limiting at the event boundary.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(e *Engine) { e.limiter = l }
}

// NewEngine wires the dispatcher over a note store.
func NewEngine(store *notes.Store, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		sessions:     session.NewManager(),
		pageSize:     DefaultPageSize,
		previewRunes: DefaultPreviewRunes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle processes one inbound event and returns the reply to render.
// It never returns an error: every failure mode has a reply variant.
func (e *Engine) Handle(ctx context.Context, ev Event) Reply {
	ctx = obs.WithCorrelation(ctx, obs.Correlation{UserID: ev.User()})

	if e.limiter != nil && !e.limiter.Allow(ev.User()) {
		return slowDownReply()
	}

	switch ev := ev.(type) {
	case TextMessage:
		return e.handleText(ctx, ev)
	case Command:
		// Commands clear pending state first, so a stray trigger is never
		// swallowed as note text.
		e.sessions.ClearPending(ev.UserID)
		return e.handleCommand(ctx, ev)
	case ActionPress:
		e.sessions.ClearPending(ev.UserID)
		return e.handleAction(ctx, ev)
	default:
		obs.From(ctx).Warn("unknown event type dropped")
		return invalidRequestReply()
	}
}

func (e *Engine) handleCommand(ctx context.Context, ev Command) Reply {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ev.Name), "/"))
	switch name {
	case "start":
		return welcomeReply()
	case "menu":
		return menuReply()
	case "new":
		e.sessions.ExpectNote(ev.UserID)
		return newNotePrompt()
	case "notes", "mynotes":
		return e.notesPage(ctx, ev.UserID, 0, "")
	case "search":
		e.sessions.ExpectSearch(ev.UserID)
		return searchPrompt()
	case "categories":
		return e.categories(ctx, ev.UserID)
	case "stats":
		return e.stats(ctx, ev.UserID)
	case "help":
		return helpReply()
	case "clear":
		return e.clear(ctx, ev.UserID)
	default:
		return helpReply()
	}
}

func (e *Engine) handleText(ctx context.Context, ev TextMessage) Reply {
	pending := e.sessions.ConsumePending(ev.UserID)
	switch pending.State {
	case session.AwaitingCategory:
		return e.applyCategoryRename(ctx, ev.UserID, pending.NoteID, ev.Text)
	case session.AwaitingNote:
		return e.createNote(ctx, ev.UserID, notes.ParseDraft(ev.Text), false)
	case session.AwaitingSearch:
		return e.runSearch(ctx, ev.UserID, ev.Text)
	default:
		// Text while idle is an implicit quick note.
		return e.createNote(ctx, ev.UserID, notes.QuickDraft(ev.Text), true)
	}
}

func (e *Engine) handleAction(ctx context.Context, ev ActionPress) Reply {
	a, err := action.Parse(ev.Token)
	if err != nil {
		obs.From(ctx).Warn("malformed action token", "token", ev.Token, "error", err)
		return invalidRequestReply()
	}

	switch a.Kind {
	case action.KindMenu:
		return menuReply()
	case action.KindNewNote:
		e.sessions.ExpectNote(ev.UserID)
		return newNotePrompt()
	case action.KindViewNotes:
		return e.notesPage(ctx, ev.UserID, a.Page, a.Category)
	case action.KindViewNote:
		return e.viewNote(ctx, ev.UserID, a.NoteID)
	case action.KindDeleteNote:
		return e.deleteNote(ctx, ev.UserID, a.NoteID)
	case action.KindEditCategory:
		return e.promptCategoryRename(ctx, ev.UserID, a.NoteID)
	case action.KindSearchNotes:
		e.sessions.ExpectSearch(ev.UserID)
		return searchPrompt()
	case action.KindSearchPage:
		return e.searchPage(ctx, ev.UserID, a.Page)
	case action.KindViewCategories:
		return e.categories(ctx, ev.UserID)
	case action.KindStats:
		return e.stats(ctx, ev.UserID)
	case action.KindHelp:
		return helpReply()
	default:
		return invalidRequestReply()
	}
}

func (e *Engine) createNote(ctx context.Context, userID string, draft notes.Draft, quick bool) Reply {
	n, err := e.store.Create(ctx, userID, draft)
	if err != nil {
		return e.failure(ctx, err)
	}
	return e.noteSavedReply(n, quick)
}

func (e *Engine) runSearch(ctx context.Context, userID, query string) Reply {
	results, err := e.store.Search(ctx, userID, query)
	if err != nil {
		return e.failure(ctx, err)
	}
	e.sessions.CacheSearch(userID, query, results)

	info, ok := page.Slice(len(results), e.pageSize, 0)
	if !ok {
		return noSearchResultsReply()
	}
	return searchPageReply(query, results, info)
}

// searchPage pages over the cached results of the last search; the cache is
// deliberately stale so navigation does not re-run the query.
func (e *Engine) searchPage(_ context.Context, userID string, pageIndex int) Reply {
	query, results, ok := e.sessions.CachedSearch(userID)
	if !ok {
		return noActiveSearchReply()
	}
	info, ok := page.Slice(len(results), e.pageSize, pageIndex)
	if !ok {
		return noSearchResultsReply()
	}
	return searchPageReply(query, results, info)
}

func (e *Engine) notesPage(ctx context.Context, userID string, pageIndex int, category string) Reply {
	var (
		list []notes.Note
		err  error
	)
	if category == "" {
		list, err = e.store.List(ctx, userID)
	} else {
		list, err = e.store.ListByCategory(ctx, userID, category)
	}
	if err != nil {
		return e.failure(ctx, err)
	}

	info, ok := page.Slice(len(list), e.pageSize, pageIndex)
	if !ok {
		return noNotesReply(category)
	}
	return notesPageReply(list, info, category)
}

func (e *Engine) viewNote(ctx context.Context, userID string, noteID int64) Reply {
	n, err := e.store.Get(ctx, userID, noteID)
	if err != nil {
		if errs.CodeOf(err) == errs.NotFound {
			return noteNotFoundReply()
		}
		return e.failure(ctx, err)
	}
	return noteViewReply(n)
}

func (e *Engine) deleteNote(ctx context.Context, userID string, noteID int64) Reply {
	ok, err := e.store.Delete(ctx, userID, noteID)
	if err != nil {
		return e.failure(ctx, err)
	}
	if !ok {
		return noteNotFoundReply()
	}
	return noteDeletedReply(noteID)
}

func (e *Engine) promptCategoryRename(ctx context.Context, userID string, noteID int64) Reply {
	n, err := e.store.Get(ctx, userID, noteID)
	if err != nil {
		if errs.CodeOf(err) == errs.NotFound {
			return noteNotFoundReply()
		}
		return e.failure(ctx, err)
	}
	e.sessions.ExpectCategory(userID, noteID)
	return editCategoryPrompt(n)
}

func (e *Engine) applyCategoryRename(ctx context.Context, userID string, noteID int64, text string) Reply {
	newCategory := strings.TrimSpace(text)
	if newCategory == "" {
		newCategory = notes.DefaultCategory
	}
	ok, err := e.store.UpdateCategory(ctx, userID, noteID, newCategory)
	if err != nil {
		return e.failure(ctx, err)
	}
	if !ok {
		return noteNotFoundReply()
	}
	return categoryUpdatedReply(noteID, newCategory)
}

func (e *Engine) categories(ctx context.Context, userID string) Reply {
	cats, err := e.store.Categories(ctx, userID)
	if err != nil {
		return e.failure(ctx, err)
	}
	list, err := e.store.List(ctx, userID)
	if err != nil {
		return e.failure(ctx, err)
	}
	counts := make(map[string]int, len(cats))
	for _, n := range list {
		counts[n.Category]++
	}
	return categoriesReply(cats, counts)
}

func (e *Engine) stats(ctx context.Context, userID string) Reply {
	s, err := e.store.Stats(ctx, userID)
	if err != nil {
		return e.failure(ctx, err)
	}
	return statsReply(s)
}

func (e *Engine) clear(ctx context.Context, userID string) Reply {
	ok, err := e.store.Clear(ctx, userID)
	if err != nil {
		return e.failure(ctx, err)
	}
	if !ok {
		return nothingToClearReply()
	}
	return clearedReply()
}

func (e *Engine) failure(ctx context.Context, err error) Reply {
	obs.From(ctx).Error("operation failed", "error", err)
	return failureReply()
}
