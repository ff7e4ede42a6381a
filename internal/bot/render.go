package bot

// The presentation adapter: turns notes, pages and navigation flags into
// reply text plus labeled action buttons. It is deliberately markup-agnostic;
// the front end decides how to draw a Reply.

import (
	"fmt"
	"strings"

	"github.com/kuitang/chat-notes/internal/action"
	"github.com/kuitang/chat-notes/internal/notes"
	"github.com/kuitang/chat-notes/internal/page"
)

func menuButton() Button {
	return Button{Label: "Main Menu", Token: action.Action{Kind: action.KindMenu}.Token()}
}

func mainMenu() []Button {
	return []Button{
		{Label: "New Note", Token: action.Action{Kind: action.KindNewNote}.Token()},
		{Label: "My Notes", Token: action.Action{Kind: action.KindViewNotes}.Token()},
		{Label: "Search Notes", Token: action.Action{Kind: action.KindSearchNotes}.Token()},
		{Label: "Categories", Token: action.Action{Kind: action.KindViewCategories}.Token()},
		{Label: "Statistics", Token: action.Action{Kind: action.KindStats}.Token()},
		{Label: "Help", Token: action.Action{Kind: action.KindHelp}.Token()},
	}
}

func welcomeReply() Reply {
	text := strings.Join([]string{
		"Welcome to chat-notes.",
		"",
		"Send me any text to save it as a quick note, or use the buttons below.",
		"Notes can carry a title and category:",
		"  Title: My Note",
		"  Category: Ideas",
		"  Content: the note body",
	}, "\n")
	return Reply{Text: text, Actions: mainMenu()}
}

func menuReply() Reply {
	return Reply{Text: "What would you like to do?", Actions: mainMenu()}
}

func newNotePrompt() Reply {
	text := strings.Join([]string{
		"Let's create a new note. Send me the text for it.",
		"",
		"You can include a title and category:",
		"  Title: Your Title Here",
		"  Category: Your Category Name",
		"  Content: Your content here",
		"",
		"Or just send the content and I'll derive a title and file it under 'General'.",
	}, "\n")
	return Reply{Text: text}
}

func searchPrompt() Reply {
	return Reply{Text: "What would you like to search for? Keywords match titles, content and categories."}
}

func editCategoryPrompt(n notes.Note) Reply {
	return Reply{Text: fmt.Sprintf(
		"Editing category for note #%d (%s).\nCurrent category: %s\nSend me the new category name.",
		n.ID, notes.Preview(n.Title, 30), n.Category)}
}

func (e *Engine) noteSavedReply(n notes.Note, quick bool) Reply {
	verb := "Note saved"
	if quick {
		verb = "Quick note saved"
	}
	text := fmt.Sprintf("%s (#%d)\n\nTitle: %s\nCategory: %s\nContent: %s",
		verb, n.ID, n.Title, n.Category, notes.Preview(n.Content, e.previewRunes))
	return Reply{Text: text, Actions: []Button{
		{Label: "View All Notes", Token: action.Action{Kind: action.KindViewNotes}.Token()},
		{Label: "Another Note", Token: action.Action{Kind: action.KindNewNote}.Token()},
		{Label: "View This Note", Token: action.Action{Kind: action.KindViewNote, NoteID: n.ID}.Token()},
		menuButton(),
	}}
}

func noteViewReply(n notes.Note) Reply {
	text := fmt.Sprintf("Note #%d\n\nTitle: %s\nCategory: %s\nCreated: %s\n\n%s",
		n.ID, n.Title, n.Category, n.CreatedAt.Format("2006-01-02 15:04"), n.Content)
	return Reply{Text: text, Actions: []Button{
		{Label: "Back to Notes", Token: action.Action{Kind: action.KindViewNotes}.Token()},
		{Label: "Edit Category", Token: action.Action{Kind: action.KindEditCategory, NoteID: n.ID}.Token()},
		{Label: "Delete This Note", Token: action.Action{Kind: action.KindDeleteNote, NoteID: n.ID}.Token()},
		{Label: "New Note", Token: action.Action{Kind: action.KindNewNote}.Token()},
		menuButton(),
	}}
}

// notesPageReply renders one page of the user's notes, optionally filtered to
// a category. The page index rides inside every navigation token so presses
// stay idempotent.
func notesPageReply(all []notes.Note, info page.Info, category string) Reply {
	heading := "Your Notes"
	if category != "" {
		heading = fmt.Sprintf("Your Notes in %s", category)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (page %d/%d):\n", heading, info.Index+1, info.TotalPages)

	var buttons []Button
	for _, n := range all[info.Start:info.End] {
		fmt.Fprintf(&b, "\n#%d: %s (%s)", n.ID, n.Title, n.Category)
		buttons = append(buttons,
			Button{Label: fmt.Sprintf("View #%d", n.ID), Token: action.Action{Kind: action.KindViewNote, NoteID: n.ID}.Token()},
			Button{Label: fmt.Sprintf("Delete #%d", n.ID), Token: action.Action{Kind: action.KindDeleteNote, NoteID: n.ID}.Token()},
		)
	}

	if info.HasPrev {
		buttons = append(buttons, Button{
			Label: "Previous",
			Token: action.Action{Kind: action.KindViewNotes, Page: info.Index - 1, Category: category}.Token(),
		})
	}
	if info.HasNext {
		buttons = append(buttons, Button{
			Label: "Next",
			Token: action.Action{Kind: action.KindViewNotes, Page: info.Index + 1, Category: category}.Token(),
		})
	}

	buttons = append(buttons,
		Button{Label: "Search Notes", Token: action.Action{Kind: action.KindSearchNotes}.Token()},
		Button{Label: "Categories", Token: action.Action{Kind: action.KindViewCategories}.Token()},
		Button{Label: "New Note", Token: action.Action{Kind: action.KindNewNote}.Token()},
		menuButton(),
	)
	return Reply{Text: b.String(), Actions: buttons}
}

func noNotesReply(category string) Reply {
	text := "You don't have any notes yet. Send me some text to create one."
	if category != "" {
		text = fmt.Sprintf("You don't have any notes in %s.", category)
	}
	return Reply{Text: text, Actions: mainMenu()}
}

func searchPageReply(query string, results []notes.Note, info page.Info) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q (page %d/%d):\n", query, info.Index+1, info.TotalPages)

	var buttons []Button
	for _, n := range results[info.Start:info.End] {
		fmt.Fprintf(&b, "\n#%d: %s (%s)", n.ID, n.Title, n.Category)
		buttons = append(buttons,
			Button{Label: fmt.Sprintf("View #%d", n.ID), Token: action.Action{Kind: action.KindViewNote, NoteID: n.ID}.Token()},
			Button{Label: fmt.Sprintf("Delete #%d", n.ID), Token: action.Action{Kind: action.KindDeleteNote, NoteID: n.ID}.Token()},
		)
	}

	if info.HasPrev {
		buttons = append(buttons, Button{
			Label: "Previous",
			Token: action.Action{Kind: action.KindSearchPage, Page: info.Index - 1}.Token(),
		})
	}
	if info.HasNext {
		buttons = append(buttons, Button{
			Label: "Next",
			Token: action.Action{Kind: action.KindSearchPage, Page: info.Index + 1}.Token(),
		})
	}

	buttons = append(buttons,
		Button{Label: "Back to Notes", Token: action.Action{Kind: action.KindViewNotes}.Token()},
		Button{Label: "New Note", Token: action.Action{Kind: action.KindNewNote}.Token()},
		menuButton(),
	)
	return Reply{Text: b.String(), Actions: buttons}
}

func noSearchResultsReply() Reply {
	return Reply{Text: "No notes found matching your search.", Actions: mainMenu()}
}

func categoriesReply(cats []string, counts map[string]int) Reply {
	if len(cats) == 0 {
		return Reply{
			Text: "You don't have any categories yet. Notes default to 'General' or 'Quick Notes'.",
			Actions: []Button{
				{Label: "New Note", Token: action.Action{Kind: action.KindNewNote}.Token()},
				menuButton(),
			},
		}
	}

	var b strings.Builder
	b.WriteString("Your categories:\n")
	var buttons []Button
	for _, cat := range cats {
		fmt.Fprintf(&b, "\n%s (%d notes)", cat, counts[cat])
		buttons = append(buttons, Button{
			Label: fmt.Sprintf("View '%s'", cat),
			Token: action.Action{Kind: action.KindViewNotes, Category: cat}.Token(),
		})
	}
	buttons = append(buttons,
		Button{Label: "View All Notes", Token: action.Action{Kind: action.KindViewNotes}.Token()},
		Button{Label: "New Note", Token: action.Action{Kind: action.KindNewNote}.Token()},
		menuButton(),
	)
	return Reply{Text: b.String(), Actions: buttons}
}

func statsReply(s notes.Stats) Reply {
	text := fmt.Sprintf("Your statistics\n\nTotal notes: %d\nCategories: %d", s.TotalNotes, s.TotalCategories)
	return Reply{Text: text, Actions: []Button{menuButton()}}
}

func helpReply() Reply {
	text := strings.Join([]string{
		"chat-notes help",
		"",
		"Commands:",
		"  start      - show the main menu",
		"  new        - create a new note",
		"  notes      - view your notes (paginated)",
		"  search     - search through your notes",
		"  categories - browse notes by category",
		"  stats      - show your note statistics",
		"  clear      - delete all your notes",
		"  help       - show this guide",
		"",
		"Any other text is saved as a quick note.",
		"Structured notes use 'Title:', 'Category:' and 'Content:' line prefixes.",
	}, "\n")
	return Reply{Text: text, Actions: []Button{menuButton()}}
}

func clearedReply() Reply {
	return Reply{Text: "All your notes have been cleared.", Actions: []Button{menuButton()}}
}

func nothingToClearReply() Reply {
	return Reply{Text: "You don't have any notes to clear.", Actions: []Button{menuButton()}}
}

func noteNotFoundReply() Reply {
	return Reply{Text: "Note not found or already deleted.", Actions: mainMenu()}
}

func noteDeletedReply(noteID int64) Reply {
	return Reply{Text: fmt.Sprintf("Note #%d deleted.", noteID), Actions: []Button{
		{Label: "View Notes", Token: action.Action{Kind: action.KindViewNotes}.Token()},
		{Label: "New Note", Token: action.Action{Kind: action.KindNewNote}.Token()},
		menuButton(),
	}}
}

func categoryUpdatedReply(noteID int64, newCategory string) Reply {
	return Reply{Text: fmt.Sprintf("Category for note #%d updated to '%s'.", noteID, newCategory), Actions: []Button{
		{Label: "View Note", Token: action.Action{Kind: action.KindViewNote, NoteID: noteID}.Token()},
		{Label: "My Notes", Token: action.Action{Kind: action.KindViewNotes}.Token()},
		menuButton(),
	}}
}

func invalidRequestReply() Reply {
	return Reply{Text: "Invalid request.", Actions: mainMenu()}
}

func failureReply() Reply {
	return Reply{Text: "Something went wrong. Please try again.", Actions: []Button{menuButton()}}
}

func slowDownReply() Reply {
	return Reply{Text: "You're sending messages too quickly. Please slow down."}
}

func noActiveSearchReply() Reply {
	return Reply{Text: "No active search. Please search again.", Actions: mainMenu()}
}
