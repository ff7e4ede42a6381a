package bot

// Event is one inbound occurrence delivered by the conversational front end.
// The front end is a black box: it hands over text, named command triggers,
// and pressed action tokens, and sends back whatever Reply it receives.
type Event interface {
	User() string
}

// TextMessage is a free-text message from a user. Its meaning depends on the
// user's conversation state.
type TextMessage struct {
	UserID string
	Text   string
}

func (e TextMessage) User() string { return e.UserID }

// Command is a named trigger (start, new, notes, search, categories, stats,
// help, clear) surfaced by the front end.
type Command struct {
	UserID string
	Name   string
}

func (e Command) User() string { return e.UserID }

// ActionPress is a button press carrying an opaque action token back to us.
type ActionPress struct {
	UserID string
	Token  string
}

func (e ActionPress) User() string { return e.UserID }

// Button is one labeled action offered with a reply.
type Button struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

// Reply is what the front end renders back to the user: a text body plus an
// ordered list of available next actions.
type Reply struct {
	Text    string   `json:"text"`
	Actions []Button `json:"actions,omitempty"`
}
