package notes

import "strings"

// Draft is the parsed form of one free-text note message.
type Draft struct {
	Title    string
	Content  string
	Category string
}

// ParseDraft recognizes optional "Title:", "Category:" and "Content:" line
// prefixes (case-insensitive, at line start) in raw message text.
//
// An explicit "Content:" line wins: its remainder becomes the content and all
// other non-prefixed lines are discarded. Otherwise content is the
// concatenation of the non-prefixed lines, falling back to the whole raw text
// when that concatenation is empty. A missing title is derived from content;
// a missing category defaults to DefaultCategory.
func ParseDraft(raw string) Draft {
	d := Draft{Category: DefaultCategory, Content: raw}

	var (
		plainLines  []string
		explicit    bool
		explicitVal string
	)

	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "title:"):
			d.Title = strings.TrimSpace(line[len("title:"):])
		case strings.HasPrefix(lower, "category:"):
			if cat := strings.TrimSpace(line[len("category:"):]); cat != "" {
				d.Category = cat
			}
		case strings.HasPrefix(lower, "content:"):
			explicit = true
			explicitVal = strings.TrimSpace(line[len("content:"):])
		default:
			plainLines = append(plainLines, line)
		}
	}

	if explicit {
		d.Content = explicitVal
	} else {
		joined := strings.TrimSpace(strings.Join(plainLines, "\n"))
		if joined != "" {
			d.Content = joined
		} else {
			d.Content = raw
		}
	}

	if d.Title == "" {
		d.Title = DeriveTitle(d.Content)
	}
	return d
}

// QuickDraft turns bare text received outside any flow into a quick note.
func QuickDraft(raw string) Draft {
	return Draft{
		Title:    DeriveTitle(raw),
		Content:  raw,
		Category: QuickCategory,
	}
}

// DeriveTitle truncates content to TitleMaxRunes runes, appending an ellipsis
// when truncated. Empty content yields PlaceholderTitle.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) > TitleMaxRunes {
		return string(runes[:TitleMaxRunes]) + "..."
	}
	if len(runes) == 0 {
		return PlaceholderTitle
	}
	return content
}

// Preview truncates displayed content to maxRunes runes with an ellipsis
// marker when exceeded.
func Preview(content string, maxRunes int) string {
	if maxRunes <= 0 {
		return content
	}
	runes := []rune(content)
	if len(runes) <= maxRunes {
		return content
	}
	return string(runes[:maxRunes]) + "..."
}
