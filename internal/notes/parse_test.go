package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDraft_FullPrefixForm(t *testing.T) {
	t.Parallel()

	d := ParseDraft("Title: Shopping\nCategory: Errands\nContent: milk and eggs")
	assert.Equal(t, "Shopping", d.Title)
	assert.Equal(t, "Errands", d.Category)
	assert.Equal(t, "milk and eggs", d.Content)
}

func TestParseDraft_PrefixesAreCaseInsensitive(t *testing.T) {
	t.Parallel()

	d := ParseDraft("TITLE: Loud\ncAtEgOrY: Mixed\nCONTENT: body")
	assert.Equal(t, "Loud", d.Title)
	assert.Equal(t, "Mixed", d.Category)
	assert.Equal(t, "body", d.Content)
}

func TestParseDraft_ExplicitContentDiscardsOtherLines(t *testing.T) {
	t.Parallel()

	d := ParseDraft("stray line before\nContent: just this\nstray line after")
	assert.Equal(t, "just this", d.Content)
	assert.Equal(t, "just this", d.Title, "title derives from the explicit content")
}

func TestParseDraft_NoContentLineJoinsPlainLines(t *testing.T) {
	t.Parallel()

	d := ParseDraft("Title: Plan\nfirst line\nsecond line")
	assert.Equal(t, "Plan", d.Title)
	assert.Equal(t, "first line\nsecond line", d.Content)
	assert.Equal(t, DefaultCategory, d.Category)
}

func TestParseDraft_OnlyPrefixLinesFallBackToRawText(t *testing.T) {
	t.Parallel()

	raw := "Title: Orphan"
	d := ParseDraft(raw)
	// No plain lines and no Content: line, so the whole raw text is kept.
	assert.Equal(t, raw, d.Content)
	assert.Equal(t, "Orphan", d.Title)
}

func TestParseDraft_EmptyCategoryValueKeepsDefault(t *testing.T) {
	t.Parallel()

	d := ParseDraft("Category:\nsome body")
	assert.Equal(t, DefaultCategory, d.Category)
	assert.Equal(t, "some body", d.Content)
}

func TestDeriveTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PlaceholderTitle, DeriveTitle(""))
	assert.Equal(t, "short", DeriveTitle("short"))

	long := strings.Repeat("x", TitleMaxRunes+10)
	got := DeriveTitle(long)
	assert.Equal(t, strings.Repeat("x", TitleMaxRunes)+"...", got)

	// Rune-aware truncation, not byte slicing.
	unicodeLong := strings.Repeat("é", TitleMaxRunes+1)
	assert.Equal(t, strings.Repeat("é", TitleMaxRunes)+"...", DeriveTitle(unicodeLong))

	exact := strings.Repeat("y", TitleMaxRunes)
	assert.Equal(t, exact, DeriveTitle(exact), "exactly at the bound is not truncated")
}

func TestQuickDraft(t *testing.T) {
	t.Parallel()

	d := QuickDraft("remember the milk")
	assert.Equal(t, QuickCategory, d.Category)
	assert.Equal(t, "remember the milk", d.Content)
	assert.Equal(t, "remember the milk", d.Title)
}

func TestPreview(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", Preview("abc", 5))
	assert.Equal(t, "ab...", Preview("abcdef", 2))
	assert.Equal(t, "abcdef", Preview("abcdef", 0), "non-positive bound disables truncation")
}
