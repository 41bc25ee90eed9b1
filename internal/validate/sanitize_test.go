package validate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	assert.Equal(t, "hello", CleanString("  hello  ", MaxName))
	assert.Equal(t, "scriptalert(1)/script", CleanString("<script>alert(1)</script>", MaxMessage))
	assert.Equal(t, "ab", CleanString("a\x00b", MaxName))
	assert.Equal(t, strings.Repeat("x", 10), CleanString(strings.Repeat("x", 50), 10))
	assert.Equal(t, "", CleanString("   ", MaxName))
}

func TestCleanStringTruncatesOnRuneBoundary(t *testing.T) {
	// "Renée" is 6 bytes; a 4-byte cap falls inside the two-byte é,
	// which must be dropped whole rather than split.
	got := CleanString("Renée", 4)
	assert.Equal(t, "Ren", got)
	assert.True(t, utf8.ValidString(got))

	got = CleanString(strings.Repeat("ü", 20), 7)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 7)
	assert.Equal(t, strings.Repeat("ü", 3), got)
}

func TestCleanStringIdempotent(t *testing.T) {
	inputs := []string{"  <b>Bob</b> ", "plain", "trailing \x00", strings.Repeat("y", 300)}
	for _, in := range inputs {
		once := CleanString(in, MaxGeneric)
		assert.Equal(t, once, CleanString(once, MaxGeneric))
		assert.LessOrEqual(t, len(once), len(in))
	}
}

func TestCleanEmail(t *testing.T) {
	assert.Equal(t, "bob@example.com", CleanEmail("  Bob@Example.COM "))
	assert.Equal(t, "", CleanEmail("not-an-email"))
	assert.Equal(t, "", CleanEmail("a@b"))
	assert.Equal(t, "", CleanEmail("two words@example.com"))
	assert.Equal(t, "", CleanEmail(""))
}

func TestCleanPhone(t *testing.T) {
	assert.Equal(t, "+49 170 1234567", CleanPhone(" +49 170 1234567 "))
	assert.Equal(t, "(030) 123-456", CleanPhone("(030) 123-456"))
	assert.Equal(t, "", CleanPhone("1234567"))          // too short
	assert.Equal(t, "", CleanPhone("call me maybe"))    // letters
	assert.Equal(t, "", CleanPhone("+49;170;1234567"))  // bad separator
}

func TestCleanURL(t *testing.T) {
	assert.Equal(t, "https://example.com/photo.jpg", CleanURL("https://example.com/photo.jpg"))
	assert.Equal(t, "http://example.com", CleanURL(" http://example.com "))
	assert.Equal(t, "", CleanURL("ftp://example.com/x"))
	assert.Equal(t, "", CleanURL("javascript:alert(1)"))
	assert.Equal(t, "", CleanURL("/relative/path"))
	assert.Equal(t, "", CleanURL(""))
}
