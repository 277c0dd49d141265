package ui

import (
	"testing"

	"github.com/litescript/torrent-cli/internal/theme"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is far too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
		{"abcdef", 0, ""},
		{"日本語のタイトル", 9, "日本語..."},
	}

	for _, tt := range tests {
		got := TruncateString(tt.in, tt.width)
		assert.Equal(t, tt.want, got, tt.in)
		assert.LessOrEqual(t, runewidth.StringWidth(got), max(tt.width, 0))
	}
}

func TestTruncateLeft(t *testing.T) {
	assert.Equal(t, "/tmp/x", TruncateLeft("/tmp/x", 10))
	assert.Equal(t, "...s/file.torrent", TruncateLeft("/home/user/downloads/file.torrent", 17))
	assert.Equal(t, "", TruncateLeft("/home/user", 2))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "abc   ", PadRight("abc", 6))
	assert.Equal(t, "abc...", PadRight("abcdefghij", 6))
}

func TestHealthBar(t *testing.T) {
	s := theme.NewStyles(plainRenderer(), theme.DefaultPalette())

	assert.Equal(t, "█████", HealthBar(s, 100, 5))
	assert.Equal(t, "██░░░", HealthBar(s, 50, 5))
	assert.Equal(t, "░░░░░", HealthBar(s, 0, 5))
	assert.Equal(t, "█████", HealthBar(s, 250, 5))
}
