package ui

import (
	"strings"

	"github.com/litescript/torrent-cli/internal/theme"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// HealthBar renders a visual health indicator
func HealthBar(s theme.Styles, health, width int) string {
	filled := min(max(health*width/100, 0), width)

	style := s.HealthBad
	switch {
	case health >= 70:
		style = s.HealthGood
	case health >= 40:
		style = s.HealthMed
	}

	return style.Render(strings.Repeat("█", filled)) +
		s.Muted.Render(strings.Repeat("░", width-filled))
}

// TruncateString cuts s to width display columns, ending with "..." when cut.
func TruncateString(s string, width int) string {
	if width <= len(ellipsis) {
		return runewidth.Truncate(s, max(width, 0), "")
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// TruncateLeft keeps the end of s, prefixing "..." when it had to cut.
func TruncateLeft(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= len(ellipsis) {
		return ""
	}

	rs := []rune(s)
	w, i := 0, len(rs)
	for i > 0 {
		rw := runewidth.RuneWidth(rs[i-1])
		if w+rw > width-len(ellipsis) {
			break
		}
		w += rw
		i--
	}
	return ellipsis + string(rs[i:])
}

// PadRight pads s with spaces to width display columns, truncating if longer.
func PadRight(s string, width int) string {
	return runewidth.FillRight(TruncateString(s, width), width)
}
