package ui

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/litescript/torrent-cli/internal/apperr"
	"github.com/litescript/torrent-cli/internal/search"
	"github.com/litescript/torrent-cli/internal/theme"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r
}

func newTestPrinter(opts ...Option) (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	opts = append([]Option{WithRenderer(plainRenderer())}, opts...)
	return NewPrinter(&buf, theme.DefaultPalette(), opts...), &buf
}

func TestPrinter_NotATerminal(t *testing.T) {
	p, _ := newTestPrinter()
	assert.False(t, p.Terminal())
	assert.Equal(t, DefaultWidth-reservedWidth-healthWidth-1, p.NameWidth())
	assert.Nil(t, p.Progress("Fetching"))
}

func TestPrinter_Lines(t *testing.T) {
	p, buf := newTestPrinter()

	p.Info("Searching for %s...", "torrents")
	p.Success("done")
	p.Warning("careful")
	p.Error("broken")

	assert.Equal(t, "ℹ Searching for torrents...\n✔ done\n⚠ careful\n✘ broken\n", buf.String())
}

func TestPrinter_Banner(t *testing.T) {
	p, buf := newTestPrinter()
	p.Banner()
	assert.Contains(t, buf.String(), "1337x Torrent Search CLI")
}

func TestPrinter_Results(t *testing.T) {
	p, buf := newTestPrinter(WithWidth(80))

	long := strings.Repeat("Very Long Torrent Name ", 10)
	p.Results([]search.Result{
		{Name: "Ubuntu 22.04", Size: "3.4 GB", Seeders: 12045, Leechers: 87, Link: "l1"},
		{Name: long, Size: "700 MB", Seeders: 0, Leechers: 3, Link: "l2"},
	})

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[0], " Health"))
	assert.Equal(t, strings.Repeat("-", runewidth.StringWidth(lines[0])), lines[1])

	assert.Contains(t, out, "Ubuntu 22.04")
	assert.Contains(t, out, "12,045")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, long)

	for _, l := range lines {
		assert.LessOrEqual(t, runewidth.StringWidth(l), 80, l)
	}
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "2 "))
}

func TestPrinter_ResultsEmpty(t *testing.T) {
	p, buf := newTestPrinter()
	p.Results(nil)
	assert.Equal(t, "⚠ No torrents found for the given query.\n", buf.String())
}

func TestPrinter_DownloadStatus(t *testing.T) {
	p, buf := newTestPrinter(WithWidth(40))

	path := "/home/someone/projects/torrents/downloads/Ubuntu_22.04.torrent"
	p.DownloadStatus(path, 2048)

	out := buf.String()
	assert.Contains(t, out, "✔ Download completed successfully!")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "Ubuntu_22.04.torrent")
	assert.Contains(t, out, "(2.0 kB)")
	assert.NotContains(t, out, path)
}

func TestPrinter_Report(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "validation",
			err:  apperr.Invalid("query", "Search query must be at least 3 characters"),
			want: []string{
				"✘ [Validation Error] Search query must be at least 3 characters",
				"Validation error: Search query must be at least 3 characters",
			},
		},
		{
			name: "connection",
			err:  &apperr.ConnectionError{Mirrors: []string{"1337x.to"}, Err: errors.New("timeout")},
			want: []string{"[Connection Error] no reachable endpoint", "check your internet connection"},
		},
		{
			name: "api",
			err:  &apperr.APIError{Op: "search torrents", Err: errors.New("HTTP 502")},
			want: []string{"[API Error] failed to search torrents: HTTP 502", "Please try again."},
		},
		{
			name: "plain",
			err:  errors.New("boom"),
			want: []string{"✘ [Error] boom\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, buf := newTestPrinter()
			p.Report(tt.err)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestPrinter_Progress(t *testing.T) {
	p, buf := newTestPrinter(WithTerminal(true))

	fn := p.Progress("Fetching details")
	require.NotNil(t, fn)

	fn(1, 2)
	fn(2, 2)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "\rFetching details"))
	assert.Contains(t, out, "50%")
	assert.True(t, strings.HasSuffix(out, "100%\n"))
}

func TestPrinter_Cancelled(t *testing.T) {
	p, buf := newTestPrinter()
	p.Cancelled()
	assert.Equal(t, "\n⚠ Operation cancelled by user\n", buf.String())
}
