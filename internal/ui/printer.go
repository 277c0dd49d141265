// Package ui renders the CLI's terminal output and reads the user's
// selection.
package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/litescript/torrent-cli/internal/apperr"
	"github.com/litescript/torrent-cli/internal/search"
	"github.com/litescript/torrent-cli/internal/theme"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 100

// Column layout of the results table. The name column takes whatever the
// terminal leaves after reservedWidth.
const (
	reservedWidth = 35
	indexWidth    = 4
	sizeWidth     = 10
	countWidth    = 8
	healthWidth   = 5
	minNameWidth  = 10
)

// Printer writes styled output to a writer.
type Printer struct {
	out      io.Writer
	renderer *lipgloss.Renderer
	styles   theme.Styles
	palette  theme.Palette
	width    int
	terminal bool
}

// Option configures a Printer.
type Option func(*Printer)

// WithWidth fixes the output width instead of querying the terminal.
func WithWidth(n int) Option {
	return func(p *Printer) {
		p.width = n
	}
}

// WithRenderer overrides the lipgloss renderer bound to the output.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(p *Printer) {
		p.renderer = r
	}
}

// WithTerminal forces terminal behaviour (progress redraws) on or off.
func WithTerminal(on bool) Option {
	return func(p *Printer) {
		p.terminal = on
	}
}

// NewPrinter creates a Printer for out. Colours and width are taken from the
// terminal when out is one.
func NewPrinter(out io.Writer, palette theme.Palette, opts ...Option) *Printer {
	p := &Printer{out: out, palette: palette, width: DefaultWidth}

	if fd, ok := terminalFd(out); ok {
		p.terminal = true
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			p.width = w
		}
	}

	for _, opt := range opts {
		opt(p)
	}
	if p.renderer == nil {
		p.renderer = lipgloss.NewRenderer(out)
	}
	p.styles = theme.NewStyles(p.renderer, palette)

	return p
}

func terminalFd(w io.Writer) (int, bool) {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Styles returns the styles bound to this printer's renderer.
func (p *Printer) Styles() theme.Styles {
	return p.styles
}

// Terminal reports whether the output is an interactive terminal.
func (p *Printer) Terminal() bool {
	return p.terminal
}

// Banner prints the application banner.
func (p *Printer) Banner() {
	fmt.Fprintln(p.out, p.styles.Banner.Render("1337x Torrent Search CLI"))
}

// Info prints an informational line.
func (p *Printer) Info(format string, args ...any) {
	p.line(p.styles.Info, "ℹ", format, args...)
}

// Success prints a success line.
func (p *Printer) Success(format string, args ...any) {
	p.line(p.styles.Success, "✔", format, args...)
}

// Warning prints a warning line.
func (p *Printer) Warning(format string, args ...any) {
	p.line(p.styles.Warning, "⚠", format, args...)
}

// Error prints an error line.
func (p *Printer) Error(format string, args ...any) {
	p.line(p.styles.Error, "✘", format, args...)
}

func (p *Printer) line(style lipgloss.Style, glyph, format string, args ...any) {
	fmt.Fprintln(p.out, style.Render(glyph+" "+fmt.Sprintf(format, args...)))
}

// NameWidth is the width of the name column for the current output width.
func (p *Printer) NameWidth() int {
	return max(p.width-reservedWidth-healthWidth-1, minNameWidth)
}

// Results prints results as a numbered table. An empty slice prints a warning.
func (p *Printer) Results(results []search.Result) {
	if len(results) == 0 {
		p.Warning("No torrents found for the given query.")
		return
	}

	nameWidth := p.NameWidth()
	cols := func(idx, name, size, seeders, leechers string) string {
		return strings.Join([]string{
			PadRight(idx, indexWidth),
			PadRight(name, nameWidth),
			PadRight(size, sizeWidth),
			PadRight(seeders, countWidth),
			PadRight(leechers, countWidth),
		}, " ")
	}

	header := cols("#", "Name", "Size", "↑", "↓") + " Health"
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.styles.TableHeader.Render(header))
	fmt.Fprintln(p.out, p.styles.Info.Render(strings.Repeat("-", runewidth.StringWidth(header))))

	for i, r := range results {
		row := strings.Join([]string{
			p.styles.Accent.Render(PadRight(strconv.Itoa(i+1), indexWidth)),
			p.styles.Text.Render(PadRight(r.Name, nameWidth)),
			p.styles.Text.Render(PadRight(r.Size, sizeWidth)),
			p.styles.HealthGood.Render(PadRight(humanize.Comma(int64(r.Seeders)), countWidth)),
			p.styles.HealthBad.Render(PadRight(humanize.Comma(int64(r.Leechers)), countWidth)),
			HealthBar(p.styles, r.Health(), healthWidth),
		}, " ")
		fmt.Fprintln(p.out, row)
	}
	fmt.Fprintln(p.out)
}

// DownloadStatus reports a written torrent file of size bytes.
func (p *Printer) DownloadStatus(path string, size int64) {
	p.Success("Download completed successfully!")

	display := TruncateLeft(path, max(p.width-10, 20))
	fmt.Fprintln(p.out, p.styles.Info.Render("📁 "+display)+
		p.styles.Muted.Render(" ("+humanize.Bytes(uint64(max(size, 0)))+")"))
}

// Report prints err as "[Kind] message" followed by its hint, if any.
func (p *Printer) Report(err error) {
	p.Error("[%s] %s", apperr.Kind(err), err)
	if hint := apperr.Hint(err); hint != "" {
		fmt.Fprintln(p.out, p.styles.Muted.Render("  "+hint))
	}
}

// Cancelled prints the interrupt notice.
func (p *Printer) Cancelled() {
	fmt.Fprintln(p.out)
	p.Warning("Operation cancelled by user")
}

// Progress returns a callback that redraws a progress bar labelled label on
// each call. It returns nil when the output is not a terminal.
func (p *Printer) Progress(label string) search.ProgressFunc {
	if !p.terminal {
		return nil
	}

	bar := progress.New(
		progress.WithSolidFill(p.palette.Accent),
		progress.WithWidth(min(40, p.width/3)),
		progress.WithColorProfile(p.renderer.ColorProfile()),
	)

	return func(done, total int) {
		if total <= 0 {
			return
		}
		fmt.Fprintf(p.out, "\r%s %s", p.styles.Muted.Render(label), bar.ViewAs(float64(done)/float64(total)))
		if done >= total {
			fmt.Fprintln(p.out)
		}
	}
}
