package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/litescript/torrent-cli/internal/apperr"
)

// SelectionPrompt is shown after a results table.
const SelectionPrompt = "Enter the number of the torrent to download (or 'q' to quit): "

// Prompter reads one line of input from the user. Implementations return
// apperr.ErrInterrupted when the user cancels or ctx is done.
type Prompter interface {
	Prompt(ctx context.Context, label string) (string, error)
}

// LinePrompter reads a line from In, for piped or non-interactive input.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer
}

// Prompt implements Prompter.
func (p LinePrompter) Prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(p.Out, label)

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", apperr.ErrInterrupted
	case r := <-ch:
		if r.err != nil && (!errors.Is(r.err, io.EOF) || r.line == "") {
			return "", fmt.Errorf("read input: %w", r.err)
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	}
}

// TextInputPrompter reads a line with a bubbletea text input.
type TextInputPrompter struct {
	In  io.Reader
	Out io.Writer
}

// Prompt implements Prompter.
func (p TextInputPrompter) Prompt(ctx context.Context, label string) (string, error) {
	prog := tea.NewProgram(newPromptModel(label),
		tea.WithContext(ctx),
		tea.WithInput(p.In),
		tea.WithOutput(p.Out),
	)

	final, err := prog.Run()
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, tea.ErrProgramKilled) {
			return "", apperr.ErrInterrupted
		}
		return "", err
	}

	m := final.(promptModel)
	if m.cancelled {
		return "", apperr.ErrInterrupted
	}
	return m.value, nil
}

type promptModel struct {
	input     textinput.Model
	value     string
	done      bool
	cancelled bool
}

func newPromptModel(label string) promptModel {
	ti := textinput.New()
	ti.Prompt = label
	ti.CharLimit = 16
	ti.Focus()
	return promptModel{input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			m.value = strings.TrimSpace(m.input.Value())
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || m.cancelled {
		return m.input.Prompt + m.value + "\n"
	}
	return m.input.View() + "\n"
}
