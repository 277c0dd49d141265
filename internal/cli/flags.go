package cli

import (
	"flag"
	"io"
	"slices"
)

// command is one subcommand's flag set and the positionals it expects.
type command struct {
	fs    *flag.FlagSet
	usage string // positional synopsis, e.g. "<query>"
}

func newCommand(name, usage string, out io.Writer) *command {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	c := &command{fs: fs, usage: usage}
	fs.Usage = func() {
		w := fs.Output()
		io.WriteString(w, "Usage: torrent-cli "+name)
		if usage != "" {
			io.WriteString(w, " "+usage)
		}
		io.WriteString(w, " [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	return c
}

// stringVar registers a string flag under a long and a short name.
func (c *command) stringVar(p *string, long, short, value, usage string) {
	c.fs.StringVar(p, long, value, usage)
	if short != "" {
		c.fs.StringVar(p, short, value, "shorthand for --"+long)
	}
}

func (c *command) intVar(p *int, long, short string, value int, usage string) {
	c.fs.IntVar(p, long, value, usage)
	if short != "" {
		c.fs.IntVar(p, short, value, "shorthand for --"+long)
	}
}

func (c *command) boolVar(p *bool, long, short, usage string) {
	c.fs.BoolVar(p, long, false, usage)
	if short != "" {
		c.fs.BoolVar(p, short, false, "shorthand for --"+long)
	}
}

// parse parses args allowing flags before, between and after positionals,
// and returns the positionals. Everything after "--" is positional.
func (c *command) parse(args []string) ([]string, error) {
	var rest []string
	if i := slices.Index(args, "--"); i >= 0 {
		args, rest = args[:i], args[i+1:]
	}

	var positionals []string
	for {
		if err := c.fs.Parse(args); err != nil {
			return nil, err
		}
		if c.fs.NArg() == 0 {
			break
		}
		positionals = append(positionals, c.fs.Arg(0))
		args = c.fs.Args()[1:]
	}

	return append(positionals, rest...), nil
}
