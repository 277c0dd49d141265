// Package cli implements the torrent-cli command line: argument parsing,
// dispatch to the search and download components, and the single point where
// errors are reported and mapped to exit codes.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/litescript/torrent-cli/internal/apperr"
	"github.com/litescript/torrent-cli/internal/config"
	"github.com/litescript/torrent-cli/internal/download"
	"github.com/litescript/torrent-cli/internal/logctx"
	"github.com/litescript/torrent-cli/internal/search"
	"github.com/litescript/torrent-cli/internal/ui"
	"github.com/litescript/torrent-cli/internal/version"
)

// errUsage marks argument errors that were already printed with usage.
var errUsage = errors.New("usage error")

// App wires the CLI to its collaborators. The search client and download
// manager are created on first use, so commands that do not need them never
// touch the network or the download directory.
type App struct {
	Config     config.Config
	ConfigPath string

	Printer  *ui.Printer
	Prompter ui.Prompter
	Dial     search.Dialer

	// HTTP and UpdateURL serve `version --check`.
	HTTP      *http.Client
	UpdateURL string

	client *search.Client
}

// Run executes args (without the program name) and returns the exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	err := a.dispatch(ctx, args)
	if err != nil && !errors.Is(err, apperr.ErrQuit) && errors.Is(ctx.Err(), context.Canceled) {
		err = apperr.ErrInterrupted
	}
	return a.finish(ctx, err)
}

func (a *App) finish(ctx context.Context, err error) int {
	logger := logctx.LoggerFromContext(ctx)

	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrQuit):
		logger.Debug("user quit at prompt")
	case errors.Is(err, apperr.ErrInterrupted):
		a.Printer.Cancelled()
		logger.Warn("operation cancelled by user")
	case errors.Is(err, errUsage):
		logger.Debug("invalid arguments", "err", err)
	default:
		a.Printer.Report(err)
		logger.Error("command failed", "error_type", apperr.Kind(err), "err", err)
	}

	return apperr.ExitCode(err)
}

func (a *App) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return errUsage
	}

	name, rest := args[0], args[1:]
	logctx.LoggerFromContext(ctx).Debug("running command", "command", name, "args", rest)

	switch name {
	case "search":
		return a.runSearch(ctx, rest)
	case "download":
		return a.runDownload(ctx, rest)
	case "trending":
		return a.runTrending(ctx, rest)
	case "popular":
		return a.runPopular(ctx, rest)
	case "top":
		return a.runTop(ctx, rest)
	case "version":
		return a.runVersion(ctx, rest)
	case "config":
		return a.runConfig(rest)
	case "-v", "--version":
		a.printVersion()
		return nil
	case "-h", "--help", "help":
		a.usage()
		return nil
	default:
		a.Printer.Error("unknown command %q", name)
		a.usage()
		return errUsage
	}
}

// parse runs cmd's parser, turning -h into a clean exit and flag errors
// into errUsage.
func parse(cmd *command, args []string) ([]string, error) {
	pos, err := cmd.parse(args)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return nil, apperr.ErrQuit
	case err != nil:
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return pos, nil
}

// searchClient returns the search client, connecting on first use.
func (a *App) searchClient(ctx context.Context) (*search.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	c, err := search.New(ctx, a.Config.Search.Mirrors, a.Dial,
		search.WithProgress(a.Printer.Progress("Fetching torrent details")))
	if err != nil {
		return nil, err
	}

	logctx.LoggerFromContext(ctx).Info("using mirror", "mirror", c.Mirror(), "base_url", c.BaseURL())
	a.client = c
	return c, nil
}

func (a *App) manager(dir string) (*download.Manager, error) {
	if dir == "" {
		dir = a.Config.Downloads.Path
	}
	return download.New(dir)
}

func (a *App) printVersion() {
	fmt.Fprintf(a.Printer.Writer(), "torrent-cli v%s\n", version.Version)
}

func (a *App) usage() {
	w := a.Printer.Writer()
	io.WriteString(w, strings.TrimLeft(usageText, "\n"))
	fmt.Fprintf(w, "\nDefault limit: %d. Config file: %s\n", a.Config.Search.Limit, a.ConfigPath)
}

const usageText = `
A command-line interface for searching and downloading torrents.

Usage:
  torrent-cli <command> [arguments] [flags]

Commands:
  search <query>       Search for torrents
  download <link>      Save a torrent file for a magnet link, detail URL or torrent id
  trending             Show trending torrents
  popular <category>   Show popular torrents in a category
  top                  Show top 100 torrents
  version              Print the version (--check looks for updates)
  config               Print the effective configuration (--init writes it)

Flags are accepted before or after arguments. Run 'torrent-cli <command> -h'
for the flags of a command.

Categories: movies, tv, games, music, apps, anime, documentaries, xxx, others
Sort fields: time, size, seeders, leechers   Orders: desc (default), asc

Note: downloaded .torrent files are placeholders that record the magnet link;
open the magnet link in a torrent client to fetch the content.

Examples:
  torrent-cli search "ubuntu 22.04"
  torrent-cli search --limit 5 "python programming"
  torrent-cli search --category movies inception -s seeders
  torrent-cli download "https://1337x.to/torrent/123456/ubuntu/"
  torrent-cli download --name custom-name "magnet:?xt=urn:btih:..."
  torrent-cli trending --category movies --limit 5
  torrent-cli popular movies --week
  torrent-cli top -c games
`
