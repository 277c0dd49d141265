// Torrent CLI searches 1337x-style torrent indexes from the terminal and
// saves a torrent file for the result you pick.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/litescript/torrent-cli/internal/cli"
	"github.com/litescript/torrent-cli/internal/config"
	"github.com/litescript/torrent-cli/internal/leetx"
	"github.com/litescript/torrent-cli/internal/logctx"
	"github.com/litescript/torrent-cli/internal/search"
	"github.com/litescript/torrent-cli/internal/storage"
	"github.com/litescript/torrent-cli/internal/storage/sqlite"
	"github.com/litescript/torrent-cli/internal/theme"
	"github.com/litescript/torrent-cli/internal/transport"
	"github.com/litescript/torrent-cli/internal/ui"
	"golang.org/x/term"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, cfgPath, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	// =========================================================================
	// Start Logger
	logger, closeLog := newLogger(cfg.Log, os.Stderr)
	defer closeLog()
	ctx = logctx.WithLogger(ctx, logger)

	logger.Debug("torrent-cli starting", "config", cfgPath, "args", os.Args[1:])

	// =========================================================================
	// Start Response Cache
	store, closeCache := openCache(ctx, cfg)
	defer closeCache()

	// =========================================================================
	// Start HTTP Client
	client := transport.NewClient(ctx, transport.Options{
		Timeout:       cfg.Timeout(),
		RatePerSecond: cfg.Search.RatePerSecond,
		Store:         store,
		TTL:           cfg.CacheTTL(),
	})

	printer := ui.NewPrinter(os.Stdout, theme.Detect())

	app := &cli.App{
		Config:     cfg,
		ConfigPath: cfgPath,
		Printer:    printer,
		Prompter:   newPrompter(printer),
		Dial: func(mirror string) (search.Provider, error) {
			c, err := leetx.New(mirror, client)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		HTTP: &http.Client{Timeout: 5 * time.Second},
	}

	return app.Run(ctx, os.Args[1:])
}

// newLogger writes JSON logs to the configured file, or to fallback when it
// cannot be opened.
func newLogger(cfg config.LogConfig, fallback io.Writer) (*slog.Logger, func()) {
	var (
		w       = fallback
		closeFn = func() {}
	)

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err == nil {
			if f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
				w = f
				closeFn = func() { f.Close() }
			}
		}
	}

	opts := &slog.HandlerOptions{Level: logctx.ParseLevel(cfg.Level)}
	return slog.New(slog.NewJSONHandler(w, opts)), closeFn
}

// openCache opens the response cache and drops entries older than the same
// TTL the transport serves them for. A nil store disables caching.
func openCache(ctx context.Context, cfg config.Config) (storage.ResponseStore, func()) {
	if !cfg.Cache.Enabled {
		return nil, func() {}
	}

	logger := logctx.LoggerFromContext(ctx)

	db, err := sqlite.InitDB(cfg.Cache.Path)
	if err != nil {
		logger.Warn("response cache disabled", "path", cfg.Cache.Path, "err", err)
		return nil, func() {}
	}

	repo := sqlite.NewResponseRepository(db)
	if n, err := repo.Prune(time.Now().Add(-cfg.CacheTTL())); err != nil {
		logger.Warn("failed to prune response cache", "err", err)
	} else if n > 0 {
		logger.Debug("pruned response cache", "removed", n)
	}

	return repo, func() { db.Close() }
}

// newPrompter uses the interactive text input when both ends are a terminal.
func newPrompter(p *ui.Printer) ui.Prompter {
	if p.Terminal() && term.IsTerminal(int(os.Stdin.Fd())) {
		return ui.TextInputPrompter{In: os.Stdin, Out: os.Stdout}
	}
	return ui.LinePrompter{In: os.Stdin, Out: os.Stdout}
}
