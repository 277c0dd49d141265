package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/litescript/torrent-cli/internal/apperr"
	"github.com/litescript/torrent-cli/internal/config"
	"github.com/litescript/torrent-cli/internal/leetx"
	"github.com/litescript/torrent-cli/internal/logctx"
	"github.com/litescript/torrent-cli/internal/search"
	"github.com/litescript/torrent-cli/internal/ui"
	"github.com/litescript/torrent-cli/internal/validate"
	"github.com/litescript/torrent-cli/internal/version"
)

func (a *App) runSearch(ctx context.Context, args []string) error {
	var (
		limit                   int
		category, sortBy, order string
	)
	cmd := newCommand("search", "<query>", a.Printer.Writer())
	cmd.intVar(&limit, "limit", "l", a.Config.Search.Limit, "maximum number of results")
	cmd.stringVar(&category, "category", "c", "", "filter by category")
	cmd.stringVar(&sortBy, "sort-by", "s", "", "sort results by field (time, size, seeders, leechers)")
	cmd.stringVar(&order, "order", "o", "desc", "sort order (desc, asc)")

	pos, err := parse(cmd, args)
	if err != nil {
		return err
	}
	if len(pos) == 0 {
		return apperr.Invalid("query", "Search query must be a non-empty string")
	}

	query, err := validate.Query(strings.Join(pos, " "))
	if err != nil {
		return err
	}
	if err := checkLimit(limit); err != nil {
		return err
	}
	if err := checkOptional(category, validate.Category); err != nil {
		return err
	}
	if err := checkOptional(sortBy, validate.SortField); err != nil {
		return err
	}
	if err := validate.Order(order); err != nil {
		return err
	}

	a.Printer.Banner()
	a.Printer.Info("Searching for torrents...")

	client, err := a.searchClient(ctx)
	if err != nil {
		return err
	}

	results, err := client.Search(ctx, query, limit, leetx.SearchOptions{Category: category, SortBy: sortBy, Order: order})
	if err != nil {
		return err
	}
	return a.present(ctx, client, results)
}

func (a *App) runTrending(ctx context.Context, args []string) error {
	var (
		limit    int
		category string
		week     bool
	)
	cmd := newCommand("trending", "", a.Printer.Writer())
	cmd.stringVar(&category, "category", "c", "", "filter by category")
	cmd.intVar(&limit, "limit", "l", a.Config.Search.Limit, "maximum number of results")
	cmd.boolVar(&week, "week", "w", "show weekly instead of daily trending")

	if err := parseNoArgs(cmd, args); err != nil {
		return err
	}
	if err := checkLimit(limit); err != nil {
		return err
	}
	if err := checkOptional(category, validate.Category); err != nil {
		return err
	}

	return a.listing(ctx, fmt.Sprintf("Getting %s trending torrents...", period(week)), limit,
		func(c *search.Client) ([]search.Result, error) {
			return c.Trending(ctx, category, week)
		})
}

func (a *App) runPopular(ctx context.Context, args []string) error {
	var (
		limit int
		week  bool
	)
	cmd := newCommand("popular", "<category>", a.Printer.Writer())
	cmd.intVar(&limit, "limit", "l", a.Config.Search.Limit, "maximum number of results")
	cmd.boolVar(&week, "week", "w", "show weekly instead of daily popular")

	pos, err := parse(cmd, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return apperr.Invalid("category", "popular requires exactly one category")
	}
	category := pos[0]
	if err := validate.Category(category); err != nil {
		return err
	}
	if err := checkLimit(limit); err != nil {
		return err
	}

	return a.listing(ctx, fmt.Sprintf("Getting %s popular %s torrents...", period(week), category), limit,
		func(c *search.Client) ([]search.Result, error) {
			return c.Popular(ctx, category, week)
		})
}

func (a *App) runTop(ctx context.Context, args []string) error {
	var (
		limit    int
		category string
	)
	cmd := newCommand("top", "", a.Printer.Writer())
	cmd.stringVar(&category, "category", "c", "", "filter by category")
	cmd.intVar(&limit, "limit", "l", a.Config.Search.Limit, "maximum number of results")

	if err := parseNoArgs(cmd, args); err != nil {
		return err
	}
	if err := checkLimit(limit); err != nil {
		return err
	}
	if err := checkOptional(category, validate.Category); err != nil {
		return err
	}

	msg := "Getting top torrents..."
	if category != "" {
		msg = fmt.Sprintf("Getting top %s torrents...", category)
	}
	return a.listing(ctx, msg, limit, func(c *search.Client) ([]search.Result, error) {
		return c.Top(ctx, category)
	})
}

// listing runs a listing command: banner, status line, fetch, truncate to
// limit, then the results table and selection prompt.
func (a *App) listing(ctx context.Context, status string, limit int, fetch func(*search.Client) ([]search.Result, error)) error {
	a.Printer.Banner()
	a.Printer.Info("%s", status)

	client, err := a.searchClient(ctx)
	if err != nil {
		return err
	}

	results, err := fetch(client)
	if err != nil {
		return err
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return a.present(ctx, client, results)
}

// present prints results and, when there are any, lets the user pick one to
// download.
func (a *App) present(ctx context.Context, client *search.Client, results []search.Result) error {
	a.Printer.Results(results)
	if len(results) == 0 {
		return nil
	}

	input, err := a.Prompter.Prompt(ctx, ui.SelectionPrompt)
	if err != nil {
		return err
	}
	if strings.EqualFold(strings.TrimSpace(input), "q") {
		return apperr.ErrQuit
	}

	idx, err := validate.Selection(input, len(results))
	if err != nil {
		return err
	}
	selected := results[idx]
	logctx.LoggerFromContext(ctx).Info("selected torrent", "name", selected.Name, "link", selected.Link)

	a.Printer.Info("Getting magnet link...")
	magnet := selected.Magnet
	if magnet == "" {
		if magnet, err = client.Magnet(ctx, selected.Link); err != nil {
			return err
		}
	}

	return a.save(magnet, selected.Name, "")
}

func (a *App) runDownload(ctx context.Context, args []string) error {
	var name, dir string
	cmd := newCommand("download", "<link>", a.Printer.Writer())
	cmd.stringVar(&name, "name", "n", "", "custom name for the torrent file")
	cmd.stringVar(&dir, "dir", "d", "", "custom download directory")

	pos, err := parse(cmd, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 || strings.TrimSpace(pos[0]) == "" {
		return apperr.Invalid("link", "download requires exactly one magnet link, torrent URL or id")
	}
	link := strings.TrimSpace(pos[0])

	if strings.HasPrefix(link, "magnet:") {
		if name == "" {
			name = leetx.MagnetName(link)
		}
		return a.save(link, name, dir)
	}

	client, err := a.searchClient(ctx)
	if err != nil {
		return err
	}

	a.Printer.Info("Getting magnet link...")
	magnet, err := client.Magnet(ctx, link)
	if err != nil {
		return err
	}

	if name == "" {
		a.Printer.Info("Getting torrent information...")
		info, err := client.Info(ctx, link)
		if err != nil {
			return err
		}
		name = info.Name
	}

	return a.save(magnet, name, dir)
}

// save writes the torrent file and reports where it went.
func (a *App) save(magnet, name, dir string) error {
	mgr, err := a.manager(dir)
	if err != nil {
		return err
	}

	a.Printer.Info("Starting download...")
	path, err := mgr.Download(magnet, name)
	if err != nil {
		return err
	}

	var size int64
	if fi, err := os.Stat(path); err == nil {
		size = fi.Size()
	}
	a.Printer.DownloadStatus(path, size)
	return nil
}

func (a *App) runVersion(ctx context.Context, args []string) error {
	var check bool
	cmd := newCommand("version", "", a.Printer.Writer())
	cmd.boolVar(&check, "check", "", "check GitHub for a newer release")

	if err := parseNoArgs(cmd, args); err != nil {
		return err
	}

	a.printVersion()
	if !check {
		return nil
	}

	info, err := version.CheckForUpdate(ctx, a.HTTP, a.UpdateURL)
	if err != nil {
		return &apperr.APIError{Op: "check for updates", Err: err}
	}
	if info.UpdateAvailable {
		a.Printer.Warning("Update available: v%s (you have v%s)", info.LatestVersion, info.CurrentVersion)
		a.Printer.Info("Run: %s", version.InstallCommand())
	} else {
		a.Printer.Success("You are running the latest version")
	}
	return nil
}

func (a *App) runConfig(args []string) error {
	var initFile bool
	cmd := newCommand("config", "", a.Printer.Writer())
	cmd.boolVar(&initFile, "init", "", "write the default configuration if no file exists")

	if err := parseNoArgs(cmd, args); err != nil {
		return err
	}

	if initFile {
		if _, err := os.Stat(a.ConfigPath); err == nil {
			a.Printer.Warning("Config file already exists: %s", a.ConfigPath)
			return nil
		}
		if err := config.Save(a.ConfigPath, config.Default()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		a.Printer.Success("Wrote %s", a.ConfigPath)
		return nil
	}

	data, err := config.Encode(a.Config)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Printer.Writer(), "# %s\n%s", a.ConfigPath, data)
	return nil
}

func parseNoArgs(cmd *command, args []string) error {
	pos, err := parse(cmd, args)
	if err != nil {
		return err
	}
	if len(pos) > 0 {
		return apperr.Invalid("args", "unexpected argument %q", pos[0])
	}
	return nil
}

func checkLimit(limit int) error {
	if limit < 1 {
		return apperr.Invalid("limit", "Limit must be a positive number")
	}
	return nil
}

func checkOptional(v string, check func(string) error) error {
	if v == "" {
		return nil
	}
	return check(v)
}

func period(week bool) string {
	if week {
		return "weekly"
	}
	return "daily"
}
