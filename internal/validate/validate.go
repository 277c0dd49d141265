// Package validate checks and normalizes user input: search queries, result
// selections, download directories and file names.
package validate

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/litescript/torrent-cli/internal/apperr"
)

// Query length bounds, counted after whitespace is collapsed.
const (
	MinQueryLength = 3
	MaxQueryLength = 100
)

// MaxFilenameLength is the longest file name most filesystems accept, in bytes.
const MaxFilenameLength = 255

// DefaultDownloadDir is used when no download directory is configured.
const DefaultDownloadDir = "downloads"

// DefaultFilename replaces a name that sanitizes to nothing.
const DefaultFilename = "unnamed_torrent"

// Categories understood by the index.
var Categories = []string{
	"movies", "tv", "games", "music", "apps",
	"anime", "documentaries", "xxx", "others",
}

// SortFields understood by the index search.
var SortFields = []string{"time", "size", "seeders", "leechers"}

// Orders for sorted searches.
var Orders = []string{"desc", "asc"}

var (
	queryStrip     = regexp.MustCompile(`[^a-zA-Z0-9\s-]`)
	filenameUnsafe = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// Query validates a search query and returns its sanitized form.
func Query(q string) (string, error) {
	if strings.TrimSpace(q) == "" {
		return "", apperr.Invalid("query", "Search query must be a non-empty string")
	}

	q = strings.Join(strings.Fields(q), " ")

	n := utf8.RuneCountInString(q)
	if n < MinQueryLength {
		return "", apperr.Invalid("query", "Search query must be at least %d characters", MinQueryLength)
	}
	if n > MaxQueryLength {
		return "", apperr.Invalid("query", "Search query must not exceed %d characters", MaxQueryLength)
	}

	q = strings.TrimSpace(queryStrip.ReplaceAllString(q, ""))
	if q == "" {
		return "", apperr.Invalid("query", "Search query must contain letters or digits")
	}

	return q, nil
}

// Selection parses a 1-based selection against max and returns the 0-based index.
func Selection(s string, max int) (int, error) {
	k, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &apperr.ValidationError{Field: "selection", Reason: "Selection must be a number", Err: err}
	}
	if k < 1 || k > max {
		return 0, apperr.Invalid("selection", "Selection must be between 1 and %d", max)
	}
	return k - 1, nil
}

// DownloadPath resolves path (DefaultDownloadDir when empty) to an absolute
// directory inside the working directory, creating it if needed and checking
// that it is writable.
func DownloadPath(path string) (string, error) {
	if path == "" {
		path = DefaultDownloadDir
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &apperr.ValidationError{Field: "path", Reason: "Invalid download path", Err: err}
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", &apperr.ValidationError{Field: "path", Reason: "Cannot determine working directory", Err: err}
	}

	if !within(wd, abs) {
		return "", apperr.Invalid("path", "Invalid download path")
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return "", &apperr.ValidationError{Field: "path", Reason: "Could not create download directory: " + err.Error(), Err: err}
	}

	probe, err := os.CreateTemp(abs, ".write-check-*")
	if err != nil {
		return "", &apperr.ValidationError{Field: "path", Reason: "No write permission for download directory", Err: err}
	}
	probe.Close()
	os.Remove(probe.Name())

	return abs, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// SanitizeFilename makes name safe to use as a single path element.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == 0 || unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = filenameUnsafe.ReplaceAllString(name, "_")
	name = strings.TrimSpace(name)

	if len(name) > MaxFilenameLength {
		ext := filepath.Ext(name)
		if len(ext) >= MaxFilenameLength/2 {
			ext = ""
		}
		name = truncateBytes(strings.TrimSuffix(name, ext), MaxFilenameLength-len(ext)) + ext
	}

	if name == "" {
		return DefaultFilename
	}
	return name
}

// truncateBytes cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Category reports an error unless c is one of Categories.
func Category(c string) error {
	return oneOf("category", c, Categories)
}

// SortField reports an error unless f is one of SortFields.
func SortField(f string) error {
	return oneOf("sort-by", f, SortFields)
}

// Order reports an error unless o is one of Orders.
func Order(o string) error {
	return oneOf("order", o, Orders)
}

func oneOf(field, v string, choices []string) error {
	if slices.Contains(choices, v) {
		return nil
	}
	return apperr.Invalid(field, "invalid %s %q (choose from %s)", field, v, strings.Join(choices, ", "))
}
