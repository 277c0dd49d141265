// Package download writes torrent files for resolved magnet links into the
// download directory.
//
// The files written here are placeholders: they record the magnet link in a
// bencode-shaped wrapper but are not loadable by a torrent client.
package download

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/litescript/torrent-cli/internal/apperr"
	"github.com/litescript/torrent-cli/internal/validate"
)

// Extension is appended to every file the manager writes.
const Extension = ".torrent"

// Manager writes torrent files into one directory.
type Manager struct {
	dir string
}

// New validates dir (creating it when needed) and returns a Manager bound to it.
func New(dir string) (*Manager, error) {
	abs, err := validate.DownloadPath(dir)
	if err != nil {
		return nil, &apperr.DownloadError{
			Path: dir,
			Err:  fmt.Errorf("failed to initialize download manager: %w", err),
		}
	}
	return &Manager{dir: abs}, nil
}

// Dir returns the absolute download directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Filename returns the sanitized file name Download would write for name.
// The ".torrent" extension survives truncation to the byte ceiling.
func Filename(name string) string {
	name = validate.SanitizeFilename(name)
	if !strings.HasSuffix(name, Extension) {
		name = validate.SanitizeFilename(name + Extension)
	}
	return name
}

// Download writes the torrent file for magnet under name and returns its path.
// A partially written file is removed on failure.
func (m *Manager) Download(magnet, name string) (string, error) {
	if magnet == "" {
		return "", &apperr.DownloadError{Err: errors.New("empty magnet link")}
	}

	path := filepath.Join(m.dir, Filename(name))

	if err := writeFile(path, placeholder(magnet)); err != nil {
		return "", &apperr.DownloadError{Path: path, Err: err}
	}
	return path, nil
}

func placeholder(magnet string) []byte {
	return []byte("d8:announce0:4:info{\n" +
		"# This is a placeholder torrent file\n" +
		"# Magnet Link: " + magnet + "\n" +
		"# In a real implementation, this would be a proper .torrent file\n" +
		"}e")
}

func writeFile(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	_, err = f.Write(data)
	return err
}
