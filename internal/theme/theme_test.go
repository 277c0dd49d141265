package theme

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, home string, rel []string, content string) {
	t.Helper()
	path := filepath.Join(append([]string{home}, rel...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func noEnv(string) string { return "" }

func TestDetectFrom_Default(t *testing.T) {
	assert.Equal(t, DefaultPalette(), DetectFrom(t.TempDir(), noEnv))
	assert.Equal(t, DefaultPalette(), DetectFrom("", noEnv))
}

func TestDetectFrom_Alacritty(t *testing.T) {
	home := t.TempDir()
	writeFile(t, home, []string{".config", "alacritty", "alacritty.toml"}, `
[colors.primary]
background = "0x1d1f21"
foreground = "0xC5C8C6"

[colors.normal]
red = "#cc6666"
blue = "#81a2be"
`)

	p := DetectFrom(home, noEnv)
	assert.Equal(t, "#c5c8c6", p.FG)
	assert.Equal(t, "#626463", p.Muted)
	assert.Equal(t, "#cc6666", p.Error)
	assert.Equal(t, "#81a2be", p.Info)
	assert.Equal(t, DefaultPalette().Warning, p.Warning, "missing colours keep defaults")
}

func TestDetectFrom_OmarchyWinsOverAlacritty(t *testing.T) {
	home := t.TempDir()
	writeFile(t, home, []string{".config", "alacritty", "alacritty.toml"}, "[colors.primary]\nforeground = \"#111111\"\n")
	writeFile(t, home, []string{".config", "omarchy", "current", "theme", "alacritty.toml"}, "[colors.primary]\nforeground = \"#222222\"\n")

	assert.Equal(t, "#222222", DetectFrom(home, noEnv).FG)
}

func TestDetectFrom_Kitty(t *testing.T) {
	home := t.TempDir()
	writeFile(t, home, []string{".config", "kitty", "kitty.conf"}, `
# comment
foreground #abc
color2     #00ff00
color3     #ffff00
`)

	p := DetectFrom(home, noEnv)
	assert.Equal(t, "#aabbcc", p.FG)
	assert.Equal(t, "#00ff00", p.Success)
	assert.Equal(t, "#ffff00", p.Warning)
}

func TestDetectFrom_Foot(t *testing.T) {
	home := t.TempDir()
	writeFile(t, home, []string{".config", "foot", "foot.ini"}, `
[main]
font=monospace:size=11

[colors]
foreground=dcdccc
regular1=cc9393
`)

	p := DetectFrom(home, noEnv)
	assert.Equal(t, "#dcdccc", p.FG)
	assert.Equal(t, "#cc9393", p.Error)
}

func TestDetectFrom_EnvOverrides(t *testing.T) {
	env := map[string]string{
		"TORRENT_CLI_FG":     "ffffff",
		"TORRENT_CLI_ACCENT": "#123",
	}
	p := DetectFrom(t.TempDir(), func(k string) string { return env[k] })

	assert.Equal(t, "#ffffff", p.FG)
	assert.Equal(t, "#112233", p.Accent)
	assert.Equal(t, DefaultPalette().Error, p.Error)
}

func TestNormalizeHex(t *testing.T) {
	tests := map[string]string{
		"#AABBCC":   "#aabbcc",
		"0x1d1f21":  "#1d1f21",
		"fff":       "#ffffff",
		` "#abc" `:  "#aabbcc",
		"not-a-hex": "#not-a-hex",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeHex(in), in)
	}
}

func TestMixColors(t *testing.T) {
	assert.Equal(t, "#7f7f7f", MixColors("#ffffff", "#000000", 0.5))
	assert.Equal(t, "#ffffff", MixColors("#ffffff", "#000000", 0))
	assert.Equal(t, "bogus", MixColors("bogus", "#000000", 0.5))
}

func TestNewStyles_PlainRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := lipgloss.NewRenderer(&buf)
	r.SetColorProfile(termenv.Ascii)

	s := NewStyles(r, DefaultPalette())
	assert.Equal(t, "ok", s.Success.Render("ok"))
	assert.Equal(t, "bad", s.Error.Render("bad"))
}
