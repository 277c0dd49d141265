package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
)

// EnvPrefix prefixes the colour override variables (TORRENT_CLI_FG, ...).
const EnvPrefix = "TORRENT_CLI_"

// source reads a palette from one terminal config file.
type source struct {
	path  []string // relative to the home directory
	parse func(path string) (Palette, bool)
}

// sources in priority order.
var sources = []source{
	{[]string{".config", "omarchy", "current", "theme", "alacritty.toml"}, parseAlacrittyTOML},
	{[]string{".config", "alacritty", "alacritty.toml"}, parseAlacrittyTOML},
	{[]string{".alacritty.toml"}, parseAlacrittyTOML},
	{[]string{".config", "kitty", "kitty.conf"}, parseKittyConf},
	{[]string{".config", "foot", "foot.ini"}, parseFootINI},
}

// Detect loads the palette for the current user.
func Detect() Palette {
	home, _ := os.UserHomeDir()
	return DetectFrom(home, os.Getenv)
}

// DetectFrom loads the first terminal palette found under home, falling back
// to DefaultPalette, then applies overrides from getenv.
func DetectFrom(home string, getenv func(string) string) Palette {
	p := DefaultPalette()
	if home != "" {
		for _, s := range sources {
			if found, ok := s.parse(filepath.Join(append([]string{home}, s.path...)...)); ok {
				p = found
				break
			}
		}
	}
	return applyEnvOverrides(p, getenv)
}

// alacrittyConfig represents the relevant parts of alacritty.toml
type alacrittyConfig struct {
	Colors struct {
		Primary struct {
			Foreground string `toml:"foreground"`
		} `toml:"primary"`
		Normal struct {
			Red    string `toml:"red"`
			Green  string `toml:"green"`
			Yellow string `toml:"yellow"`
			Blue   string `toml:"blue"`
		} `toml:"normal"`
	} `toml:"colors"`
}

func parseAlacrittyTOML(path string) (Palette, bool) {
	var cfg alacrittyConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Palette{}, false
	}
	if cfg.Colors.Primary.Foreground == "" {
		return Palette{}, false
	}

	n := cfg.Colors.Normal
	return fromTerminal(cfg.Colors.Primary.Foreground, map[string]string{
		"red": n.Red, "green": n.Green, "yellow": n.Yellow, "blue": n.Blue,
	}), true
}

// kittyColors maps kitty's numbered colours to names.
var kittyColors = map[string]string{
	"color1": "red", "color2": "green", "color3": "yellow", "color4": "blue",
}

func parseKittyConf(path string) (Palette, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Palette{}, false
	}

	var fg string
	named := map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "foreground" {
			fg = fields[1]
		} else if name, ok := kittyColors[fields[0]]; ok {
			named[name] = fields[1]
		}
	}

	if fg == "" {
		return Palette{}, false
	}
	return fromTerminal(fg, named), true
}

func parseFootINI(path string) (Palette, bool) {
	cfg, err := ini.Load(path)
	if err != nil {
		return Palette{}, false
	}

	colors := cfg.Section("colors")
	fg := colors.Key("foreground").String()
	if fg == "" {
		return Palette{}, false
	}

	// foot uses regular0..regular7 for the ANSI colours.
	return fromTerminal(fg, map[string]string{
		"red":    colors.Key("regular1").String(),
		"green":  colors.Key("regular2").String(),
		"yellow": colors.Key("regular3").String(),
		"blue":   colors.Key("regular4").String(),
	}), true
}

// fromTerminal builds a palette from a terminal's foreground and named ANSI
// colours. Missing colours keep their defaults.
func fromTerminal(fg string, named map[string]string) Palette {
	p := DefaultPalette()
	p.FG = normalizeHex(fg)
	p.Muted = MixColors(p.FG, "#000000", 0.5)

	set := func(dst *string, name string) {
		if v := named[name]; v != "" {
			*dst = normalizeHex(v)
		}
	}
	set(&p.Error, "red")
	set(&p.Success, "green")
	set(&p.Accent, "green")
	set(&p.Warning, "yellow")
	set(&p.Info, "blue")

	return p
}

func applyEnvOverrides(p Palette, getenv func(string) string) Palette {
	for name, dst := range map[string]*string{
		"FG":      &p.FG,
		"MUTED":   &p.Muted,
		"ACCENT":  &p.Accent,
		"INFO":    &p.Info,
		"SUCCESS": &p.Success,
		"WARNING": &p.Warning,
		"ERROR":   &p.Error,
	} {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = normalizeHex(v)
		}
	}
	return p
}

var (
	hexLong  = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	hexShort = regexp.MustCompile(`^#[0-9a-fA-F]{3}$`)
)

// normalizeHex ensures color is in #RRGGBB format
func normalizeHex(color string) string {
	color = strings.Trim(strings.TrimSpace(color), `"'`)

	if strings.HasPrefix(color, "0x") || strings.HasPrefix(color, "0X") {
		color = "#" + color[2:]
	}
	if !strings.HasPrefix(color, "#") {
		color = "#" + color
	}

	switch {
	case hexLong.MatchString(color):
		return strings.ToLower(color)
	case hexShort.MatchString(color):
		r, g, b := color[1:2], color[2:3], color[3:4]
		return strings.ToLower("#" + r + r + g + g + b + b)
	default:
		return color
	}
}

type rgb struct{ r, g, b float64 }

func parseRGB(hex string) (rgb, bool) {
	hex = normalizeHex(hex)
	if !hexLong.MatchString(hex) {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{float64(v >> 16 & 0xff), float64(v >> 8 & 0xff), float64(v & 0xff)}, true
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", uint8(c.r), uint8(c.g), uint8(c.b))
}

// MixColors blends two colors together; t=0 is a, t=1 is b.
func MixColors(a, b string, t float64) string {
	ca, okA := parseRGB(a)
	cb, okB := parseRGB(b)
	if !okA || !okB {
		return a
	}
	mix := func(x, y float64) float64 { return x*(1-t) + y*t }
	return rgb{mix(ca.r, cb.r), mix(ca.g, cb.g), mix(ca.b, cb.b)}.hex()
}
