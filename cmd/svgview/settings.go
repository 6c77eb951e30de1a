package main

import (
	"fmt"
	"image/color"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Settings are the viewer preferences. Values from the settings file
// are merged under command line flags; flags win.
type Settings struct {
	// Title is the window title.
	Title string `toml:"title"`

	// Width and Height are the initial window size, and the snapshot
	// size in headless mode.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// DebounceMS is the coalescing window, in milliseconds, for bursts
	// of file writes. Zero disables coalescing.
	DebounceMS int `toml:"debounce_ms"`

	// Background is the color composited under the document, as
	// "#rgb" or "#rrggbb".
	Background string `toml:"background"`
}

func defaultSettings() Settings {
	return Settings{
		Title:      "svgview",
		Width:      800,
		Height:     600,
		DebounceMS: 50,
		Background: "#ffffff",
	}
}

// loadSettings returns the defaults, overlaid with the TOML file at
// path if one is given.
func loadSettings(path string) (Settings, error) {
	s := defaultSettings()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading settings: %w", err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing settings: %w", err)
	}
	return s, nil
}

// parseHexColor parses "#rgb" and "#rrggbb" notations.
func parseHexColor(s string) (color.Color, error) {
	if len(s) == 0 || s[0] != '#' {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	hex := s[1:]
	switch len(hex) {
	case 3:
		expanded := make([]byte, 6)
		for i := 0; i < 3; i++ {
			expanded[2*i], expanded[2*i+1] = hex[i], hex[i]
		}
		hex = string(expanded)
	case 6:
	default:
		return nil, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}
