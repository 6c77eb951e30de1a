// Command svgview displays a single SVG document in a window, sized to
// fit it. The image is re-rasterized when the window is resized and
// when the backing file changes on disk.
//
// Usage:
//
//	svgview [flags] <path-to-svg>
//
// With no path, or with "-", the SVG is read from standard input; such
// a document is never watched or reloaded.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"

	"github.com/svgview/svgview/document"
	"github.com/svgview/svgview/raster"
	"github.com/svgview/svgview/viewer"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML settings file")
		title      = flag.String("title", "", "window title")
		width      = flag.Int("width", 0, "initial window width in pixels")
		height     = flag.Int("height", 0, "initial window height in pixels")
		debounce   = flag.Duration("debounce", -1, "coalescing window for file write bursts (0 disables)")
		output     = flag.String("o", "", "write a single PNG snapshot to this file and exit")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	arg, err := sourceArg(flag.Args())
	if err != nil {
		usage()
		os.Exit(2)
	}

	settings, err := loadSettings(*configPath)
	if err != nil {
		fatal("cannot load settings", err)
	}
	if *title != "" {
		settings.Title = *title
	}
	if *width > 0 {
		settings.Width = *width
	}
	if *height > 0 {
		settings.Height = *height
	}
	if *debounce >= 0 {
		settings.DebounceMS = int(debounce.Milliseconds())
	}
	background, err := parseHexColor(settings.Background)
	if err != nil {
		fatal("cannot parse background color", err)
	}

	doc, err := load(arg, os.Stdin)
	if err != nil {
		fatal("cannot load document", err)
	}

	if *output != "" {
		if err := snapshot(doc, *output, settings.Width, settings.Height); err != nil {
			fatal("cannot write snapshot", err)
		}
		slog.Debug("snapshot written", "path", *output,
			"width", settings.Width, "height", settings.Height)
		return
	}

	driver.Main(func(s screen.Screen) {
		st, err := viewer.NewState(doc, image.Pt(settings.Width, settings.Height))
		if err != nil {
			fatal("startup failed", err)
		}
		err = viewer.Run(s, st, viewer.Config{
			Title:      settings.Title,
			Size:       image.Pt(settings.Width, settings.Height),
			Debounce:   time.Duration(settings.DebounceMS) * time.Millisecond,
			Background: background,
		})
		if err != nil {
			fatal("viewer failed", err)
		}
	})
}

// sourceArg validates the positional arguments: at most one is
// accepted, and its absence means standard input.
func sourceArg(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", nil
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("expected at most one path, got %d arguments", len(args))
	}
}

// load resolves the source argument: a path, or "-"/absence for the
// given standard input stream.
func load(arg string, stdin io.Reader) (*document.Document, error) {
	if arg == "" || arg == "-" {
		return document.FromReader(stdin)
	}
	return document.FromFile(arg)
}

// snapshot rasterizes the document once at the given size and writes it
// as a PNG, without opening a window.
func snapshot(doc *document.Document, path string, width, height int) error {
	surface, err := raster.New(width, height)
	if err != nil {
		return err
	}
	if err := surface.Render(doc.Icon); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, surface.RGBA()); err != nil {
		return err
	}
	return f.Close()
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:\n\tsvgview [flags] <path-to-svg>")
	fmt.Fprintln(os.Stderr, "\nReads standard input when no path (or \"-\") is given.")
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
}
