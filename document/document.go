// Provides loading and parsing of the SVG document shown by the viewer.
// The actual parsing is delegated to oksvg; this package owns where the
// bytes come from (file or standard input) and the configuration captured
// when the document was first loaded.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/srwiley/oksvg"
)

// ErrParse is reported when the input bytes are not well formed SVG.
var ErrParse = errors.New("malformed svg")

// ErrNotFileBacked is reported when Reload is called on a document that
// was read from standard input.
var ErrNotFileBacked = errors.New("document has no backing file")

// Options is the parse configuration captured when a document is first
// loaded. Reload reuses it unchanged, so resource resolution stays
// consistent across reloads.
type Options struct {
	// ResourcesDir is the base directory for relative resource
	// references inside the document: the parent directory of the
	// input file, or empty for standard input. The parser does not
	// dereference external resources, so today this only pins the
	// resolution base consistently across reloads.
	ResourcesDir string

	// ErrorMode controls how unsupported SVG elements are handled
	// during parsing.
	ErrorMode oksvg.ErrorMode
}

// Document is a parsed SVG together with the options used to produce it.
// It is never mutated after creation: Reload returns a new Document.
type Document struct {
	// Icon is the parsed representation, ready to be drawn.
	Icon *oksvg.SvgIcon

	opts Options
	path string // absolute; empty for standard input
}

// FromFile reads and parses the SVG at path. The path is resolved to an
// absolute one so that the backing file can be watched reliably, and the
// resource base directory is derived from it.
func FromFile(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading svg source: %w", err)
	}
	opts := Options{ResourcesDir: filepath.Dir(abs), ErrorMode: oksvg.IgnoreErrorMode}
	icon, err := parse(data, opts)
	if err != nil {
		return nil, err
	}
	return &Document{Icon: icon, opts: opts, path: abs}, nil
}

// FromStdin reads all of standard input and parses it with default
// options: no resource directory, and no backing file to watch or reload.
func FromStdin() (*Document, error) {
	return FromReader(os.Stdin)
}

// FromReader parses an SVG from an arbitrary stream. The resulting
// document is not file backed.
func FromReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading svg source: %w", err)
	}
	opts := Options{ErrorMode: oksvg.IgnoreErrorMode}
	icon, err := parse(data, opts)
	if err != nil {
		return nil, err
	}
	return &Document{Icon: icon, opts: opts}, nil
}

func parse(data []byte, opts Options) (*oksvg.SvgIcon, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), opts.ErrorMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err)
	}
	return icon, nil
}

// Path returns the absolute path of the backing file, or the empty
// string for a document read from standard input.
func (d *Document) Path() string { return d.path }

// FileBacked reports whether the document came from a file, and can
// therefore be watched and reloaded.
func (d *Document) FileBacked() bool { return d.path != "" }

// Options returns the parse configuration captured at load time.
func (d *Document) Options() Options { return d.opts }

// Reload re-reads and re-parses the backing file using the options
// captured when the document was first loaded. On any failure the
// receiver is left untouched and remains valid, so callers can keep
// showing the last good document.
func (d *Document) Reload() (*Document, error) {
	if !d.FileBacked() {
		return nil, ErrNotFileBacked
	}
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, fmt.Errorf("reading svg source: %w", err)
	}
	icon, err := parse(data, d.opts)
	if err != nil {
		return nil, err
	}
	return &Document{Icon: icon, opts: d.opts, path: d.path}, nil
}
