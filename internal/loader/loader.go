// Package loader converts files of structured text formats into in-memory
// values for the editor.
//
// Every format is a Kind: a compiled format.Format that decides whether a
// file belongs to it, and a Parser that decodes it. The JSON, Property List,
// YAML and TOML kinds register themselves from init; Builtins returns them
// for the registry.
//
// A Loader binds one Kind to one file for one load:
//
//	l, err := loader.New(loader.JSON, loader.Options{Path: path, Panels: panels})
//	if err != nil {
//	    return err
//	}
//	value, ok, err := l.Load()
//
// Load only returns an error when the file is not of the loader's format.
// Malformed content and unreadable files are reported to the loader's
// output panel and yield ok == false.
package loader

import (
	"fmt"
	"path/filepath"

	"github.com/dshills/fileconv/internal/format"
	"github.com/dshills/fileconv/internal/fsys"
	"github.com/dshills/fileconv/internal/logging"
	"github.com/dshills/fileconv/internal/output"
	"github.com/dshills/fileconv/internal/view"
)

// State is the stage a Loader has reached.
type State int

const (
	// StateCreated is the state after New.
	StateCreated State = iota
	// StateValidityChecked means the file passed the validity check and
	// parsing is under way.
	StateValidityChecked
	// StateParsed means a value was decoded.
	StateParsed
	// StateFailed means validation or parsing failed.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateValidityChecked:
		return "validity-checked"
	case StateParsed:
		return "parsed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a Loader.
type Options struct {
	// Path is the file to load. Defaults to View.FileName().
	Path string

	// View is the open buffer for the file, if any.
	View view.View

	// Window owns the output panel. Defaults to View.Window().
	Window view.Window

	// Output is an existing panel to report to. It is re-pointed at the
	// file's directory and the format's diagnostic pattern but not cleared.
	Output *output.Panel

	// Panels provides a shared panel when Output is nil. The acquired
	// panel is cleared. When both are nil a private panel is created.
	Panels *output.Manager

	// PanelName names the acquired panel. Defaults to
	// output.DefaultPanelName.
	PanelName string

	// FS reads files. Defaults to the OS file system.
	FS fsys.FileSystem

	// Logger receives debug and warning messages. May be nil.
	Logger *logging.Logger
}

// Loader loads one file with one Kind.
type Loader struct {
	kind   Kind
	path   string
	view   view.View
	window view.Window
	out    *output.Panel
	fs     fsys.FileSystem
	logger *logging.Logger
	state  State
}

// New creates a loader for the file described by opts.
func New(kind Kind, opts Options) (*Loader, error) {
	path := opts.Path
	if path == "" {
		path = view.FileName(opts.View)
	}
	if path == "" {
		return nil, ErrNoFile
	}

	window := opts.Window
	if window == nil && opts.View != nil {
		window = opts.View.Window()
	}

	fs := opts.FS
	if fs == nil {
		fs = fsys.Default()
	}

	out := opts.Output
	if out == nil {
		if opts.Panels != nil {
			out = opts.Panels.Acquire(window, opts.PanelName)
		} else {
			out = output.NewPanel(opts.PanelName)
		}
		out.Clear()
	}
	if err := out.SetPath(filepath.Dir(path), kind.Format.DiagnosticPattern()); err != nil {
		return nil, fmt.Errorf("%s output panel: %w", kind.Name(), err)
	}

	return &Loader{
		kind:   kind,
		path:   path,
		view:   opts.View,
		window: window,
		out:    out,
		fs:     fs,
		logger: logging.OrNop(opts.Logger).WithComponent("loader").WithField("format", kind.Name()),
		state:  StateCreated,
	}, nil
}

// Kind returns the loader's kind.
func (l *Loader) Kind() Kind { return l.kind }

// Path returns the file being loaded.
func (l *Loader) Path() string { return l.path }

// Window returns the window owning the output panel. May be nil.
func (l *Loader) Window() view.Window { return l.window }

// Output returns the panel problems are reported to.
func (l *Loader) Output() *output.Panel { return l.out }

// State returns the stage the loader has reached.
func (l *Loader) State() State { return l.state }

// IsValid reports whether the file is of the loader's format.
func (l *Loader) IsValid() format.Validity {
	return l.kind.Format.ValidateFS(l.fs, l.path, l.view)
}

// NewFileExt returns the extension a dumper should use when saving the
// loaded data. See format.Format.SaveExtension.
func (l *Loader) NewFileExt() (ext string, prepend bool) {
	return l.kind.Format.SaveExtensionFS(l.fs, l.path, l.view)
}

type loadConfig struct {
	fromBuffer bool
}

// LoadOption configures a single Load call.
type LoadOption func(*loadConfig)

// FromBuffer parses the text of the bound view instead of the file on disk.
// It has no effect when the view cannot provide its text.
func FromBuffer() LoadOption {
	return func(c *loadConfig) { c.fromBuffer = true }
}

// Load validates the file, then parses it.
//
// A file of another format yields a *NotSupportedError. Every other failure
// is reported to the output panel and yields ok == false.
func (l *Loader) Load(opts ...LoadOption) (value any, ok bool, err error) {
	var cfg loadConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if v := l.IsValid(); v != format.Valid {
		l.state = StateFailed
		l.logger.Debug("rejected %s (%s)", l.path, v)
		return nil, false, &NotSupportedError{Format: l.kind.Name(), Path: l.path}
	}
	l.state = StateValidityChecked

	l.out.WriteLine(fmt.Sprintf("Parsing %s... (%s)", l.kind.Name(), l.path))

	data, err := l.read(cfg)
	if err != nil {
		l.out.WriteLine(fmt.Sprintf(`Error opening "%s": %v`, l.path, err))
		l.logger.Warn("reading %s: %v", l.path, err)
		l.state = StateFailed
		return nil, false, nil
	}

	value, ok = l.parse(Source{Path: l.path, Data: data})
	if !ok {
		l.logger.Warn("parsing %s failed", l.path)
		l.state = StateFailed
		return nil, false, nil
	}

	l.logger.Debug("parsed %s", l.path)
	l.state = StateParsed
	return value, true, nil
}

func (l *Loader) read(cfg loadConfig) ([]byte, error) {
	if cfg.fromBuffer {
		if src, ok := l.view.(view.TextSource); ok {
			return []byte(src.Text()), nil
		}
	}
	return l.fs.ReadFile(l.path)
}

// parse runs the parser, turning a panic in a decoder into a reported
// failure.
func (l *Loader) parse(src Source) (value any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.out.WriteLine(fmt.Sprintf(`Error parsing %s "%s": %v`, l.kind.Name(), src.Path, r))
			value, ok = nil, false
		}
	}()
	return l.kind.Parser.Parse(src, l.out)
}
