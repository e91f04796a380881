// Package registry maps file extensions to the loader kinds that read them.
//
// A Registry is built once, at startup, from the kinds registered by the
// loader package, and is read-only afterwards. Hosts construct one and pass
// it to whatever needs to pick a loader; it is safe for concurrent use.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/fileconv/internal/config"
	"github.com/dshills/fileconv/internal/format"
	"github.com/dshills/fileconv/internal/fsys"
	"github.com/dshills/fileconv/internal/loader"
	"github.com/dshills/fileconv/internal/logging"
	"github.com/dshills/fileconv/internal/view"
)

// ErrUnknownFormat is returned by NewLoader when no registered format
// accepts the file.
var ErrUnknownFormat = errors.New("no registered format for file")

// Registry is an immutable extension -> kind table.
type Registry struct {
	byExt     map[string]loader.Kind
	sorted    []loader.Kind
	fs        fsys.FileSystem
	logger    *logging.Logger
	panelName string
}

// Option configures a Registry.
type Option func(*settings)

type settings struct {
	fs        fsys.FileSystem
	logger    *logging.Logger
	panelName string
}

// WithFS sets the file system used when sniffing content.
func WithFS(fs fsys.FileSystem) Option {
	return func(s *settings) { s.fs = fs }
}

// WithLogger sets the logger reporting construction details. Loaders
// created through the registry log to it too.
func WithLogger(l *logging.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithPanelName sets the panel loaders created through the registry
// acquire.
func WithPanelName(name string) Option {
	return func(s *settings) { s.panelName = name }
}

// New builds a registry from kinds. When two kinds share an extension the
// later one wins.
func New(kinds []loader.Kind, opts ...Option) *Registry {
	s := settings{fs: fsys.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	log := logging.OrNop(s.logger).WithComponent("registry")

	r := &Registry{
		byExt:     make(map[string]loader.Kind, len(kinds)),
		fs:        s.fs,
		logger:    s.logger,
		panelName: s.panelName,
	}
	for _, k := range kinds {
		if prev, ok := r.byExt[k.Ext()]; ok {
			log.Warn("extension %q: %s replaces %s", k.Ext(), k.Name(), prev.Name())
		}
		r.byExt[k.Ext()] = k
	}

	r.sorted = make([]loader.Kind, 0, len(r.byExt))
	for _, k := range r.byExt {
		r.sorted = append(r.sorted, k)
	}
	sort.Slice(r.sorted, func(i, j int) bool {
		return r.sorted[i].Ext() < r.sorted[j].Ext()
	})

	log.Debug("registered %d formats", len(r.sorted))
	return r
}

// Default builds a registry of the built-in kinds.
func Default(opts ...Option) *Registry {
	return New(loader.Builtins(), opts...)
}

// FromConfig builds a registry of the built-in kinds with the per-format
// overrides of cfg applied. Disabled formats are left out. The configured
// panel name and a logger at the configured level apply unless opts
// replace them.
func FromConfig(cfg *config.Config, opts ...Option) (*Registry, error) {
	kinds := loader.Builtins()
	out := make([]loader.Kind, 0, len(kinds))

	for _, k := range kinds {
		fc, ok := cfg.Formats[k.Ext()]
		if !ok {
			out = append(out, k)
			continue
		}
		if fc.Disabled {
			continue
		}
		overridden, err := k.Override(func(d *format.Descriptor) {
			if fc.AppendixPattern != "" {
				d.AppendixPattern = fc.AppendixPattern
			}
			if fc.Scope != "" {
				d.Scope = fc.Scope
			}
		})
		if err != nil {
			return nil, fmt.Errorf("configuring %s: %w", k.Name(), err)
		}
		out = append(out, overridden)
	}

	base := []Option{
		WithPanelName(cfg.Output.Panel),
		WithLogger(cfg.NewLogger(nil)),
	}
	return New(out, append(base, opts...)...), nil
}

// Lookup returns the kind registered for ext. A leading dot is ignored.
func (r *Registry) Lookup(ext string) (loader.Kind, bool) {
	k, ok := r.byExt[strings.TrimPrefix(ext, ".")]
	return k, ok
}

// Kinds returns all kinds ordered by extension.
func (r *Registry) Kinds() []loader.Kind {
	out := make([]loader.Kind, len(r.sorted))
	copy(out, r.sorted)
	return out
}

// FS returns the file system used for sniffing and loading.
func (r *Registry) FS() fsys.FileSystem { return r.fs }

// Logger returns the logger handed to loaders, nil when none was set.
func (r *Registry) Logger() *logging.Logger { return r.logger }

// PanelName returns the panel name handed to loaders.
func (r *Registry) PanelName() string { return r.panelName }

// Len returns the number of registered kinds.
func (r *Registry) Len() int {
	return len(r.sorted)
}

// Detect finds the kind for a file or buffer. Appendices are tried first,
// then the plain extension, then each format's content sniffer, mirroring
// the precedence of a single format's validity check.
func (r *Registry) Detect(path string, v view.View) (loader.Kind, bool) {
	if path == "" {
		path = view.FileName(v)
	}

	if path != "" {
		for _, k := range r.sorted {
			if k.Format.Appendix(path) != "" {
				return k, true
			}
		}
		for _, k := range r.sorted {
			if k.Format.HasExt(path) {
				return k, true
			}
		}
	}

	if path == "" && v == nil {
		return loader.Kind{}, false
	}
	for _, k := range r.sorted {
		if k.Format.ValidateFS(r.fs, path, v) == format.Valid {
			return k, true
		}
	}
	return loader.Kind{}, false
}

// NewLoader detects the kind for opts.Path or opts.View and creates a
// loader for it.
func (r *Registry) NewLoader(opts loader.Options) (*loader.Loader, error) {
	if opts.FS == nil {
		opts.FS = r.fs
	}
	if opts.Logger == nil {
		opts.Logger = r.logger
	}
	if opts.PanelName == "" {
		opts.PanelName = r.panelName
	}
	k, ok := r.Detect(opts.Path, opts.View)
	if !ok {
		path := opts.Path
		if path == "" {
			path = view.FileName(opts.View)
		}
		if path == "" {
			return nil, loader.ErrNoFile
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	return loader.New(k, opts)
}
