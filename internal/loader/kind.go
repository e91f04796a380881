package loader

import (
	"sync"

	"github.com/dshills/fileconv/internal/format"
)

// Sink receives diagnostic lines. *output.Panel implements it.
type Sink interface {
	WriteLine(line string)
}

// Source is the input handed to a Parser.
type Source struct {
	// Path is the file the data belongs to. It is used in diagnostics only.
	Path string
	// Data is the complete file or buffer content.
	Data []byte
}

// Parser decodes data of one format.
//
// Parse never fails loudly: problems are written to out, preferably in a
// form matched by the format's diagnostic pattern, and ok is false. A nil
// value with ok true is a successfully decoded null document.
type Parser interface {
	Parse(src Source, out Sink) (value any, ok bool)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(src Source, out Sink) (any, bool)

// Parse calls f(src, out).
func (f ParserFunc) Parse(src Source, out Sink) (any, bool) {
	return f(src, out)
}

// Kind is a loadable format: how to recognize it and how to parse it.
type Kind struct {
	Format *format.Format
	Parser Parser
}

// Name returns the format's display name.
func (k Kind) Name() string { return k.Format.Name() }

// Ext returns the format's canonical extension.
func (k Kind) Ext() string { return k.Format.Ext() }

// Override returns a copy of k whose descriptor has been modified by fn and
// recompiled. The parser is kept.
func (k Kind) Override(fn func(d *format.Descriptor)) (Kind, error) {
	d := k.Format.Descriptor()
	fn(&d)
	f, err := format.Compile(d)
	if err != nil {
		return Kind{}, err
	}
	return Kind{Format: f, Parser: k.Parser}, nil
}

var (
	builtinsMu sync.Mutex
	builtins   []Kind
)

// Register adds a kind to the built-in set. It is meant to be called from
// init functions, once per format, and panics on a nil format or parser.
// Kinds sharing an extension are all kept; the registry built from them
// resolves the collision in favor of the later one.
func Register(k Kind) {
	if k.Format == nil || k.Parser == nil {
		panic("loader: Register with nil format or parser")
	}

	builtinsMu.Lock()
	defer builtinsMu.Unlock()
	builtins = append(builtins, k)
}

// Builtins returns the registered kinds in registration order.
func Builtins() []Kind {
	builtinsMu.Lock()
	defer builtinsMu.Unlock()

	out := make([]Kind, len(builtins))
	copy(out, builtins)
	return out
}
