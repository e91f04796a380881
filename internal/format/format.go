// Package format describes the file formats loaders understand and decides
// whether a file or buffer is an instance of one.
//
// A file is matched against a format by three signals, in order of
// precedence:
//
//  1. an appendix after the canonical extension, e.g. "settings.json-local"
//  2. the canonical extension itself, e.g. "settings.json"
//  3. the content: the buffer's grammar scope or a header marker
//
// The first signal that matches wins. The same order decides which
// extension a save-as operation should use (see SaveExtension).
package format

import (
	"fmt"
	"regexp"
)

// Descriptor is the registration surface of a format.
type Descriptor struct {
	// Name is the display name, e.g. "JSON" or "Property List".
	Name string

	// Ext is the canonical file extension without the dot.
	Ext string

	// Scope is the grammar scope identifying buffers of this format.
	// Empty if the format has no reliable scope.
	Scope string

	// AppendixPattern extracts the appendix from a file name. The appendix
	// must be capture group 1. Defaults to DefaultAppendixPattern(Ext).
	AppendixPattern string

	// DiagnosticPattern matches the problem lines a parser writes. Up to
	// three groups, in order: file path, line, column.
	DiagnosticPattern string

	// Sniffer inspects content when name based detection fails.
	// Defaults to ScopeSniffer when Scope is set.
	Sniffer Sniffer
}

// DefaultAppendixPattern returns the appendix pattern used when a descriptor
// does not provide one.
func DefaultAppendixPattern(ext string) string {
	return `(?i)\.` + regexp.QuoteMeta(ext) + `(?:-([^\.]+))?$`
}

// Format is a compiled, immutable Descriptor.
type Format struct {
	desc     Descriptor
	appendix *regexp.Regexp
}

// Compile validates d, fills in defaults and compiles its patterns.
func Compile(d Descriptor) (*Format, error) {
	if d.Name == "" || d.Ext == "" {
		return nil, fmt.Errorf("%w: name and extension are required (name=%q ext=%q)",
			ErrInvalidDescriptor, d.Name, d.Ext)
	}

	if d.AppendixPattern == "" {
		d.AppendixPattern = DefaultAppendixPattern(d.Ext)
	}
	re, err := regexp.Compile(d.AppendixPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %s appendix pattern: %v", ErrInvalidPattern, d.Name, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("%w: %s appendix pattern has no capture group", ErrInvalidPattern, d.Name)
	}

	if d.DiagnosticPattern != "" {
		if _, err := regexp.Compile(d.DiagnosticPattern); err != nil {
			return nil, fmt.Errorf("%w: %s diagnostic pattern: %v", ErrInvalidPattern, d.Name, err)
		}
	}

	if d.Sniffer == nil && d.Scope != "" {
		d.Sniffer = ScopeSniffer{}
	}

	return &Format{desc: d, appendix: re}, nil
}

// MustCompile is like Compile but panics on error.
// It is meant for descriptors declared in init functions.
func MustCompile(d Descriptor) *Format {
	f, err := Compile(d)
	if err != nil {
		panic(err)
	}
	return f
}

// Descriptor returns a copy of the compiled descriptor, defaults included.
func (f *Format) Descriptor() Descriptor { return f.desc }

// Name returns the display name.
func (f *Format) Name() string { return f.desc.Name }

// Ext returns the canonical extension without the dot.
func (f *Format) Ext() string { return f.desc.Ext }

// Scope returns the grammar scope, or "".
func (f *Format) Scope() string { return f.desc.Scope }

// DiagnosticPattern returns the pattern matching this format's problem lines.
func (f *Format) DiagnosticPattern() string { return f.desc.DiagnosticPattern }

// String returns the display name.
func (f *Format) String() string { return f.desc.Name }
