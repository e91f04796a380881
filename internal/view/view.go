// Package view describes the slice of the editor a loader needs: an open
// buffer with a grammar scope and text access, and the window owning it.
//
// The host editor implements these interfaces. Buffer is an in-memory
// implementation used for unsaved documents and in tests.
package view

import "fmt"

// Point represents a line and column position.
// Both Line and Column are 0-indexed.
// Column is measured in bytes from the start of the line.
type Point struct {
	Line   int
	Column int
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Window is the editor window that owns views and output panels.
type Window interface {
	// ID uniquely identifies the window for the lifetime of the host.
	ID() int
}

// View is an open editor buffer.
type View interface {
	// FileName returns the path backing the buffer, or "" for unsaved buffers.
	FileName() string

	// Window returns the owning window. May be nil.
	Window() Window

	// Scope returns the base grammar scope declared for the buffer,
	// e.g. "source.json".
	Scope() string

	// Substr returns the text in the half-open range [from, to).
	// Out of range points are clamped.
	Substr(from, to Point) string
}

// TextSource is implemented by views that can hand out their full text.
type TextSource interface {
	Text() string
}

// FileName returns v.FileName(), tolerating a nil view.
func FileName(v View) string {
	if v == nil {
		return ""
	}
	return v.FileName()
}
