package format

import (
	"strings"

	"github.com/dshills/fileconv/internal/fsys"
	"github.com/dshills/fileconv/internal/view"
)

// Target is what a Sniffer inspects. Path and View may each be empty.
type Target struct {
	FS   fsys.FileSystem
	Path string
	View view.View
}

// Sniffer decides from content whether a target is of a format.
// Sniffers never fail: unreadable content is simply not a match.
type Sniffer interface {
	Sniff(f *Format, t Target) bool
}

// ScopeSniffer matches buffers whose base scope equals the format's scope.
// Files without an open buffer never match.
type ScopeSniffer struct{}

// Sniff implements Sniffer.
func (ScopeSniffer) Sniff(f *Format, t Target) bool {
	return f.Scope() != "" && t.View != nil && t.View.Scope() == f.Scope()
}

// HeaderSniffer matches when one of the leading lines starts with Marker.
// It reads the buffer when one is open and the file otherwise.
type HeaderSniffer struct {
	Marker string
	// Lines is how many leading lines are inspected. Zero means one.
	Lines int
}

// Sniff implements Sniffer.
func (h HeaderSniffer) Sniff(_ *Format, t Target) bool {
	n := h.Lines
	if n <= 0 {
		n = 1
	}

	if t.View != nil {
		for i := 0; i < n; i++ {
			text := t.View.Substr(view.Point{Line: i}, view.Point{Line: i, Column: len(h.Marker)})
			if text == h.Marker {
				return true
			}
		}
		return false
	}

	if t.Path == "" {
		return false
	}
	fs := t.FS
	if fs == nil {
		fs = fsys.Default()
	}
	lines, err := fsys.HeadLines(fs, t.Path, n)
	if err != nil && len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		if strings.HasPrefix(line, h.Marker) {
			return true
		}
	}
	return false
}
