package view

import (
	"strings"
	"sync"
)

// StaticWindow is a Window identified by a fixed number.
type StaticWindow int

// ID implements Window.
func (w StaticWindow) ID() int { return int(w) }

// Buffer is an in-memory View.
type Buffer struct {
	mu     sync.RWMutex
	path   string
	scope  string
	window Window
	lines  []string
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithPath sets the file name reported by the buffer.
func WithPath(path string) Option {
	return func(b *Buffer) { b.path = path }
}

// WithScope sets the base scope.
func WithScope(scope string) Option {
	return func(b *Buffer) { b.scope = scope }
}

// WithWindow sets the owning window.
func WithWindow(w Window) Option {
	return func(b *Buffer) { b.window = w }
}

// NewBuffer creates a buffer holding text.
func NewBuffer(text string, opts ...Option) *Buffer {
	b := &Buffer{}
	for _, opt := range opts {
		opt(b)
	}
	b.setText(text)
	return b
}

func (b *Buffer) setText(text string) {
	b.lines = strings.SplitAfter(text, "\n")
	if n := len(b.lines); n > 1 && b.lines[n-1] == "" {
		b.lines = b.lines[:n-1]
	}
}

// SetText replaces the buffer content.
func (b *Buffer) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setText(text)
}

// SetScope changes the base scope, as a syntax switch in the host would.
func (b *Buffer) SetScope(scope string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scope = scope
}

// FileName implements View.
func (b *Buffer) FileName() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// Window implements View.
func (b *Buffer) Window() Window {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.window
}

// Scope implements View.
func (b *Buffer) Scope() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scope
}

// Text implements TextSource.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "")
}

// LineCount returns the number of lines in the buffer.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Substr implements View.
func (b *Buffer) Substr(from, to Point) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if to.Compare(from) <= 0 || from.Line >= len(b.lines) {
		return ""
	}

	start := b.offset(from)
	end := b.offset(to)
	text := strings.Join(b.lines, "")
	if start >= end {
		return ""
	}
	return text[start:end]
}

// offset converts p to a byte offset into the joined text, clamping the
// column to the line length (newline excluded) and the line to the buffer.
func (b *Buffer) offset(p Point) int {
	off := 0
	if p.Line >= len(b.lines) {
		for _, l := range b.lines {
			off += len(l)
		}
		return off
	}
	for i := 0; i < p.Line; i++ {
		off += len(b.lines[i])
	}
	line := strings.TrimSuffix(b.lines[p.Line], "\n")
	col := p.Column
	if col > len(line) {
		col = len(line)
	}
	if col < 0 {
		col = 0
	}
	return off + col
}
