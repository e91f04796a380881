// Package output provides the diagnostics sink loaders report to.
//
// A Panel collects lines of text for the host to display. It carries a base
// directory and a diagnostic pattern so the host can map a reported line back
// to a file, line and column. Panels are shared: all loaders working on files
// of one window write to the same panel, so every method is safe for
// concurrent use.
package output

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// DefaultPanelName is the name used when none is configured.
const DefaultPanelName = "aaa_package_dev"

// Problem is a location extracted from a panel line.
type Problem struct {
	// File is the file path, resolved against the panel directory.
	File string

	// Line is the line number (1-based, 0 if unknown).
	Line int

	// Column is the column number (1-based, 0 if unknown).
	Column int

	// Text is the full panel line.
	Text string
}

// String formats the problem as file:line:column.
func (p Problem) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Panel is a line-oriented diagnostics sink.
type Panel struct {
	mu      sync.RWMutex
	name    string
	dir     string
	pattern string
	re      *regexp.Regexp
	lines   []string
	mirror  io.Writer
}

// NewPanel creates an empty panel.
func NewPanel(name string) *Panel {
	if name == "" {
		name = DefaultPanelName
	}
	return &Panel{
		name:  name,
		lines: make([]string, 0, 16),
	}
}

// Name returns the panel name.
func (p *Panel) Name() string {
	return p.name
}

// SetPath sets the base directory and diagnostic pattern used to resolve
// problems. An empty pattern disables problem navigation.
func (p *Panel) SetPath(dir, pattern string) error {
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("compiling diagnostic pattern: %w", err)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.dir = dir
	p.pattern = pattern
	p.re = re
	return nil
}

// Dir returns the base directory.
func (p *Panel) Dir() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dir
}

// Pattern returns the diagnostic pattern.
func (p *Panel) Pattern() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pattern
}

// SetMirror copies every written line to w as well, e.g. the host's
// panel widget. Pass nil to stop mirroring.
func (p *Panel) SetMirror(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mirror = w
}

// WriteLine appends a line. Embedded newlines start new lines.
func (p *Panel) WriteLine(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.appendLocked(strings.Split(strings.TrimSuffix(line, "\n"), "\n"))
}

// Write implements io.Writer. Each call is treated as complete lines.
func (p *Panel) Write(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	text := strings.TrimSuffix(string(b), "\n")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.appendLocked(strings.Split(text, "\n"))
	return len(b), nil
}

func (p *Panel) appendLocked(lines []string) {
	p.lines = append(p.lines, lines...)
	if p.mirror != nil {
		for _, l := range lines {
			_, _ = io.WriteString(p.mirror, l+"\n")
		}
	}
}

// Clear removes all lines.
func (p *Panel) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = p.lines[:0]
}

// Lines returns a copy of all lines.
func (p *Panel) Lines() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]string, len(p.lines))
	copy(result, p.lines)
	return result
}

// LineCount returns the number of lines.
func (p *Panel) LineCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.lines)
}

// Content returns all lines joined, each terminated by a newline.
func (p *Panel) Content() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.lines) == 0 {
		return ""
	}
	return strings.Join(p.lines, "\n") + "\n"
}

// Problems returns the locations of all lines matching the diagnostic
// pattern, in order.
func (p *Panel) Problems() []Problem {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.re == nil {
		return nil
	}

	var problems []Problem
	for _, line := range p.lines {
		if prob, ok := p.matchLocked(line); ok {
			problems = append(problems, prob)
		}
	}
	return problems
}

func (p *Panel) matchLocked(line string) (Problem, bool) {
	matches := p.re.FindStringSubmatch(line)
	if matches == nil {
		return Problem{}, false
	}

	problem := Problem{Text: line}

	// Groups, in order: file, line, column. Missing groups disable the
	// corresponding navigation dimension.
	if len(matches) > 1 {
		problem.File = matches[1]
		if problem.File != "" && !filepath.IsAbs(problem.File) && p.dir != "" {
			problem.File = filepath.Join(p.dir, problem.File)
		}
	}
	if len(matches) > 2 {
		if n, err := strconv.Atoi(matches[2]); err == nil {
			problem.Line = n
		}
	}
	if len(matches) > 3 {
		if n, err := strconv.Atoi(matches[3]); err == nil {
			problem.Column = n
		}
	}

	return problem, true
}
