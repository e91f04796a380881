package loader

import (
	"bytes"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// position converts a byte offset in data into a 1-based line and column.
// Offsets past the end are clamped.
func position(data []byte, offset int) (line, column int) {
	if offset > len(data) {
		offset = len(data)
	}
	if offset < 0 {
		offset = 0
	}
	head := data[:offset]
	line = bytes.Count(head, []byte{'\n'}) + 1
	column = offset - (bytes.LastIndexByte(head, '\n') + 1) + 1
	return line, column
}

// indentColumn returns the 1-based column of the first byte on line
// (1-based) that is not a space. Tabs are not skipped. Lines past the end
// report column 1.
func indentColumn(data []byte, line int) int {
	lines := bytes.Split(data, []byte{'\n'})
	if line < 1 || line > len(lines) {
		return 1
	}
	l := lines[line-1]
	return len(l) - len(bytes.TrimLeft(l, " ")) + 1
}

// joinMultiline collapses a multi-line message into one line.
func joinMultiline(s string) string {
	parts := strings.Split(s, "\n")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
