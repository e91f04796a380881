package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/dshills/fileconv/internal/format"
)

const yamlDebugBase = `Error parsing YAML: %s in "%s", line %d, column %d`

// YAML loads .yaml files and buffers with the source.yaml scope.
//
// Documents are decoded into plain maps, slices and scalars only; tags
// never select Go types.
var YAML = Kind{
	Format: format.MustCompile(format.Descriptor{
		Name:              "YAML",
		Ext:               "yaml",
		Scope:             "source.yaml",
		DiagnosticPattern: `Error parsing YAML: .+? in "(.*?)", line (\d+), column (\d+)`,
	}),
	Parser: ParserFunc(parseYAML),
}

func init() {
	Register(YAML)
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

func parseYAML(src Source, out Sink) (any, bool) {
	report := func(msg string, line, col int) (any, bool) {
		out.WriteLine(fmt.Sprintf(yamlDebugBase, joinMultiline(msg), src.Path, line, col))
		return nil, false
	}

	dec := yaml.NewDecoder(bytes.NewReader(src.Data))

	var value any
	if err := dec.Decode(&value); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, true
		}
		line := yamlErrorLine(err.Error())
		return report(err.Error(), line, indentColumn(src.Data, line))
	}

	// A stream holds exactly one document.
	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return value, true
	case err != nil:
		line := yamlErrorLine(err.Error())
		return report(err.Error(), line, indentColumn(src.Data, line))
	default:
		line, col := extra.Line, extra.Column
		if len(extra.Content) > 0 {
			line, col = extra.Content[0].Line, extra.Content[0].Column
		}
		return report("expected a single document in the stream but found another document", line, col)
	}
}

// yamlErrorLine extracts the first line number from a decoder message,
// defaulting to 1.
func yamlErrorLine(msg string) int {
	m := yamlLineRe.FindStringSubmatch(msg)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
