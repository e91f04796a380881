package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dshills/fileconv/internal/format"
)

const jsonDebugBase = `Error parsing JSON "%s": %s`

// JSON loads .json files and buffers with the source.json scope.
var JSON = Kind{
	Format: format.MustCompile(format.Descriptor{
		Name:              "JSON",
		Ext:               "json",
		Scope:             "source.json",
		DiagnosticPattern: `Error parsing JSON "(.*?)": .+? line (\d+) column (\d+)`,
	}),
	Parser: ParserFunc(parseJSON),
}

func init() {
	Register(JSON)
}

func parseJSON(src Source, out Sink) (any, bool) {
	data := bytes.TrimPrefix(src.Data, utf8BOM)

	// Unmarshal rejects trailing data and reports syntax errors with an
	// offset; the decoder is only used once the document is known to be valid.
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		out.WriteLine(fmt.Sprintf(jsonDebugBase, src.Path, describeJSONError(data, err)))
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		out.WriteLine(fmt.Sprintf(jsonDebugBase, src.Path, err))
		return nil, false
	}
	return convertNumbers(value), true
}

// convertNumbers replaces json.Number values with int64 when the number is
// an integer that fits, and float64 otherwise.
func convertNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		for k, item := range val {
			val[k] = convertNumbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = convertNumbers(item)
		}
		return val
	default:
		return v
	}
}

// describeJSONError appends the 1-based location of a syntax error to the
// decoder's message.
func describeJSONError(data []byte, err error) string {
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err.Error()
	}

	// Offset counts the offending byte itself.
	offset := int(syntaxErr.Offset) - 1
	if offset < 0 {
		offset = 0
	}
	if offset > len(data) {
		offset = len(data)
	}
	line, col := position(data, offset)
	return fmt.Sprintf("%s: line %d column %d (char %d)", syntaxErr.Error(), line, col, offset)
}
