package loader

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/fileconv/internal/format"
)

const tomlDebugBase = `Error parsing TOML: %s in "%s", line %d, column %d`

// TOML loads .toml files and buffers with the source.toml scope.
var TOML = Kind{
	Format: format.MustCompile(format.Descriptor{
		Name:              "TOML",
		Ext:               "toml",
		Scope:             "source.toml",
		DiagnosticPattern: `Error parsing TOML: .+? in "(.*?)", line (\d+), column (\d+)`,
	}),
	Parser: ParserFunc(parseTOML),
}

func init() {
	Register(TOML)
}

func parseTOML(src Source, out Sink) (any, bool) {
	var value map[string]any
	if err := toml.Unmarshal(src.Data, &value); err != nil {
		line, col := 1, 1
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			line, col = decodeErr.Position()
		}
		out.WriteLine(fmt.Sprintf(tomlDebugBase, joinMultiline(err.Error()), src.Path, line, col))
		return nil, false
	}
	if value == nil {
		value = map[string]any{}
	}
	return value, true
}
