package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/fileconv/internal/output"
)

func TestParseYAML(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    any
	}{
		{"mapping", "a: 1\nb: [x, y]\n", map[string]any{"a": 1, "b": []any{"x", "y"}}},
		{"empty stream", "", nil},
		{"explicit null", "~\n", nil},
		{"single document marker", "---\nname: demo\n", map[string]any{"name": "demo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			panel := output.NewPanel("test")
			value, ok := YAML.Parser.Parse(Source{Path: "/a.yaml", Data: []byte(tt.content)}, panel)
			require.True(t, ok, panel.Content())
			assert.Equal(t, tt.want, value)
		})
	}
}

func TestParseYAML_TabIndentation(t *testing.T) {
	l, panel := newMemLoader(t, YAML, "/cfg/tabs.yaml", "a:\n\tb: 1\n")

	value, ok, err := l.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)

	lines := panel.Lines()
	require.Len(t, lines, 2)
	problem := lines[1]
	assert.NotContains(t, problem, "\n")
	assert.True(t, strings.HasPrefix(problem, "Error parsing YAML: "), problem)
	assert.Contains(t, problem, `in "/cfg/tabs.yaml", line 2, column 1`)

	problems := panel.Problems()
	require.Len(t, problems, 1)
	assert.Equal(t, "/cfg/tabs.yaml", problems[0].File)
	assert.Equal(t, 2, problems[0].Line)
	assert.Equal(t, 1, problems[0].Column)
}

func TestParseYAML_DuplicateKey(t *testing.T) {
	panel := output.NewPanel("test")
	require.NoError(t, panel.SetPath("/", YAML.Format.DiagnosticPattern()))

	content := "a: 1\nb: 2\na: 3\n"
	_, ok := YAML.Parser.Parse(Source{Path: "/dup.yaml", Data: []byte(content)}, panel)
	require.False(t, ok)

	// The decoder reports this over two lines.
	lines := panel.Lines()
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "\n")
	assert.Contains(t, lines[0], `yaml: unmarshal errors: line 3: mapping key "a" already defined`)
	assert.Contains(t, lines[0], `in "/dup.yaml", line 3, column 1`)
	require.Len(t, panel.Problems(), 1)
}

func TestParseYAML_MultipleDocuments(t *testing.T) {
	panel := output.NewPanel("test")
	content := "a: 1\n---\n  b: 2\n"
	_, ok := YAML.Parser.Parse(Source{Path: "/multi.yaml", Data: []byte(content)}, panel)
	require.False(t, ok)

	line := panel.Lines()[0]
	assert.Contains(t, line, "expected a single document")
	assert.Contains(t, line, `in "/multi.yaml", line 3, column 3`)
}

func TestYAMLErrorLine(t *testing.T) {
	assert.Equal(t, 4, yamlErrorLine("yaml: line 4: did not find expected key"))
	assert.Equal(t, 1, yamlErrorLine("yaml: something odd"))
	assert.Equal(t, 1, yamlErrorLine("yaml: line 0: weird"))
}
