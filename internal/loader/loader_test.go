package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/fileconv/internal/format"
	"github.com/dshills/fileconv/internal/fsys"
	"github.com/dshills/fileconv/internal/output"
	"github.com/dshills/fileconv/internal/view"
)

func newMemLoader(t *testing.T, kind Kind, path, content string) (*Loader, *output.Panel) {
	t.Helper()
	memfs := fsys.NewMemFS()
	memfs.AddFile(path, content)
	panel := output.NewPanel("test")
	l, err := New(kind, Options{Path: path, FS: memfs, Output: panel})
	require.NoError(t, err)
	return l, panel
}

func TestBuiltins(t *testing.T) {
	var exts []string
	for _, k := range Builtins() {
		exts = append(exts, k.Ext())
	}
	assert.ElementsMatch(t, []string{"json", "plist", "yaml", "toml"}, exts)
}

func TestRegister_NilPanics(t *testing.T) {
	assert.Panics(t, func() { Register(Kind{}) })
	assert.Panics(t, func() { Register(Kind{Format: JSON.Format}) })
}

func TestNew_NoFile(t *testing.T) {
	_, err := New(JSON, Options{})
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = New(JSON, Options{View: view.NewBuffer("{}", view.WithScope("source.json"))})
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestNew_PathFromView(t *testing.T) {
	w := view.StaticWindow(7)
	v := view.NewBuffer("{}", view.WithPath("/proj/a.json"), view.WithWindow(w))

	l, err := New(JSON, Options{View: v})
	require.NoError(t, err)
	assert.Equal(t, "/proj/a.json", l.Path())
	assert.Equal(t, 7, l.Window().ID())
	assert.Equal(t, "/proj", l.Output().Dir())
	assert.Equal(t, JSON.Format.DiagnosticPattern(), l.Output().Pattern())
	assert.Equal(t, StateCreated, l.State())
}

func TestNew_AcquiresAndClearsSharedPanel(t *testing.T) {
	panels := output.NewManager()
	w := view.StaticWindow(1)

	shared := panels.Acquire(w, "")
	shared.WriteLine("stale")

	l, err := New(JSON, Options{Path: "/a/b.json", Window: w, Panels: panels})
	require.NoError(t, err)
	assert.Same(t, shared, l.Output())
	assert.Empty(t, shared.Lines())
	assert.Equal(t, "/a", shared.Dir())
}

func TestNew_SuppliedPanelNotCleared(t *testing.T) {
	panel := output.NewPanel("mine")
	panel.WriteLine("kept")

	l, err := New(YAML, Options{Path: "/c/d.yaml", Output: panel})
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, l.Output().Lines())
	assert.Equal(t, "/c", panel.Dir())
	assert.Equal(t, YAML.Format.DiagnosticPattern(), panel.Pattern())
}

func TestLoad_NotSupported(t *testing.T) {
	l, panel := newMemLoader(t, JSON, "/x/notes.txt", `{"a": 1}`)

	value, ok, err := l.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotSupported))

	var nse *NotSupportedError
	require.ErrorAs(t, err, &nse)
	assert.Equal(t, "JSON", nse.Format)
	assert.Equal(t, "not a JSON file: /x/notes.txt", nse.Error())

	assert.Nil(t, value)
	assert.False(t, ok)
	assert.Empty(t, panel.Lines())
	assert.Equal(t, StateFailed, l.State())
}

func TestLoad_Success(t *testing.T) {
	l, panel := newMemLoader(t, JSON, "/x/a.json", `{"a":1}`)

	value, ok, err := l.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"a": int64(1)}, value)
	assert.Equal(t, []string{"Parsing JSON... (/x/a.json)"}, panel.Lines())
	assert.Equal(t, StateParsed, l.State())
}

func TestLoad_ReadError(t *testing.T) {
	panel := output.NewPanel("test")
	l, err := New(YAML, Options{Path: "/missing/a.yaml", FS: fsys.NewMemFS(), Output: panel})
	require.NoError(t, err)

	value, ok, err := l.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)

	lines := panel.Lines()
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], `Error opening "/missing/a.yaml": `), lines[1])
	assert.Empty(t, panel.Problems())
	assert.Equal(t, StateFailed, l.State())
}

func TestLoad_FromBuffer(t *testing.T) {
	memfs := fsys.NewMemFS()
	memfs.AddFile("/p/a.json", `{"disk": true}`)
	v := view.NewBuffer(`{"buffer": true}`, view.WithPath("/p/a.json"))

	l, err := New(JSON, Options{View: v, FS: memfs})
	require.NoError(t, err)

	value, ok, err := l.Load(FromBuffer())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"buffer": true}, value)

	value, ok, err = l.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"disk": true}, value)
}

func TestLoad_FromBufferWithoutView(t *testing.T) {
	l, _ := newMemLoader(t, JSON, "/p/b.json", `[1]`)
	value, ok, err := l.Load(FromBuffer())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{int64(1)}, value)
}

func TestLoad_SniffedByScope(t *testing.T) {
	memfs := fsys.NewMemFS()
	memfs.AddFile("/p/data.txt", "a: [1, 2]\n")
	v := view.NewBuffer("", view.WithPath("/p/data.txt"), view.WithScope("source.yaml"))

	l, err := New(YAML, Options{View: v, FS: memfs})
	require.NoError(t, err)
	assert.Equal(t, format.Valid, l.IsValid())

	ext, prepend := l.NewFileExt()
	assert.Equal(t, ".txt", ext)
	assert.True(t, prepend)

	value, ok, err := l.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"a": []any{1, 2}}, value)
}

func TestLoad_ParserPanicIsReported(t *testing.T) {
	boom := Kind{
		Format: format.MustCompile(format.Descriptor{Name: "Boom", Ext: "boom"}),
		Parser: ParserFunc(func(Source, Sink) (any, bool) { panic("decoder exploded") }),
	}
	l, panel := newMemLoader(t, boom, "/b/x.boom", "")

	value, ok, err := l.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
	assert.Contains(t, panel.Content(), `Error parsing Boom "/b/x.boom": decoder exploded`)
	assert.Equal(t, StateFailed, l.State())
}

func TestKind_Override(t *testing.T) {
	k, err := JSON.Override(func(d *format.Descriptor) {
		d.AppendixPattern = ""
		d.Scope = "source.json.custom"
	})
	require.NoError(t, err)
	assert.Equal(t, "source.json.custom", k.Format.Scope())
	assert.Equal(t, "source.json", JSON.Format.Scope())
	assert.Equal(t, "dev", k.Format.Appendix("a.json-dev"))

	_, err = JSON.Override(func(d *format.Descriptor) { d.AppendixPattern = "(" })
	assert.ErrorIs(t, err, format.ErrInvalidPattern)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "created", StateCreated.String())
	assert.Equal(t, "validity-checked", StateValidityChecked.String())
	assert.Equal(t, "parsed", StateParsed.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}
