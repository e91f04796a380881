// Package luabind exposes the loader registry to Lua plugins as the
// "fileconv" module.
//
//	local data, err = fileconv.load("settings.json")
//	local ok = fileconv.is_valid("Info.xml", "plist")  -- true, false or nil
//	local ext, prepend = fileconv.save_ext("a.json-local", "json")
//	for _, f in ipairs(fileconv.formats()) do print(f.name, f.ext) end
package luabind

import (
	"errors"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/fileconv/internal/config"
	"github.com/dshills/fileconv/internal/format"
	"github.com/dshills/fileconv/internal/fsys"
	"github.com/dshills/fileconv/internal/loader"
	"github.com/dshills/fileconv/internal/logging"
	"github.com/dshills/fileconv/internal/output"
	"github.com/dshills/fileconv/internal/registry"
)

// ModuleName is the global and require name of the module.
const ModuleName = "fileconv"

// Module implements the fileconv Lua module.
type Module struct {
	reg       *registry.Registry
	panels    *output.Manager
	panelName string
	fs        fsys.FileSystem
	logger    *logging.Logger
}

// Option configures a Module.
type Option func(*Module)

// WithPanels makes loads report to panels acquired from m. A non-empty
// name replaces the registry's panel name.
func WithPanels(m *output.Manager, name string) Option {
	return func(mod *Module) {
		mod.panels = m
		if name != "" {
			mod.panelName = name
		}
	}
}

// WithLogger replaces the registry's logger for loads started from Lua.
func WithLogger(l *logging.Logger) Option {
	return func(mod *Module) { mod.logger = l }
}

// NewModule creates the module over reg. Files are detected and read
// through the registry's file system, and loads use its panel name and
// logger unless opts replace them.
func NewModule(reg *registry.Registry, opts ...Option) *Module {
	m := &Module{
		reg:       reg,
		panels:    output.NewManager(),
		panelName: reg.PanelName(),
		fs:        reg.FS(),
		logger:    reg.Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open reads the settings file at path, applies environment overrides and
// returns a module over the configured registry. A missing file means
// default settings.
func Open(path string, opts ...Option) (*Module, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	reg, err := registry.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewModule(reg, opts...), nil
}

// Registry returns the registry the module serves.
func (m *Module) Registry() *registry.Registry {
	return m.reg
}

// Name returns the module name.
func (m *Module) Name() string {
	return ModuleName
}

// Register installs the module as a global and makes it available to
// require.
func (m *Module) Register(L *lua.LState) error {
	L.SetGlobal(ModuleName, m.table(L))
	L.PreloadModule(ModuleName, func(L *lua.LState) int {
		L.Push(m.table(L))
		return 1
	})
	return nil
}

func (m *Module) table(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "load", L.NewFunction(m.load))
	L.SetField(mod, "is_valid", L.NewFunction(m.isValid))
	L.SetField(mod, "save_ext", L.NewFunction(m.saveExt))
	L.SetField(mod, "appendix", L.NewFunction(m.appendix))
	L.SetField(mod, "formats", L.NewFunction(m.formats))
	return mod
}

// kindArg resolves the optional extension argument at n. Without one the
// format is detected from path.
func (m *Module) kindArg(L *lua.LState, n int, path string) (loader.Kind, bool) {
	if ext := L.OptString(n, ""); ext != "" {
		k, ok := m.reg.Lookup(ext)
		if !ok {
			L.ArgError(n, "unknown format: "+ext)
		}
		return k, ok
	}
	return m.reg.Detect(path, nil)
}

// load(path [, ext]) -> value, nil | nil, err
func (m *Module) load(L *lua.LState) int {
	path := L.CheckString(1)

	kind, ok := m.kindArg(L, 2, path)
	if !ok {
		L.Push(lua.LNil)
		L.Push(lua.LString(registry.ErrUnknownFormat.Error() + ": " + path))
		return 2
	}

	l, err := loader.New(kind, loader.Options{
		Path:      path,
		Panels:    m.panels,
		PanelName: m.panelName,
		FS:        m.fs,
		Logger:    m.logger,
	})
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}

	value, ok, err := l.Load()
	switch {
	case errors.Is(err, loader.ErrNotSupported):
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	case !ok:
		msg := "parse failed"
		if lines := l.Output().Lines(); len(lines) > 0 {
			msg = lines[len(lines)-1]
		}
		L.Push(lua.LNil)
		L.Push(lua.LString(msg))
		return 2
	}

	L.Push(ToLuaValue(L, value))
	L.Push(lua.LNil)
	return 2
}

// is_valid(path, ext) -> bool | nil
func (m *Module) isValid(L *lua.LState) int {
	path := L.OptString(1, "")
	kind, _ := m.kindArg(L, 2, path)
	if kind.Format == nil {
		L.Push(lua.LNil)
		return 1
	}

	switch kind.Format.ValidateFS(m.fs, path, nil) {
	case format.Valid:
		L.Push(lua.LTrue)
	case format.Invalid:
		L.Push(lua.LFalse)
	default:
		L.Push(lua.LNil)
	}
	return 1
}

// save_ext(path, ext) -> ext | nil, prepend
func (m *Module) saveExt(L *lua.LState) int {
	path := L.CheckString(1)
	kind, _ := m.kindArg(L, 2, path)
	if kind.Format == nil {
		L.Push(lua.LNil)
		L.Push(lua.LFalse)
		return 2
	}

	ext, prepend := kind.Format.SaveExtensionFS(m.fs, path, nil)
	if ext == "" {
		L.Push(lua.LNil)
	} else {
		L.Push(lua.LString(ext))
	}
	L.Push(lua.LBool(prepend))
	return 2
}

// appendix(path, ext) -> string | nil
func (m *Module) appendix(L *lua.LState) int {
	path := L.CheckString(1)
	kind, _ := m.kindArg(L, 2, path)
	if kind.Format == nil {
		L.Push(lua.LNil)
		return 1
	}
	if a := kind.Format.Appendix(path); a != "" {
		L.Push(lua.LString(a))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

// formats() -> {{name=, ext=, scope=}, ...}
func (m *Module) formats(L *lua.LState) int {
	list := L.NewTable()
	for i, k := range m.reg.Kinds() {
		entry := L.NewTable()
		entry.RawSetString("name", lua.LString(k.Name()))
		entry.RawSetString("ext", lua.LString(k.Ext()))
		if scope := k.Format.Scope(); scope != "" {
			entry.RawSetString("scope", lua.LString(scope))
		}
		list.RawSetInt(i+1, entry)
	}
	L.Push(list)
	return 1
}
