package format

import (
	"path/filepath"

	"github.com/dshills/fileconv/internal/fsys"
	"github.com/dshills/fileconv/internal/view"
)

// Appendix returns the appendix of name, e.g. "local" for "a.json-local",
// or "" if name has none.
func (f *Format) Appendix(name string) string {
	if name == "" {
		return ""
	}
	m := f.appendix.FindStringSubmatch(name)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// HasExt reports whether path ends in the canonical extension.
// The comparison is case-sensitive.
func (f *Format) HasExt(path string) bool {
	return filepath.Ext(path) == "."+f.desc.Ext
}

// SaveExtension returns the extension a companion dumper should use when
// writing data loaded from path back to disk.
//
// With an appendix the result is ("."+appendix, false): use exactly that
// extension. If the file is of this format although its extension differs,
// the result is (currentExt, true): prepend the new format's extension to the
// current one. Otherwise, or when no path is known, it is ("", false).
func (f *Format) SaveExtension(path string, v view.View) (ext string, prepend bool) {
	return f.SaveExtensionFS(fsys.Default(), path, v)
}

// SaveExtensionFS is SaveExtension reading file content through fs.
func (f *Format) SaveExtensionFS(fs fsys.FileSystem, path string, v view.View) (ext string, prepend bool) {
	if path == "" {
		path = view.FileName(v)
	}
	if path == "" {
		return "", false
	}

	if appendix := f.Appendix(path); appendix != "" {
		return "." + appendix, false
	}

	cur := filepath.Ext(path)
	if cur != "."+f.desc.Ext && f.ValidateFS(fs, path, v) == Valid {
		return cur, true
	}

	return "", false
}
