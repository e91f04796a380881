package format

import (
	"github.com/dshills/fileconv/internal/fsys"
	"github.com/dshills/fileconv/internal/view"
)

// Validity is the outcome of matching a file against a format.
type Validity int

const (
	// Unknown means neither a path nor a buffer was available.
	Unknown Validity = iota
	// Invalid means the file is not of the format.
	Invalid
	// Valid means the file is of the format.
	Valid
)

// String returns the string representation of the validity.
func (v Validity) String() string {
	switch v {
	case Unknown:
		return "unknown"
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	default:
		return "Validity(?)"
	}
}

// Validate decides whether the file at path, or the buffer v, is of this
// format. Either may be empty; path falls back to v's file name.
func (f *Format) Validate(path string, v view.View) Validity {
	return f.ValidateFS(fsys.Default(), path, v)
}

// ValidateFS is Validate reading file content through fs.
func (f *Format) ValidateFS(fs fsys.FileSystem, path string, v view.View) Validity {
	if path == "" {
		path = view.FileName(v)
	}
	if path == "" && v == nil {
		return Unknown
	}

	switch {
	case f.Appendix(path) != "":
		return Valid
	case path != "" && f.HasExt(path):
		return Valid
	case f.desc.Sniffer != nil && f.desc.Sniffer.Sniff(f, Target{FS: fs, Path: path, View: v}):
		return Valid
	}
	return Invalid
}
