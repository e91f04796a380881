package loader

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"howett.net/plist"

	"github.com/dshills/fileconv/internal/format"
)

const (
	plistDebugBase = `Error parsing Property List "%s": %s`
	plistDoctype   = "<!DOCTYPE plist"
	bplistMagic    = "bplist"
)

// Plist loads XML and binary property lists. Property lists share their
// scope with every other XML document, so buffers are recognized by the
// DOCTYPE on one of their first two lines instead.
var Plist = Kind{
	Format: format.MustCompile(format.Descriptor{
		Name:              "Property List",
		Ext:               "plist",
		DiagnosticPattern: `Error parsing Property List "(.*?)": .*?, line (\d+), column (\d+)`,
		Sniffer:           format.HeaderSniffer{Marker: plistDoctype, Lines: 2},
	}),
	Parser: ParserFunc(parsePlist),
}

func init() {
	Register(Plist)
}

// xmlSyntaxError is a well-formedness violation with its position.
type xmlSyntaxError struct {
	Msg    string
	Line   int
	Column int
}

func (e *xmlSyntaxError) Error() string {
	return fmt.Sprintf("%s, line %d, column %d", e.Msg, e.Line, e.Column)
}

func parsePlist(src Source, out Sink) (any, bool) {
	fail := func(msg string) (any, bool) {
		out.WriteLine(fmt.Sprintf(plistDebugBase, src.Path, msg))
		return nil, false
	}

	if !bytes.HasPrefix(src.Data, []byte(bplistMagic)) {
		root, err := checkXML(src.Data)
		if err != nil {
			return fail(err.Error())
		}
		if root != "plist" {
			return fail(fmt.Sprintf("root element is <%s>, expected <plist>", root))
		}
	}

	var value any
	if _, err := plist.Unmarshal(src.Data, &value); err != nil {
		return fail(err.Error())
	}
	return value, true
}

// checkXML verifies data is well-formed XML and returns the name of its
// root element.
func checkXML(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var (
		root  string
		depth int
		done  bool
	)
	for {
		offset := int(dec.InputOffset())
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				line, col := position(data, int(dec.InputOffset()))
				return "", &xmlSyntaxError{Msg: syntaxErr.Msg, Line: line, Column: col}
			}
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if done {
				return "", junkError(data, offset)
			}
			if root == "" {
				root = t.Name.Local
			}
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				done = true
			}
		case xml.CharData:
			if done {
				if trimmed := bytes.TrimLeft(t, " \t\r\n"); len(trimmed) > 0 {
					return "", junkError(data, offset+len(t)-len(trimmed))
				}
			}
		}
	}

	if root == "" {
		return "", errors.New("no root element")
	}
	return root, nil
}

// junkError reports content following the root element at offset.
func junkError(data []byte, offset int) error {
	line, col := position(data, offset)
	return &xmlSyntaxError{Msg: "junk after document element", Line: line, Column: col}
}
