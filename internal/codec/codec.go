// Package codec converts bitmaps to and from document formats.
//
// Three formats are supported:
//
//   - text: the '.'/'#' grid form produced by bitmap.Render
//   - JSON: {"width":W,"height":H,"rows":["..#", ...]}
//   - YAML sheet: a named list of bitmaps, each stored as a block of rows
//
// Files are decoded into Named bitmaps so that single-bitmap and multi-bitmap
// sources can be handled uniformly.
package codec

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/bitgrid/internal/bitmap"
)

// Errors returned by codec operations.
var (
	// ErrUnknownFormat indicates an unsupported format name.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrInvalidDocument indicates a structurally invalid document.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyName indicates a sheet entry without a name.
	ErrEmptyName = errors.New("bitmap name is empty")

	// ErrDuplicateName indicates two sheet entries share a name.
	ErrDuplicateName = errors.New("duplicate bitmap name")
)

// DecodeError wraps a failure to decode one bitmap of a document.
type DecodeError struct {
	Source string // File path or "<input>"
	Name   string // Entry name, if known
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("decoding %s (%s): %v", e.Source, e.Name, e.Err)
	}
	return fmt.Sprintf("decoding %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Format identifies a document format.
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatText, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath infers the format from a file extension.
// Anything other than .json, .yaml or .yml is text.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Named pairs a bitmap with its name.
type Named struct {
	Name   string
	Bitmap *bitmap.Bitmap
}

// NameFromPath returns the file name without directory or extension.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DecodeFile decodes file contents according to the file's extension.
// Text and JSON documents yield one entry named after the file.
func DecodeFile(path string, data []byte) ([]Named, error) {
	name := NameFromPath(path)

	switch FormatFromPath(path) {
	case FormatJSON:
		return decodeJSONDocument(path, name, data)

	case FormatYAML:
		sheet, err := DecodeSheet(data)
		if err != nil {
			return nil, &DecodeError{Source: path, Err: err}
		}
		return sheet.Entries, nil

	default:
		// POSIX text files end with a newline that is not part of the grid.
		text := strings.TrimSuffix(string(data), "\n")
		b, err := bitmap.Parse(text)
		if err != nil {
			return nil, &DecodeError{Source: path, Name: name, Err: err}
		}
		return []Named{{Name: name, Bitmap: b}}, nil
	}
}

// Encode writes entries in the given format.
//
// Text output ends every grid with a newline; multiple grids are each
// preceded by a "-- name --" header and separated by a blank line. JSON output
// is a single document for one entry and an array of named documents
// otherwise. YAML output is always a sheet.
func Encode(format Format, entries []Named) ([]byte, error) {
	switch format {
	case FormatText:
		return encodeText(entries), nil
	case FormatJSON:
		if len(entries) == 1 {
			return EncodeJSONIndent(entries[0].Bitmap)
		}
		return EncodeJSONList(entries)
	case FormatYAML:
		return EncodeSheet(sheetFromEntries(entries))
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
}

// sheetFromEntries builds a sheet that DecodeSheet accepts. Empty names
// become "bitmap-<i>" and repeated names get a "-2", "-3", ... suffix.
func sheetFromEntries(entries []Named) *Sheet {
	s := &Sheet{}
	for i, e := range entries {
		base := e.Name
		if base == "" {
			base = fmt.Sprintf("bitmap-%d", i)
		}
		name := base
		for n := 2; ; n++ {
			if _, taken := s.Lookup(name); !taken {
				break
			}
			name = fmt.Sprintf("%s-%d", base, n)
		}
		_ = s.Add(name, e.Bitmap) // name is non-empty and unused
	}
	return s
}

func encodeText(entries []Named) []byte {
	var sb strings.Builder
	if len(entries) == 1 {
		sb.WriteString(entries[0].Bitmap.Render())
		sb.WriteByte('\n')
		return []byte(sb.String())
	}

	for i, e := range entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "-- %s --\n", e.Name)
		sb.WriteString(e.Bitmap.Render())
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}
