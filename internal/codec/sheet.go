package codec

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/bitgrid/internal/bitmap"
)

// Sheet is an ordered collection of uniquely named bitmaps.
type Sheet struct {
	Entries []Named
}

// sheetFile is the YAML representation of a Sheet.
type sheetFile struct {
	Bitmaps []sheetEntry `yaml:"bitmaps"`
}

type sheetEntry struct {
	Name string `yaml:"name"`
	Rows string `yaml:"rows"`
}

// Add appends a bitmap under name.
func (s *Sheet) Add(name string, b *bitmap.Bitmap) error {
	if name == "" {
		return ErrEmptyName
	}
	if _, ok := s.Lookup(name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	s.Entries = append(s.Entries, Named{Name: name, Bitmap: b})
	return nil
}

// Lookup returns the bitmap with the given name.
func (s *Sheet) Lookup(name string) (*bitmap.Bitmap, bool) {
	for _, e := range s.Entries {
		if e.Name == name {
			return e.Bitmap, true
		}
	}
	return nil, false
}

// Names returns entry names in order.
func (s *Sheet) Names() []string {
	names := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		names[i] = e.Name
	}
	return names
}

// DecodeSheet parses a YAML sheet.
//
// Each entry's rows use the bitmap text form. The newline that a literal
// block scalar leaves after the last row is dropped.
func DecodeSheet(data []byte) (*Sheet, error) {
	var file sheetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	sheet := &Sheet{}
	for i, entry := range file.Bitmaps {
		if entry.Name == "" {
			return nil, fmt.Errorf("entry %d: %w", i+1, ErrEmptyName)
		}
		b, err := bitmap.Parse(strings.TrimSuffix(entry.Rows, "\n"))
		if err != nil {
			return nil, &DecodeError{Source: "sheet", Name: entry.Name, Err: err}
		}
		if err := sheet.Add(entry.Name, b); err != nil {
			return nil, err
		}
	}

	return sheet, nil
}

// EncodeSheet writes s as YAML.
func EncodeSheet(s *Sheet) ([]byte, error) {
	file := sheetFile{Bitmaps: make([]sheetEntry, 0, len(s.Entries))}
	for _, e := range s.Entries {
		file.Bitmaps = append(file.Bitmaps, sheetEntry{
			Name: e.Name,
			Rows: e.Bitmap.Render(),
		})
	}

	out, err := yaml.Marshal(&file)
	if err != nil {
		return nil, fmt.Errorf("encoding sheet: %w", err)
	}
	return out, nil
}
