package codec

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/bitgrid/internal/bitmap"
)

// EncodeJSON returns the compact JSON document for b.
func EncodeJSON(b *bitmap.Bitmap) ([]byte, error) {
	doc := []byte(`{}`)
	var err error

	if doc, err = sjson.SetBytes(doc, "width", b.Width()); err != nil {
		return nil, fmt.Errorf("encoding width: %w", err)
	}
	if doc, err = sjson.SetBytes(doc, "height", b.Height()); err != nil {
		return nil, fmt.Errorf("encoding height: %w", err)
	}
	if doc, err = sjson.SetBytes(doc, "rows", b.Rows()); err != nil {
		return nil, fmt.Errorf("encoding rows: %w", err)
	}

	return doc, nil
}

// EncodeJSONIndent returns the JSON document for b, pretty-printed.
func EncodeJSONIndent(b *bitmap.Bitmap) ([]byte, error) {
	doc, err := EncodeJSON(b)
	if err != nil {
		return nil, err
	}
	return pretty.Pretty(doc), nil
}

// EncodeJSONList returns a pretty-printed JSON array of named documents.
func EncodeJSONList(entries []Named) ([]byte, error) {
	list := []byte(`[]`)
	for _, e := range entries {
		doc, err := EncodeJSON(e.Bitmap)
		if err != nil {
			return nil, err
		}
		if doc, err = sjson.SetBytes(doc, "name", e.Name); err != nil {
			return nil, fmt.Errorf("encoding name: %w", err)
		}
		if list, err = sjson.SetRawBytes(list, "-1", doc); err != nil {
			return nil, fmt.Errorf("appending %s: %w", e.Name, err)
		}
	}
	return pretty.Pretty(list), nil
}

// DecodeJSON reads a single JSON document.
//
// The rows are parsed with bitmap.Parse and the declared width and height
// must agree with them.
func DecodeJSON(data []byte) (*bitmap.Bitmap, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	return decodeJSONValue(gjson.ParseBytes(data))
}

func decodeJSONValue(doc gjson.Result) (*bitmap.Bitmap, error) {
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: expected object", ErrInvalidDocument)
	}

	width, height := doc.Get("width"), doc.Get("height")
	if width.Type != gjson.Number || height.Type != gjson.Number {
		return nil, fmt.Errorf("%w: width and height must be numbers", ErrInvalidDocument)
	}
	if width.Int() < 0 || height.Int() < 0 {
		return nil, fmt.Errorf("%w: negative dimensions", ErrInvalidDocument)
	}

	rowsValue := doc.Get("rows")
	if !rowsValue.IsArray() {
		return nil, fmt.Errorf("%w: rows must be an array", ErrInvalidDocument)
	}

	var rows []string
	for _, r := range rowsValue.Array() {
		if r.Type != gjson.String {
			return nil, fmt.Errorf("%w: rows must be strings", ErrInvalidDocument)
		}
		rows = append(rows, r.String())
	}

	b, err := bitmapFromRows(int(width.Int()), rows)
	if err != nil {
		return nil, err
	}

	if b.Width() != int(width.Int()) || b.Height() != int(height.Int()) {
		return nil, fmt.Errorf("%w: declared %dx%d, rows are %dx%d",
			ErrInvalidDocument, width.Int(), height.Int(), b.Width(), b.Height())
	}

	return b, nil
}

// bitmapFromRows parses rows, handling the shapes whose text form is
// the empty string.
func bitmapFromRows(width int, rows []string) (*bitmap.Bitmap, error) {
	switch {
	case len(rows) == 0:
		return bitmap.New(width, 0), nil
	case len(rows) == 1 && rows[0] == "":
		return bitmap.New(0, 1), nil
	}
	return bitmap.Parse(strings.Join(rows, "\n"))
}

func decodeJSONDocument(source, name string, data []byte) ([]Named, error) {
	if !gjson.ValidBytes(data) {
		return nil, &DecodeError{Source: source, Err: fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)}
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		b, err := decodeJSONValue(root)
		if err != nil {
			return nil, &DecodeError{Source: source, Name: name, Err: err}
		}
		return []Named{{Name: name, Bitmap: b}}, nil
	}

	var entries []Named
	for i, item := range root.Array() {
		entryName := item.Get("name").String()
		if entryName == "" {
			entryName = fmt.Sprintf("%s-%d", name, i)
		}
		b, err := decodeJSONValue(item)
		if err != nil {
			return nil, &DecodeError{Source: source, Name: entryName, Err: err}
		}
		entries = append(entries, Named{Name: entryName, Bitmap: b})
	}
	return entries, nil
}
