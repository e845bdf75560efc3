package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/dshills/bitgrid/internal/bitmap"
)

const arrow = "...#...\n..#.#..\n.#####.\n#.....#"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"TXT", FormatText, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"png", FormatText, true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"arrow.txt":        FormatText,
		"arrow":            FormatText,
		"/tmp/arrow.JSON":  FormatJSON,
		"sprites/all.yaml": FormatYAML,
		"sprites/all.yml":  FormatYAML,
		"notes.grid":       FormatText,
	}

	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestNameFromPath(t *testing.T) {
	if got := NameFromPath("/data/sprites/arrow.txt"); got != "arrow" {
		t.Errorf("NameFromPath = %q, want arrow", got)
	}
}

func TestDecodeFile_Text(t *testing.T) {
	entries, err := DecodeFile("shapes/arrow.txt", []byte(arrow+"\n"))
	if err != nil {
		t.Fatalf("DecodeFile error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "arrow" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Bitmap.Render() != arrow {
		t.Errorf("Render() = %q", entries[0].Bitmap.Render())
	}
}

func TestDecodeFile_TextError(t *testing.T) {
	_, err := DecodeFile("bad.txt", []byte("##\n#\n"))

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if de.Source != "bad.txt" || de.Name != "bad" {
		t.Errorf("DecodeError = %+v", de)
	}
	if !errors.Is(err, bitmap.ErrShapeMismatch) {
		t.Errorf("error should wrap ErrShapeMismatch: %v", err)
	}
}

func TestDecodeFile_JSONList(t *testing.T) {
	data := []byte(`[
  {"name": "dot", "width": 1, "height": 1, "rows": ["#"]},
  {"width": 2, "height": 1, "rows": [".#"]}
]`)

	entries, err := DecodeFile("set.json", data)
	if err != nil {
		t.Fatalf("DecodeFile error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Name != "dot" || entries[1].Name != "set-1" {
		t.Errorf("names = %q, %q", entries[0].Name, entries[1].Name)
	}
	if !entries[1].Bitmap.At(1, 0) {
		t.Error("second entry should have (1, 0) set")
	}
}

func TestDecodeFile_YAML(t *testing.T) {
	data := []byte(`bitmaps:
  - name: arrow
    rows: |
      ...#...
      ..#.#..
      .#####.
      #.....#
  - name: dot
    rows: "#"
`)

	entries, err := DecodeFile("sprites.yaml", data)
	if err != nil {
		t.Fatalf("DecodeFile error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Name != "arrow" || entries[0].Bitmap.Render() != arrow {
		t.Errorf("arrow entry = %q: %q", entries[0].Name, entries[0].Bitmap.Render())
	}
	if entries[1].Name != "dot" || entries[1].Bitmap.Count() != 1 {
		t.Errorf("dot entry = %+v", entries[1])
	}
}

func TestEncode_Text(t *testing.T) {
	one := []Named{{Name: "arrow", Bitmap: bitmap.MustParse(arrow)}}
	out, err := Encode(FormatText, one)
	if err != nil {
		t.Fatalf("Encode error = %v", err)
	}
	if string(out) != arrow+"\n" {
		t.Errorf("Encode(text) = %q", out)
	}

	two := []Named{
		{Name: "a", Bitmap: bitmap.MustParse("#.")},
		{Name: "b", Bitmap: bitmap.MustParse(".#")},
	}
	out, err = Encode(FormatText, two)
	if err != nil {
		t.Fatalf("Encode error = %v", err)
	}
	want := "-- a --\n#.\n\n-- b --\n.#\n"
	if string(out) != want {
		t.Errorf("Encode(text) = %q, want %q", out, want)
	}
}

func TestEncode_JSONList(t *testing.T) {
	entries := []Named{
		{Name: "a", Bitmap: bitmap.MustParse("#.")},
		{Name: "b", Bitmap: bitmap.MustParse(".#\n##")},
	}
	out, err := Encode(FormatJSON, entries)
	if err != nil {
		t.Fatalf("Encode error = %v", err)
	}

	if n := gjson.GetBytes(out, "#").Int(); n != 2 {
		t.Fatalf("array length = %d, want 2", n)
	}
	if name := gjson.GetBytes(out, "1.name").String(); name != "b" {
		t.Errorf("1.name = %q, want b", name)
	}

	decoded, err := DecodeFile("out.json", out)
	if err != nil {
		t.Fatalf("DecodeFile error = %v", err)
	}
	if !decoded[1].Bitmap.Equal(entries[1].Bitmap) {
		t.Error("decoded bitmap differs from encoded")
	}
}

func TestEncode_YAMLDuplicateNames(t *testing.T) {
	dot, err := bitmap.Parse("#")
	if err != nil {
		t.Fatal(err)
	}
	entries := []Named{
		{Name: "x", Bitmap: dot},
		{Name: "x", Bitmap: bitmap.New(2, 1)},
		{Name: "x-2", Bitmap: bitmap.New(1, 2)},
		{Name: "", Bitmap: bitmap.New(3, 1)},
	}

	data, err := Encode(FormatYAML, entries)
	if err != nil {
		t.Fatalf("Encode error = %v", err)
	}
	sheet, err := DecodeSheet(data)
	if err != nil {
		t.Fatalf("DecodeSheet of encoded output error = %v\n%s", err, data)
	}

	want := []string{"x", "x-2", "x-2-2", "bitmap-3"}
	if len(sheet.Entries) != len(want) {
		t.Fatalf("decoded %d entries, want %d", len(sheet.Entries), len(want))
	}
	for i, name := range want {
		got := sheet.Entries[i]
		if got.Name != name {
			t.Errorf("entry %d name = %q, want %q", i, got.Name, name)
		}
		if !got.Bitmap.Equal(entries[i].Bitmap) {
			t.Errorf("entry %d = %q, want %q", i, got.Bitmap.Render(), entries[i].Bitmap.Render())
		}
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	_, err := Encode(Format(42), nil)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("error = %v, want ErrUnknownFormat", err)
	}
}

func TestDecodeError_Message(t *testing.T) {
	err := &DecodeError{Source: "a.yaml", Name: "dot", Err: errors.New("boom")}
	if !strings.Contains(err.Error(), "a.yaml (dot): boom") {
		t.Errorf("Error() = %q", err.Error())
	}
}
