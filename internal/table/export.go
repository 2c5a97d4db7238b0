package table

import (
	"fmt"
	"strings"
)

// DefaultBaseName is used when neither the user nor the source supplies a
// filename.
const DefaultBaseName = "spotify_tracks"

// Format selects an export serializer.
type Format string

const (
	FormatText    Format = "txt"
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// Formats lists every supported export format in display order.
var Formats = []Format{FormatText, FormatCSV, FormatXLSX, FormatParquet}

// ParseFormat maps a case-insensitive name (with or without a leading dot)
// to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if _, ok := encoders[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

// Encoder serializes a full table into one download format.
type Encoder interface {
	// Encode returns the serialized table.
	Encode(t *Table) ([]byte, error)

	// Extension returns the file extension without a leading dot.
	Extension() string

	// ContentType returns the MIME type of the encoded bytes.
	ContentType() string
}

var encoders = map[Format]Encoder{
	FormatText:    delimitedEncoder{ext: "txt", contentType: "text/plain"},
	FormatCSV:     delimitedEncoder{ext: "csv", contentType: "text/csv"},
	FormatXLSX:    workbookEncoder{},
	FormatParquet: parquetEncoder{},
}

// EncoderFor returns the encoder registered for f.
func EncoderFor(f Format) (Encoder, error) {
	enc, ok := encoders[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	return enc, nil
}

// Artifact is a serialized table ready for delivery as a file download.
type Artifact struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ResolveBaseName returns the trimmed user-supplied name, or fallback when it
// is blank, or DefaultBaseName when both are blank.
func ResolveBaseName(name, fallback string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if f := strings.TrimSpace(fallback); f != "" {
		return f
	}
	return DefaultBaseName
}

// Export serializes the whole table (header plus every data row, in current
// order) in format f. The filename is "<baseName>.<extension>" where a blank
// baseName falls back to DefaultBaseName.
func Export(t *Table, f Format, baseName string) (Artifact, error) {
	enc, err := EncoderFor(f)
	if err != nil {
		return Artifact{}, err
	}
	if !t.HasHeader() {
		return Artifact{}, ErrEmptyTable
	}

	data, err := enc.Encode(t)
	if err != nil {
		return Artifact{}, fmt.Errorf("encode %s: %w", f, err)
	}

	return Artifact{
		Data:        data,
		Filename:    ResolveBaseName(baseName, "") + "." + enc.Extension(),
		ContentType: enc.ContentType(),
	}, nil
}

// delimitedEncoder joins cells with Delimiter and rows with LineBreak. Text
// and CSV exports share it, so both produce byte-identical output.
type delimitedEncoder struct {
	ext         string
	contentType string
}

func (e delimitedEncoder) Encode(t *Table) ([]byte, error) {
	if !t.HasHeader() {
		return nil, ErrEmptyTable
	}
	var b strings.Builder
	b.WriteString(strings.Join(t.header, Delimiter))
	for _, row := range t.rows {
		b.WriteString(LineBreak)
		b.WriteString(strings.Join(row, Delimiter))
	}
	return []byte(b.String()), nil
}

func (e delimitedEncoder) Extension() string   { return e.ext }
func (e delimitedEncoder) ContentType() string { return e.contentType }
