// Package document loads, mutates, and serializes pricing files.
//
// A pricing document has two recognized top-level fields: "pricable", an
// ordered list of the row field names that hold prices, and "rows", an
// ordered list of flat records. Everything else in the file is opaque and
// survives a rewrite byte-for-byte in value and ordering. Numeric values
// are read from the raw literal text into decimals, never through float64.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnsupportedFormat indicates a file extension with no codec.
	ErrUnsupportedFormat = errors.New("document: unsupported file format")
	// ErrMalformed indicates content that does not parse in its format.
	ErrMalformed = errors.New("document: malformed document")
	// ErrNoSuchField indicates a write to a row field that does not exist.
	ErrNoSuchField = errors.New("document: no such row field")
)

// Format represents the on-disk format of a pricing file.
type Format int

const (
	// FormatUnknown represents an unknown or unsupported file format
	FormatUnknown Format = iota
	// FormatJSON represents a JSON (.json) pricing file
	FormatJSON
	// FormatYAML represents a YAML (.yaml, .yml) pricing file
	FormatYAML
)

// String returns the string representation of the Format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// DetectFormat detects the pricing file format from the file extension.
// Supported extensions:
//   - .json -> FormatJSON
//   - .yaml, .yml -> FormatYAML
//   - all others -> FormatUnknown
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// codec is the format-specific half of a Document.
type codec interface {
	pricable() []string
	rows() int
	price(row int, field string) (decimal.Decimal, bool)
	setPrice(row int, field string, v decimal.Decimal) error
	label(row int, field string) (string, bool)
	bytes() ([]byte, error)
}

// Document is one pricing file held in memory between load and write-back.
type Document struct {
	path   string
	format Format
	codec  codec
}

// Load reads and parses the pricing file at path.
func Load(path string) (*Document, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("document: read %s: %w", path, err)
	}

	return Parse(path, format, data)
}

// Parse builds a Document from raw content already in memory. The path is
// retained for error reporting and write-back.
func Parse(path string, format Format, data []byte) (*Document, error) {
	var (
		c   codec
		err error
	)

	switch format {
	case FormatJSON:
		c, err = newJSONCodec(data)
	case FormatYAML:
		c, err = newYAMLCodec(data)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	return &Document{path: path, format: format, codec: c}, nil
}

// Path returns the file path the document was loaded from.
func (d *Document) Path() string {
	return d.path
}

// Format returns the document's on-disk format.
func (d *Document) Format() Format {
	return d.format
}

// PricableTiers returns the field names declared in the top-level "pricable"
// list, in declaration order. A missing or non-list "pricable" yields nil;
// non-string entries are skipped.
func (d *Document) PricableTiers() []string {
	return d.codec.pricable()
}

// Rows returns the number of entries in the top-level "rows" list. A missing
// or non-list "rows" yields zero.
func (d *Document) Rows() int {
	return d.codec.rows()
}

// Price returns the numeric value of a row field. ok is false when the row
// is not a record, the field is absent, or the value is not a number.
// Booleans, strings, and nested structures are not numbers.
func (d *Document) Price(row int, field string) (decimal.Decimal, bool) {
	return d.codec.price(row, field)
}

// SetPrice replaces the value of an existing row field, leaving the rest of
// the document untouched.
func (d *Document) SetPrice(row int, field string, v decimal.Decimal) error {
	return d.codec.setPrice(row, field, v)
}

// RowLabel returns a display label for a row: the value of the given field
// when it is a scalar, "Unknown <field>" otherwise.
func (d *Document) RowLabel(row int, field string) string {
	if s, ok := d.codec.label(row, field); ok {
		return s
	}
	return "Unknown " + field
}

// Bytes serializes the document in its original format with stable two-space
// indentation. Unrecognized fields and key order are preserved.
func (d *Document) Bytes() ([]byte, error) {
	return d.codec.bytes()
}
