package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// jsonCodec edits the raw JSON text surgically so untouched fields keep
// their exact values and the key order of the source file.
type jsonCodec struct {
	raw []byte
}

func newJSONCodec(data []byte) (*jsonCodec, error) {
	// gjson assumes valid input, so reject garbage up front.
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformed)
	}
	return &jsonCodec{raw: data}, nil
}

func (c *jsonCodec) pricable() []string {
	node := gjson.GetBytes(c.raw, "pricable")
	if !node.IsArray() {
		return nil
	}

	var tiers []string
	for _, item := range node.Array() {
		if item.Type == gjson.String {
			tiers = append(tiers, item.String())
		}
	}
	return tiers
}

func (c *jsonCodec) rows() int {
	node := gjson.GetBytes(c.raw, "rows")
	if !node.IsArray() {
		return 0
	}
	return len(node.Array())
}

func (c *jsonCodec) price(row int, field string) (decimal.Decimal, bool) {
	node := gjson.GetBytes(c.raw, rowFieldPath(row, field))
	if node.Type != gjson.Number {
		return decimal.Decimal{}, false
	}

	// Parse the literal text, not the float64 gjson carries.
	v, err := decimal.NewFromString(node.Raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return v, true
}

func (c *jsonCodec) setPrice(row int, field string, v decimal.Decimal) error {
	path := rowFieldPath(row, field)
	if !gjson.GetBytes(c.raw, path).Exists() {
		return fmt.Errorf("%w: %s", ErrNoSuchField, field)
	}

	raw, err := sjson.SetRawBytes(c.raw, path, []byte(v.String()))
	if err != nil {
		return fmt.Errorf("document: set %s: %w", field, err)
	}
	c.raw = raw
	return nil
}

func (c *jsonCodec) label(row int, field string) (string, bool) {
	node := gjson.GetBytes(c.raw, rowFieldPath(row, field))
	if node.Type == gjson.String || node.Type == gjson.Number {
		return node.String(), true
	}
	return "", false
}

func (c *jsonCodec) bytes() ([]byte, error) {
	return pretty.Pretty(c.raw), nil
}

func rowFieldPath(row int, field string) string {
	return "rows." + strconv.Itoa(row) + "." + escapeKey(field)
}

// escapeKey escapes gjson/sjson path metacharacters so a tier named
// "price.usd" addresses a literal key rather than a nested path.
func escapeKey(key string) string {
	if !strings.ContainsAny(key, `.|#@*?\`) {
		return key
	}

	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '|', '#', '@', '*', '?', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
