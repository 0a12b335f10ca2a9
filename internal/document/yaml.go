package document

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// yamlCodec mutates the decoded node tree in place and re-encodes the whole
// document, which keeps comments, unrecognized fields, and key order intact.
type yamlCodec struct {
	doc  yaml.Node
	root *yaml.Node
}

func newYAMLCodec(data []byte) (*yamlCodec, error) {
	c := &yamlCodec{}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&c.doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if c.doc.Kind != yaml.DocumentNode || len(c.doc.Content) == 0 {
		return nil, fmt.Errorf("%w: missing document node", ErrMalformed)
	}

	c.root = c.doc.Content[0]
	if c.root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not a mapping", ErrMalformed)
	}
	return c, nil
}

func (c *yamlCodec) pricable() []string {
	node := findMapValue(c.root, "pricable")
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil
	}

	var tiers []string
	for _, item := range node.Content {
		if item.Kind == yaml.ScalarNode && item.Tag == "!!str" {
			tiers = append(tiers, item.Value)
		}
	}
	return tiers
}

func (c *yamlCodec) rows() int {
	node := findMapValue(c.root, "rows")
	if node == nil || node.Kind != yaml.SequenceNode {
		return 0
	}
	return len(node.Content)
}

func (c *yamlCodec) rowNode(row int) *yaml.Node {
	rows := findMapValue(c.root, "rows")
	if rows == nil || rows.Kind != yaml.SequenceNode || row < 0 || row >= len(rows.Content) {
		return nil
	}

	item := rows.Content[row]
	if item.Kind != yaml.MappingNode {
		return nil
	}
	return item
}

func (c *yamlCodec) price(row int, field string) (decimal.Decimal, bool) {
	node := findMapValue(c.rowNode(row), field)
	if node == nil || node.Kind != yaml.ScalarNode {
		return decimal.Decimal{}, false
	}
	if node.Tag != "!!int" && node.Tag != "!!float" {
		return decimal.Decimal{}, false
	}

	// The scalar text is the literal from the file; ".inf" and ".nan" are
	// !!float but not prices, and fail the parse.
	v, err := decimal.NewFromString(node.Value)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return v, true
}

func (c *yamlCodec) setPrice(row int, field string, v decimal.Decimal) error {
	node := findMapValue(c.rowNode(row), field)
	if node == nil {
		return fmt.Errorf("%w: %s", ErrNoSuchField, field)
	}

	node.Kind = yaml.ScalarNode
	node.Style = 0
	node.Value = v.String()
	if v.IsInteger() {
		node.Tag = "!!int"
	} else {
		node.Tag = "!!float"
	}
	return nil
}

func (c *yamlCodec) label(row int, field string) (string, bool) {
	node := findMapValue(c.rowNode(row), field)
	if node == nil || node.Kind != yaml.ScalarNode {
		return "", false
	}
	if node.Tag != "!!str" && node.Tag != "!!int" && node.Tag != "!!float" {
		return "", false
	}
	return node.Value, true
}

func (c *yamlCodec) bytes() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&c.doc); err != nil {
		return nil, fmt.Errorf("document: encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("document: encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func findMapValue(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}
