package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/expense-tracker/pkg/transaction"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Codec converts the record collection to and from its text form
type Codec interface {
	Name() string
	Marshal(records []transaction.Record) ([]byte, error)
	Unmarshal(data []byte) ([]transaction.Record, error)
}

var (
	// JSON is the default store format, compatible with existing expenses.json files
	JSON Codec = jsonCodec{}
	// YAML is used for .yaml and .yml stores
	YAML Codec = yamlCodec{}
)

// CodecFor picks a codec from the file extension of path
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// CodecByName returns the codec called name ("json" or "yaml")
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return nil, fmt.Errorf("unknown format %q, use json or yaml", name)
	}
}

// fileRecord is the on-disk shape of a record. The keys match the files
// written by earlier versions of the tracker.
type fileRecord struct {
	Serial       int64  `json:"serial" yaml:"serial"`
	ItemName     string `json:"item_name" yaml:"item_name"`
	ItemPrice    price  `json:"item_price" yaml:"item_price"`
	PurchaseDate string `json:"purchase_date" yaml:"purchase_date"`
}

// storedRecord is a fileRecord as read back. Nil fields were missing.
type storedRecord struct {
	Serial       *int64  `json:"serial" yaml:"serial"`
	ItemName     *string `json:"item_name" yaml:"item_name"`
	ItemPrice    *price  `json:"item_price" yaml:"item_price"`
	PurchaseDate *string `json:"purchase_date" yaml:"purchase_date"`
}

func (row storedRecord) record(pos int) (transaction.Record, error) {
	switch {
	case row.Serial == nil:
		return transaction.Record{}, fmt.Errorf("record %d: missing serial", pos)
	case row.ItemName == nil || *row.ItemName == "":
		return transaction.Record{}, fmt.Errorf("record %d: missing item_name", pos)
	case row.ItemPrice == nil:
		return transaction.Record{}, fmt.Errorf("record %d: missing item_price", pos)
	case row.PurchaseDate == nil || *row.PurchaseDate == "":
		return transaction.Record{}, fmt.Errorf("record %d: missing purchase_date", pos)
	}

	p := decimal.Decimal(*row.ItemPrice)
	if p.IsNegative() {
		return transaction.Record{}, fmt.Errorf("record %d: negative item_price %s", pos, p)
	}
	return transaction.Record{
		ID:    *row.Serial,
		Name:  *row.ItemName,
		Price: p,
		Date:  *row.PurchaseDate,
	}, nil
}

// price writes a decimal as a bare number so files stay readable while
// keeping every digit. Trailing fractional zeros are kept, so 20.0 stays 20.0.
type price decimal.Decimal

func (p price) text() string {
	d := decimal.Decimal(p)
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// parsePrice parses a stored price, applying the same range limit as user input
func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if err := transaction.CheckAmount(transaction.FieldPrice, d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func (p price) MarshalJSON() ([]byte, error) {
	return []byte(p.text()), nil
}

func (p *price) UnmarshalJSON(data []byte) error {
	s := string(data)
	if u, err := strconv.Unquote(s); err == nil {
		s = u
	}
	d, err := parsePrice(s)
	if err != nil {
		return fmt.Errorf("invalid item_price %.32s: %w", data, err)
	}
	*p = price(d)
	return nil
}

func (p price) MarshalYAML() (interface{}, error) {
	s := p.text()
	tag := "!!int"
	if strings.Contains(s, ".") {
		tag = "!!float"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: s}, nil
}

func (p *price) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: item_price must be a number", node.Line)
	}
	d, err := parsePrice(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid item_price %.32q: %w", node.Line, node.Value, err)
	}
	*p = price(d)
	return nil
}

func toFileRecord(r transaction.Record) fileRecord {
	return fileRecord{
		Serial:       r.ID,
		ItemName:     r.Name,
		ItemPrice:    price(r.Price),
		PurchaseDate: r.Date,
	}
}

func toFileRecords(records []transaction.Record) []fileRecord {
	rows := make([]fileRecord, 0, len(records))
	for _, r := range records {
		rows = append(rows, toFileRecord(r))
	}
	return rows
}

func fromStoredRecords(rows []storedRecord) ([]transaction.Record, error) {
	records := make([]transaction.Record, 0, len(rows))
	for i, row := range rows {
		r, err := row.record(i + 1)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := checkIDs(records); err != nil {
		return nil, err
	}
	return records, nil
}

// checkIDs rejects duplicate serials and a serial that leaves no room for
// the next one
func checkIDs(records []transaction.Record) error {
	seen := make(map[int64]bool, len(records))
	for _, r := range records {
		if seen[r.ID] {
			return fmt.Errorf("duplicate serial %d", r.ID)
		}
		if r.ID == math.MaxInt64 {
			return fmt.Errorf("serial %d is out of range", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(records []transaction.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(toFileRecords(records)); err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	return buf.Bytes(), nil
}

func (jsonCodec) Unmarshal(data []byte) ([]transaction.Record, error) {
	var rows []storedRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return fromStoredRecords(rows)
}

type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Marshal(records []transaction.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toFileRecords(records)); err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	return buf.Bytes(), nil
}

func (yamlCodec) Unmarshal(data []byte) ([]transaction.Record, error) {
	var rows []storedRecord
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return fromStoredRecords(rows)
}
