package inventory

import (
	"bytes"
	"fmt"
	"time"

	"compliance-engine/core/compliance"
	"compliance-engine/core/utils"

	"github.com/goccy/go-json"
)

// maxIndexedValue is the longest scalar value copied into inventory_values.
const maxIndexedValue = 255

// ObjectRow is the 'inventory_objects' table.
type ObjectRow struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Kind       string    `gorm:"column:kind;type:varchar(100);not null;uniqueIndex:idx_inventory_ref,priority:1"`
	ObjectID   string    `gorm:"column:object_id;type:varchar(191);not null;uniqueIndex:idx_inventory_ref,priority:2"`
	Attributes string    `gorm:"column:attributes;type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (ObjectRow) TableName() string {
	return "inventory_objects"
}

// ValueRow is the 'inventory_values' table: one row per scalar attribute,
// used for value lookups across objects of a kind.
type ValueRow struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Kind      string `gorm:"column:kind;type:varchar(100);not null;index:idx_inventory_value,priority:1"`
	ObjectID  string `gorm:"column:object_id;type:varchar(191);not null;index"`
	Attribute string `gorm:"column:attribute;type:varchar(191);not null;index:idx_inventory_value,priority:2"`
	Value     string `gorm:"column:value;type:varchar(255);not null;index:idx_inventory_value,priority:3"`
}

// TableName overrides the table name.
func (ValueRow) TableName() string {
	return "inventory_values"
}

// Item is a stored object. It implements compliance.Object.
type Item struct {
	Kind       string         `json:"kind"`
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (i *Item) Ref() compliance.ObjectRef {
	return compliance.ObjectRef{Kind: i.Kind, ID: i.ID}
}

func (i *Item) Attribute(name string) (any, bool) {
	v, ok := i.Attributes[name]
	return v, ok
}

// DecodeAttributes parses a JSON object, keeping numbers as json.Number.
func DecodeAttributes(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var attrs map[string]any
	if err := dec.Decode(&attrs); err != nil {
		return nil, fmt.Errorf("invalid attributes: %w", err)
	}
	if attrs == nil {
		attrs = map[string]any{}
	}
	return attrs, nil
}

func (r ObjectRow) toItem() (*Item, error) {
	attrs, err := DecodeAttributes([]byte(r.Attributes))
	if err != nil {
		return nil, fmt.Errorf("object %s:%s: %w", r.Kind, r.ObjectID, err)
	}
	return &Item{Kind: r.Kind, ID: r.ObjectID, Attributes: attrs, UpdatedAt: r.UpdatedAt}, nil
}

// valueRows extracts the indexable scalar attributes of an item.
func valueRows(item *Item) []ValueRow {
	var rows []ValueRow
	for attr, v := range item.Attributes {
		switch v.(type) {
		case string, json.Number, bool, float64:
		default:
			continue
		}
		// Same rendering the rules use when they look a value up.
		s := utils.ToString(v)
		if s == "" || len(s) > maxIndexedValue || len(attr) > 191 {
			continue
		}
		rows = append(rows, ValueRow{Kind: item.Kind, ObjectID: item.ID, Attribute: attr, Value: s})
	}
	return rows
}
