// Package domain defines core entities and value objects for the Widgera client.
//
// This file contains the output schema model: the ordered list of named, typed
// fields a user wants extracted from a prompt. The domain layer is independent
// of infrastructure concerns.
package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldType is the declared value type of an output field.
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeNumber FieldType = "number"
)

// FieldTypes lists the accepted field types in display order.
var FieldTypes = []FieldType{FieldTypeString, FieldTypeNumber}

// FieldNamePattern is the identifier format every field name must match.
var FieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	return t == FieldTypeString || t == FieldTypeNumber
}

// ParseFieldType normalises user input into a FieldType.
func ParseFieldType(raw string) (FieldType, error) {
	t := FieldType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("field type must be 'string' or 'number', got %q", raw)
	}
	return t, nil
}

// FieldDefinition describes one output field.
type FieldDefinition struct {
	Name string    `json:"name" yaml:"name"`
	Type FieldType `json:"type" yaml:"type"`
}

// NewField returns an empty string field, the default for a freshly added row.
func NewField() FieldDefinition {
	return FieldDefinition{Type: FieldTypeString}
}

// String renders the field as "name (type)".
func (f FieldDefinition) String() string {
	return fmt.Sprintf("%s (%s)", f.Name, f.Type)
}

// Schema is an ordered sequence of field definitions. Order only matters for
// display.
type Schema []FieldDefinition

// DefaultSchema is the schema every new or cleared form starts from.
func DefaultSchema() Schema {
	return Schema{NewField()}
}

// Clone returns an independent copy of the schema.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	copy(out, s)
	return out
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for _, f := range s {
		names = append(names, f.Name)
	}
	return names
}

// FieldKey identifies the attribute of a FieldDefinition targeted by an edit.
type FieldKey string

const (
	FieldKeyName FieldKey = "name"
	FieldKeyType FieldKey = "type"
)

// ParseFieldSpec parses the CLI form "name:type". A missing type defaults to
// string. The name is not validated here.
func ParseFieldSpec(spec string) (FieldDefinition, error) {
	name, rawType, found := strings.Cut(spec, ":")
	field := FieldDefinition{Name: strings.TrimSpace(name), Type: FieldTypeString}
	if !found {
		return field, nil
	}
	t, err := ParseFieldType(rawType)
	if err != nil {
		return FieldDefinition{}, fmt.Errorf("field %q: %w", spec, err)
	}
	field.Type = t
	return field, nil
}
