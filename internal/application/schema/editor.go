// Package schema maintains the user-defined output schema and enforces its
// naming rules on demand.
package schema

import (
	"fmt"
	"strings"
	"sync"

	"github.com/doeshing/widgera/internal/domain"
)

// Snapshot is a copy of the schema tagged with the edit that produced it.
// Versions increase with every change, so observers can drop snapshots that
// arrive out of order.
type Snapshot struct {
	Fields  domain.Schema
	Version uint64
}

// Observer receives a snapshot after every change.
type Observer func(Snapshot)

// Editor holds the ordered list of field definitions. Edits are never
// validated as they happen; call Validate before using the schema.
type Editor struct {
	mu        sync.Mutex
	fields    domain.Schema
	version   uint64
	observers []Observer
}

// NewEditor returns an editor seeded with fields, or with a single empty
// string field when none are given.
func NewEditor(fields ...domain.FieldDefinition) *Editor {
	e := &Editor{fields: domain.DefaultSchema()}
	if len(fields) > 0 {
		e.fields = domain.Schema(fields).Clone()
	}
	return e
}

// Subscribe registers an observer and returns a function removing it.
func (e *Editor) Subscribe(fn Observer) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
	idx := len(e.observers) - 1
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if idx < len(e.observers) {
			e.observers[idx] = nil
		}
	}
}

// Fields returns a copy of the current schema.
func (e *Editor) Fields() domain.Schema {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fields.Clone()
}

// Snapshot returns a copy of the current schema with its version.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{Fields: e.fields.Clone(), Version: e.version}
}

// Len returns the number of fields.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.fields)
}

// AddField appends an empty string field and returns its index.
func (e *Editor) AddField() int {
	e.mu.Lock()
	next := append(e.fields.Clone(), domain.NewField())
	idx := len(next) - 1
	e.commit(next)
	return idx
}

// RemoveField deletes the field at index. The schema never becomes empty:
// removing the only field, or an index out of range, is a no-op. It reports
// whether a field was removed.
func (e *Editor) RemoveField(index int) bool {
	e.mu.Lock()
	if len(e.fields) <= 1 || index < 0 || index >= len(e.fields) {
		e.mu.Unlock()
		return false
	}
	next := make(domain.Schema, 0, len(e.fields)-1)
	next = append(next, e.fields[:index]...)
	next = append(next, e.fields[index+1:]...)
	e.commit(next)
	return true
}

// UpdateField replaces one attribute of the field at index. Names are stored
// verbatim; types must be string or number.
func (e *Editor) UpdateField(index int, key domain.FieldKey, value string) error {
	e.mu.Lock()
	if index < 0 || index >= len(e.fields) {
		e.mu.Unlock()
		return fmt.Errorf("field index %d out of range [0,%d)", index, len(e.fields))
	}
	field := e.fields[index]
	switch key {
	case domain.FieldKeyName:
		field.Name = value
	case domain.FieldKeyType:
		t, err := domain.ParseFieldType(value)
		if err != nil {
			e.mu.Unlock()
			return err
		}
		field.Type = t
	default:
		e.mu.Unlock()
		return fmt.Errorf("unknown field attribute %q", key)
	}
	next := e.fields.Clone()
	next[index] = field
	e.commit(next)
	return nil
}

// Replace swaps in a whole schema. An empty schema resets to the default.
func (e *Editor) Replace(fields domain.Schema) {
	e.mu.Lock()
	if len(fields) == 0 {
		e.commit(domain.DefaultSchema())
		return
	}
	e.commit(fields.Clone())
}

// Reset restores the single empty string field.
func (e *Editor) Reset() {
	e.Replace(nil)
}

// Validate checks the current schema. See the package-level Validate.
func (e *Editor) Validate() error {
	return Validate(e.Fields())
}

// commit installs next, releases the lock held by the caller and notifies
// observers with the committed snapshot.
func (e *Editor) commit(next domain.Schema) {
	e.fields = next
	e.version++
	version := e.version
	observers := append([]Observer(nil), e.observers...)
	e.mu.Unlock()
	for _, fn := range observers {
		if fn != nil {
			fn(Snapshot{Fields: next.Clone(), Version: version})
		}
	}
}

// Validate returns the first violated rule, checked across the whole schema
// in a fixed order: empty names, then the identifier pattern, then
// uniqueness. It returns nil when every rule passes.
func Validate(fields domain.Schema) error {
	for _, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			return &domain.ValidationError{Message: domain.MsgFieldNameRequired}
		}
	}
	for _, f := range fields {
		if !domain.FieldNamePattern.MatchString(f.Name) {
			return &domain.ValidationError{Message: domain.MsgFieldNamePattern}
		}
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return &domain.ValidationError{Message: domain.MsgFieldNameUnique}
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}
