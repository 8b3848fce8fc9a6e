package schema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/widgera/internal/domain"
)

func str(name string) domain.FieldDefinition {
	return domain.FieldDefinition{Name: name, Type: domain.FieldTypeString}
}

func num(name string) domain.FieldDefinition {
	return domain.FieldDefinition{Name: name, Type: domain.FieldTypeNumber}
}

func TestValidatePrecedence(t *testing.T) {
	tests := []struct {
		name   string
		fields domain.Schema
		want   string
	}{
		{
			name:   "empty name wins over later pattern and duplicate violations",
			fields: domain.Schema{str("2cold"), str("a"), str("a"), str("   ")},
			want:   domain.MsgFieldNameRequired,
		},
		{
			name:   "empty name alone",
			fields: domain.Schema{str("")},
			want:   domain.MsgFieldNameRequired,
		},
		{
			name:   "pattern wins over duplicates",
			fields: domain.Schema{str("dup"), str("dup"), str("has-dash")},
			want:   domain.MsgFieldNamePattern,
		},
		{
			name:   "leading digit",
			fields: domain.Schema{num("2cold")},
			want:   domain.MsgFieldNamePattern,
		},
		{
			name:   "surrounding whitespace is not trimmed for the pattern",
			fields: domain.Schema{str(" age ")},
			want:   domain.MsgFieldNamePattern,
		},
		{
			name:   "duplicates across types",
			fields: domain.Schema{str("total"), num("total")},
			want:   domain.MsgFieldNameUnique,
		},
		{
			name:   "valid distinct names",
			fields: domain.Schema{str("name"), num("_age"), str("Name"), num("x1_y2")},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.fields)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *domain.ValidationError", err)
			}
			if verr.Message != tt.want {
				t.Fatalf("Validate() message = %q, want %q", verr.Message, tt.want)
			}
		})
	}
}

func TestRemoveFieldKeepsLastField(t *testing.T) {
	e := NewEditor()
	if e.RemoveField(0) {
		t.Fatal("RemoveField on a single-field schema reported a removal")
	}
	if got := e.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
}

func TestEditorEditsInPlace(t *testing.T) {
	e := NewEditor()
	idx := e.AddField()
	if idx != 1 {
		t.Fatalf("AddField() index = %d, want 1", idx)
	}
	if err := e.UpdateField(0, domain.FieldKeyName, "age"); err != nil {
		t.Fatal(err)
	}
	if err := e.UpdateField(0, domain.FieldKeyType, "number"); err != nil {
		t.Fatal(err)
	}
	if err := e.UpdateField(1, domain.FieldKeyName, "city"); err != nil {
		t.Fatal(err)
	}
	e.AddField()
	if !e.RemoveField(2) {
		t.Fatal("RemoveField(2) reported no removal")
	}

	want := domain.Schema{num("age"), str("city")}
	if diff := cmp.Diff(want, e.Fields()); diff != "" {
		t.Fatalf("Fields() mismatch (-want +got):\n%s", diff)
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestUpdateFieldRejectsBadInput(t *testing.T) {
	e := NewEditor(str("a"))
	if err := e.UpdateField(3, domain.FieldKeyName, "b"); err == nil {
		t.Fatal("expected out of range error")
	}
	if err := e.UpdateField(0, domain.FieldKeyType, "boolean"); err == nil {
		t.Fatal("expected type error")
	}
	if err := e.UpdateField(0, domain.FieldKey("label"), "b"); err == nil {
		t.Fatal("expected unknown attribute error")
	}
	if diff := cmp.Diff(domain.Schema{str("a")}, e.Fields()); diff != "" {
		t.Fatalf("schema changed on rejected edits:\n%s", diff)
	}
}

func TestLiveEditsMayViolateRules(t *testing.T) {
	e := NewEditor(str("a"), str("b"))
	if err := e.UpdateField(1, domain.FieldKeyName, "a"); err != nil {
		t.Fatalf("UpdateField should not validate, got %v", err)
	}
	if err := e.Validate(); err == nil || err.Error() != domain.MsgFieldNameUnique {
		t.Fatalf("Validate() = %v, want unique error", err)
	}
}

func TestObserversReceiveSnapshots(t *testing.T) {
	e := NewEditor()
	var seen []int
	var versions []uint64
	unsubscribe := e.Subscribe(func(s Snapshot) {
		seen = append(seen, len(s.Fields))
		versions = append(versions, s.Version)
	})

	e.AddField()
	e.RemoveField(0)
	e.Reset()
	unsubscribe()
	e.AddField()

	if diff := cmp.Diff([]int{2, 1, 1}, seen); diff != "" {
		t.Fatalf("observer calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint64{1, 2, 3}, versions); diff != "" {
		t.Fatalf("snapshot versions mismatch (-want +got):\n%s", diff)
	}
	if got := e.Snapshot().Version; got != 4 {
		t.Fatalf("Snapshot().Version = %d, want 4", got)
	}
}

func TestFieldsReturnsCopy(t *testing.T) {
	e := NewEditor(str("a"))
	fields := e.Fields()
	fields[0].Name = "mutated"
	if got := e.Fields()[0].Name; got != "a" {
		t.Fatalf("editor state leaked through Fields(): %q", got)
	}
}
