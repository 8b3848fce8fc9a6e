package history

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/pkg/logger"
)

type stubFetcher struct {
	records []domain.HistoryRecord
	err     error
	calls   int
}

func (s *stubFetcher) History(context.Context) ([]domain.HistoryRecord, error) {
	s.calls++
	return s.records, s.err
}

func sampleRecords() []domain.HistoryRecord {
	return []domain.HistoryRecord{
		{
			ID:     3,
			Prompt: "John is 42",
			Fields: domain.Schema{{Name: "name", Type: domain.FieldTypeString}, {Name: "age", Type: domain.FieldTypeNumber}},
			Output: domain.Output{"name": "John", "age": json.Number("42")},
		},
		{ID: 2, Prompt: "second", Fields: domain.Schema{{Name: "x", Type: domain.FieldTypeString}}},
		{ID: 1, Prompt: "first", Fields: domain.Schema{{Name: "x", Type: domain.FieldTypeString}}},
	}
}

func newStore(t *testing.T, f *stubFetcher, opts ...Option) *Store {
	t.Helper()
	s, err := NewStore(f, logger.NewStd(false), opts...)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func TestRefreshLoadsRecordsInServiceOrder(t *testing.T) {
	f := &stubFetcher{records: sampleRecords()}
	s := newStore(t, f)

	state, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if state.Error != "" || state.Loading {
		t.Fatalf("unexpected state %+v", state)
	}
	var ids []int64
	for _, rec := range s.Records() {
		ids = append(ids, rec.ID)
	}
	if diff := cmp.Diff([]int64{3, 2, 1}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRefreshFailureDropsList(t *testing.T) {
	f := &stubFetcher{records: sampleRecords()}
	s := newStore(t, f)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	f.records, f.err = sampleRecords()[:1], errors.New("boom")
	state, err := s.Refresh(context.Background())

	var ferr *domain.HistoryFetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("Refresh() error = %v, want HistoryFetchError", err)
	}
	if state.Error != domain.MsgHistoryFetchFailed {
		t.Fatalf("error = %q, want %q", state.Error, domain.MsgHistoryFetchFailed)
	}
	if len(state.Records) != 0 || len(s.Records()) != 0 {
		t.Fatal("a failed refresh must not expose records")
	}
	if _, ok := s.Lookup(3); ok {
		t.Fatal("Lookup should miss after a failed refresh")
	}
}

func TestRefreshFailureMessageIgnoresServiceText(t *testing.T) {
	s := newStore(t, &stubFetcher{err: &domain.RemoteError{Status: 500, Message: "db down"}})
	state, _ := s.Refresh(context.Background())
	if state.Error != domain.MsgHistoryFetchFailed {
		t.Fatalf("error = %q, want generic fallback", state.Error)
	}
}

func TestLimitCapsRecords(t *testing.T) {
	s := newStore(t, &stubFetcher{records: sampleRecords()}, WithLimit(2))
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Records()); got != 2 {
		t.Fatalf("len(Records()) = %d, want 2", got)
	}
	// Records beyond the display limit stay addressable.
	if _, ok := s.Lookup(1); !ok {
		t.Fatal("Lookup(1) should find a record past the limit")
	}
}

func TestLookupSurvivesIndexEviction(t *testing.T) {
	s := newStore(t, &stubFetcher{records: sampleRecords()}, WithCacheSize(1))
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, id := range []int64{3, 2, 1} {
		rec, ok := s.Lookup(id)
		if !ok || rec.ID != id {
			t.Fatalf("Lookup(%d) = %+v, %v", id, rec, ok)
		}
	}
	if _, ok := s.Lookup(99); ok {
		t.Fatal("Lookup(99) should miss")
	}
}

func TestRowsMatchLiveReconciliation(t *testing.T) {
	var rec domain.HistoryRecord
	dec := json.NewDecoder(strings.NewReader(`{
		"id": 7,
		"createdAt": "2024-05-01T10:00:00",
		"prompt": "John is 42",
		"fields": [{"name":"name","type":"string"},{"name":"age","type":"number"},{"name":"city","type":"string"}],
		"imageUrl": null,
		"output": {"name":"John","age":42}
	}`))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := []domain.DisplayRow{
		{Name: "name", Value: "John", Type: domain.FieldTypeString},
		{Name: "age", Value: "42", Type: domain.FieldTypeNumber},
		{Name: "city", Value: domain.MissingValue, Type: domain.FieldTypeString},
	}
	if diff := cmp.Diff(want, Rows(rec)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if rec.HasImage() {
		t.Fatal("null imageUrl should mean no image")
	}
}
