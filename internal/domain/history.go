package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// HistoryRecord is one past submission as returned by the service. Records
// are immutable once fetched.
type HistoryRecord struct {
	ID        int64     `json:"id"`
	CreatedAt Timestamp `json:"createdAt"`
	Prompt    string    `json:"prompt"`
	Fields    Schema    `json:"fields"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Output    Output    `json:"output"`
}

// HasImage reports whether the record carried an image.
func (r HistoryRecord) HasImage() bool {
	return r.ImageURL != ""
}

// localDateTimeLayouts are the zone-less forms the service may emit.
var localDateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Timestamp decodes RFC 3339 values as well as zone-less local date-times.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range localDateTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unsupported format %q", raw)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// DisplayRow is one reconciled (field, value, type) triple ready for display.
type DisplayRow struct {
	Name  string
	Value string
	Type  FieldType
}

// MissingValue is shown for schema fields absent from an output mapping.
const MissingValue = "N/A"
