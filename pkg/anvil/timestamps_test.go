package anvil

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{
			name: "rfc3339",
			in:   `"2024-03-01T12:30:00Z"`,
			want: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		},
		{
			name: "epoch millis",
			in:   `1709296200000`,
			want: time.UnixMilli(1709296200000).UTC(),
		},
		{
			name: "null",
			in:   `null`,
		},
		{
			name: "empty string",
			in:   `""`,
		},
		{
			name: "garbage string decodes to zero",
			in:   `"not a time"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			if err := json.Unmarshal([]byte(tt.in), &ts); err != nil {
				t.Fatalf("unmarshal error: %v", err)
			}
			if tt.want.IsZero() {
				if !ts.IsZero() {
					t.Errorf("expected zero time, got %v", ts.Time)
				}
				return
			}
			if !ts.Equal(tt.want) {
				t.Errorf("got %v, want %v", ts.Time, tt.want)
			}
		})
	}
}

func TestTimestampMarshal(t *testing.T) {
	ts := Timestamp{Time: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)}
	out, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(out) != `"2024-03-01T12:30:00Z"` {
		t.Errorf("marshaled: %s", out)
	}

	out, err = json.Marshal(Timestamp{})
	if err != nil {
		t.Fatalf("marshal zero error: %v", err)
	}
	if string(out) != "null" {
		t.Errorf("zero time: %s", out)
	}
}
