package httpapi

import (
	"testing"
	"time"
)

func TestParseRef(t *testing.T) {
	fixed := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return fixed }

	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{"empty falls back to injected clock", "", fixed, false},
		{"rfc3339", "2026-02-01T09:30:00Z", time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC), false},
		{"bare date in local time", "2026-02-01", time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local), false},
		{"garbage", "yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRef(tt.value, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseRef(%q) = %v, want error", tt.value, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRef(%q): %v", tt.value, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseRef(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
