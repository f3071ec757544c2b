package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{
			name:     "empty string returns local",
			timezone: "",
			wantErr:  false,
		},
		{
			name:     "Local returns local",
			timezone: "Local",
			wantErr:  false,
		},
		{
			name:     "valid timezone UTC",
			timezone: "UTC",
			wantErr:  false,
		},
		{
			name:     "valid timezone America/New_York",
			timezone: "America/New_York",
			wantErr:  false,
		},
		{
			name:     "invalid timezone",
			timezone: "Invalid/Timezone",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestCalendarDaysBetween(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{
			name: "same day early and late",
			from: time.Date(2025, 3, 10, 0, 1, 0, 0, loc),
			to:   time.Date(2025, 3, 10, 23, 59, 0, 0, loc),
			want: 0,
		},
		{
			name: "one minute across midnight",
			from: time.Date(2025, 3, 10, 23, 59, 0, 0, loc),
			to:   time.Date(2025, 3, 11, 0, 0, 0, 0, loc),
			want: 1,
		},
		{
			name: "across spring DST change",
			from: time.Date(2025, 3, 8, 12, 0, 0, 0, loc),
			to:   time.Date(2025, 3, 10, 12, 0, 0, 0, loc),
			want: 2,
		},
		{
			name: "negative when to is earlier",
			from: time.Date(2025, 3, 10, 9, 0, 0, 0, loc),
			to:   time.Date(2025, 3, 7, 9, 0, 0, 0, loc),
			want: -3,
		},
		{
			name: "utc instants compared in local calendar",
			from: time.Date(2025, 3, 11, 3, 0, 0, 0, time.UTC), // 23:00 on the 10th in New York
			to:   time.Date(2025, 3, 10, 15, 0, 0, 0, loc),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalendarDaysBetween(tt.from, tt.to, loc); got != tt.want {
				t.Errorf("CalendarDaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2024-02-28", 1)
	if err != nil {
		t.Fatalf("AddDays() error = %v", err)
	}
	if got != "2024-02-29" {
		t.Errorf("AddDays() = %s, want 2024-02-29", got)
	}
	if _, err := AddDays("not-a-date", 1); err == nil {
		t.Error("AddDays() should fail for an invalid date")
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 14, 30, 0, 0, time.FixedZone("X", 2*3600))
	s := FormatTimestamp(now)
	if s != "2025-06-01T12:30:00Z" {
		t.Fatalf("FormatTimestamp() = %s", s)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		t.Fatalf("ParseTimestamp() error = %v", err)
	}
	if !parsed.Equal(now) {
		t.Errorf("ParseTimestamp() = %v, want %v", parsed, now)
	}
}
