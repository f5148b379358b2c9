package schedule

import (
	"errors"
	"testing"
)

func TestMinutesOfDay(t *testing.T) {
	tests := []struct {
		name    string
		clock   string
		want    int
		wantErr bool
	}{
		{name: "midnight", clock: "00:00", want: 0},
		{name: "morning", clock: "09:05", want: 545},
		{name: "last minute", clock: "23:59", want: 1439},
		{name: "padded input", clock: " 14:30 ", want: 870},
		{name: "hour out of range", clock: "24:00", wantErr: true},
		{name: "minute out of range", clock: "12:60", wantErr: true},
		{name: "negative hour", clock: "-1:30", wantErr: true},
		{name: "missing separator", clock: "1230", wantErr: true},
		{name: "empty", clock: "", wantErr: true},
		{name: "garbage", clock: "ab:cd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MinutesOfDay(tt.clock)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidClock) {
					t.Fatalf("expected ErrInvalidClock, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestClockOfMinutes(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		want    string
		wantErr bool
	}{
		{name: "midnight", total: 0, want: "00:00"},
		{name: "mid afternoon", total: 870, want: "14:30"},
		{name: "last minute", total: 1439, want: "23:59"},
		{name: "negative", total: -1, wantErr: true},
		{name: "full day", total: 1440, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClockOfMinutes(tt.total)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidClock) {
					t.Fatalf("expected ErrInvalidClock, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClockRoundTrip(t *testing.T) {
	for total := 0; total < minutesPerDay; total += 7 {
		clock, err := ClockOfMinutes(total)
		if err != nil {
			t.Fatalf("ClockOfMinutes(%d): %v", total, err)
		}
		back, err := MinutesOfDay(clock)
		if err != nil {
			t.Fatalf("MinutesOfDay(%q): %v", clock, err)
		}
		if back != total {
			t.Fatalf("round trip of %d gave %d via %q", total, back, clock)
		}
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                   string
		aStart, aEnd           int
		bStart, bEnd           int
		want                   bool
	}{
		{name: "disjoint", aStart: 600, aEnd: 660, bStart: 720, bEnd: 780, want: false},
		{name: "back to back", aStart: 600, aEnd: 660, bStart: 660, bEnd: 720, want: false},
		{name: "back to back reversed", aStart: 660, aEnd: 720, bStart: 600, bEnd: 660, want: false},
		{name: "one minute overlap", aStart: 600, aEnd: 661, bStart: 660, bEnd: 720, want: true},
		{name: "identical", aStart: 600, aEnd: 660, bStart: 600, bEnd: 660, want: true},
		{name: "contained", aStart: 600, aEnd: 720, bStart: 630, bEnd: 660, want: true},
		{name: "containing", aStart: 630, aEnd: 660, bStart: 600, bEnd: 720, want: true},
		{name: "same start different end", aStart: 600, aEnd: 630, bStart: 600, bEnd: 720, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if got != tt.want {
				t.Fatalf("Overlaps(%d,%d,%d,%d) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
			mirrored := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd)
			if mirrored != got {
				t.Fatalf("Overlaps is not symmetric for %s", tt.name)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2026-03-14")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if FormatDate(day) != "2026-03-14" {
		t.Fatalf("expected round trip, got %q", FormatDate(day))
	}
	if h, m, s := day.Clock(); h != 0 || m != 0 || s != 0 {
		t.Fatalf("expected midnight, got %02d:%02d:%02d", h, m, s)
	}

	for _, bad := range []string{"", "14-03-2026", "2026-13-01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
