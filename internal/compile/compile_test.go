package compile

import (
	"errors"
	"testing"
	"time"

	"postpilot/internal/calendar"
	"postpilot/internal/content"
)

func fixedNow() time.Time {
	return time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)
}

func testEntry(day int, date time.Time, at string) calendar.Entry {
	return calendar.Entry{
		Day:         day,
		Date:        date,
		Weekday:     date.Weekday().String(),
		ContentType: content.TypeEducational,
		Theme:       "go tooling",
		Hashtags:    []string{"#Go"},
		OptimalTime: at,
		Status:      calendar.StatusPlanned,
	}
}

func TestCompileDeterministicID(t *testing.T) {
	t.Parallel()
	c := Compiler{UserID: "u-9", RunID: "r-1", Loc: time.UTC, Now: fixedNow}
	entry := testEntry(3, fixedNow().AddDate(0, 0, 2), "09:30")

	j1, err := c.Compile(entry)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	j2, err := c.Compile(entry)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if j1.ID != "u-9:3" || j1.ID != j2.ID {
		t.Fatalf("ids = %q, %q", j1.ID, j2.ID)
	}
	if j1.State != calendar.StatusPlanned {
		t.Fatalf("state = %q", j1.State)
	}

	want := time.Date(2026, time.January, 7, 9, 30, 0, 0, time.UTC)
	if !j1.TriggerAt.Equal(want) {
		t.Fatalf("trigger = %v, want %v", j1.TriggerAt, want)
	}
}

func TestCompileRejectsPastTrigger(t *testing.T) {
	t.Parallel()
	c := Compiler{UserID: "u-9", RunID: "r-1", Loc: time.UTC, Now: fixedNow}
	entry := testEntry(1, fixedNow(), "07:00") // same day, before now

	_, err := c.Compile(entry)
	var serr *SchedulingError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SchedulingError, got %v", err)
	}
	if serr.JobID != "u-9:1" {
		t.Fatalf("JobID = %q", serr.JobID)
	}
}

func TestCompileRejectsBadTime(t *testing.T) {
	t.Parallel()
	c := Compiler{UserID: "u", RunID: "r", Loc: time.UTC, Now: fixedNow}
	for _, at := range []string{"", "9am", "25:00", "10:61", "10:5:0"} {
		entry := testEntry(2, fixedNow().AddDate(0, 0, 1), at)
		_, err := c.Compile(entry)
		var serr *SchedulingError
		if !errors.As(err, &serr) {
			t.Fatalf("time %q: expected SchedulingError, got %v", at, err)
		}
	}
}

func TestParseHHMM(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in      string
		h, m    int
		wantErr bool
	}{
		{in: "09:30", h: 9, m: 30},
		{in: " 17:05 ", h: 17, m: 5},
		{in: "0:0", h: 0, m: 0},
		{in: "23:59", h: 23, m: 59},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		h, m, err := ParseHHMM(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseHHMM(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseHHMM(%q): %v", tc.in, err)
		}
		if h != tc.h || m != tc.m {
			t.Fatalf("ParseHHMM(%q) = %d:%d", tc.in, h, m)
		}
	}
}
