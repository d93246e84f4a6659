package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parsers for the string-typed config fields. Durations travel as Go
// duration strings ("45s", "1h30m") and wall-clock times as 24h "HH:MM";
// path names the offending field so reload errors point at the right line.

func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// ParseClockField validates an "HH:MM" field and returns it zero-padded;
// a blank value yields def.
func ParseClockField(path, raw, def string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	hh, mm, ok := strings.Cut(s, ":")
	h, herr := strconv.Atoi(hh)
	m, merr := strconv.Atoi(mm)
	if !ok || herr != nil || merr != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return "", fmt.Errorf("%s: invalid clock time %q, expected HH:MM", path, raw)
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}
