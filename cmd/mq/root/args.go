package root

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func idArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("id is required")
	}
	if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
		return errors.New("id must be an integer")
	}
	return nil
}

func parseID(s string) int64 {
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}

var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.DateOnly,
}

// parseWhen accepts an absolute time, a clock time today (15:04) or a
// relative offset (+90m, +2h).
func parseWhen(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("time is empty")
	}
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		d, err := time.ParseDuration(rest)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid offset %q: %w", s, err)
		}
		return now.Add(d), nil
	}
	if t, err := time.ParseInLocation("15:04", s, loc); err == nil {
		local := now.In(loc)
		return time.Date(local.Year(), local.Month(), local.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
	}
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			if layout == time.DateOnly {
				// A bare date means the end of that day.
				t = t.Add(24*time.Hour - time.Minute)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q (use 2006-01-02 15:04, 15:04 or +30m)", s)
}

func optionalWhen(s string, now time.Time, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseWhen(s, now, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
