package engine

import (
	"fmt"
	"strings"
)

// ParsePriority parses user input to a Priority.
// Supported: low, medium, high (and l/m/h, med). Empty input yields DefaultPriority.
func ParsePriority(input string) (Priority, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "":
		return DefaultPriority, nil
	case "low", "l":
		return PriorityLow, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "high", "h":
		return PriorityHigh, nil
	default:
		return "", ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", input)}
	}
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ValidationError{Field: "title", Reason: "title is required"}
	}
	return t, nil
}
