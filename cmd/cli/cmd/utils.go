package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// validateAndParseID validates that the argument is a non-empty, valid integer ID
func validateAndParseID(arg string) (int, error) {
	if strings.TrimSpace(arg) == "" {
		return 0, fmt.Errorf("ID cannot be empty")
	}

	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid ID '%s': must be a positive integer", arg)
	}

	if id <= 0 {
		return 0, fmt.Errorf("invalid ID '%d': must be a positive integer", id)
	}

	return id, nil
}

// parseDateFlag parses an optional YYYY-MM-DD flag value. An empty value
// returns nil.
func parseDateFlag(name, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s '%s': expected YYYY-MM-DD", name, value)
	}

	return &t, nil
}

// parseOptionalFloat parses an optional positive float flag. Zero means unset.
func parseOptionalFloat(name string, value float64) (*float64, error) {
	if value == 0 {
		return nil, nil
	}
	if value < 0 {
		return nil, fmt.Errorf("invalid %s '%v': must be positive", name, value)
	}
	return &value, nil
}
