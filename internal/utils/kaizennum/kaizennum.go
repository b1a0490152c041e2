// Package kaizennum formats and parses the externally visible kaizen numbers.
package kaizennum

import (
	"fmt"
	"strconv"
	"strings"
)

const prefix = "KZ-"

// Format renders a record sequence as a KZ-###### number.
func Format(seq int64) string {
	return fmt.Sprintf("%s%06d", prefix, seq)
}

// Parse extracts the sequence from a kaizen number.
func Parse(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, prefix) {
		return 0, fmt.Errorf("invalid kaizen number %q", value)
	}
	digits := strings.TrimPrefix(value, prefix)
	if len(digits) < 6 {
		return 0, fmt.Errorf("invalid kaizen number %q", value)
	}
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid kaizen number %q", value)
	}
	return seq, nil
}

// IsValid reports whether the string is a well-formed kaizen number.
func IsValid(value string) bool {
	_, err := Parse(value)
	return err == nil
}
