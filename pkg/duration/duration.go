package duration

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse errors. Callers distinguish them with errors.Is.
var (
	// ErrInvalidFormat indicates an empty string or a string with no unit suffix.
	ErrInvalidFormat = errors.New("timers: invalid duration format")

	// ErrInvalidNumber indicates a numeric part that does not parse or is negative.
	ErrInvalidNumber = errors.New("timers: invalid number")

	// ErrUnknownUnit indicates a unit suffix outside the recognized set.
	ErrUnknownUnit = errors.New("timers: unknown time unit")
)

// Millisecond factors for the recognized unit tokens.
const (
	factorMillisecond = 1
	factorSecond      = 1000
	factorMinute      = 60 * 1000
	factorHour        = 60 * 60 * 1000
)

// Parse converts a duration string such as "500ms", "2.5s", "1m" or "1.5hr"
// into milliseconds. The numeric part may be a non-negative integer or
// decimal; the result is truncated to whole milliseconds. Parsing is
// case-insensitive and ignores surrounding whitespace.
func Parse(text string) (int64, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 0, fmt.Errorf("%w: empty duration string", ErrInvalidFormat)
	}

	// The unit starts at the first alphabetic rune.
	split := -1
	for i, r := range s {
		if unicode.IsLetter(r) {
			split = i
			break
		}
	}
	if split <= 0 {
		return 0, fmt.Errorf("%w: %q has no numeric part or no unit", ErrInvalidFormat, text)
	}

	numberPart, unitPart := s[:split], s[split:]

	number, err := strconv.ParseFloat(numberPart, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, numberPart)
	}
	if number < 0 {
		return 0, fmt.Errorf("%w: duration cannot be negative", ErrInvalidNumber)
	}

	var factor float64
	switch unitPart {
	case "ms":
		factor = factorMillisecond
	case "s":
		factor = factorSecond
	case "m":
		factor = factorMinute
	case "h", "hr":
		factor = factorHour
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unitPart)
	}

	return int64(number * factor), nil
}
