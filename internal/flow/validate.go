package flow

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinNationalIDDigits is the shortest national ID accepted.
const MinNationalIDDigits = 5

var (
	dateRegex       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	nationalIDRegex = regexp.MustCompile(`^\d{5,}$`)
	// kenyanPhoneRegex matches Kenyan mobile numbers entered with a 0, 254 or
	// +254 prefix; the capture group is the subscriber part.
	kenyanPhoneRegex = regexp.MustCompile(`^(?:\+?254|0)([17]\d{8})$`)
)

// ParseDate parses a YYYY-MM-DD date into a midnight-UTC time.
func ParseDate(s string) (time.Time, bool) {
	if !dateRegex.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ValidNationalID reports whether s is a plausible national ID: digits only,
// at least MinNationalIDDigits of them.
func ValidNationalID(s string) bool {
	return nationalIDRegex.MatchString(s)
}

// ParseGender accepts a single-letter gender answer (case-insensitive) and
// returns its canonical uppercase form.
func ParseGender(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m":
		return "M", true
	case "f":
		return "F", true
	default:
		return "", false
	}
}

// NormalizeKenyanPhone validates a Kenyan mobile number and normalizes it to
// a 254-prefixed digit string. Spaces and hyphens are tolerated; the prefix
// may be 0, 254 or +254.
func NormalizeKenyanPhone(s string) (string, bool) {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
	m := kenyanPhoneRegex.FindStringSubmatch(cleaned)
	if m == nil {
		return "", false
	}
	return "254" + m[1], true
}

// ParseNumericID parses a positive numeric identifier (baby ID, appointment ID).
func ParseNumericID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseListIndex parses a 1-based list selection bounded by n. The returned
// index is 0-based.
func ParseListIndex(s string, n int) (int, bool) {
	idx, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || idx < 1 || idx > n {
		return 0, false
	}
	return idx - 1, true
}
