// Package vehicle defines the vehicle record and the pure validators used
// before a record is admitted to the registry.
package vehicle

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PlatePattern is the UK registration format accepted on input.
// Matching happens after upper-casing and before whitespace is stripped.
const PlatePattern = `^[A-Z]{2}[0-9]{2}\s?[A-Z]{3}$`

var plateRe = regexp.MustCompile(PlatePattern)

var (
	ErrInvalidRegistration = errors.New("invalid UK registration")
	ErrEmptyField          = errors.New("field cannot be empty")
	ErrInvalidYear         = errors.New("year must be exactly 4 digits")
)

// Vehicle is a single registry record. The registration is the map key
// and is not repeated in the stored value.
type Vehicle struct {
	Make  string `json:"make" yaml:"make"`
	Model string `json:"model" yaml:"model"`
	Year  string `json:"year" yaml:"year"`
}

// Entry pairs a registration with its record, for ordered listings.
type Entry struct {
	Registration string
	Vehicle
}

// NormalizeRegistration upper-cases raw input and removes whitespace.
// It does not validate; use ParseRegistration for that.
func NormalizeRegistration(raw string) string {
	return strings.Join(strings.Fields(strings.ToUpper(raw)), "")
}

// ParseRegistration validates raw against PlatePattern and returns the
// canonical key ("AB12 CDE" and "ab12cde" both become "AB12CDE").
func ParseRegistration(raw string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if !plateRe.MatchString(upper) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRegistration, raw)
	}
	return NormalizeRegistration(upper), nil
}

// ValidRegistration reports whether raw is an acceptable plate.
func ValidRegistration(raw string) bool {
	_, err := ParseRegistration(raw)
	return err == nil
}

// Capitalize trims s and upper-cases its first letter, lower-casing the rest.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// ParseDetail normalizes a make or model value.
func ParseDetail(raw string) (string, error) {
	detail := Capitalize(raw)
	if detail == "" {
		return "", ErrEmptyField
	}
	return detail, nil
}

// ParseYear accepts exactly four ASCII digits after trimming.
func ParseYear(raw string) (string, error) {
	year := strings.TrimSpace(raw)
	if len(year) != 4 {
		return "", fmt.Errorf("%w: %q", ErrInvalidYear, raw)
	}
	for i := 0; i < len(year); i++ {
		if year[i] < '0' || year[i] > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidYear, raw)
		}
	}
	return year, nil
}

// New builds a validated Vehicle from raw field input.
func New(manufacturer, model, year string) (Vehicle, error) {
	mk, err := ParseDetail(manufacturer)
	if err != nil {
		return Vehicle{}, fmt.Errorf("make: %w", err)
	}
	md, err := ParseDetail(model)
	if err != nil {
		return Vehicle{}, fmt.Errorf("model: %w", err)
	}
	yr, err := ParseYear(year)
	if err != nil {
		return Vehicle{}, err
	}
	return Vehicle{Make: mk, Model: md, Year: yr}, nil
}
