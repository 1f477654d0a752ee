// Package names holds the validation and normalization rules for registrable
// names.
package names

import (
	dErrors "ans/pkg/domain-errors"
)

const (
	MinLength = 1
	MaxLength = 20
)

// Validate applies the registration rules in order; the first failing rule
// determines the error:
//
//  1. length (bytes) within [MinLength, MaxLength]
//  2. no 0x / 0X prefix, whatever follows it
//  3. ASCII letters and digits only
func Validate(name string) error {
	if len(name) < MinLength {
		return dErrors.New(dErrors.CodeTooShort, "name is too short")
	}
	if len(name) > MaxLength {
		return dErrors.New(dErrors.CodeTooLong, "name is too long")
	}
	if HasHexPrefix(name) {
		return dErrors.New(dErrors.CodeHexStringNotAllowed, "name cannot be a hex string")
	}
	for i := 0; i < len(name); i++ {
		if !isAlphanumeric(name[i]) {
			return dErrors.New(dErrors.CodeInvalidCharacters, "name contains invalid characters")
		}
	}
	return nil
}

// Normalize lowercases ASCII letters and leaves every other byte untouched.
// Lookups normalize without validating, so arbitrary input must pass through
// unchanged apart from A-Z.
func Normalize(name string) string {
	upper := -1
	for i := 0; i < len(name); i++ {
		if isUpper(name[i]) {
			upper = i
			break
		}
	}
	if upper < 0 {
		return name
	}
	b := []byte(name)
	for i := upper; i < len(b); i++ {
		if isUpper(b[i]) {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// Canonical validates name and returns its normalized form.
func Canonical(name string) (string, error) {
	if err := Validate(name); err != nil {
		return "", err
	}
	return Normalize(name), nil
}

// HasHexPrefix reports whether name starts like a hex literal.
func HasHexPrefix(name string) bool {
	return len(name) >= 2 && name[0] == '0' && (name[1] == 'x' || name[1] == 'X')
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || isUpper(c) || (c >= '0' && c <= '9')
}
