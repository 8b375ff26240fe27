package model

import (
	"errors"
	"strings"
)

// Mark errors.
var (
	// ErrInvalidMark is returned when the mark code format is invalid.
	ErrInvalidMark = errors.New("invalid registration mark format")
	// ErrEmptyMark is returned when the mark code is empty.
	ErrEmptyMark = errors.New("registration mark cannot be empty")
)

const (
	// markLength is the total length of a registration mark code.
	markLength = 6
	// registryTypes are the letters allowed as the first character of a
	// mark code. Each letter identifies a BSMI registry type.
	registryTypes = "RTDQM"
)

// Mark is an immutable value object representing a BSMI registration mark
// code. A mark code is six characters: a registry-type letter followed by
// five alphanumeric characters. Mark codes are normalized to uppercase so
// that every component downstream of validation sees one canonical form.
type Mark struct {
	code string
}

// NewMark creates a new Mark from a string.
// Input is matched case-insensitively and normalized to uppercase.
// Returns an error if the code is empty or malformed.
func NewMark(code string) (Mark, error) {
	if code == "" {
		return Mark{}, ErrEmptyMark
	}

	normalized := strings.ToUpper(strings.TrimSpace(code))
	if len(normalized) != markLength {
		return Mark{}, ErrInvalidMark
	}
	if !strings.ContainsRune(registryTypes, rune(normalized[0])) {
		return Mark{}, ErrInvalidMark
	}
	for _, c := range normalized[1:] {
		isUpperLetter := c >= 'A' && c <= 'Z'
		isDigit := c >= '0' && c <= '9'
		if !isUpperLetter && !isDigit {
			return Mark{}, ErrInvalidMark
		}
	}

	return Mark{code: normalized}, nil
}

// MustNewMark creates a new Mark or panics if invalid.
// Use only for known-valid codes in tests or initialization.
func MustNewMark(code string) Mark {
	m, err := NewMark(code)
	if err != nil {
		panic(err)
	}
	return m
}

// String returns the normalized six-character mark code.
func (m Mark) String() string {
	return m.code
}

// Type returns the registry-type letter (the first character).
func (m Mark) Type() string {
	if m.code == "" {
		return ""
	}
	return m.code[:1]
}

// Number returns the five-character suffix after the registry-type letter.
func (m Mark) Number() string {
	if m.code == "" {
		return ""
	}
	return m.code[1:]
}

// IsZero returns true if this is a zero value (empty) Mark.
func (m Mark) IsZero() bool {
	return m.code == ""
}

// Equals returns true if two Mark values are equal.
func (m Mark) Equals(other Mark) bool {
	return m.code == other.code
}
