package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds entity ids accepted from interaction events.
const maxIDLength = 512

// ValidateEventID validates a node id carried by an interaction event.
// The event source is an external renderer, so ids are checked before any
// lookup: non-empty, bounded, and free of control characters.
func ValidateEventID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidEvent, "node id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidEvent, "node id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidEvent, "node id contains invalid control characters")
		}
	}
	return nil
}

// ValidateSeparator validates the member-id separator used to strip
// discriminator suffixes. It must be empty (disabled) or a single
// printable, non-space character.
func ValidateSeparator(sep string) error {
	if sep == "" {
		return nil
	}
	if len([]rune(sep)) != 1 {
		return New(ErrCodeInvalidConfig, "separator must be a single character, got %q", sep)
	}
	r := []rune(sep)[0]
	if unicode.IsSpace(r) || unicode.IsControl(r) {
		return New(ErrCodeInvalidConfig, "separator must be printable, got %q", sep)
	}
	return nil
}

// ValidateOutputPath validates a render output path for safety.
// It rejects null bytes and control characters but allows absolute paths,
// since the CLI writes wherever the user asks.
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}
	return nil
}
