// Package id mints identifiers for records created on this server.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate returns "<prefix>-<nanoid>", e.g. "book-V1StGXR8_Z5jdHi6B-myT".
// Item ids carry their schema's prefix so a bare id still tells which
// collection it belongs to.
func Generate(prefix string) (string, error) {
	suffix, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate %s id: %w", prefix, err)
	}
	return prefix + "-" + suffix, nil
}

// FieldID returns a random UUID for a custom field. Clients mint the same
// format offline.
func FieldID() string {
	return uuid.NewString()
}
