package storage

import (
	"fmt"

	"github.com/google/uuid"
)

// newTransactionID returns a UUIDv7: a millisecond timestamp followed by
// random bits, so ids sort by creation time and never collide in practice.
func newTransactionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate transaction id: %w", err)
	}
	return id.String(), nil
}
