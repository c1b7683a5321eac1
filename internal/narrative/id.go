package narrative

import "github.com/google/uuid"

// NewID returns a fresh time-ordered identifier for any graph entity.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
