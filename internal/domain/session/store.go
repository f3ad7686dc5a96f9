package session

import (
	"context"

	"github.com/google/uuid"
)

// Store keeps live sessions. Implementations must not persist credentials.
type Store interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
