package memory

import (
	"context"

	"github.com/verdantlabs/careloop/internal/core"
)

// RollingBuffer is the bounded most-recent-K view over a session's messages.
// It is a read-only window over the message table, not a separate store, so
// there is nothing to keep in sync with summarization.
type RollingBuffer struct {
	repo core.MessagesRepository
	size int
}

func NewRollingBuffer(repo core.MessagesRepository, size int) *RollingBuffer {
	return &RollingBuffer{repo: repo, size: size}
}

// Window returns the last K messages in chronological order. Store failures
// propagate; there is no fallback.
func (b *RollingBuffer) Window(ctx context.Context, sessionID string) ([]core.StoredMessage, error) {
	return b.repo.LastN(ctx, sessionID, b.size)
}
