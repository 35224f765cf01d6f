package memory

import (
	"context"
	"fmt"

	"github.com/verdantlabs/careloop/internal/config"
	"github.com/verdantlabs/careloop/internal/core"
	"github.com/verdantlabs/careloop/pkg/log"
)

// PinExtractor scans new messages for durable clinical facts and persists
// them as pins, the long-term memory tier that survives buffer rotation and
// summarization. Absence of signal is the common case and produces nothing.
type PinExtractor struct {
	repo core.PinsRepository
	cfg  *config.MemoryConfig
}

func NewPinExtractor(repo core.PinsRepository, cfg *config.MemoryConfig) *PinExtractor {
	return &PinExtractor{repo: repo, cfg: cfg}
}

// Extract evaluates one newly persisted message. It returns the created pin,
// or nil when the message carries no signal or scores under the promotion
// threshold. Callers treat errors as non-fatal: a missed pin never fails the
// turn.
func (e *PinExtractor) Extract(ctx context.Context, sess core.Session, msg core.StoredMessage) (*core.Pin, error) {
	if msg.Role != core.RoleUser && msg.Role != core.RoleAssistant {
		return nil, nil
	}

	sig := detectSignals(msg.Content)
	if !sig.any() {
		return nil, nil
	}

	content := signalSentence(msg.Content)
	score := Score(msg.Role, content)
	if score < e.cfg.PinScoreThreshold {
		log.FromCtx(ctx).Debug().
			Float64("score", score).
			Str("category", sig.category()).
			Msg("pin candidate under threshold")
		return nil, nil
	}

	sourceID := msg.ID
	pin := core.Pin{
		SessionID:       msg.SessionID,
		Content:         content,
		SourceMessageID: &sourceID,
		Importance:      score,
		Type:            core.PinAuto,
		Category:        sig.category(),
		Urgency:         sig.urgency,
		PatientID:       sess.PatientID,
	}

	id, err := e.repo.Add(ctx, pin)
	if err != nil {
		return nil, fmt.Errorf("failed to persist pin: %w", err)
	}
	pin.ID = id

	log.FromCtx(ctx).Info().
		Str("category", pin.Category).
		Str("urgency", string(pin.Urgency)).
		Float64("importance", pin.Importance).
		Msg("semantic pin created")
	return &pin, nil
}
