package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/verdantlabs/careloop/internal/config"
	"github.com/verdantlabs/careloop/internal/core"
	"github.com/verdantlabs/careloop/pkg/log"
	"github.com/verdantlabs/careloop/pkg/retry"
)

// Summarizer keeps per-session context growth sub-linear by collapsing the
// oldest unsummarized span into one compact summary record. Messages are
// never deleted; the covered range is only marked compressed for context
// assembly.
type Summarizer struct {
	messages  core.MessagesRepository
	summaries core.SummariesRepository
	ai        core.AIProvider
	retrier   *retry.Retrier
	cfg       *config.MemoryConfig
}

func NewSummarizer(
	messages core.MessagesRepository,
	summaries core.SummariesRepository,
	ai core.AIProvider,
	cfg *config.MemoryConfig,
) *Summarizer {
	return &Summarizer{
		messages:  messages,
		summaries: summaries,
		ai:        ai,
		retrier:   retry.NewDefaultRetrier(),
		cfg:       cfg,
	}
}

// MaybeCompress runs the trigger check and, when crossed, compresses the
// oldest contiguous uncovered span up to but excluding the rolling buffer
// window. Running it twice without new messages is a no-op: the trigger is
// derived from the latest summary's end, so a fresh summary resets it.
func (s *Summarizer) MaybeCompress(ctx context.Context, sessionID string) (*core.Summary, error) {
	latest, err := s.summaries.Latest(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var lastEnd int64
	if latest != nil {
		lastEnd = latest.EndMessageID
	}

	count, err := s.messages.CountAfter(ctx, sessionID, lastEnd)
	if err != nil {
		return nil, err
	}
	if count <= s.cfg.SummaryThreshold {
		return nil, nil
	}

	window, err := s.messages.LastN(ctx, sessionID, s.cfg.BufferSize)
	if err != nil {
		return nil, err
	}
	if len(window) == 0 {
		return nil, nil
	}
	bufferStart := window[0].ID

	all, err := s.messages.After(ctx, sessionID, lastEnd)
	if err != nil {
		return nil, err
	}

	// Span: everything past the last summary that has already rotated out of
	// the buffer window.
	var span []core.StoredMessage
	for _, m := range all {
		if m.ID < bufferStart {
			span = append(span, m)
		}
	}
	if len(span) == 0 {
		return nil, nil
	}

	content, err := s.generate(ctx, span)
	if err != nil {
		return nil, fmt.Errorf("summary generation: %w", err)
	}

	summary := core.Summary{
		SessionID:      sessionID,
		Content:        content,
		MessageCount:   len(span),
		StartMessageID: span[0].ID,
		EndMessageID:   span[len(span)-1].ID,
		Importance:     spanImportance(span),
	}

	id, err := s.summaries.Add(ctx, summary)
	if err != nil {
		return nil, fmt.Errorf("failed to persist summary: %w", err)
	}
	summary.ID = id

	log.FromCtx(ctx).Info().
		Int("messages", summary.MessageCount).
		Int64("start", summary.StartMessageID).
		Int64("end", summary.EndMessageID).
		Msg("conversation span compressed")
	return &summary, nil
}

func (s *Summarizer) generate(ctx context.Context, span []core.StoredMessage) (string, error) {
	prompt := buildSummaryPrompt(span)

	var content string
	err := s.retrier.Do(ctx, func() error {
		reply, err := s.ai.Chat(ctx, []core.ChatMessage{
			{Role: core.RoleSystem, Content: "You condense health conversations. Output only the summary text."},
			{Role: core.RoleUser, Content: prompt},
		}, core.GenOptions{Temperature: 0.2, MaxTokens: 300})
		if err != nil {
			return err
		}
		content = strings.TrimSpace(reply.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", fmt.Errorf("empty summary from model")
	}
	return content, nil
}

func buildSummaryPrompt(span []core.StoredMessage) string {
	var b strings.Builder
	b.WriteString("Summarize the conversation below in a short paragraph. Keep: ")
	b.WriteString("the topics discussed, any decisions or commitments made, and the names ")
	b.WriteString("of every person mentioned so later references to them stay resolvable. ")
	b.WriteString("Drop greetings and filler.\n\n")

	for _, m := range span {
		if m.Role == core.RoleSystem {
			continue
		}
		b.WriteString(strings.ToUpper(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	return b.String()
}

// spanImportance weights a summary by the strongest message it replaces, so
// spans holding clinical signal outrank small talk when summaries compete
// for context space.
func spanImportance(span []core.StoredMessage) float64 {
	var max float64
	for _, m := range span {
		score := Score(m.Role, m.Content)
		if m.Importance != nil {
			score = *m.Importance
		}
		if score > max {
			max = score
		}
	}
	return max
}
