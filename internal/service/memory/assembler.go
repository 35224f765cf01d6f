package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/verdantlabs/careloop/internal/config"
	"github.com/verdantlabs/careloop/internal/core"
	"github.com/verdantlabs/careloop/pkg/log"
)

// contextDirective trails the assembled window as a standing instruction to
// the model.
const contextDirective = "Ground your answers in the conversation and recorded facts above. " +
	"If asked about medications, appointments, or vitals that are not shown in the records, " +
	"say you cannot verify them instead of guessing."

// Assembled is the frozen context payload plus its budget report.
type Assembled struct {
	Entries []core.ChatMessage
	Report  core.BudgetReport
}

// Assembler produces the ordered, bounded context handed to the model:
// summaries first (oldest context), then pinned facts that may have left the
// visible window, then the rolling buffer verbatim, then the standing
// directive. It only reads session state, so assembling twice against an
// unmodified session yields identical output.
type Assembler struct {
	buffer    *RollingBuffer
	summaries core.SummariesRepository
	pins      core.PinsRepository
	cfg       *config.MemoryConfig
}

func NewAssembler(
	buffer *RollingBuffer,
	summaries core.SummariesRepository,
	pins core.PinsRepository,
	cfg *config.MemoryConfig,
) *Assembler {
	return &Assembler{
		buffer:    buffer,
		summaries: summaries,
		pins:      pins,
		cfg:       cfg,
	}
}

// Assemble must run before the current user turn is persisted, so the
// payload is never contaminated by the not-yet-saved input.
func (a *Assembler) Assemble(ctx context.Context, sess core.Session) (Assembled, error) {
	window, err := a.buffer.Window(ctx, sess.ID)
	if err != nil {
		return Assembled{}, fmt.Errorf("failed to read buffer: %w", err)
	}
	sums, err := a.summaries.BySession(ctx, sess.ID)
	if err != nil {
		return Assembled{}, fmt.Errorf("failed to read summaries: %w", err)
	}
	pins, err := a.pins.BySession(ctx, sess.ID, a.cfg.MaxPins)
	if err != nil {
		return Assembled{}, fmt.Errorf("failed to read pins: %w", err)
	}

	budget := a.cfg.TokenBudget
	used := 0
	truncated := false

	// The buffer tail and the directive are never truncated.
	bufferEntries := make([]core.ChatMessage, 0, len(window))
	for _, m := range window {
		entry := core.ChatMessage{Role: m.Role, Content: m.Content}
		bufferEntries = append(bufferEntries, entry)
		used += CountTokens(entry.Content)
	}
	directive := core.ChatMessage{Role: core.RoleSystem, Content: contextDirective}
	used += CountTokens(directive.Content)

	remaining := budget - used

	// Summaries: keep from newest backwards; the oldest summary text is the
	// first thing dropped under pressure.
	kept := make([]core.Summary, 0, len(sums))
	for i := len(sums) - 1; i >= 0; i-- {
		cost := CountTokens(renderSummary(sums[i]))
		if cost > remaining {
			truncated = true
			break
		}
		kept = append(kept, sums[i])
		remaining -= cost
		used += cost
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].StartMessageID < kept[j].StartMessageID })

	// Pins arrive ranked by importance; the tail of the ranking is the first
	// to go.
	keptPins := make([]core.Pin, 0, len(pins))
	pinsHeader := CountTokens(pinsHeading)
	for _, p := range pins {
		cost := CountTokens(renderPin(p))
		if len(keptPins) == 0 {
			cost += pinsHeader
		}
		if cost > remaining {
			truncated = true
			break
		}
		keptPins = append(keptPins, p)
		remaining -= cost
		used += cost
	}
	sort.Slice(keptPins, func(i, j int) bool { return keptPins[i].ID < keptPins[j].ID })

	entries := make([]core.ChatMessage, 0, len(kept)+1+len(bufferEntries)+1)
	for _, s := range kept {
		entries = append(entries, core.ChatMessage{Role: core.RoleSystem, Content: renderSummary(s)})
	}
	if len(keptPins) > 0 {
		entries = append(entries, core.ChatMessage{Role: core.RoleSystem, Content: renderPins(keptPins)})
	}
	entries = append(entries, bufferEntries...)
	entries = append(entries, directive)

	report := core.BudgetReport{
		TokensUsed:   used,
		TokensBudget: budget,
		Truncated:    truncated,
	}

	log.FromCtx(ctx).Debug().
		Int("entries", len(entries)).
		Int("tokens_used", report.TokensUsed).
		Int("tokens_budget", report.TokensBudget).
		Bool("truncated", report.Truncated).
		Msg("context assembled")

	return Assembled{Entries: entries, Report: report}, nil
}

func renderSummary(s core.Summary) string {
	return fmt.Sprintf("Earlier in this conversation (%d messages, compressed): %s", s.MessageCount, s.Content)
}

func renderPin(p core.Pin) string {
	if p.Category != "" {
		return fmt.Sprintf("- [%s/%s] %s", p.Category, p.Urgency, p.Content)
	}
	return "- " + p.Content
}

const pinsHeading = "Facts recorded earlier in this conversation:"

func renderPins(pins []core.Pin) string {
	var b strings.Builder
	b.WriteString(pinsHeading)
	b.WriteByte('\n')
	for i, p := range pins {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderPin(p))
	}
	return b.String()
}
