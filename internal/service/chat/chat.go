package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/verdantlabs/careloop/internal/config"
	"github.com/verdantlabs/careloop/internal/core"
	"github.com/verdantlabs/careloop/internal/service/memory"
	"github.com/verdantlabs/careloop/internal/service/router"
	"github.com/verdantlabs/careloop/pkg/log"
)

// modelStoreAnswer marks messages whose text came from the record store, not
// a model.
const modelStoreAnswer = "ground-truth"

// TurnResult is what a transport hands back to the caller. Structured is
// non-nil exactly when the reply was derived from the record store.
type TurnResult struct {
	Reply              string                 `json:"reply"`
	Structured         *core.StructuredAnswer `json:"structured,omitempty"`
	NeedsClarification bool                   `json:"needsClarification,omitempty"`
	Budget             *core.BudgetReport     `json:"budget,omitempty"`
}

// Service runs one inbound turn end to end: route, then either answer from
// the store or assemble context, invoke the model, and post-process.
type Service struct {
	appCfg    *config.AppConfig
	llmCfg    *config.LLMConfig
	sessions  core.SessionsRepository
	messages  core.MessagesRepository
	ai        core.AIProvider
	router    *router.Router
	assembler *memory.Assembler
	extractor *memory.PinExtractor
	compress  *memory.Summarizer
	persona   *Persona
	locks     *sessionLocks
}

func NewService(
	appCfg *config.AppConfig,
	llmCfg *config.LLMConfig,
	sessions core.SessionsRepository,
	messages core.MessagesRepository,
	ai core.AIProvider,
	rt *router.Router,
	assembler *memory.Assembler,
	extractor *memory.PinExtractor,
	compress *memory.Summarizer,
) *Service {
	return &Service{
		appCfg:    appCfg,
		llmCfg:    llmCfg,
		sessions:  sessions,
		messages:  messages,
		ai:        ai,
		router:    rt,
		assembler: assembler,
		extractor: extractor,
		compress:  compress,
		persona:   NewPersona(appCfg),
		locks:     newSessionLocks(),
	}
}

// NewSessionID mints an id for callers that start a fresh conversation.
func NewSessionID() string {
	return uuid.NewString()
}

// Turn processes one inbound utterance. onDelta, when non-nil, receives
// incremental reply fragments from streaming backends; post-processing still
// runs only on the complete reply.
func (s *Service) Turn(ctx context.Context, sessionID, input string, onDelta func(string)) (TurnResult, error) {
	mu := s.locks.acquire(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.ensureSession(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	// A turn that names a subject re-anchors the session; later pronouns
	// resolve against it. Detection failures are not fatal here: the router
	// reports the store failure itself when the turn actually needs it.
	named, err := s.router.DetectNamedPatient(ctx, input)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session_id", sess.ID).Msg("patient name detection failed")
	}
	if named != nil {
		if sess.PatientID == nil || *sess.PatientID != named.ID {
			if err := s.sessions.SetPatient(ctx, sess.ID, named.ID); err != nil {
				return TurnResult{}, err
			}
			sess.PatientID = &named.ID
		}
	}

	routed, err := s.router.Route(ctx, sess, input)
	if err != nil {
		return TurnResult{}, err
	}

	switch routed.Decision {
	case router.DecideStructured:
		return s.structuredTurn(ctx, sess, input, routed.Answer)
	case router.DecideClarify:
		return s.clarificationTurn(ctx, sess, input, routed.Clarification)
	default:
		return s.conversationalTurn(ctx, sess, input, onDelta)
	}
}

// structuredTurn records the exchange and returns the fact-derived answer.
// The model is never invoked on this path.
func (s *Service) structuredTurn(ctx context.Context, sess core.Session, input string, answer *core.StructuredAnswer) (TurnResult, error) {
	userMsg, err := s.persistMessage(ctx, sess.ID, core.RoleUser, input, "")
	if err != nil {
		return TurnResult{}, err
	}
	if _, err := s.persistMessage(ctx, sess.ID, core.RoleAssistant, answer.RenderedText, modelStoreAnswer); err != nil {
		return TurnResult{}, err
	}

	s.postProcess(ctx, sess, userMsg)
	return TurnResult{Reply: answer.RenderedText, Structured: answer}, nil
}

func (s *Service) clarificationTurn(ctx context.Context, sess core.Session, input, question string) (TurnResult, error) {
	userMsg, err := s.persistMessage(ctx, sess.ID, core.RoleUser, input, "")
	if err != nil {
		return TurnResult{}, err
	}
	if _, err := s.persistMessage(ctx, sess.ID, core.RoleAssistant, question, modelStoreAnswer); err != nil {
		return TurnResult{}, err
	}

	s.postProcess(ctx, sess, userMsg)
	return TurnResult{Reply: question, NeedsClarification: true}, nil
}

func (s *Service) conversationalTurn(ctx context.Context, sess core.Session, input string, onDelta func(string)) (TurnResult, error) {
	// Context is built and frozen before the user turn is persisted, so the
	// payload is never contaminated by the not-yet-saved input.
	assembled, err := s.assembler.Assemble(ctx, sess)
	if err != nil {
		return TurnResult{}, err
	}

	payload := make([]core.ChatMessage, 0, len(assembled.Entries)+2)
	payload = append(payload, s.persona.Build())
	payload = append(payload, assembled.Entries...)
	payload = append(payload, core.ChatMessage{Role: core.RoleUser, Content: input})

	userMsg, err := s.persistMessage(ctx, sess.ID, core.RoleUser, input, "")
	if err != nil {
		return TurnResult{}, err
	}

	reply, err := s.invoke(ctx, payload, onDelta)
	if err != nil {
		return TurnResult{}, fmt.Errorf("%w: %v", core.ErrGenerationFailed, err)
	}

	asstMsg, err := s.persistReply(ctx, sess.ID, reply)
	if err != nil {
		return TurnResult{}, err
	}

	s.postProcess(ctx, sess, userMsg, asstMsg)
	return TurnResult{Reply: reply.Content, Budget: &assembled.Report}, nil
}

// invoke prefers streaming backends, accumulating deltas into the full
// reply. Scoring and pin extraction never see partial text.
func (s *Service) invoke(ctx context.Context, payload []core.ChatMessage, onDelta func(string)) (core.Reply, error) {
	opts := core.GenOptions{
		Temperature: s.llmCfg.Temperature,
		MaxTokens:   s.llmCfg.MaxTokens,
	}

	sp, ok := s.ai.(core.StreamingProvider)
	if !ok || onDelta == nil {
		return s.ai.Chat(ctx, payload, opts)
	}

	stream, err := sp.ChatStream(ctx, payload, opts)
	if err != nil {
		return core.Reply{}, err
	}

	var reply core.Reply
	completed := false
	for delta := range stream {
		if delta.Err != nil {
			return core.Reply{}, delta.Err
		}
		if delta.Content != "" {
			reply.Content += delta.Content
			onDelta(delta.Content)
		}
		if delta.Done {
			completed = true
			if delta.Usage != nil {
				reply.PromptTokens = delta.Usage.PromptTokens
				reply.CompletionTokens = delta.Usage.CompletionTokens
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return core.Reply{}, err
	}
	// Without the completion marker the accumulated text is a fragment, not
	// a reply; persisting it would pollute scoring and summarization.
	if !completed {
		return core.Reply{}, errors.New("stream ended before completion")
	}
	if reply.Content == "" {
		return core.Reply{}, errors.New("empty streamed reply")
	}
	reply.Model = s.llmCfg.Model
	return reply, nil
}

func (s *Service) ensureSession(ctx context.Context, sessionID string) (core.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, core.ErrSessionNotFound) {
		return core.Session{}, err
	}

	sess = core.Session{ID: sessionID, PersonaID: s.appCfg.PersonaID, Saved: true}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return core.Session{}, err
	}
	return sess, nil
}

func (s *Service) persistMessage(ctx context.Context, sessionID, role, content, model string) (core.StoredMessage, error) {
	msg := core.StoredMessage{
		SessionID:  sessionID,
		Role:       role,
		Content:    content,
		Model:      model,
		TokenCount: memory.CountTokens(content),
	}
	id, err := s.messages.Add(ctx, msg)
	if err != nil {
		return core.StoredMessage{}, fmt.Errorf("failed to save %s message: %w", role, err)
	}
	msg.ID = id
	return msg, nil
}

func (s *Service) persistReply(ctx context.Context, sessionID string, reply core.Reply) (core.StoredMessage, error) {
	msg := core.StoredMessage{
		SessionID:  sessionID,
		Role:       core.RoleAssistant,
		Content:    reply.Content,
		Model:      reply.Model,
		TokenCount: reply.CompletionTokens,
	}
	if msg.TokenCount == 0 {
		msg.TokenCount = memory.CountTokens(reply.Content)
	}
	id, err := s.messages.Add(ctx, msg)
	if err != nil {
		return core.StoredMessage{}, fmt.Errorf("failed to save assistant message: %w", err)
	}
	msg.ID = id
	return msg, nil
}

// postProcess scores the new exchange, evaluates it for pins, and runs the
// compressor when the threshold is crossed. Every step is non-fatal: the
// reply has already been produced, so failures here are logged and the
// session simply continues uncompressed or unpinned until the next turn.
func (s *Service) postProcess(ctx context.Context, sess core.Session, msgs ...core.StoredMessage) {
	logger := log.FromCtx(ctx)

	for i := range msgs {
		score := memory.Score(msgs[i].Role, msgs[i].Content)
		if err := s.messages.SetImportance(ctx, msgs[i].ID, score); err != nil {
			logger.Error().Err(err).Int64("message_id", msgs[i].ID).Msg("failed to score message")
		}
		msgs[i].Importance = &score

		if _, err := s.extractor.Extract(ctx, sess, msgs[i]); err != nil {
			logger.Error().Err(err).Int64("message_id", msgs[i].ID).Msg("pin extraction failed")
		}
	}

	if _, err := s.compress.MaybeCompress(ctx, sess.ID); err != nil {
		logger.Warn().Err(err).Str("session_id", sess.ID).Msg("summarization failed, will retry next turn")
	}

	recap := ""
	if len(msgs) > 0 {
		recap = shorten(msgs[len(msgs)-1].Content, 120)
	}
	if err := s.sessions.Touch(ctx, sess.ID, recap); err != nil {
		logger.Error().Err(err).Str("session_id", sess.ID).Msg("failed to touch session")
	}
}

func shorten(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
