package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/verdantlabs/careloop/internal/config"
	"github.com/verdantlabs/careloop/internal/core"
	"github.com/verdantlabs/careloop/pkg/log"
)

type Decision int

const (
	// DecideConversational routes the turn to context assembly and the model.
	DecideConversational Decision = iota
	// DecideStructured means the answer was derived from the record store;
	// the model is never invoked.
	DecideStructured
	// DecideClarify means a pronoun could not be resolved to a subject.
	DecideClarify
)

type Result struct {
	Decision      Decision
	Answer        *core.StructuredAnswer
	Clarification string
}

// Router classifies an inbound utterance and, for structured-domain
// questions, answers it straight from the clinical store. Adapter failures
// on that path are reported as errors, never papered over with a generated
// answer: guessing here is the one outcome this component exists to prevent.
type Router struct {
	subjects *SubjectResolver
	store    core.ClinicalStore
	cfg      *config.MemoryConfig
	now      func() time.Time
}

func NewRouter(store core.ClinicalStore, cfg *config.MemoryConfig) *Router {
	return &Router{
		subjects: NewSubjectResolver(store),
		store:    store,
		cfg:      cfg,
		now:      time.Now,
	}
}

// DetectNamedPatient exposes name detection so the orchestrator can update
// the session's subject linkage on any turn, not just structured ones.
func (r *Router) DetectNamedPatient(ctx context.Context, text string) (*core.Patient, error) {
	return r.subjects.DetectNamed(ctx, text)
}

func (r *Router) Route(ctx context.Context, sess core.Session, input string) (Result, error) {
	domain := Classify(input)
	if domain == DomainGeneral {
		return Result{Decision: DecideConversational}, nil
	}

	logger := log.FromCtx(ctx)

	patient, err := r.subjects.Resolve(ctx, sess, input)
	if errors.Is(err, core.ErrSubjectUnresolved) {
		logger.Debug().Str("domain", string(domain)).Msg("structured query with unresolved subject")
		return Result{
			Decision:      DecideClarify,
			Clarification: "Who are you asking about? Please mention them by name.",
		}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("subject resolution: %w", err)
	}

	answer, err := r.fetchAndFormat(ctx, domain, patient)
	if err != nil {
		return Result{}, err
	}

	logger.Info().
		Str("domain", string(domain)).
		Str("patient", patient.ID).
		Int("facts", answer.FactsUsed).
		Msg("answered from record store")

	return Result{Decision: DecideStructured, Answer: answer}, nil
}

func (r *Router) fetchAndFormat(ctx context.Context, domain Domain, patient core.Patient) (*core.StructuredAnswer, error) {
	answer := &core.StructuredAnswer{
		AnsweredFromStore: true,
		Domain:            string(domain),
		SubjectID:         patient.ID,
	}

	switch domain {
	case DomainMedication:
		meds, err := r.store.ListMedications(ctx, patient.ID)
		if err != nil {
			return nil, fmt.Errorf("medication lookup: %w", err)
		}
		answer.FactsUsed = len(meds)
		answer.RenderedText = renderMedications(patient, meds)

	case DomainAppointment:
		appts, err := r.store.ListAppointments(ctx, patient.ID)
		if err != nil {
			return nil, fmt.Errorf("appointment lookup: %w", err)
		}
		upcoming := 0
		for _, a := range appts {
			if a.ScheduledAt.After(r.now()) {
				upcoming++
			}
		}
		answer.FactsUsed = upcoming
		answer.RenderedText = renderAppointments(patient, appts, r.now())

	case DomainVitals:
		rng := core.VitalRange{From: r.now().AddDate(0, 0, -r.cfg.VitalsWindowDays)}
		vitals, err := r.store.ListVitals(ctx, patient.ID, rng)
		if err != nil {
			return nil, fmt.Errorf("vitals lookup: %w", err)
		}
		answer.FactsUsed = len(vitals)
		answer.RenderedText = renderVitals(patient, vitals, rng)

	default:
		return nil, fmt.Errorf("unknown structured domain: %s", domain)
	}

	return answer, nil
}
