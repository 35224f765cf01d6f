package router

import (
	"context"
	"strings"

	"github.com/verdantlabs/careloop/internal/core"
)

// SubjectResolver maps an utterance to the patient it is about, using the
// session's linked patient context for pronouns.
type SubjectResolver struct {
	store core.ClinicalStore
}

func NewSubjectResolver(store core.ClinicalStore) *SubjectResolver {
	return &SubjectResolver{store: store}
}

// DetectNamed returns the patient whose name appears in the utterance, or
// nil when no known name is mentioned. A name match is what establishes the
// session's subject for later pronoun turns.
func (r *SubjectResolver) DetectNamed(ctx context.Context, text string) (*core.Patient, error) {
	patients, err := r.store.ListPatients(ctx)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(text)
	for i := range patients {
		name := strings.ToLower(patients[i].Name)
		if name == "" {
			continue
		}
		if containsWord(lower, name) {
			return &patients[i], nil
		}
		// First name alone is enough ("does aurora have...").
		if first, _, ok := strings.Cut(name, " "); ok && containsWord(lower, first) {
			return &patients[i], nil
		}
	}
	return nil, nil
}

// Resolve picks the subject for a structured query: an explicit name wins,
// then the session's linked patient, then the sole patient in
// single-subject deployments. Anything else is ErrSubjectUnresolved and must
// be answered with a clarification, never speculatively.
func (r *SubjectResolver) Resolve(ctx context.Context, sess core.Session, text string) (core.Patient, error) {
	named, err := r.DetectNamed(ctx, text)
	if err != nil {
		return core.Patient{}, err
	}
	if named != nil {
		return *named, nil
	}

	if sess.PatientID != nil && *sess.PatientID != "" {
		return r.store.GetPatient(ctx, *sess.PatientID)
	}

	patients, err := r.store.ListPatients(ctx)
	if err != nil {
		return core.Patient{}, err
	}
	if len(patients) == 1 {
		return patients[0], nil
	}

	return core.Patient{}, core.ErrSubjectUnresolved
}

func containsWord(lower, word string) bool {
	idx := strings.Index(lower, word)
	for idx >= 0 {
		beforeOK := idx == 0 || !isLetter(lower[idx-1])
		afterIdx := idx + len(word)
		afterOK := afterIdx >= len(lower) || !isLetter(lower[afterIdx])
		if beforeOK && afterOK {
			return true
		}
		next := strings.Index(lower[idx+1:], word)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
