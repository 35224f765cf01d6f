package router

import "strings"

// Domain is a structured record domain an utterance can be classified into.
type Domain string

const (
	DomainMedication  Domain = "medication"
	DomainAppointment Domain = "appointment"
	DomainVitals      Domain = "vitals"
	DomainGeneral     Domain = "general"
)

var medicationTerms = []string{
	"medication", "medications", "meds", "pill", "pills", "prescription",
	"prescriptions", "prescribed", "dose", "dosage", "refill",
}

var appointmentTerms = []string{
	"appointment", "appointments", "visit", "checkup", "check-up",
	"scheduled", "upcoming visit", "see the doctor", "next appointment",
}

var vitalsTerms = []string{
	"blood pressure", "heart rate", "pulse", "weight", "temperature",
	"glucose", "blood sugar", "oxygen", "vitals", "readings",
}

var queryCues = []string{
	"what", "when", "which", "how many", "how much", "does", "do ", "did",
	"is there", "are there", "any", "list", "show", "tell me", "check",
	"has ", "have ",
}

// Classify pattern-matches an utterance against the known structured
// domains. Anything ambiguous or without a query cue is DomainGeneral and
// falls through to the conversational path; misclassifying toward general is
// always safe, the reverse is not.
func Classify(text string) Domain {
	lower := strings.ToLower(text)

	if !looksLikeQuery(lower) {
		return DomainGeneral
	}

	matches := make([]Domain, 0, 3)
	if containsAny(lower, medicationTerms) {
		matches = append(matches, DomainMedication)
	}
	if containsAny(lower, appointmentTerms) {
		matches = append(matches, DomainAppointment)
	}
	if containsAny(lower, vitalsTerms) {
		matches = append(matches, DomainVitals)
	}

	// More than one domain match is ambiguous.
	if len(matches) != 1 {
		return DomainGeneral
	}
	return matches[0]
}

func looksLikeQuery(lower string) bool {
	if strings.Contains(lower, "?") {
		return true
	}
	return containsAny(lower, queryCues)
}

func containsAny(lower string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
