package router

import (
	"fmt"
	"strings"
	"time"

	"github.com/verdantlabs/careloop/internal/core"
)

// Renderers produce direct, literal answers from fetched rows. No generation
// happens here: every word traces back to the store or to these templates.

func renderMedications(p core.Patient, meds []core.Medication) string {
	if len(meds) == 0 {
		return fmt.Sprintf("No medication records found for %s.", p.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s has %d active medication", p.Name, len(meds))
	if len(meds) != 1 {
		b.WriteByte('s')
	}
	b.WriteString(": ")
	for i, m := range meds {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(m.Name)
		if m.Dosage != "" {
			b.WriteString(" " + m.Dosage)
		}
		if m.Schedule != "" {
			b.WriteString(", " + m.Schedule)
		}
	}
	b.WriteByte('.')
	return b.String()
}

func renderAppointments(p core.Patient, appts []core.Appointment, now time.Time) string {
	upcoming := make([]core.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.ScheduledAt.After(now) {
			upcoming = append(upcoming, a)
		}
	}

	if len(upcoming) == 0 {
		return fmt.Sprintf("No upcoming appointments found for %s.", p.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s has %d upcoming appointment", p.Name, len(upcoming))
	if len(upcoming) != 1 {
		b.WriteByte('s')
	}
	b.WriteString(": ")
	for i, a := range upcoming {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s on %s", a.Title, a.ScheduledAt.Format("Mon, Jan 2 at 15:04"))
		if a.Location != "" {
			b.WriteString(" (" + a.Location + ")")
		}
	}
	b.WriteByte('.')
	return b.String()
}

func renderVitals(p core.Patient, vitals []core.Vital, r core.VitalRange) string {
	if len(vitals) == 0 {
		return fmt.Sprintf("No vital records found for %s since %s.", p.Name, r.From.Format("Jan 2"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent vitals for %s: ", p.Name)
	for i, v := range vitals {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s %s", strings.ReplaceAll(v.Kind, "_", " "), v.Value)
		if v.Unit != "" {
			b.WriteString(" " + v.Unit)
		}
		fmt.Fprintf(&b, " (%s)", v.RecordedAt.Format("Jan 2"))
	}
	b.WriteByte('.')
	return b.String()
}
