package core

import "time"

// Session identifies one conversation thread. Created on the first turn,
// touched on every turn, never hard-deleted while messages reference it.
type Session struct {
	ID        string
	PatientID *string // subject the conversation is currently "about"
	PersonaID string
	Saved     bool
	Recap     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoredMessage is one persisted turn. Append-only: messages are never
// edited, only superseded by newer messages.
type StoredMessage struct {
	ID         int64
	SessionID  string
	Role       string
	Content    string
	Model      string
	TokenCount int
	Importance *float64 // nil until scored
	CreatedAt  time.Time
}

// Summary is a compressed, immutable span of messages. The covered
// [StartMessageID, EndMessageID] range is contiguous and never overlaps
// another summary in the same session.
type Summary struct {
	ID             int64
	SessionID      string
	Content        string
	MessageCount   int
	StartMessageID int64
	EndMessageID   int64
	Importance     float64
	CreatedAt      time.Time
}

type PinType string

const (
	PinManual  PinType = "manual"
	PinAuto    PinType = "auto"
	PinCode    PinType = "code"
	PinConcept PinType = "concept"
	PinSystem  PinType = "system"
)

type Urgency string

const (
	UrgencyRoutine  Urgency = "routine"
	UrgencyElevated Urgency = "elevated"
	UrgencyUrgent   Urgency = "urgent"
)

// Pin is a durable extracted fact. Pins survive buffer rotation and
// summarization; the source message reference is weak.
type Pin struct {
	ID              int64
	SessionID       string
	Content         string
	SourceMessageID *int64
	Importance      float64
	Type            PinType
	Category        string
	Urgency         Urgency
	PatientID       *string
	CreatedAt       time.Time
}
