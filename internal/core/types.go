package core

const (
	AppName    = "CareLoop"
	AppVersion = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is one role/text entry handed to a generation backend.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenOptions carries per-call generation settings.
type GenOptions struct {
	Temperature float64  `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// Reply is a complete model response.
type Reply struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// StreamDelta is one incremental fragment of a streamed reply. Done marks the
// completion event; Usage is only populated on it, and only when the backend
// reports it. A non-nil Err terminates the stream: whatever content arrived
// before it is incomplete and must not be persisted as a reply.
type StreamDelta struct {
	Content string
	Done    bool
	Usage   *Usage
	Err     error
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// StructuredAnswer is a fact-derived reply produced without invoking the
// model. Callers and telemetry use it to audit which answers came straight
// from the record store.
type StructuredAnswer struct {
	AnsweredFromStore bool   `json:"answeredFromStore"`
	Domain            string `json:"domain"`
	SubjectID         string `json:"subjectId"`
	FactsUsed         int    `json:"factsUsed"`
	RenderedText      string `json:"renderedText"`
}

// BudgetReport describes how much of the context budget an assembled payload
// consumed.
type BudgetReport struct {
	TokensUsed   int  `json:"tokensUsed"`
	TokensBudget int  `json:"tokensBudget"`
	Truncated    bool `json:"truncated"`
}
