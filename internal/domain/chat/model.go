package chat

import "time"

// State is the lifecycle state of a chat session. Minimized is a display
// flag, not a state.
type State string

const (
	StateClosed  State = "closed"
	StateIdle    State = "idle"
	StateWaiting State = "waiting"
)

// Role identifies a message originator.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. Entries are never mutated after
// insertion.
type Message struct {
	ID           int64     `json:"id"`
	Text         string    `json:"text"`
	Role         Role      `json:"role"`
	Timestamp    time.Time `json:"timestamp"`
	ScopeRelated bool      `json:"is_scope_related,omitempty"`
	IsError      bool      `json:"is_error,omitempty"`
}

// Reply is the assistant's answer to one message.
type Reply struct {
	Text         string `json:"response"`
	ScopeRelated bool   `json:"is_scope_related"`
}

const greeting = "Hello! I'm ScopeAI Assistant. I specialize in project scoping and planning. How can I help you with your project today?"

const fallbackReply = "I'm here to help with project scoping! For the best experience, make sure the backend server is running. Meanwhile, I can help you with:\n\n• Project timeline estimation\n• Resource planning\n• Cost estimation techniques\n• Scope definition"

// fallbackSuggestions keeps the quick-question list useful when the
// suggestion fetch fails.
var fallbackSuggestions = []string{
	"How do I estimate project timeline?",
	"What should be included in project scope?",
	"How to create a resource plan?",
	"What are common cost estimation techniques?",
}

// suggestionTranscriptLimit hides suggestions once the transcript exceeds
// the seeded greeting plus one full exchange.
const suggestionTranscriptLimit = 3
