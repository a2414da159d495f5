package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session manages one conversational assistant session: an append-ordered
// transcript, one-click suggestions, and the pending flag for in-flight
// sends. The assistant is advisory, so remote failures degrade to a scripted
// reply instead of surfacing an error.
type Session struct {
	mu       sync.Mutex
	backend  Backend
	projects ProjectContext
	logger   *slog.Logger
	now      func() time.Time

	id          string
	open        bool
	minimized   bool
	pending     int
	nextID      int64
	transcript  []Message
	suggestions []string
}

// NewSession creates a closed chat session.
func NewSession(backend Backend, projects ProjectContext, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		backend:  backend,
		projects: projects,
		logger:   logger,
		now:      time.Now,
	}
}

// Open starts a session: seeds the transcript with the assistant greeting
// and fetches suggestion prompts, falling back to the built-in set when the
// fetch fails. The greeting is visible as soon as the session is open;
// callers that must not block on the suggestion fetch run Open on its own
// goroutine, and a Close racing the fetch discards the result. Opening an
// already-open session is a no-op.
func (s *Session) Open(ctx context.Context) {
	s.mu.Lock()
	if s.open {
		s.mu.Unlock()
		return
	}
	s.open = true
	s.minimized = false
	s.id = uuid.NewString()
	sessionID := s.id
	s.appendLocked(Message{Text: greeting, Role: RoleAssistant})
	s.mu.Unlock()

	suggestions, err := s.backend.Suggestions(ctx)
	if err != nil || len(suggestions) == 0 {
		if err != nil {
			s.logger.Warn("loading chat suggestions failed", "error", err)
		}
		suggestions = append([]string(nil), fallbackSuggestions...)
	}

	s.mu.Lock()
	if s.open && s.id == sessionID {
		s.suggestions = suggestions
	}
	s.mu.Unlock()
}

// Send submits a user message. Empty or whitespace-only text is a no-op.
// The user message is appended immediately; the assistant reply is inserted
// right after it once the call completes, so concurrent sends cannot
// reorder the transcript. A failed call inserts the scripted fallback reply
// flagged as an error.
func (s *Session) Send(ctx context.Context, text string) (*Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	userMsg := s.appendLocked(Message{Text: text, Role: RoleUser})
	anchor := userMsg.ID
	sessionID := s.id
	s.pending++
	s.mu.Unlock()

	var projectID *int64
	if id, ok := s.projects.CurrentID(); ok {
		projectID = &id
	}

	reply, err := s.backend.SendChat(ctx, text, projectID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || s.id != sessionID {
		// Session closed (or reopened) while the call was in flight; the
		// result targets a transcript that no longer exists.
		return nil, ErrClosed
	}
	s.pending--

	msg := Message{Role: RoleAssistant}
	if err != nil {
		s.logger.Warn("chat send failed", "error", err)
		msg.Text = fallbackReply
		msg.IsError = true
	} else {
		msg.Text = reply.Text
		msg.ScopeRelated = reply.ScopeRelated
	}
	inserted := s.insertAfterLocked(anchor, msg)
	return &inserted, nil
}

// Transcript returns a copy of the messages in conversation order.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Suggestions returns the one-click prompts, or nil once the conversation
// is past the greeting plus one exchange.
func (s *Session) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || len(s.transcript) > suggestionTranscriptLimit {
		return nil
	}
	return append([]string(nil), s.suggestions...)
}

// State reports the session lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.open:
		return StateClosed
	case s.pending > 0:
		return StateWaiting
	default:
		return StateIdle
	}
}

// Pending reports whether a send is in flight.
func (s *Session) Pending() bool {
	return s.State() == StateWaiting
}

// ID returns the session identifier, empty when closed.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// SetMinimized toggles the display flag. Minimized is orthogonal to the
// session state.
func (s *Session) SetMinimized(min bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minimized = min
}

// Minimized reports the display flag.
func (s *Session) Minimized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minimized
}

// Close ends the session and discards the transcript. Transcripts are
// session-only state and are not persisted.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.minimized = false
	s.id = ""
	s.pending = 0
	s.transcript = nil
	s.suggestions = nil
	s.nextID = 0
}

func (s *Session) appendLocked(msg Message) Message {
	s.nextID++
	msg.ID = s.nextID
	msg.Timestamp = s.now()
	s.transcript = append(s.transcript, msg)
	return msg
}

// insertAfterLocked places a reply immediately after its triggering user
// message, keeping exchanges contiguous when replies complete out of order.
func (s *Session) insertAfterLocked(anchorID int64, msg Message) Message {
	s.nextID++
	msg.ID = s.nextID
	msg.Timestamp = s.now()

	pos := len(s.transcript)
	for i := range s.transcript {
		if s.transcript[i].ID == anchorID {
			pos = i + 1
			break
		}
	}
	s.transcript = append(s.transcript, Message{})
	copy(s.transcript[pos+1:], s.transcript[pos:])
	s.transcript[pos] = msg
	return msg
}
