// Package chat drives the dialogue that turns a free-text message into a
// confirmed, stored transaction.
package chat

import "chitieu/internal/core"

// State tags a dialogue stage. Only DuplicateFound and AwaitingConfirmation
// are ever stored; the rest describe the outcome of a single turn.
type State string

const (
	StateIdle                 State = "idle"
	StateLowConfidence        State = "low_confidence"
	StateDuplicateFound       State = "duplicate_found"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateSaved                State = "saved"
	StateCancelled            State = "cancelled"
	StateEdit                 State = "edit"
	StateError                State = "error"
	StateReportRedirect       State = "report_redirect"
)

func (s State) String() string { return string(s) }

// Session is the in-flight dialogue of one conversation.
type Session struct {
	State           State
	Extracted       *core.Candidate
	OriginalMessage string
	Duplicates      []core.Transaction
}

// SessionStore holds sessions by id. Entries are expected to expire on their
// own after a TTL.
type SessionStore interface {
	Get(id string) (Session, bool)
	Set(id string, s Session)
	Delete(id string)
}

// Reply is what one inbound message produces.
type Reply struct {
	Text  string `json:"reply"`
	State State  `json:"state"`
}
