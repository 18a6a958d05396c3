package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"chitieu/internal/core"
	"chitieu/internal/dedupe"
	"chitieu/internal/extract"
	applog "chitieu/internal/log"
)

// MinConfidence is the extraction confidence below which the candidate is
// echoed back for clarification instead of entering the dialogue.
const MinConfidence = 0.7

// ErrEmptyMessage is returned for blank input; the session is left as is.
var ErrEmptyMessage = errors.New("message is required")

type DuplicateFinder interface {
	FindDuplicates(ctx context.Context, userID string, amount float64, category core.Category, windowDays int) ([]core.Transaction, error)
}

type TransactionSaver interface {
	SaveTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
}

type Machine struct {
	sessions   SessionStore
	extractor  extract.Extractor
	duplicates DuplicateFinder
	saver      TransactionSaver
	now        func() time.Time
	newID      func() string
	logger     *applog.Logger
}

type Option func(*Machine)

// WithClock sets the clock used for the transaction date.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithIDGenerator replaces the UUID generator for new transactions.
func WithIDGenerator(gen func() string) Option {
	return func(m *Machine) { m.newID = gen }
}

func WithLogger(logger *applog.Logger) Option {
	return func(m *Machine) { m.logger = logger.WithComponent(applog.ComponentChat) }
}

func NewMachine(sessions SessionStore, extractor extract.Extractor, duplicates DuplicateFinder, saver TransactionSaver, opts ...Option) *Machine {
	m := &Machine{
		sessions:   sessions,
		extractor:  extractor,
		duplicates: duplicates,
		saver:      saver,
		now:        time.Now,
		newID:      uuid.NewString,
		logger:     applog.Discard().WithComponent(applog.ComponentChat),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle processes one inbound message for sessionID. Dialogue outcomes,
// failed extraction and failed saves included, come back as a Reply; only
// unexpected internal failures are returned as errors.
func (m *Machine) Handle(ctx context.Context, sessionID, userID, message string) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, ErrEmptyMessage
	}

	if IsReportRequest(message) {
		return Reply{Text: replyReportRedirect, State: StateReportRedirect}, nil
	}

	session, ok := m.sessions.Get(sessionID)
	if !ok {
		session = Session{State: StateIdle}
	}

	switch session.State {
	case StateAwaitingConfirmation:
		return m.handleConfirmation(ctx, sessionID, userID, session, message), nil
	case StateDuplicateFound:
		return m.handleDuplicateAnswer(ctx, sessionID, session, message), nil
	default:
		return m.handleNewExpense(ctx, sessionID, userID, message)
	}
}

func (m *Machine) handleNewExpense(ctx context.Context, sessionID, userID, message string) (Reply, error) {
	candidate, err := m.extractor.Extract(ctx, message)
	if err != nil {
		m.logger.InfoContext(ctx, "Extraction failed",
			applog.FieldSessionID, sessionID,
			applog.FieldOperation, applog.OpExtract,
			applog.FieldError, err)
		return Reply{Text: replyExtractionFailed, State: StateError}, nil
	}

	if candidate.Confidence < MinConfidence {
		m.logger.InfoContext(ctx, "Low confidence extraction",
			applog.FieldSessionID, sessionID,
			applog.FieldConfidence, candidate.Confidence)
		return Reply{Text: lowConfidencePrompt(candidate), State: StateLowConfidence}, nil
	}

	dups, err := m.duplicates.FindDuplicates(ctx, userID, candidate.Amount, candidate.Category, dedupe.DefaultWindowDays)
	if err != nil {
		return Reply{}, fmt.Errorf("check duplicates: %w", err)
	}

	session := Session{
		Extracted:       &candidate,
		OriginalMessage: message,
	}
	if len(dups) > 0 {
		session.State = StateDuplicateFound
		session.Duplicates = dups
		m.store(ctx, sessionID, StateIdle, session)
		return Reply{Text: duplicatePrompt(dups), State: StateDuplicateFound}, nil
	}

	session.State = StateAwaitingConfirmation
	m.store(ctx, sessionID, StateIdle, session)
	return Reply{Text: confirmPrompt(candidate, m.today()), State: StateAwaitingConfirmation}, nil
}

func (m *Machine) handleDuplicateAnswer(ctx context.Context, sessionID string, session Session, message string) Reply {
	switch duplicateClassifier.Classify(message) {
	case IntentNotDuplicate:
		next := session
		next.State = StateAwaitingConfirmation
		m.store(ctx, sessionID, StateDuplicateFound, next)
		return Reply{Text: confirmPrompt(*session.Extracted, m.today()), State: StateAwaitingConfirmation}
	case IntentDuplicate:
		m.clear(ctx, sessionID, StateDuplicateFound, StateCancelled)
		return Reply{Text: replyDuplicateSkipped, State: StateCancelled}
	default:
		return Reply{Text: replyDuplicateUnknown, State: StateDuplicateFound}
	}
}

func (m *Machine) handleConfirmation(ctx context.Context, sessionID, userID string, session Session, message string) Reply {
	switch confirmationClassifier.Classify(message) {
	case IntentSave:
		return m.save(ctx, sessionID, userID, session)
	case IntentCancel:
		m.clear(ctx, sessionID, StateAwaitingConfirmation, StateCancelled)
		return Reply{Text: replyCancelled, State: StateCancelled}
	case IntentEdit:
		m.clear(ctx, sessionID, StateAwaitingConfirmation, StateEdit)
		return Reply{Text: replyEdit, State: StateEdit}
	default:
		return Reply{Text: replyConfirmUnknown, State: StateAwaitingConfirmation}
	}
}

func (m *Machine) save(ctx context.Context, sessionID, userID string, session Session) Reply {
	c := session.Extracted
	tx := core.Transaction{
		ID:              m.newID(),
		UserID:          userID,
		Amount:          c.Amount,
		Category:        c.Category,
		Description:     c.Description,
		TransactionDate: m.today(),
		RawInput:        session.OriginalMessage,
		AIConfidence:    c.Confidence,
		Metadata:        map[string]any{"session_id": sessionID},
	}

	// The session is gone either way; a failed save means re-entering.
	if _, err := m.saver.SaveTransaction(ctx, tx); err != nil {
		m.clear(ctx, sessionID, StateAwaitingConfirmation, StateError)
		m.logger.ErrorContext(ctx, "Failed to save transaction",
			applog.FieldSessionID, sessionID,
			applog.FieldOperation, applog.OpSave,
			applog.FieldError, err)
		return Reply{Text: replySaveFailed, State: StateError}
	}

	m.clear(ctx, sessionID, StateAwaitingConfirmation, StateSaved)
	return Reply{Text: replySaved, State: StateSaved}
}

func (m *Machine) store(ctx context.Context, sessionID string, from State, s Session) {
	m.sessions.Set(sessionID, s)

	fields := applog.NewFields().
		WithOperation(applog.OpClassify).
		WithTransition(from.String(), s.State.String())
	fields[applog.FieldSessionID] = sessionID
	m.logger.DebugContext(ctx, "Session transition", fields.ToSlice()...)
}

func (m *Machine) clear(ctx context.Context, sessionID string, from, outcome State) {
	m.sessions.Delete(sessionID)
	m.logger.DebugContext(ctx, "Session cleared",
		applog.FieldSessionID, sessionID,
		applog.FieldState, from.String(),
		applog.FieldNextState, outcome.String())
}

func (m *Machine) today() core.Date {
	return core.DateOf(m.now())
}
