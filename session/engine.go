package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/farhan32742/nexusform/clarify"
	"github.com/farhan32742/nexusform/extract"
	"github.com/farhan32742/nexusform/formschema"
	"github.com/farhan32742/nexusform/submit"
	"github.com/farhan32742/nexusform/types"
)

var (
	// ErrInvalidTransition reports an external action that does not match the
	// session's current state. The state is left unchanged; the caller should
	// prompt again.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrUnknownSession reports a session id the store has never seen.
	ErrUnknownSession = errors.New("unknown session")
)

const extractionFailureMessage = "Sorry, I had trouble processing that. Could you say it again?"
const interruptedSubmitMessage = "The submission was interrupted before completing. Please review and approve again."

// ActionKind is the kind of external input driving one engine step.
type ActionKind string

const (
	ActionKindUserTurn ActionKind = "user-turn"
	ActionKindApprove  ActionKind = "approve"
	ActionKindReject   ActionKind = "reject"
	// ActionKindResume carries no input; it re-runs a session from its
	// persisted cursor, e.g. after a crash between steps.
	ActionKindResume ActionKind = "resume"
)

type Action struct {
	Kind ActionKind
	Text string
}

// Config tunes engine policy.
type Config struct {
	// HistoryWindow is the number of trailing non-system turns sent to the
	// model. The persisted history is always complete.
	HistoryWindow int
	// TerminateOnBackendReject ends the session on a backend rejection
	// instead of re-entering extraction with a correction opportunity.
	TerminateOnBackendReject bool
	// CallTimeout bounds each model or backend call so a hung dependency
	// cannot stall a session. Zero means the caller's context rules.
	CallTimeout time.Duration
}

const defaultHistoryWindow = 20

// Engine sequences the components for any number of concurrent sessions.
// Steps for one session are serialized by a per-session lock; sessions share
// nothing mutable besides the injected components, which are read-only.
type Engine struct {
	source    formschema.Source
	extractor extract.Extractor
	clarifier clarify.Generator
	submitter submit.Submitter
	store     Store
	trimmer   Trimmer
	cfg       Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(
	source formschema.Source,
	extractor extract.Extractor,
	clarifier clarify.Generator,
	submitter submit.Submitter,
	store Store,
	cfg Config,
) *Engine {
	window := cfg.HistoryWindow
	if window <= 0 {
		window = defaultHistoryWindow
	}
	return &Engine{
		source:    source,
		extractor: extractor,
		clarifier: clarifier,
		submitter: submitter,
		store:     store,
		trimmer:   KeepSystemLastNTrimmer{N: window},
		cfg:       cfg,
		locks:     map[string]*sync.Mutex{},
	}
}

func (e *Engine) lockSession(id string) func() {
	e.mu.Lock()
	lock, ok := e.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[id] = lock
	}
	e.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}

// Start fetches the schema once, seeds a new session in Extracting and
// persists it. A malformed or empty schema is fatal to session start.
func (e *Engine) Start(ctx context.Context) (*Reply, error) {
	def, err := e.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch form schema: %w", err)
	}
	now := time.Now().UTC()
	state := &State{
		ID:        uuid.NewString(),
		Status:    StatusExtracting,
		Schema:    def,
		Record:    formschema.Record{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.save(ctx, state); err != nil {
		return nil, err
	}
	slog.Info("session started", "session", state.ID, "fields", len(def.Fields))
	return replyFor(state, ""), nil
}

// Step applies one external action and runs the machine until the next
// suspend point. It is the single entry point all convenience methods reduce
// to, which keeps resume semantics deterministic.
func (e *Engine) Step(ctx context.Context, id string, action Action) (*Reply, error) {
	unlock := e.lockSession(id)
	defer unlock()

	state, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}

	allowSubmit := false
	switch action.Kind {
	case ActionKindUserTurn:
		if state.Status != StatusExtracting && state.Status != StatusAwaitingClarification {
			return replyFor(state, ""), fmt.Errorf("%w: user turn not accepted in %s", ErrInvalidTransition, state.Status)
		}
		state.Conversation = appendHistory(state.Conversation, schema.UserMessage(action.Text))
		state.TurnPending = true
		state.Status = StatusExtracting
	case ActionKindApprove:
		if state.Status != StatusAwaitingReview {
			return replyFor(state, ""), fmt.Errorf("%w: approve not accepted in %s", ErrInvalidTransition, state.Status)
		}
		state.Approved = true
		state.Status = StatusSubmitting
		allowSubmit = true
	case ActionKindReject:
		if state.Status != StatusAwaitingReview {
			return replyFor(state, ""), fmt.Errorf("%w: reject not accepted in %s", ErrInvalidTransition, state.Status)
		}
		state.Approved = false
		state.Conversation = appendHistory(state.Conversation, schema.UserMessage(action.Text))
		state.TurnPending = true
		state.Status = StatusExtracting
	case ActionKindResume:
		// No input; continue from the persisted cursor.
	default:
		return replyFor(state, ""), fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action.Kind)
	}

	if err := e.save(ctx, state); err != nil {
		return nil, err
	}
	return e.run(ctx, state, allowSubmit)
}

// run advances the machine through its transient states, persisting after
// every transition, until it reaches a suspend point.
func (e *Engine) run(ctx context.Context, state *State, allowSubmit bool) (*Reply, error) {
	for {
		switch state.Status {
		case StatusExtracting:
			if !state.TurnPending {
				return replyFor(state, state.LastQuestion), nil
			}
			if reply, done, err := e.stepExtract(ctx, state); done {
				return reply, err
			}

		case StatusValidating:
			reply, err := e.stepValidate(ctx, state)
			if reply != nil || err != nil {
				return reply, err
			}

		case StatusSubmitting:
			if !allowSubmit {
				// A resume landed on a persisted Submitting cursor: the
				// submission outcome is unknown, so never re-fire it blindly.
				state.Status = StatusAwaitingReview
				state.LastQuestion = interruptedSubmitMessage
				if err := e.save(ctx, state); err != nil {
					return nil, err
				}
				return replyFor(state, interruptedSubmitMessage), nil
			}
			return e.stepSubmit(ctx, state)

		default:
			return replyFor(state, state.LastQuestion), nil
		}
	}
}

// stepExtract consumes the pending user turn. A model failure is absorbed:
// the record stays unchanged and the session suspends with a generic
// re-prompt.
func (e *Engine) stepExtract(ctx context.Context, state *State) (*Reply, bool, error) {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	result, err := e.extractor.Extract(callCtx, &extract.Request{
		Schema:       state.Schema,
		Conversation: e.trimmer.Trim(state.Conversation),
		Record:       state.Record,
	})
	state.TurnPending = false
	if err != nil {
		slog.Warn("extraction failed", "session", state.ID, "error", err)
		state.LastQuestion = extractionFailureMessage
		state.Conversation = appendHistory(state.Conversation, schema.AssistantMessage(extractionFailureMessage, nil))
		state.Status = StatusAwaitingClarification
		if saveErr := e.save(ctx, state); saveErr != nil {
			return nil, true, saveErr
		}
		return replyFor(state, extractionFailureMessage), true, nil
	}

	state.Record = result.Record
	state.Status = StatusValidating
	if err := e.save(ctx, state); err != nil {
		return nil, true, err
	}
	return nil, false, nil
}

// stepValidate branches on the validation result: clean records go to the
// review gate, anything else produces one clarification question.
func (e *Engine) stepValidate(ctx context.Context, state *State) (*Reply, error) {
	state.Issues = state.Schema.Validate(state.Record)
	slog.Debug("validated record", "session", state.ID, "issues", len(state.Issues))

	if len(state.Issues) == 0 {
		message := e.reviewPrompt(state)
		state.Status = StatusAwaitingReview
		state.LastQuestion = message
		state.Conversation = appendHistory(state.Conversation, schema.AssistantMessage(message, nil))
		if err := e.save(ctx, state); err != nil {
			return nil, err
		}
		return replyFor(state, message), nil
	}

	callCtx, cancel := e.callContext(ctx)
	question, err := e.clarifier.Clarify(callCtx, &clarify.Request{
		Issues:       state.Issues,
		Conversation: e.trimmer.Trim(state.Conversation),
	})
	cancel()
	if err != nil {
		slog.Warn("clarifier failed, using local fallback", "session", state.ID, "error", err)
		question, _ = clarify.LocalClarifier{}.Clarify(ctx, &clarify.Request{Issues: state.Issues})
	}

	state.Status = StatusAwaitingClarification
	state.LastQuestion = question
	state.Conversation = appendHistory(state.Conversation, schema.AssistantMessage(question, nil))
	if err := e.save(ctx, state); err != nil {
		return nil, err
	}
	return replyFor(state, question), nil
}

func (e *Engine) stepSubmit(ctx context.Context, state *State) (*Reply, error) {
	callCtx, cancel := e.callContext(ctx)
	outcome, err := e.submitter.Submit(callCtx, state.Record)
	cancel()
	if err != nil {
		outcome = &submit.Outcome{
			Tag:     types.OutcomeTransportError,
			Message: fmt.Sprintf("The submission service is unreachable: %v", err),
		}
	}
	state.Outcome = outcome
	state.Conversation = appendHistory(state.Conversation, schema.AssistantMessage(outcome.Message, nil))

	switch outcome.Tag {
	case types.OutcomeSuccess:
		state.Status = StatusTerminated
	case types.OutcomeBackendRejected:
		state.Approved = false
		if e.cfg.TerminateOnBackendReject {
			state.Status = StatusTerminated
		} else {
			// Correction opportunity: the rejection text is in the
			// conversation and the next user turn re-enters extraction.
			state.Status = StatusExtracting
			state.LastQuestion = outcome.Message
		}
	case types.OutcomeTransportError:
		// Approval stands; the caller may approve again once the backend is
		// reachable.
		state.Status = StatusAwaitingReview
		state.LastQuestion = outcome.Message
	}

	if err := e.save(ctx, state); err != nil {
		return nil, err
	}
	slog.Info("submission finished", "session", state.ID, "tag", outcome.Tag)
	return replyFor(state, outcome.Message), nil
}

func (e *Engine) reviewPrompt(state *State) string {
	var sb strings.Builder
	sb.WriteString("Here is the form as I have it:\n")
	for _, field := range state.Schema.Fields {
		value, ok := state.Record[field.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s\n", field.Label, formschema.Stringify(value))
	}
	sb.WriteString("Is this correct? Approve to submit, or tell me what to fix.")
	return sb.String()
}

func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.CallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.cfg.CallTimeout)
}

func (e *Engine) load(ctx context.Context, id string) (*State, error) {
	state, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if state == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return state, nil
}

func (e *Engine) save(ctx context.Context, state *State) error {
	state.UpdatedAt = time.Now().UTC()
	if err := e.store.Save(ctx, state); err != nil {
		return fmt.Errorf("persist session %s: %w", state.ID, err)
	}
	return nil
}
