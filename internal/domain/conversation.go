package domain

import (
	"context"
	"time"
)

// ConversationState is the orchestrator state of an event-creation session.
type ConversationState string

const (
	// StateCollecting gathers fields from free-form user messages.
	StateCollecting ConversationState = "collecting"
	// StateClarifying re-asks about a specific missing or invalid field.
	StateClarifying ConversationState = "clarifying"
	// StateConfirming presents the assembled draft for explicit confirmation.
	StateConfirming ConversationState = "confirming"
	// StateCompleted means the draft was committed as an event. Terminal.
	StateCompleted ConversationState = "completed"
	// StateAborted means the user cancelled or the session expired. Terminal.
	StateAborted ConversationState = "aborted"
)

// Terminal reports whether no further turns are accepted in this state.
func (s ConversationState) Terminal() bool {
	return s == StateCompleted || s == StateAborted
}

// Turn is one user message plus the system's reply.
type Turn struct {
	UserText string    `json:"user_text"`
	Reply    string    `json:"reply"`
	At       time.Time `json:"at"`
}

// EventDraft is the partial event under conversational construction. Every
// field stays optional until the extractor reports completeness; the draft is
// never persisted as an event before it validates in full.
type EventDraft struct {
	Title           *string    `json:"title,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Mode            *EventMode `json:"mode,omitempty"`
	LocationAddress *string    `json:"location_address,omitempty"`
	OnlineURL       *string    `json:"online_url,omitempty"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	Capacity        *int       `json:"capacity,omitempty"`
	Price           *float64   `json:"price,omitempty"`
	Tags            []string   `json:"tags,omitempty"`

	// CapacityUnlimited is set when the user said there is no attendance cap.
	CapacityUnlimited bool `json:"capacity_unlimited,omitempty"`
	// FreeConfirmed is set when the user explicitly said the event is free.
	// Price is never silently defaulted to zero without it.
	FreeConfirmed bool `json:"free_confirmed,omitempty"`
}

// ToEvent materialises the draft into an event owned by the organiser.
// Callers must have checked completeness first.
func (d *EventDraft) ToEvent(organiserID string) *Event {
	e := &Event{OrganiserID: organiserID, Tags: d.Tags}
	if d.Title != nil {
		e.Title = *d.Title
	}
	if d.Description != nil {
		e.Description = *d.Description
	}
	if d.Mode != nil {
		e.Mode = *d.Mode
	}
	// Only the location matching the mode is materialised, so the event's
	// location kind always agrees with its mode.
	switch e.Mode {
	case ModeOnline:
		if d.OnlineURL != nil {
			e.OnlineURL = *d.OnlineURL
		}
	case ModeInPerson:
		if d.LocationAddress != nil {
			e.LocationAddress = *d.LocationAddress
		}
	}
	if d.StartTime != nil {
		e.StartTime = *d.StartTime
	}
	if d.EndTime != nil {
		e.EndTime = *d.EndTime
	}
	if d.Capacity != nil {
		c := *d.Capacity
		e.Capacity = &c
	}
	if d.Price != nil {
		e.Price = *d.Price
	} else if d.FreeConfirmed {
		e.Price = 0
	}
	return e
}

// ConversationSession is the per-interaction state of one event-creation
// conversation. It is bound to one actor, owned by the orchestrator for its
// lifetime, and never persisted beyond it.
type ConversationSession struct {
	ID             string            `json:"id"`
	ActorID        string            `json:"actor_id"`
	State          ConversationState `json:"state"`
	Draft          EventDraft        `json:"draft"`
	Turns          []Turn            `json:"turns"`
	CreatedAt      time.Time         `json:"created_at"`
	LastActivityAt time.Time         `json:"last_activity_at"`
}

// SessionStore holds live conversation sessions. Implementations must be safe
// for concurrent use; turn-level serialization is the orchestrator's job.
type SessionStore interface {
	Put(session *ConversationSession)
	Get(id string) (*ConversationSession, bool)
	// FindActive returns the actor's most recent non-terminal session.
	FindActive(actorID string) (*ConversationSession, bool)
	Delete(id string)
}

// CompletionRequest is the prompt material sent to the language model: the
// schema description, the known draft fields, the still-missing fields, and
// the latest user message.
type CompletionRequest struct {
	System      string
	DraftJSON   string
	Missing     []string
	UserMessage string
}

// CompletionGateway reaches the external language model. Implementations map
// timeouts, transport errors, and malformed responses to plain errors; the
// orchestrator is responsible for retry and for surfacing
// ErrModelUnavailable.
type CompletionGateway interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// TurnResult is what one processed turn returns to the inbound surface.
type TurnResult struct {
	State   ConversationState `json:"state"`
	Reply   string            `json:"reply"`
	Draft   EventDraft        `json:"draft"`
	EventID string            `json:"event_id,omitempty"`
}

// ConversationService is the inbound surface of the dialogue orchestrator,
// consumed by the HTTP layer.
type ConversationService interface {
	StartOrResumeSession(ctx context.Context, actor *User) (*ConversationSession, error)
	PostMessage(ctx context.Context, actorID, sessionID, text string) (*TurnResult, error)
	ConfirmDraft(ctx context.Context, actorID, sessionID string) (*TurnResult, error)
	AbortSession(ctx context.Context, actorID, sessionID string) (*TurnResult, error)
}
