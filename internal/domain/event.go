package domain

import (
	"context"
	"time"
)

// EventMode says whether an event happens online or at a physical venue.
// The two are mutually exclusive: an online event carries a URL, an
// in-person event carries an address.
type EventMode string

const (
	ModeOnline   EventMode = "online"
	ModeInPerson EventMode = "in_person"
)

// Event represents a published event.
// swagger:model Event
type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Mode            EventMode `json:"mode"`
	LocationAddress string    `json:"location_address,omitempty"`
	OnlineURL       string    `json:"online_url,omitempty"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	// Capacity is nil for unlimited attendance.
	Capacity    *int      `json:"capacity,omitempty"`
	Price       float64   `json:"price"`
	Tags        []string  `json:"tags,omitempty"`
	OrganiserID string    `json:"organiser_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Live reports whether the event has started as of the given instant.
// Liveness is always derived from the clock, never stored: a delete that was
// allowed a moment before the start time is denied a moment after, with no
// state transition in between.
func (e *Event) Live(at time.Time) bool {
	return !at.Before(e.StartTime)
}

// Valid checks the event invariants: non-empty title, mode/location
// agreement, end not before start, non-negative capacity and price.
// It returns the offending field and reason for the first violation.
func (e *Event) Valid() (field, reason string, ok bool) {
	if e.Title == "" {
		return "title", "title must not be empty", false
	}
	switch e.Mode {
	case ModeOnline:
		if e.OnlineURL == "" {
			return "location", "online event requires a URL", false
		}
		if e.LocationAddress != "" {
			return "location", "online event must not carry a venue address", false
		}
	case ModeInPerson:
		if e.LocationAddress == "" {
			return "location", "in-person event requires an address", false
		}
		if e.OnlineURL != "" {
			return "location", "in-person event must not carry an online URL", false
		}
	default:
		return "mode", "mode must be online or in_person", false
	}
	if e.StartTime.IsZero() {
		return "start_time", "start time is required", false
	}
	if e.EndTime.IsZero() {
		return "end_time", "end time is required", false
	}
	if e.EndTime.Before(e.StartTime) {
		return "end_time", "end time before start time", false
	}
	if e.Capacity != nil && *e.Capacity < 0 {
		return "capacity", "capacity must not be negative", false
	}
	if e.Price < 0 {
		return "price", "price must not be negative", false
	}
	return "", "", true
}

// EventPatch carries the optional fields of an event update. Nil fields are
// left unchanged.
type EventPatch struct {
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
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// ListUpcoming returns events whose start time is at or after the given
	// instant, in chronological order.
	ListUpcoming(ctx context.Context, from time.Time, p PaginationParams) ([]*Event, int, error)
	ListByOrganiser(ctx context.Context, organiserID string) ([]*Event, error)
	Update(ctx context.Context, id string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines the business logic for direct (non-conversational)
// event management. Every mutation is gated by the permission authority.
type EventService interface {
	Create(ctx context.Context, actor *User, event *Event) (*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	ListUpcoming(ctx context.Context, p PaginationParams) ([]*Event, int, error)
	ListByOrganiser(ctx context.Context, organiserID string) ([]*Event, error)
	Update(ctx context.Context, actor *User, id string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, actor *User, id string) error
}
