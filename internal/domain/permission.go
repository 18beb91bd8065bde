package domain

import "time"

// Action is an operation evaluated by the permission authority.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Decision is the outcome of a permission check. Reason is set when denied.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// CanPerform evaluates whether an actor may perform an action on an event.
// It is a pure function of its inputs; liveness is derived from now and the
// event's start time at call time. First matching rule wins:
//
//   - admins may do anything
//   - organisers may always create; update and delete only their own events,
//     and may not delete an event once it is live
//   - users and unauthenticated callers may only read
//
// event may be nil for create checks.
func CanPerform(role Role, actorID string, event *Event, action Action, now time.Time) Decision {
	if role == RoleAdmin {
		return allow()
	}
	if action == ActionRead {
		return allow()
	}
	if actorID == "" {
		return deny("authentication required")
	}
	if role != RoleOrganiser {
		return deny("only organisers can manage events")
	}
	switch action {
	case ActionCreate:
		return allow()
	case ActionUpdate, ActionDelete:
		if event == nil {
			return deny("event required")
		}
		if event.OrganiserID != actorID {
			return deny("not the event organiser")
		}
		if action == ActionDelete && event.Live(now) {
			return deny("event is live")
		}
		return allow()
	default:
		return deny("unknown action")
	}
}
