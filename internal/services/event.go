package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewEventService creates the EventService used by both the direct HTTP
// endpoints and the conversation orchestrator's commit step. Every mutation
// is checked against the permission authority with a fresh clock reading.
func NewEventService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) Create(ctx context.Context, actor *domain.User, event *domain.Event) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	role, actorID := roleOf(actor)
	if d := domain.CanPerform(role, actorID, nil, domain.ActionCreate, time.Now()); !d.Allowed {
		return nil, domain.ErrForbidden(d.Reason)
	}
	event.OrganiserID = actorID
	if field, reason, ok := event.Valid(); !ok {
		return nil, fmt.Errorf("invalid event: %s: %s", field, reason)
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListUpcoming(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListUpcoming(ctx, time.Now(), p)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) ListByOrganiser(ctx context.Context, organiserID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOrganiser(ctx, organiserID)
	if err != nil {
		return nil, fmt.Errorf("list organiser events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) Update(ctx context.Context, actor *domain.User, id string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	role, actorID := roleOf(actor)
	if d := domain.CanPerform(role, actorID, event, domain.ActionUpdate, time.Now()); !d.Allowed {
		return nil, domain.ErrForbidden(d.Reason)
	}

	// A mode switch retires the location of the other kind unless the patch
	// re-supplies it, so mode and location kind stay in agreement.
	if patch.Mode != nil {
		empty := ""
		switch *patch.Mode {
		case domain.ModeOnline:
			if patch.LocationAddress == nil {
				patch.LocationAddress = &empty
			}
		case domain.ModeInPerson:
			if patch.OnlineURL == nil {
				patch.OnlineURL = &empty
			}
		}
	}

	if field, reason, ok := previewPatch(event, patch).Valid(); !ok {
		return nil, fmt.Errorf("invalid update: %s: %s", field, reason)
	}

	updated, err := s.eventRepo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) Delete(ctx context.Context, actor *domain.User, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}

	role, actorID := roleOf(actor)
	if d := domain.CanPerform(role, actorID, event, domain.ActionDelete, time.Now()); !d.Allowed {
		return domain.ErrForbidden(d.Reason)
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func roleOf(actor *domain.User) (domain.Role, string) {
	if actor == nil {
		return domain.RoleUser, ""
	}
	return actor.Role, actor.ID
}

// previewPatch applies the patch to a copy of the event so the combined
// result can be validated before anything is written.
func previewPatch(event *domain.Event, patch domain.EventPatch) *domain.Event {
	next := *event
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Mode != nil {
		next.Mode = *patch.Mode
	}
	if patch.LocationAddress != nil {
		next.LocationAddress = *patch.LocationAddress
	}
	if patch.OnlineURL != nil {
		next.OnlineURL = *patch.OnlineURL
	}
	if patch.StartTime != nil {
		next.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		next.EndTime = *patch.EndTime
	}
	if patch.Capacity != nil {
		next.Capacity = patch.Capacity
	}
	if patch.Price != nil {
		next.Price = *patch.Price
	}
	if patch.Tags != nil {
		next.Tags = patch.Tags
	}
	return &next
}
