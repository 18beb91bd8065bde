package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, every method returns this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListUpcoming(ctx context.Context, from time.Time, p domain.PaginationParams) ([]*domain.Event, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []*domain.Event
	for _, e := range f.byID {
		if !e.StartTime.Before(from) {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) ListByOrganiser(ctx context.Context, organiserID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OrganiserID == organiserID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := previewPatch(e, patch)
	next.UpdatedAt = time.Now()
	f.byID[id] = next
	return next, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func upcomingEvent(organiserID string) *domain.Event {
	start := time.Now().Add(48 * time.Hour)
	return &domain.Event{
		Title:           "Go Meetup",
		Mode:            domain.ModeInPerson,
		LocationAddress: "12 Harbour St",
		StartTime:       start,
		EndTime:         start.Add(2 * time.Hour),
		OrganiserID:     organiserID,
	}
}

var (
	testOrganiser  = &domain.User{ID: "org-1", Role: domain.RoleOrganiser}
	otherOrganiser = &domain.User{ID: "org-2", Role: domain.RoleOrganiser}
	testAdmin      = &domain.User{ID: "adm-1", Role: domain.RoleAdmin}
	plainUser      = &domain.User{ID: "usr-1", Role: domain.RoleUser}
)

func TestEventServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("organiser creates", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, time.Second)
		created, err := svc.Create(ctx, testOrganiser, upcomingEvent(""))
		require.NoError(t, err)
		assert.Equal(t, testOrganiser.ID, created.OrganiserID)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
	})

	t.Run("plain user denied", func(t *testing.T) {
		svc := NewEventService(newFakeEventRepo(), time.Second)
		_, err := svc.Create(ctx, plainUser, upcomingEvent(""))
		assert.True(t, domain.IsForbidden(err))
	})

	t.Run("nil actor denied", func(t *testing.T) {
		svc := NewEventService(newFakeEventRepo(), time.Second)
		_, err := svc.Create(ctx, nil, upcomingEvent(""))
		assert.True(t, domain.IsForbidden(err))
	})

	t.Run("invalid event rejected", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, time.Second)
		e := upcomingEvent("")
		e.Title = ""
		_, err := svc.Create(ctx, testOrganiser, e)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid event")
		assert.Empty(t, repo.byID)
	})
}

func TestEventServiceUpdate(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*fakeEventRepo, domain.EventService, *domain.Event) {
		t.Helper()
		repo := newFakeEventRepo()
		svc := NewEventService(repo, time.Second)
		created, err := svc.Create(ctx, testOrganiser, upcomingEvent(""))
		require.NoError(t, err)
		return repo, svc, created
	}

	t.Run("owner updates", func(t *testing.T) {
		_, svc, created := seed(t)
		title := "Renamed"
		updated, err := svc.Update(ctx, testOrganiser, created.ID, domain.EventPatch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
	})

	t.Run("non-owner denied", func(t *testing.T) {
		_, svc, created := seed(t)
		title := "Hijacked"
		_, err := svc.Update(ctx, otherOrganiser, created.ID, domain.EventPatch{Title: &title})
		assert.True(t, domain.IsForbidden(err))
	})

	t.Run("admin updates any event", func(t *testing.T) {
		_, svc, created := seed(t)
		title := "Admin Renamed"
		updated, err := svc.Update(ctx, testAdmin, created.ID, domain.EventPatch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Admin Renamed", updated.Title)
	})

	t.Run("mode switch clears the other location", func(t *testing.T) {
		_, svc, created := seed(t)
		online := domain.ModeOnline
		url := "https://meet.example.com/x"
		updated, err := svc.Update(ctx, testOrganiser, created.ID, domain.EventPatch{Mode: &online, OnlineURL: &url})
		require.NoError(t, err)
		assert.Equal(t, domain.ModeOnline, updated.Mode)
		assert.Equal(t, url, updated.OnlineURL)
		assert.Empty(t, updated.LocationAddress)
	})

	t.Run("patch breaking invariants rejected", func(t *testing.T) {
		_, svc, created := seed(t)
		badEnd := created.StartTime.Add(-time.Hour)
		_, err := svc.Update(ctx, testOrganiser, created.ID, domain.EventPatch{EndTime: &badEnd})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid update")
	})

	t.Run("missing event", func(t *testing.T) {
		_, svc, _ := seed(t)
		title := "x"
		_, err := svc.Update(ctx, testOrganiser, "nope", domain.EventPatch{Title: &title})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes upcoming event", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, time.Second)
		created, err := svc.Create(ctx, testOrganiser, upcomingEvent(""))
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, testOrganiser, created.ID))
		assert.Empty(t, repo.byID)
	})

	t.Run("owner cannot delete live event", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, time.Second)
		e := upcomingEvent(testOrganiser.ID)
		e.StartTime = time.Now().Add(-time.Hour)
		e.EndTime = time.Now().Add(time.Hour)
		require.NoError(t, repo.Create(ctx, e))

		err := svc.Delete(ctx, testOrganiser, e.ID)
		assert.True(t, domain.IsForbidden(err))
		assert.Len(t, repo.byID, 1, "nothing deleted")
	})

	t.Run("admin deletes live event", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, time.Second)
		e := upcomingEvent(testOrganiser.ID)
		e.StartTime = time.Now().Add(-time.Hour)
		require.NoError(t, repo.Create(ctx, e))

		require.NoError(t, svc.Delete(ctx, testAdmin, e.ID))
		assert.Empty(t, repo.byID)
	})

	t.Run("non-owner denied", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, time.Second)
		created, err := svc.Create(ctx, testOrganiser, upcomingEvent(""))
		require.NoError(t, err)

		err = svc.Delete(ctx, otherOrganiser, created.ID)
		assert.True(t, domain.IsForbidden(err))
	})
}

func TestEventServiceListUpcoming(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, time.Second)

	past := upcomingEvent(testOrganiser.ID)
	past.StartTime = time.Now().Add(-24 * time.Hour)
	past.EndTime = past.StartTime.Add(time.Hour)
	require.NoError(t, repo.Create(ctx, past))

	_, err := svc.Create(ctx, testOrganiser, upcomingEvent(""))
	require.NoError(t, err)

	events, total, err := svc.ListUpcoming(ctx, domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	assert.True(t, events[0].StartTime.After(time.Now()))
}
