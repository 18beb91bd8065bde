package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEventService records the last call and returns scripted results.
type fakeEventService struct {
	event  *domain.Event
	events []*domain.Event
	total  int
	err    error

	lastActor *domain.User
	lastID    string
	lastPatch domain.EventPatch
}

func (f *fakeEventService) Create(ctx context.Context, actor *domain.User, event *domain.Event) (*domain.Event, error) {
	f.lastActor = actor
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) ListUpcoming(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	return f.events, f.total, f.err
}

func (f *fakeEventService) ListByOrganiser(ctx context.Context, organiserID string) ([]*domain.Event, error) {
	f.lastID = organiserID
	return f.events, f.err
}

func (f *fakeEventService) Update(ctx context.Context, actor *domain.User, id string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastActor, f.lastID, f.lastPatch = actor, id, patch
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) Delete(ctx context.Context, actor *domain.User, id string) error {
	f.lastActor, f.lastID = actor, id
	return f.err
}

func createEventBody(t *testing.T) []byte {
	t.Helper()
	start := time.Now().Add(48 * time.Hour)
	body, err := json.Marshal(CreateEventRequest{
		Title:     "Go Meetup",
		Mode:      "online",
		OnlineURL: "https://meet.example.com/go",
		StartTime: start.Format(time.RFC3339),
		EndTime:   start.Add(2 * time.Hour).Format(time.RFC3339),
		Price:     0,
	})
	require.NoError(t, err)
	return body
}

func TestEventControllerCreate(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeEventService{event: &domain.Event{ID: "ev-1", Title: "Go Meetup"}}
		ctrl := NewEventController(testLogger, svc, &fakeUserService{user: testActor})

		req := authedRequest(http.MethodPost, "http://test/events", createEventBody(t), testActor)
		rr := httptest.NewRecorder()
		ctrl.Create(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		envelope := decodeEnvelope(t, rr)
		assert.Nil(t, envelope.Error)
		require.Same(t, testActor, svc.lastActor)
	})

	t.Run("plain user is denied with the authority's reason", func(t *testing.T) {
		svc := &fakeEventService{err: domain.ErrForbidden("only organisers can manage events")}
		ctrl := NewEventController(testLogger, svc, &fakeUserService{user: testActor})

		req := authedRequest(http.MethodPost, "http://test/events", createEventBody(t), testActor)
		rr := httptest.NewRecorder()
		ctrl.Create(rr, req)

		require.Equal(t, http.StatusForbidden, rr.Code)
		envelope := decodeEnvelope(t, rr)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, helpers.ErrCodeForbidden, envelope.Error.Code)
		assert.Equal(t, "only organisers can manage events", envelope.Error.Message)
	})

	t.Run("invalid body never reaches the service", func(t *testing.T) {
		svc := &fakeEventService{}
		ctrl := NewEventController(testLogger, svc, &fakeUserService{user: testActor})

		body := []byte(`{"title": "Go Meetup", "mode": "hybrid", "start_time": "tomorrow"}`)
		req := authedRequest(http.MethodPost, "http://test/events", body, testActor)
		rr := httptest.NewRecorder()
		ctrl.Create(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Nil(t, svc.lastActor)
	})

	t.Run("invariant violation from the service maps to 400", func(t *testing.T) {
		svc := &fakeEventService{err: fmt.Errorf("invalid event: end_time must not be before start_time")}
		ctrl := NewEventController(testLogger, svc, &fakeUserService{user: testActor})

		req := authedRequest(http.MethodPost, "http://test/events", createEventBody(t), testActor)
		rr := httptest.NewRecorder()
		ctrl.Create(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		envelope := decodeEnvelope(t, rr)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, helpers.ErrCodeBadRequest, envelope.Error.Code)
	})

	t.Run("missing auth context", func(t *testing.T) {
		svc := &fakeEventService{}
		ctrl := NewEventController(testLogger, svc, &fakeUserService{user: testActor})

		req := httptest.NewRequest(http.MethodPost, "http://test/events", nil)
		rr := httptest.NewRecorder()
		ctrl.Create(rr, req)

		// DecodeAndValidate runs first, so an empty body is rejected before auth.
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestEventControllerGetByID(t *testing.T) {
	mux := http.NewServeMux()

	t.Run("not found", func(t *testing.T) {
		svc := &fakeEventService{err: domain.ErrNotFound}
		ctrl := NewEventController(testLogger, svc, &fakeUserService{user: testActor})
		mux.HandleFunc("GET /events/{eventID}", ctrl.GetByID)

		req := httptest.NewRequest(http.MethodGet, "http://test/events/missing", nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "missing", svc.lastID)
		envelope := decodeEnvelope(t, rr)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, helpers.ErrCodeNotFound, envelope.Error.Code)
	})
}

func TestEventControllerList(t *testing.T) {
	svc := &fakeEventService{
		events: []*domain.Event{{ID: "ev-1"}, {ID: "ev-2"}},
		total:  42,
	}
	ctrl := NewEventController(testLogger, svc, &fakeUserService{user: testActor})

	req := httptest.NewRequest(http.MethodGet, "http://test/events?page=2&page_size=2", nil)
	rr := httptest.NewRecorder()
	ctrl.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var envelope struct {
		Data ListEventsResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	assert.Len(t, envelope.Data.Events, 2)
	assert.Equal(t, 2, envelope.Data.Pagination.Page)
	assert.Equal(t, 42, envelope.Data.Pagination.Total)
	assert.Equal(t, 21, envelope.Data.Pagination.TotalPages)
}

func TestEventControllerDelete(t *testing.T) {
	t.Run("live event denied for organiser", func(t *testing.T) {
		svc := &fakeEventService{err: domain.ErrForbidden("live events can only be removed by an admin")}
		ctrl := NewEventController(testLogger, svc, &fakeUserService{user: testActor})

		mux := http.NewServeMux()
		mux.HandleFunc("DELETE /events/{eventID}", ctrl.Delete)

		req := authedRequest(http.MethodDelete, "http://test/events/ev-1", nil, testActor)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		require.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "ev-1", svc.lastID)
	})

	t.Run("deleted", func(t *testing.T) {
		svc := &fakeEventService{}
		ctrl := NewEventController(testLogger, svc, &fakeUserService{user: testActor})

		mux := http.NewServeMux()
		mux.HandleFunc("DELETE /events/{eventID}", ctrl.Delete)

		req := authedRequest(http.MethodDelete, "http://test/events/ev-1", nil, testActor)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var envelope struct {
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		assert.Equal(t, "ev-1", envelope.Data["id"])
	})
}
