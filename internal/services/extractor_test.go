package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

func outcomeFor(outcomes []FieldOutcome, field string) (FieldOutcome, bool) {
	for _, o := range outcomes {
		if o.Field == field {
			return o, true
		}
	}
	return FieldOutcome{}, false
}

func TestApplyCompletionAcceptsValidFields(t *testing.T) {
	draft := &domain.EventDraft{}
	outcomes := ApplyCompletion(draft, `{
		"title": "Tech Meetup",
		"mode": "in-person",
		"location_address": "12 Harbour St",
		"start_time": "2026-03-10T18:00:00",
		"end_time": "2026-03-10 20:00",
		"capacity": 50,
		"price": 10.5,
		"tags": ["go", "backend"]
	}`)

	require.NotNil(t, draft.Title)
	assert.Equal(t, "Tech Meetup", *draft.Title)
	require.NotNil(t, draft.Mode)
	assert.Equal(t, domain.ModeInPerson, *draft.Mode)
	require.NotNil(t, draft.LocationAddress)
	require.NotNil(t, draft.StartTime)
	assert.Equal(t, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), *draft.StartTime)
	require.NotNil(t, draft.EndTime)
	require.NotNil(t, draft.Capacity)
	assert.Equal(t, 50, *draft.Capacity)
	require.NotNil(t, draft.Price)
	assert.Equal(t, 10.5, *draft.Price)
	assert.Equal(t, []string{"go", "backend"}, draft.Tags)

	for _, field := range []string{"title", "mode", "location", "start_time", "end_time", "capacity", "price"} {
		o, ok := outcomeFor(outcomes, field)
		require.True(t, ok, field)
		assert.Equal(t, FieldAccepted, o.Status, field)
	}
	assert.Empty(t, MissingFields(draft))
}

func TestApplyCompletionToleratesFencesAndProse(t *testing.T) {
	draft := &domain.EventDraft{}
	ApplyCompletion(draft, "Here you go:\n```json\n{\"title\": \"Workshop\"}\n```\nLet me know!")
	require.NotNil(t, draft.Title)
	assert.Equal(t, "Workshop", *draft.Title)
}

func TestApplyCompletionMalformedLeavesDraftUntouched(t *testing.T) {
	title := "Tech Meetup"
	draft := &domain.EventDraft{Title: &title}
	outcomes := ApplyCompletion(draft, "sorry, I can't help with that")

	assert.Equal(t, "Tech Meetup", *draft.Title)
	// Every still-missing field reports unchanged so the turn re-asks.
	require.NotEmpty(t, outcomes)
	for _, o := range outcomes {
		assert.Equal(t, FieldUnchanged, o.Status)
	}
}

func TestApplyCompletionRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name       string
		completion string
		field      string
	}{
		{"ambiguous mode", `{"mode": "hybrid"}`, "mode"},
		{"bad url", `{"online_url": "not a url"}`, "location"},
		{"unparsable start", `{"start_time": "next tuesday-ish"}`, "start_time"},
		{"negative capacity", `{"capacity": -3}`, "capacity"},
		{"negative price", `{"price": -1}`, "price"},
		{"empty title", `{"title": ""}`, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := &domain.EventDraft{}
			outcomes := ApplyCompletion(draft, tt.completion)
			o, ok := outcomeFor(outcomes, tt.field)
			require.True(t, ok)
			assert.Equal(t, FieldRejected, o.Status)
			assert.NotEmpty(t, o.Reason)
		})
	}
}

func TestApplyCompletionEndBeforeStartKeepsStart(t *testing.T) {
	draft := &domain.EventDraft{}
	outcomes := ApplyCompletion(draft, `{"start_time": "2026-03-10T18:00:00", "end_time": "2026-03-10T17:00:00"}`)

	require.NotNil(t, draft.StartTime, "start survives")
	assert.Nil(t, draft.EndTime, "end is dropped")

	o, ok := outcomeFor(outcomes, "end_time")
	require.True(t, ok)
	assert.Equal(t, FieldRejected, o.Status)

	so, ok := outcomeFor(outcomes, "start_time")
	require.True(t, ok)
	assert.Equal(t, FieldAccepted, so.Status)

	// The next clarification targets end_time only.
	field, _, found := firstOutstanding(outcomes, MissingFields(draft))
	require.True(t, found)
	assert.Equal(t, "end_time", field)
}

func TestApplyCompletionCapacityAndPriceSemantics(t *testing.T) {
	t.Run("explicit null capacity means unlimited", func(t *testing.T) {
		draft := &domain.EventDraft{}
		ApplyCompletion(draft, `{"capacity": null}`)
		assert.Nil(t, draft.Capacity)
		assert.True(t, draft.CapacityUnlimited)
	})

	t.Run("capacity never counts as missing", func(t *testing.T) {
		draft := &domain.EventDraft{}
		assert.NotContains(t, MissingFields(draft), "capacity")
	})

	t.Run("price stays missing without explicit free confirmation", func(t *testing.T) {
		draft := &domain.EventDraft{}
		assert.Contains(t, MissingFields(draft), "price")
	})

	t.Run("explicit free confirmation resolves price", func(t *testing.T) {
		draft := &domain.EventDraft{}
		ApplyCompletion(draft, `{"free": true}`)
		assert.True(t, draft.FreeConfirmed)
		assert.NotContains(t, MissingFields(draft), "price")
	})

	t.Run("zero price is an explicit free confirmation", func(t *testing.T) {
		draft := &domain.EventDraft{}
		ApplyCompletion(draft, `{"price": 0}`)
		require.NotNil(t, draft.Price)
		assert.True(t, draft.FreeConfirmed)
	})
}

func TestApplyCompletionIsOnlineFlag(t *testing.T) {
	draft := &domain.EventDraft{}
	ApplyCompletion(draft, `{"is_online": true, "online_url": "https://meet.example.com/x"}`)
	require.NotNil(t, draft.Mode)
	assert.Equal(t, domain.ModeOnline, *draft.Mode)
	require.NotNil(t, draft.OnlineURL)
}

func TestApplyCompletionLaterValueOverwrites(t *testing.T) {
	draft := &domain.EventDraft{}
	ApplyCompletion(draft, `{"title": "Old Title"}`)
	ApplyCompletion(draft, `{"title": "New Title"}`)
	require.NotNil(t, draft.Title)
	assert.Equal(t, "New Title", *draft.Title)
}

func TestMissingFieldsLocationDependsOnMode(t *testing.T) {
	online := domain.ModeOnline
	inPerson := domain.ModeInPerson
	url := "https://meet.example.com/x"
	addr := "12 Harbour St"

	tests := []struct {
		name    string
		draft   domain.EventDraft
		missing bool
	}{
		{"no mode yet, location not asked", domain.EventDraft{}, false},
		{"online without url", domain.EventDraft{Mode: &online}, true},
		{"online with url", domain.EventDraft{Mode: &online, OnlineURL: &url}, false},
		{"in-person without address", domain.EventDraft{Mode: &inPerson}, true},
		{"in-person with address", domain.EventDraft{Mode: &inPerson, LocationAddress: &addr}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing := MissingFields(&tt.draft)
			if tt.missing {
				assert.Contains(t, missing, "location")
			} else {
				assert.NotContains(t, missing, "location")
			}
		})
	}
}

func TestFirstOutstandingPrefersRejectedInCanonicalOrder(t *testing.T) {
	outcomes := []FieldOutcome{
		{Field: "price", Status: FieldRejected, Reason: "price must be a non-negative number"},
		{Field: "mode", Status: FieldRejected, Reason: "ambiguous"},
	}
	missing := []string{"end_time"}

	// mode precedes end_time and price in the canonical order.
	field, reason, found := firstOutstanding(outcomes, missing)
	require.True(t, found)
	assert.Equal(t, "mode", field)
	assert.Equal(t, "ambiguous", reason)
}

func TestApplyCompletionModeCorrectionDropsStaleLocation(t *testing.T) {
	draft := &domain.EventDraft{}
	ApplyCompletion(draft, `{
		"title": "Tech Meetup",
		"mode": "online",
		"online_url": "https://meet.example.com/x",
		"start_time": "2026-03-10T18:00:00",
		"end_time": "2026-03-10T20:00:00",
		"free": true
	}`)
	require.NotNil(t, draft.OnlineURL)

	// Switching to in person discards the URL; address becomes the location.
	ApplyCompletion(draft, `{"mode": "in_person", "location_address": "12 Harbour St"}`)
	require.NotNil(t, draft.Mode)
	assert.Equal(t, domain.ModeInPerson, *draft.Mode)
	assert.Nil(t, draft.OnlineURL)
	require.NotNil(t, draft.LocationAddress)
	assert.Empty(t, MissingFields(draft))

	event := draft.ToEvent("org-1")
	field, reason, ok := event.Valid()
	assert.True(t, ok, "expected valid, got %s: %s", field, reason)
	assert.Empty(t, event.OnlineURL)
	assert.Equal(t, "12 Harbour St", event.LocationAddress)

	// And back again: the address goes, the URL is the location once more.
	ApplyCompletion(draft, `{"mode": "online", "online_url": "https://meet.example.com/y"}`)
	assert.Nil(t, draft.LocationAddress)
	require.NotNil(t, draft.OnlineURL)
	assert.Equal(t, "https://meet.example.com/y", *draft.OnlineURL)
	assert.Empty(t, MissingFields(draft))
}
