package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validEvent() *Event {
	start := time.Now().Add(24 * time.Hour)
	return &Event{
		Title:           "Tech Meetup",
		Mode:            ModeInPerson,
		LocationAddress: "12 Harbour St",
		StartTime:       start,
		EndTime:         start.Add(2 * time.Hour),
		Price:           0,
	}
}

func TestEventValid(t *testing.T) {
	cap := 50
	negCap := -1
	tests := []struct {
		name      string
		mutate    func(*Event)
		wantField string
	}{
		{"valid in-person", func(e *Event) {}, ""},
		{"valid online", func(e *Event) {
			e.Mode = ModeOnline
			e.LocationAddress = ""
			e.OnlineURL = "https://meet.example.com/x"
		}, ""},
		{"valid unlimited capacity", func(e *Event) { e.Capacity = nil }, ""},
		{"valid bounded capacity", func(e *Event) { e.Capacity = &cap }, ""},
		{"empty title", func(e *Event) { e.Title = "" }, "title"},
		{"online without url", func(e *Event) {
			e.Mode = ModeOnline
			e.OnlineURL = ""
		}, "location"},
		{"in-person without address", func(e *Event) { e.LocationAddress = "" }, "location"},
		{"online with stale address", func(e *Event) {
			e.Mode = ModeOnline
			e.OnlineURL = "https://meet.example.com/x"
		}, "location"},
		{"in-person with stale url", func(e *Event) {
			e.OnlineURL = "https://meet.example.com/x"
		}, "location"},
		{"unknown mode", func(e *Event) { e.Mode = "hybrid" }, "mode"},
		{"zero start", func(e *Event) { e.StartTime = time.Time{} }, "start_time"},
		{"zero end", func(e *Event) { e.EndTime = time.Time{} }, "end_time"},
		{"end before start", func(e *Event) { e.EndTime = e.StartTime.Add(-time.Hour) }, "end_time"},
		{"negative capacity", func(e *Event) { e.Capacity = &negCap }, "capacity"},
		{"negative price", func(e *Event) { e.Price = -5 }, "price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(e)
			field, reason, ok := e.Valid()
			if tt.wantField == "" {
				assert.True(t, ok, "expected valid, got %s: %s", field, reason)
				return
			}
			assert.False(t, ok)
			assert.Equal(t, tt.wantField, field)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestEventLive(t *testing.T) {
	start := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	e := &Event{StartTime: start}

	assert.False(t, e.Live(start.Add(-time.Second)))
	assert.True(t, e.Live(start), "liveness begins exactly at start time")
	assert.True(t, e.Live(start.Add(time.Hour)))
}
