package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanPerform(t *testing.T) {
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	event := &Event{ID: "ev-1", OrganiserID: "org-1", StartTime: start, EndTime: start.Add(time.Hour)}
	before := start.Add(-time.Minute)
	after := start.Add(time.Minute)

	tests := []struct {
		name       string
		role       Role
		actorID    string
		event      *Event
		action     Action
		now        time.Time
		allowed    bool
		wantReason string
	}{
		{"admin creates", RoleAdmin, "adm-1", nil, ActionCreate, before, true, ""},
		{"admin updates others' event", RoleAdmin, "adm-1", event, ActionUpdate, before, true, ""},
		{"admin deletes live event", RoleAdmin, "adm-1", event, ActionDelete, after, true, ""},
		{"anyone reads", RoleUser, "", event, ActionRead, before, true, ""},
		{"anonymous cannot create", RoleUser, "", nil, ActionCreate, before, false, "authentication required"},
		{"plain user cannot create", RoleUser, "usr-1", nil, ActionCreate, before, false, "only organisers can manage events"},
		{"plain user cannot delete", RoleUser, "usr-1", event, ActionDelete, before, false, "only organisers can manage events"},
		{"organiser creates", RoleOrganiser, "org-1", nil, ActionCreate, before, true, ""},
		{"organiser updates own event", RoleOrganiser, "org-1", event, ActionUpdate, before, true, ""},
		{"organiser updates own live event", RoleOrganiser, "org-1", event, ActionUpdate, after, true, ""},
		{"organiser cannot update others' event", RoleOrganiser, "org-2", event, ActionUpdate, before, false, "not the event organiser"},
		{"organiser deletes own upcoming event", RoleOrganiser, "org-1", event, ActionDelete, before, true, ""},
		{"organiser cannot delete own live event", RoleOrganiser, "org-1", event, ActionDelete, after, false, "event is live"},
		{"organiser cannot delete others' event", RoleOrganiser, "org-2", event, ActionDelete, before, false, "not the event organiser"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanPerform(tt.role, tt.actorID, tt.event, tt.action, tt.now)
			assert.Equal(t, tt.allowed, d.Allowed)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, d.Reason)
			}
		})
	}
}

// The same call with only the clock moved across the start time flips exactly
// one outcome: the organiser's delete.
func TestCanPerformLivenessBoundary(t *testing.T) {
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	event := &Event{ID: "ev-1", OrganiserID: "org-1", StartTime: start}

	before := CanPerform(RoleOrganiser, "org-1", event, ActionDelete, start.Add(-time.Nanosecond))
	atStart := CanPerform(RoleOrganiser, "org-1", event, ActionDelete, start)

	assert.True(t, before.Allowed)
	assert.False(t, atStart.Allowed)
	assert.Equal(t, "event is live", atStart.Reason)

	// Repeating the earlier call still allows: nothing was recorded.
	again := CanPerform(RoleOrganiser, "org-1", event, ActionDelete, start.Add(-time.Nanosecond))
	assert.True(t, again.Allowed)
}
