package services

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eventhub/internal/domain"
)

// FieldStatus classifies what happened to one draft field during a turn.
type FieldStatus string

const (
	FieldAccepted  FieldStatus = "accepted"
	FieldRejected  FieldStatus = "rejected"
	FieldUnchanged FieldStatus = "unchanged"
)

// FieldOutcome is the per-field result of applying a model completion to the
// draft. Rejected outcomes carry the reason used for the re-ask.
type FieldOutcome struct {
	Field  string      `json:"field"`
	Status FieldStatus `json:"status"`
	Reason string      `json:"reason,omitempty"`
}

// requiredFieldOrder is the canonical clarification order. The orchestrator
// always re-asks about the first missing or invalid field in this order.
var requiredFieldOrder = []string{
	"title", "mode", "location", "start_time", "end_time", "capacity", "price",
}

// timeLayouts are tried in order when parsing model-proposed timestamps.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// decodeCompletion pulls a JSON object out of the model completion. The model
// is instructed to return bare JSON, but completions wrapped in code fences
// or prose are tolerated. A completion with no parsable object yields nil,
// which the caller treats as "no new fields this turn".
func decodeCompletion(completion string) map[string]any {
	s := strings.TrimSpace(completion)
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			s = s[i : j+1]
		}
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil
	}
	return payload
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return strings.TrimSpace(s), ok
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	default:
		return false, false
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	default:
		return 0, false
	}
}

func parseEventTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

// resolveMode maps a model-proposed mode to exactly online or in_person.
// Ambiguous text is rejected, never guessed.
func resolveMode(s string) (domain.EventMode, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "online", "virtual", "remote":
		return domain.ModeOnline, true
	case "in_person", "in person", "inperson", "offline", "physical":
		return domain.ModeInPerson, true
	default:
		return "", false
	}
}

// setMode stores the mode and discards the location of the other kind. A
// mode correction must never leave a stale URL or address in the draft.
func setMode(draft *domain.EventDraft, mode domain.EventMode) {
	draft.Mode = &mode
	switch mode {
	case domain.ModeOnline:
		draft.LocationAddress = nil
	case domain.ModeInPerson:
		draft.OnlineURL = nil
	}
}

// plausibleURL accepts http(s) URLs with a host.
func plausibleURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ApplyCompletion merges the model completion into the draft and reports a
// per-field outcome for every field the completion touched. Later valid
// values overwrite earlier ones; a previously accepted field is only changed
// when the turn explicitly re-supplies it. A malformed completion contributes
// nothing: every required field still outstanding is reported unchanged so
// the orchestrator re-asks instead of committing guessed data.
func ApplyCompletion(draft *domain.EventDraft, completion string) []FieldOutcome {
	payload := decodeCompletion(completion)
	if payload == nil {
		outcomes := make([]FieldOutcome, 0, len(requiredFieldOrder))
		for _, f := range MissingFields(draft) {
			outcomes = append(outcomes, FieldOutcome{Field: f, Status: FieldUnchanged})
		}
		return outcomes
	}

	var outcomes []FieldOutcome
	accept := func(field string) {
		outcomes = append(outcomes, FieldOutcome{Field: field, Status: FieldAccepted})
	}
	reject := func(field, reason string) {
		outcomes = append(outcomes, FieldOutcome{Field: field, Status: FieldRejected, Reason: reason})
	}

	if v, present := payload["title"]; present {
		if s, ok := asString(v); ok && s != "" {
			draft.Title = &s
			accept("title")
		} else {
			reject("title", "title must not be empty")
		}
	}
	if v, present := payload["description"]; present {
		if s, ok := asString(v); ok {
			draft.Description = &s
			accept("description")
		}
	}

	// Mode arrives either as a mode string or as the is_online flag.
	if v, present := payload["mode"]; present {
		if s, ok := asString(v); ok {
			if mode, resolved := resolveMode(s); resolved {
				setMode(draft, mode)
				accept("mode")
			} else {
				reject("mode", fmt.Sprintf("%q is neither online nor in-person", s))
			}
		} else {
			reject("mode", "mode must be online or in_person")
		}
	} else if v, present := payload["is_online"]; present {
		if b, ok := asBool(v); ok {
			mode := domain.ModeInPerson
			if b {
				mode = domain.ModeOnline
			}
			setMode(draft, mode)
			accept("mode")
		} else {
			reject("mode", "is_online must be true or false")
		}
	}

	if v, present := payload["location_address"]; present {
		if s, ok := asString(v); ok && s != "" {
			draft.LocationAddress = &s
			accept("location")
		} else {
			reject("location", "address must not be empty")
		}
	}
	if v, present := payload["online_url"]; present {
		if s, ok := asString(v); ok && plausibleURL(s) {
			draft.OnlineURL = &s
			accept("location")
		} else {
			reject("location", "online URL is not a valid http(s) URL")
		}
	}

	if v, present := payload["start_time"]; present {
		if s, ok := asString(v); ok {
			if t, err := parseEventTime(s); err == nil {
				draft.StartTime = &t
				accept("start_time")
			} else {
				reject("start_time", "could not parse start time")
			}
		} else {
			reject("start_time", "start time must be a timestamp")
		}
	}
	if v, present := payload["end_time"]; present {
		if s, ok := asString(v); ok {
			if t, err := parseEventTime(s); err == nil {
				draft.EndTime = &t
				accept("end_time")
			} else {
				reject("end_time", "could not parse end time")
			}
		} else {
			reject("end_time", "end time must be a timestamp")
		}
	}

	// End must not precede start: reject end, keep start, re-ask end only.
	if draft.StartTime != nil && draft.EndTime != nil && draft.EndTime.Before(*draft.StartTime) {
		draft.EndTime = nil
		outcomes = dropOutcome(outcomes, "end_time")
		reject("end_time", "before start")
	}

	if v, present := payload["capacity"]; present {
		if v == nil {
			draft.Capacity = nil
			draft.CapacityUnlimited = true
			accept("capacity")
		} else if n, ok := asInt(v); ok && n >= 0 {
			draft.Capacity = &n
			draft.CapacityUnlimited = false
			accept("capacity")
		} else {
			reject("capacity", "capacity must be a non-negative integer")
		}
	} else if v, present := payload["capacity_unlimited"]; present {
		if b, ok := asBool(v); ok && b {
			draft.Capacity = nil
			draft.CapacityUnlimited = true
			accept("capacity")
		}
	}

	if v, present := payload["price"]; present {
		if f, ok := asFloat(v); ok && f >= 0 {
			draft.Price = &f
			if f == 0 {
				draft.FreeConfirmed = true
			}
			accept("price")
		} else {
			reject("price", "price must be a non-negative number")
		}
	} else if v, present := payload["free"]; present {
		// Price defaults to zero only on an explicit free confirmation.
		if b, ok := asBool(v); ok && b {
			draft.FreeConfirmed = true
			accept("price")
		}
	}

	if v, present := payload["tags"]; present {
		if raw, ok := v.([]any); ok {
			var tags []string
			for _, item := range raw {
				if s, sok := asString(item); sok && s != "" {
					tags = append(tags, s)
				}
			}
			if tags != nil {
				draft.Tags = tags
				accept("tags")
			}
		}
	}

	return outcomes
}

// dropOutcome removes a previously recorded outcome for the field so a later
// correction (e.g. the end-before-start rule) wins.
func dropOutcome(outcomes []FieldOutcome, field string) []FieldOutcome {
	out := outcomes[:0]
	for _, o := range outcomes {
		if o.Field != field {
			out = append(out, o)
		}
	}
	return out
}

// MissingFields returns the required fields still absent from the draft, in
// canonical order. Capacity is never missing: absence means unlimited. Price
// counts as resolved only once a value was given or the user explicitly
// confirmed the event is free.
func MissingFields(draft *domain.EventDraft) []string {
	var missing []string
	if draft.Title == nil {
		missing = append(missing, "title")
	}
	if draft.Mode == nil {
		missing = append(missing, "mode")
	} else {
		switch *draft.Mode {
		case domain.ModeOnline:
			if draft.OnlineURL == nil {
				missing = append(missing, "location")
			}
		case domain.ModeInPerson:
			if draft.LocationAddress == nil {
				missing = append(missing, "location")
			}
		}
	}
	if draft.StartTime == nil {
		missing = append(missing, "start_time")
	}
	if draft.EndTime == nil {
		missing = append(missing, "end_time")
	}
	if draft.Price == nil && !draft.FreeConfirmed {
		missing = append(missing, "price")
	}
	return missing
}

// firstOutstanding picks the field to clarify: the first rejected field this
// turn, or failing that the first missing field, in canonical order.
func firstOutstanding(outcomes []FieldOutcome, missing []string) (field, reason string, found bool) {
	rejected := make(map[string]string, len(outcomes))
	for _, o := range outcomes {
		if o.Status == FieldRejected {
			if _, seen := rejected[o.Field]; !seen {
				rejected[o.Field] = o.Reason
			}
		}
	}
	missingSet := make(map[string]struct{}, len(missing))
	for _, f := range missing {
		missingSet[f] = struct{}{}
	}
	for _, f := range requiredFieldOrder {
		if r, ok := rejected[f]; ok {
			return f, r, true
		}
		if _, ok := missingSet[f]; ok {
			return f, "", true
		}
	}
	return "", "", false
}
