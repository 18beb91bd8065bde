package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"eventhub/internal/domain"
)

// schemaInstructions describes the event schema to the extraction model.
// Field names here must match the keys ApplyCompletion understands.
const schemaInstructions = `EVENT SCHEMA:
- title (string): the name of the event [REQUIRED]
- description (string): detailed description [OPTIONAL]
- mode (string): "online" or "in_person" [REQUIRED]
- online_url (string): meeting URL, required when mode is online
- location_address (string): venue address, required when mode is in_person
- start_time (string): start date and time, ISO 8601 [REQUIRED]
- end_time (string): end date and time, ISO 8601, never before start_time [REQUIRED]
- capacity (integer): maximum attendance; omit for unlimited [OPTIONAL]
- capacity_unlimited (boolean): true when the user says there is no cap
- price (number): ticket price, 0 for free [REQUIRED]
- free (boolean): true only when the user explicitly says the event is free
- tags (array of strings): categories [OPTIONAL]

RULES:
1. Extract only information stated in the user message. Never invent values.
2. Return ONLY a JSON object with the fields to update. Omit fields that are
   not mentioned.
3. If the mode is ambiguous, omit it rather than guessing.
4. Set "free" to true only on an explicit statement that the event costs nothing.`

// BuildCompletionRequest assembles the prompt for one extraction turn from
// the current draft, the outstanding fields, and the latest user message.
func BuildCompletionRequest(draft *domain.EventDraft, userMessage string) domain.CompletionRequest {
	draftJSON, err := json.Marshal(draft)
	if err != nil {
		draftJSON = []byte("{}")
	}
	return domain.CompletionRequest{
		System:      schemaInstructions,
		DraftJSON:   string(draftJSON),
		Missing:     MissingFields(draft),
		UserMessage: userMessage,
	}
}

// clarifyQuestions maps each canonical field to the question asked while
// clarifying. The reason for a rejection, when known, is prefixed.
var clarifyQuestions = map[string]string{
	"title":      "What should the event be called?",
	"mode":       "Will the event be held online or in person?",
	"location":   "Where will it take place? Give a venue address, or a URL for an online event.",
	"start_time": "When does the event start? A date and time, please.",
	"end_time":   "When does the event end?",
	"capacity":   "How many people can attend? Say \"no limit\" for unlimited capacity.",
	"price":      "What does a ticket cost? Say \"free\" if there is no charge.",
}

func clarifyMessage(field, reason string) string {
	q, ok := clarifyQuestions[field]
	if !ok {
		q = fmt.Sprintf("Could you tell me the event's %s?", field)
	}
	if reason != "" {
		return fmt.Sprintf("There is a problem with the %s (%s). %s", strings.ReplaceAll(field, "_", " "), reason, q)
	}
	return q
}

// confirmMessage restates the full draft and asks for explicit confirmation.
func confirmMessage(draft *domain.EventDraft) string {
	var b strings.Builder
	b.WriteString("Here is the event so far:\n")
	if draft.Title != nil {
		fmt.Fprintf(&b, "- Title: %s\n", *draft.Title)
	}
	if draft.Description != nil && *draft.Description != "" {
		fmt.Fprintf(&b, "- Description: %s\n", *draft.Description)
	}
	if draft.Mode != nil {
		switch *draft.Mode {
		case domain.ModeOnline:
			b.WriteString("- Online event")
			if draft.OnlineURL != nil {
				fmt.Fprintf(&b, " at %s", *draft.OnlineURL)
			}
			b.WriteString("\n")
		case domain.ModeInPerson:
			b.WriteString("- In person")
			if draft.LocationAddress != nil {
				fmt.Fprintf(&b, " at %s", *draft.LocationAddress)
			}
			b.WriteString("\n")
		}
	}
	if draft.StartTime != nil {
		fmt.Fprintf(&b, "- Starts: %s\n", draft.StartTime.Format("Monday, 2 January 2006 at 15:04"))
	}
	if draft.EndTime != nil {
		fmt.Fprintf(&b, "- Ends: %s\n", draft.EndTime.Format("Monday, 2 January 2006 at 15:04"))
	}
	if draft.Capacity != nil {
		fmt.Fprintf(&b, "- Capacity: %d\n", *draft.Capacity)
	} else {
		b.WriteString("- Capacity: unlimited\n")
	}
	switch {
	case draft.Price != nil && *draft.Price > 0:
		fmt.Fprintf(&b, "- Price: %.2f\n", *draft.Price)
	default:
		b.WriteString("- Price: free\n")
	}
	if len(draft.Tags) > 0 {
		fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(draft.Tags, ", "))
	}
	b.WriteString("Shall I create it? Reply \"yes\" to confirm, or tell me what to change.")
	return b.String()
}
