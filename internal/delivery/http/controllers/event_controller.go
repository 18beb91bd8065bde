package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Mode            string   `json:"mode"`
	LocationAddress string   `json:"location_address"`
	OnlineURL       string   `json:"online_url"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	Capacity        *int     `json:"capacity"`
	Price           float64  `json:"price"`
	Tags            []string `json:"tags"`
}

// Validate implements Validator. Structural checks only; the full event
// invariants are enforced by the service.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	mode := strings.TrimSpace(strings.ToLower(c.Mode))
	if mode != string(domain.ModeOnline) && mode != string(domain.ModeInPerson) {
		errs = append(errs, "mode must be \"online\" or \"in_person\"")
	}
	if _, err := time.Parse(time.RFC3339, c.StartTime); err != nil {
		errs = append(errs, "start_time must be RFC 3339")
	}
	if _, err := time.Parse(time.RFC3339, c.EndTime); err != nil {
		errs = append(errs, "end_time must be RFC 3339")
	}
	return errs
}

func (c CreateEventRequest) toEvent() *domain.Event {
	start, _ := time.Parse(time.RFC3339, c.StartTime)
	end, _ := time.Parse(time.RFC3339, c.EndTime)
	return &domain.Event{
		Title:           strings.TrimSpace(c.Title),
		Description:     strings.TrimSpace(c.Description),
		Mode:            domain.EventMode(strings.TrimSpace(strings.ToLower(c.Mode))),
		LocationAddress: strings.TrimSpace(c.LocationAddress),
		OnlineURL:       strings.TrimSpace(c.OnlineURL),
		StartTime:       start,
		EndTime:         end,
		Capacity:        c.Capacity,
		Price:           c.Price,
		Tags:            c.Tags,
	}
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}.
// Omitted fields are left unchanged.
type UpdateEventRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	Mode            *string  `json:"mode"`
	LocationAddress *string  `json:"location_address"`
	OnlineURL       *string  `json:"online_url"`
	StartTime       *string  `json:"start_time"`
	EndTime         *string  `json:"end_time"`
	Capacity        *int     `json:"capacity"`
	Price           *float64 `json:"price"`
	Tags            []string `json:"tags"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	if u.Mode != nil {
		mode := strings.TrimSpace(strings.ToLower(*u.Mode))
		if mode != string(domain.ModeOnline) && mode != string(domain.ModeInPerson) {
			errs = append(errs, "mode must be \"online\" or \"in_person\"")
		}
	}
	if u.StartTime != nil {
		if _, err := time.Parse(time.RFC3339, *u.StartTime); err != nil {
			errs = append(errs, "start_time must be RFC 3339")
		}
	}
	if u.EndTime != nil {
		if _, err := time.Parse(time.RFC3339, *u.EndTime); err != nil {
			errs = append(errs, "end_time must be RFC 3339")
		}
	}
	return errs
}

func (u UpdateEventRequest) toPatch() domain.EventPatch {
	patch := domain.EventPatch{
		Title:           u.Title,
		Description:     u.Description,
		LocationAddress: u.LocationAddress,
		OnlineURL:       u.OnlineURL,
		Capacity:        u.Capacity,
		Price:           u.Price,
		Tags:            u.Tags,
	}
	if u.Mode != nil {
		mode := domain.EventMode(strings.TrimSpace(strings.ToLower(*u.Mode)))
		patch.Mode = &mode
	}
	if u.StartTime != nil {
		if t, err := time.Parse(time.RFC3339, *u.StartTime); err == nil {
			patch.StartTime = &t
		}
	}
	if u.EndTime != nil {
		if t, err := time.Parse(time.RFC3339, *u.EndTime); err == nil {
			patch.EndTime = &t
		}
	}
	return patch
}

// ListEventsResponse is the response body for GET /events.
type ListEventsResponse struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Users   domain.UserService
}

func NewEventController(logger *slog.Logger, svc domain.EventService, users domain.UserService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Users:   users,
	}
}

// writeEventError maps domain errors to HTTP responses shared by the event handlers.
func (c *EventController) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		return
	}
	var perm *domain.PermissionError
	if errors.As(err, &perm) {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, perm.Reason)
		return
	}
	if strings.Contains(err.Error(), "invalid event") || strings.Contains(err.Error(), "invalid update") {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
}

// Create godoc
// @Summary Create an event
// @Description Create an event directly, without the assistant. The caller must be an organiser or admin; the authenticated user becomes the organiser.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := loadActor(w, r, c.Users)
	if !ok {
		return
	}
	event, err := c.Service.Create(r.Context(), actor, req.toEvent())
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetByID godoc
// @Summary Get an event
// @Description Fetch a single event by ID. Public.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetByID(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetByID(r.Context(), r.PathValue("eventID"))
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// List godoc
// @Summary List upcoming events
// @Description List events whose start time has not yet passed, soonest first. Public, paginated.
// @Tags events
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains events and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	p := helpers.ParsePagination(r)
	events, total, err := c.Service.ListUpcoming(r.Context(), p)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(p.Page, p.PageSize, total),
	})
}

// ListMine godoc
// @Summary List my events
// @Description List all events organised by the authenticated user, upcoming and past.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/mine [get]
func (c *EventController) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := loadActor(w, r, c.Users)
	if !ok {
		return
	}
	events, err := c.Service.ListByOrganiser(r.Context(), actor.ID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// Update godoc
// @Summary Update an event
// @Description Partially update an event. Only the organiser of the event or an admin may update it.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := loadActor(w, r, c.Users)
	if !ok {
		return
	}
	event, err := c.Service.Update(r.Context(), actor, r.PathValue("eventID"), req.toPatch())
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event
// @Description Delete an event. Organisers may delete their own events until the start time passes; once an event is live only an admin may delete it.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the deleted event ID"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := loadActor(w, r, c.Users)
	if !ok {
		return
	}
	eventID := r.PathValue("eventID")
	if err := c.Service.Delete(r.Context(), actor, eventID); err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": eventID})
}
