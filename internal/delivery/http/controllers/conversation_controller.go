package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// PostMessageRequest is the request body for POST /conversations/{sessionID}/messages.
type PostMessageRequest struct {
	Text string `json:"text"`
}

// Validate implements Validator.
func (p PostMessageRequest) Validate() []string {
	if strings.TrimSpace(p.Text) == "" {
		return []string{"text is required"}
	}
	return nil
}

type ConversationController struct {
	Logger  *slog.Logger
	Service domain.ConversationService
	Users   domain.UserService
}

func NewConversationController(logger *slog.Logger, svc domain.ConversationService, users domain.UserService) *ConversationController {
	return &ConversationController{
		Logger:  logger,
		Service: svc,
		Users:   users,
	}
}

// writeConversationError maps conversation errors to HTTP responses.
func (c *ConversationController) writeConversationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "conversation session not found")
	case errors.Is(err, domain.ErrSessionExpired):
		helpers.WriteJSONError(w, http.StatusGone, helpers.ErrCodeSessionExpired, "conversation session expired; start a new one")
	case errors.Is(err, domain.ErrModelUnavailable):
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeModelUnavailable, "the assistant is temporarily unavailable; your draft is unchanged, try again")
	case errors.Is(err, domain.ErrPersistenceFailed):
		helpers.WriteJSONError(w, http.StatusBadGateway, helpers.ErrCodePersistenceFailed, "could not save the event; your draft is unchanged, confirm again to retry")
	case errors.Is(err, domain.ErrConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		var perm *domain.PermissionError
		if errors.As(err, &perm) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, perm.Reason)
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// Start godoc
// @Summary Start or resume a conversation
// @Description Start an assistant-guided event creation session, or resume the caller's active one. The caller must be an organiser or admin.
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the session"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conversations [post]
func (c *ConversationController) Start(w http.ResponseWriter, r *http.Request) {
	actor, ok := loadActor(w, r, c.Users)
	if !ok {
		return
	}
	session, err := c.Service.StartOrResumeSession(r.Context(), actor)
	if err != nil {
		c.writeConversationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, session)
}

// PostMessage godoc
// @Summary Send a message
// @Description Send one user message to the assistant. The reply either asks for the next missing or invalid field, or restates the full draft and asks for confirmation.
// @Tags conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID"
// @Param body body PostMessageRequest true "Message"
// @Success 200 {object} helpers.APIResponse "data contains state, reply, and draft"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 410 {object} helpers.APIResponse "error.code: session_expired"
// @Failure 503 {object} helpers.APIResponse "error.code: model_unavailable"
// @Router /conversations/{sessionID}/messages [post]
func (c *ConversationController) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := loadActor(w, r, c.Users)
	if !ok {
		return
	}
	result, err := c.Service.PostMessage(r.Context(), actor.ID, r.PathValue("sessionID"), req.Text)
	if err != nil {
		c.writeConversationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// Confirm godoc
// @Summary Confirm the draft
// @Description Commit the drafted event. Only valid while the session awaits confirmation; on persistence failure the draft is kept so the confirm can be retried.
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID"
// @Success 200 {object} helpers.APIResponse "data contains state, reply, and the created event ID"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 502 {object} helpers.APIResponse "error.code: persistence_failed"
// @Router /conversations/{sessionID}/confirm [post]
func (c *ConversationController) Confirm(w http.ResponseWriter, r *http.Request) {
	actor, ok := loadActor(w, r, c.Users)
	if !ok {
		return
	}
	result, err := c.Service.ConfirmDraft(r.Context(), actor.ID, r.PathValue("sessionID"))
	if err != nil {
		c.writeConversationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// Abort godoc
// @Summary Abort the conversation
// @Description Discard the session and its draft. Nothing is persisted.
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID"
// @Success 200 {object} helpers.APIResponse "data contains the final state and reply"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /conversations/{sessionID} [delete]
func (c *ConversationController) Abort(w http.ResponseWriter, r *http.Request) {
	actor, ok := loadActor(w, r, c.Users)
	if !ok {
		return
	}
	result, err := c.Service.AbortSession(r.Context(), actor.ID, r.PathValue("sessionID"))
	if err != nil {
		c.writeConversationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
