package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// ChangeRoleRequest is the request body for PATCH /admin/users/{userID}/role.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// Validate implements Validator.
func (c ChangeRoleRequest) Validate() []string {
	role := strings.TrimSpace(strings.ToLower(c.Role))
	switch role {
	case string(domain.RoleAdmin), string(domain.RoleOrganiser), string(domain.RoleUser):
		return nil
	}
	return []string{"role must be \"admin\", \"organiser\", or \"user\""}
}

// ListUsersResponse is the response body for GET /admin/users.
type ListUsersResponse struct {
	Users      []*domain.User         `json:"users"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *UserController) writeUserError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrUserNotFound) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
		return
	}
	var perm *domain.PermissionError
	if errors.As(err, &perm) {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, perm.Reason)
		return
	}
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
}

// Me godoc
// @Summary Get the authenticated account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the account"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /users/me [get]
func (c *UserController) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := loadActor(w, r, c.Service)
	if !ok {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, actor)
}

// List godoc
// @Summary List users
// @Description List all accounts. Admin only, paginated.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains users and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/users [get]
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := loadActor(w, r, c.Service)
	if !ok {
		return
	}
	p := helpers.ParsePagination(r)
	users, total, err := c.Service.ListUsers(r.Context(), actor, p)
	if err != nil {
		c.writeUserError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListUsersResponse{
		Users:      users,
		Pagination: helpers.NewPaginationMeta(p.Page, p.PageSize, total),
	})
}

// ChangeRole godoc
// @Summary Change a user's role
// @Description Set a user's role. Admin only; an admin cannot remove their own admin role.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param body body ChangeRoleRequest true "New role"
// @Success 200 {object} helpers.APIResponse "data contains the user ID and new role"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/users/{userID}/role [patch]
func (c *UserController) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req ChangeRoleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := loadActor(w, r, c.Service)
	if !ok {
		return
	}
	userID := r.PathValue("userID")
	role := domain.ParseRole(req.Role)
	if err := c.Service.ChangeRole(r.Context(), actor, userID, role); err != nil {
		c.writeUserError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": userID, "role": string(role)})
}

// Delete godoc
// @Summary Delete a user
// @Description Delete an account. Admin only; an admin cannot delete their own account.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} helpers.APIResponse "data contains the deleted user ID"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/users/{userID} [delete]
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := loadActor(w, r, c.Service)
	if !ok {
		return
	}
	userID := r.PathValue("userID")
	if err := c.Service.DeleteUser(r.Context(), actor, userID); err != nil {
		c.writeUserError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": userID})
}
