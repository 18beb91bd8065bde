package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Event reads are public; everything else requires a Bearer token, and the
// /admin subtree additionally requires the admin role.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	conversationController *controllers.ConversationController,
	userController *controllers.UserController,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier, logger)
	admin := middleware.RequireRole(domain.RoleAdmin)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events
	mux.HandleFunc("GET /events", eventController.List)
	mux.HandleFunc("GET /events/mine", auth(eventController.ListMine))
	mux.HandleFunc("GET /events/{eventID}", eventController.GetByID)
	mux.HandleFunc("POST /events", auth(eventController.Create))
	mux.HandleFunc("PATCH /events/{eventID}", auth(eventController.Update))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.Delete))

	// Assistant conversations
	mux.HandleFunc("POST /conversations", auth(conversationController.Start))
	mux.HandleFunc("POST /conversations/{sessionID}/messages", auth(conversationController.PostMessage))
	mux.HandleFunc("POST /conversations/{sessionID}/confirm", auth(conversationController.Confirm))
	mux.HandleFunc("DELETE /conversations/{sessionID}", auth(conversationController.Abort))

	// Users
	mux.HandleFunc("GET /users/me", auth(userController.Me))

	// Admin
	mux.HandleFunc("GET /admin/users", auth(admin(userController.List)))
	mux.HandleFunc("PATCH /admin/users/{userID}/role", auth(admin(userController.ChangeRole)))
	mux.HandleFunc("DELETE /admin/users/{userID}", auth(admin(userController.Delete)))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
