package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/finbook-app/finbook/internal/api/httpx"
	"github.com/finbook-app/finbook/internal/auth"
	"github.com/finbook-app/finbook/internal/domain/shared"
	"github.com/finbook-app/finbook/internal/domain/user"
	"github.com/finbook-app/finbook/internal/service"
	"github.com/finbook-app/finbook/internal/store"
	"github.com/finbook-app/finbook/pkg/logger"
)

// UserHandler exposes the user service over HTTP
type UserHandler struct {
	logger     *logger.Logger
	users      *service.UserService
	jwtService *auth.JWTService
}

// NewUserHandler creates a user handler
func NewUserHandler(log *logger.Logger, users *service.UserService, jwtService *auth.JWTService) *UserHandler {
	return &UserHandler{
		logger:     log.WithComponent("user-handler"),
		users:      users,
		jwtService: jwtService,
	}
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the authenticated user
type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresIn int64          `json:"expires_in"`
	User      store.Document `json:"user"`
}

// HandleRegister handles POST /api/v1/auth/register
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var newUser user.User
	if err := httpx.Decode(r, &newUser); err != nil {
		httpx.WriteError(w, shared.ErrInvalidInput("invalid request body"))
		return
	}

	result, err := h.users.AddUser(r.Context(), &newUser)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, result)
}

// HandleLogin handles POST /api/v1/auth/login
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, shared.ErrInvalidInput("invalid request body"))
		return
	}

	doc, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	userID, _ := doc.ID()
	token, err := h.jwtService.GenerateToken(userID, req.Email)
	if err != nil {
		h.logger.Error("failed to issue token", zap.String("email", req.Email), zap.Error(err))
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresIn: h.jwtService.ExpirySeconds(),
		User:      sanitize(doc),
	})
}

// HandleList handles GET /api/v1/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetUsers(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	out := make([]store.Document, 0, len(users))
	for _, u := range users {
		out = append(out, sanitize(u))
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /api/v1/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	doc, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if doc == nil {
		httpx.WriteError(w, shared.ErrNotFound("user"))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sanitize(doc))
}

// HandleUpdate handles PUT /api/v1/users/{id}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var updated user.User
	if err := httpx.Decode(r, &updated); err != nil {
		httpx.WriteError(w, shared.ErrInvalidInput("invalid request body"))
		return
	}

	patch, err := h.users.UpdateUser(r.Context(), id, &updated)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sanitize(patch))
}

// HandleDelete handles DELETE /api/v1/users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := h.users.DeleteUser(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sanitize(deleted))
}

// sanitize strips the password field before a document leaves the API
func sanitize(doc store.Document) store.Document {
	if doc == nil {
		return nil
	}
	out := make(store.Document, len(doc))
	for k, v := range doc {
		if k == "password" {
			continue
		}
		out[k] = v
	}
	return out
}
