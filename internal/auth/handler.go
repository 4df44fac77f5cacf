package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/ecomstack/backend/internal/models"
	"github.com/ecomstack/backend/internal/request"
	"github.com/ecomstack/backend/internal/respond"
)

const (
	msgUserExists    = "existing user found with same email address"
	msgWrongEmail    = "Wrong Email Id"
	msgWrongPassword = "Wrong Password"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Handler holds account HTTP handlers.
type Handler struct {
	users  UserStore
	tokens *Tokens
	log    *slog.Logger
	cost   int
}

func NewHandler(users UserStore, tokens *Tokens, log *slog.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, log: log, cost: bcrypt.DefaultCost}
}

// Signup creates a user with an empty cart and returns a token for it.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid request body"})
		return
	}

	_, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err == nil {
		respond.JSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": msgUserExists})
		return
	}
	if !errors.Is(err, models.ErrNotFound) {
		h.log.Error("signup lookup failed", "err", err)
		respond.JSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "internal error"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		respond.JSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "password too long"})
		return
	}
	if err != nil {
		h.log.Error("hash password", "err", err)
		respond.JSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "internal error"})
		return
	}

	user := &models.User{
		Name:     req.DisplayName(),
		Email:    req.Email,
		Password: string(hashed),
		Cart:     models.NewCart(),
	}
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			respond.JSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": msgUserExists})
			return
		}
		h.log.Error("create user", "err", err)
		respond.JSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "internal error"})
		return
	}

	token, err := h.tokens.Issue(r.Context(), user.ID)
	if err != nil {
		h.log.Error("issue token", "user_id", user.ID, "err", err)
		respond.JSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "internal error"})
		return
	}

	h.log.Info("user signed up", "user_id", user.ID)
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

// Login checks the credentials and returns a fresh token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Failure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, models.ErrNotFound) {
		respond.Failure(w, http.StatusUnauthorized, msgWrongEmail)
		return
	}
	if err != nil {
		h.log.Error("login lookup failed", "err", err)
		respond.Failure(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respond.Failure(w, http.StatusUnauthorized, msgWrongPassword)
		return
	}

	token, err := h.tokens.Issue(r.Context(), user.ID)
	if err != nil {
		h.log.Error("issue token", "user_id", user.ID, "err", err)
		respond.Failure(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

// Logout revokes the token the request was authenticated with.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	if claims == nil {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"errors": "Please authenticate using valid token"})
		return
	}
	if err := h.tokens.Revoke(r.Context(), claims); err != nil {
		h.log.Error("logout", "user_id", claims.User.ID, "err", err)
		respond.Failure(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true})
}
