package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/booking-platform/internal/application"
)

type accountService interface {
	Signup(ctx context.Context, params application.SignupParams) (application.User, error)
	UserDetail(ctx context.Context, username string) (application.User, error)
	Me(ctx context.Context, principal application.Principal) (application.User, error)
	UpdateProfile(ctx context.Context, params application.UpdateProfileParams) (application.User, error)
	Unregister(ctx context.Context, principal application.Principal) error
}

// AccountHandler serves signup, profile, and unregistration.
type AccountHandler struct {
	service    accountService
	signupOpen bool
	responder  responder
	logger     *slog.Logger
}

// NewAccountHandler creates an AccountHandler. When signupOpen is false the
// signup endpoint answers 403 without touching the service.
func NewAccountHandler(service accountService, signupOpen bool, logger *slog.Logger) *AccountHandler {
	base := defaultLogger(logger)
	return &AccountHandler{service: service, signupOpen: signupOpen, responder: newResponder(base), logger: base}
}

func (h *AccountHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AccountHandler", operation, attrs...)
}

// Signup registers a new account.
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if !h.signupOpen {
		h.responder.writeJSON(r.Context(), w, http.StatusForbidden, errorResponse{
			ErrorCode: "SIGNUP_CLOSED",
			Message:   "Signups are currently closed.",
		})
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Signup", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode signup request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Signup", "username", req.Username)

	user, err := h.service.Signup(r.Context(), application.SignupParams{
		Username:      req.Username,
		Email:         req.Email,
		DisplayName:   req.DisplayName,
		Password:      req.Password,
		PasswordAgain: req.PasswordAgain,
		IsHost:        req.IsHost,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "signup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", user.ID).InfoContext(r.Context(), "account created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, userResponse{User: toUserDTO(user)})
}

// Me returns the authenticated user's profile.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Me", "principal_id", principal.UserID)

	user, err := h.service.Me(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "profile lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

// UpdateMe applies a partial profile update to the authenticated user.
func (h *AccountHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req userPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateMe", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode profile patch", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateMe", "principal_id", principal.UserID)

	user, err := h.service.UpdateProfile(r.Context(), application.UpdateProfileParams{
		Principal: principal,
		Patch: application.UserPatch{
			Email:         req.Email,
			DisplayName:   req.DisplayName,
			Password:      req.Password,
			PasswordAgain: req.PasswordAgain,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "profile update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "profile updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

// DeleteMe unregisters the authenticated user and everything they own.
func (h *AccountHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "DeleteMe", "principal_id", principal.UserID)

	if err := h.service.Unregister(r.Context(), principal); err != nil {
		logger.ErrorContext(r.Context(), "unregistration failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	clearSessionCookie(w)
	logger.InfoContext(r.Context(), "account unregistered")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// UserDetail returns the public profile for a username.
func (h *AccountHandler) UserDetail(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	username := strings.TrimSpace(mux.Vars(r)["username"])
	logger := h.log(r.Context(), "UserDetail", "username", username)

	user, err := h.service.UserDetail(r.Context(), username)
	if err != nil {
		logger.ErrorContext(r.Context(), "user lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toPublicUserDTO(user)})
}

type signupRequest struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	Password      string `json:"password"`
	PasswordAgain string `json:"password_again"`
	IsHost        bool   `json:"is_host"`
}

type userPatchRequest struct {
	Email         *string `json:"email"`
	DisplayName   *string `json:"display_name"`
	Password      *string `json:"password"`
	PasswordAgain *string `json:"password_again"`
}

type userDTO struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name"`
	IsHost      bool   `json:"is_host"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type userResponse struct {
	User userDTO `json:"user"`
}

func toUserDTO(user application.User) userDTO {
	dto := userDTO{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsHost:      user.IsHost,
	}
	if !user.CreatedAt.IsZero() {
		dto.CreatedAt = user.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// toPublicUserDTO strips the fields only the account owner should see.
func toPublicUserDTO(user application.User) userDTO {
	dto := toUserDTO(user)
	dto.Email = ""
	return dto
}
