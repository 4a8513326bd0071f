package handler

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mkowalski/notekeeper/internal/domain"
	"github.com/mkowalski/notekeeper/internal/service"
)

var validate = validator.New()

// AuthHandler handles registration, login and profile requests.
type AuthHandler struct {
	auth         *service.AuthService
	loginLimiter *service.TokenBucket
}

// NewAuthHandler creates a new AuthHandler. loginLimiter may be nil to
// disable login throttling.
func NewAuthHandler(auth *service.AuthService, loginLimiter *service.TokenBucket) *AuthHandler {
	return &AuthHandler{auth: auth, loginLimiter: loginLimiter}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates a new user account.
// POST /api/users/register
// Request:  {"email":"...","password":"..."}
// Response: {"id":1,"email":"..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.Error("register user", "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		}
		return
	}

	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleLogin verifies credentials and issues an access token. The error
// message never reveals whether the email or the password was wrong.
// POST /api/users/login/access-token
// Request:  {"email":"...","password":"..."}
// Response: {"access_token":"..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.loginLimiter != nil && !h.loginLimiter.Allow(clientAddr(r)) {
		writeError(w, http.StatusTooManyRequests, "Too many login attempts")
		return
	}

	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "Incorrect email or password")
			return
		}
		slog.Error("login user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, TokenDTO{AccessToken: token})
}

// HandleMe returns the currently authenticated user.
// GET /api/users/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// validationMessage renders the first violation of a validator error in a
// client-friendly form.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return "field " + fe.Field() + " is required"
		case "email":
			return "field " + fe.Field() + " must be a valid email address"
		default:
			return "field " + fe.Field() + " is invalid"
		}
	}
	return "invalid request"
}

// clientAddr returns the request's client address without the port, for
// use as a rate-limit key.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
