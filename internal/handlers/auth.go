package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/staffdesk/apiserver/internal/auth"
	"github.com/staffdesk/apiserver/internal/services"
)

// AuthHandler provides the login and token endpoints.
type AuthHandler struct {
	authService *services.AuthService
	tokens      *auth.TokenService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(authService *services.AuthService, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, authService *services.AuthService, tokens *auth.TokenService) {
	handler := NewAuthHandler(authService, tokens)

	r.Post("/login", handler.Login)
	r.Post("/check-token", handler.CheckToken)
}

// RequireAuth enforces bearer-token authentication and injects the token
// subject into the request context.
func RequireAuth(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), contextSubjectKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type LoginRequest struct {
	Rut      string `json:"rut"`
	Password string `json:"password"`
}

type LoginData struct {
	Token string `json:"token"`
}

type CheckTokenRequest struct {
	Token string `json:"token"`
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Rut = strings.TrimSpace(req.Rut)
	if req.Rut == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	token, err := h.authService.Login(r.Context(), req.Rut, req.Password)
	if err != nil {
		writeServiceError(w, err, "failed to authenticate")
		return
	}

	writeData(w, http.StatusOK, "session started", LoginData{Token: token})
}

// CheckToken reports whether a session token is still valid. The answer
// is always a 200 with a boolean payload; verification failures are data,
// not errors.
func (h *AuthHandler) CheckToken(w http.ResponseWriter, r *http.Request) {
	var req CheckTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	valid := h.authService.CheckToken(strings.TrimSpace(req.Token))
	writeData(w, http.StatusOK, "token checked", valid)
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
