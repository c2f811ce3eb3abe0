package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/olchaban/receipts/internal/auth"
)

// AuthService implements the registration, login and token-refresh
// endpoints.
type AuthService struct {
	authenticator auth.Authenticator
	users         auth.UserStorage
	tokens        *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, users auth.UserStorage, tokens *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		users:         users,
		tokens:        tokens,
		logger:        logger,
	}
}

type credentialsIn struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userOut struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type tokenOut struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Register handles POST /users/register.
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	var in credentialsIn
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Username == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.authenticator.Register(r.Context(), in.Username, in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			writeError(w, http.StatusBadRequest, "Username already registered")
			return
		}
		s.logger.Error("Registration failed", "username", in.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusOK, userOut{ID: user.ID, Username: user.Username})
}

// Login handles POST /users/login.
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var in credentialsIn
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Username == "" || in.Password == "" {
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), in.Username, in.Password)
	if err != nil {
		s.logger.Warn("Login failed", "username", in.Username)
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	access, err := s.tokens.GenerateAccess(user)
	if err != nil {
		s.logger.Error("Failed to generate access token", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	refresh, err := s.tokens.GenerateRefresh(user)
	if err != nil {
		s.logger.Error("Failed to generate refresh token", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.Info("User logged in", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusOK, tokenOut{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	})
}

type refreshIn struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /users/refresh. A valid refresh token yields a
// new access token; the refresh token itself is returned unchanged.
func (s *AuthService) Refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshIn
	if !decodeJSON(w, r, &in) {
		return
	}

	claims, err := s.tokens.Validate(in.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	user, err := s.users.GetUserByUsername(r.Context(), claims.Username)
	if err != nil {
		s.logger.Error("Refresh lookup failed", "username", claims.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	access, err := s.tokens.GenerateAccess(user)
	if err != nil {
		s.logger.Error("Failed to generate access token", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, tokenOut{
		AccessToken:  access,
		RefreshToken: in.RefreshToken,
		TokenType:    "bearer",
	})
}
