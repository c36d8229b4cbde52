// internal/handlers/user.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jeufa/fadu/internal/auth"
	"github.com/jeufa/fadu/internal/database"
	"github.com/jeufa/fadu/internal/models"
)

// extractCookieToken pulls a named cookie value out of a raw Cookie header.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// newEphemeralUser mints a guest identity and sets its auth cookie.
func newEphemeralUser(w http.ResponseWriter) (uuid.UUID, error) {
	guest := models.User{
		Username:    "Guest",
		IsEphemeral: true,
	}
	if database.DB != nil {
		if err := database.CreateUser(context.Background(), &guest); err != nil {
			return uuid.Nil, fmt.Errorf("failed to create ephemeral user: %w", err)
		}
	} else {
		guest.ID = uuid.New()
	}

	token, err := auth.CreateJWT(guest.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create ephemeral JWT: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})
	return guest.ID, nil
}

// EnsureEphemeralUser resolves the caller's player id from the auth_token
// cookie, minting a fresh guest identity when the token is absent or invalid.
func EnsureEphemeralUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	cookieHeader := r.Header.Get("Cookie")
	if !strings.Contains(cookieHeader, "auth_token=") {
		return newEphemeralUser(w)
	}

	playerID, err := auth.AuthenticateJWT(extractCookieToken(cookieHeader, "auth_token"))
	if err != nil {
		return newEphemeralUser(w)
	}
	return playerID, nil
}

// CreateUserHandler registers a permanent account.
func CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	user := models.User{
		Email:       req.Email,
		Password:    req.Password,
		Username:    req.Username,
		IsEphemeral: false,
	}

	if err := database.CreateUser(r.Context(), &user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			http.Error(w, "email already exists", http.StatusConflict)
			return
		}
		http.Error(w, "error creating user", http.StatusInternalServerError)
		return
	}

	user.Password = ""
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginHandler authenticates an account and returns a JWT, also set as the
// auth_token cookie.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	token, err := database.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Printf("failed to authenticate user: %v", err)
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   auth.TOKEN_EXPIRE_TIME_SEC,
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(loginResponse{Token: token}); err != nil {
		http.Error(w, "failed to write response", http.StatusInternalServerError)
	}
}
