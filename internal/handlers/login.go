package handlers

import (
	"errors"
	"net/http"
	"strings"

	applog "mise/internal/log"
)

type sessionUserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Login processes sign-in submissions and establishes the session cookie.
func Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sessionManager == nil || database == nil {
		applog.Debug(r.Context(), "authentication dependencies unavailable", "hasSession", sessionManager != nil, "hasDatabase", database != nil)
		writeJSONError(w, http.StatusServiceUnavailable, "authentication not available")
		return
	}

	if err := r.ParseForm(); err != nil {
		applog.Debug(r.Context(), "failed to parse login form", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid form submission")
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	if email == "" || password == "" {
		applog.Debug(r.Context(), "login form missing credentials", "emailPresent", email != "", "passwordPresent", password != "")
		writeJSONError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := authenticate(r, email, password)
	if err != nil {
		if errors.Is(err, errInvalidCredentials) {
			applog.Debug(r.Context(), "authentication failed", "email", strings.ToLower(email))
			writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		applog.Error(r.Context(), "failed to sign user in", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign you in right now")
		return
	}

	applog.Info(r.Context(), "user signed in", "userID", user.ID, "email", user.Email)
	writeJSON(w, http.StatusOK, sessionUserResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}
