package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	applog "mise/internal/log"
)

// Signup processes new staff registrations and signs the new account in.
func Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sessionManager == nil || database == nil {
		applog.Debug(r.Context(), "registration dependencies unavailable", "hasSession", sessionManager != nil, "hasDatabase", database != nil)
		writeJSONError(w, http.StatusServiceUnavailable, "registration not available")
		return
	}

	if err := r.ParseForm(); err != nil {
		applog.Debug(r.Context(), "failed to parse signup form", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid form submission")
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm_password")

	if email == "" || !strings.Contains(email, "@") {
		applog.Debug(r.Context(), "invalid signup email", "email", email)
		writeJSONError(w, http.StatusBadRequest, "please provide a valid email address")
		return
	}
	if len(password) < 8 {
		applog.Debug(r.Context(), "password too short for signup", "length", len(password))
		writeJSONError(w, http.StatusBadRequest, "password must be at least 8 characters long")
		return
	}
	if confirm != "" && password != confirm {
		applog.Debug(r.Context(), "signup password mismatch")
		writeJSONError(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	if _, err := findUserByEmail(r, email); err == nil {
		applog.Debug(r.Context(), "signup attempted with existing email", "email", strings.ToLower(email))
		writeJSONError(w, http.StatusConflict, "an account with that email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		applog.Error(r.Context(), "failed to check existing user", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create your account right now")
		return
	}

	user, err := createUser(r, email, name, password)
	if err != nil {
		applog.Error(r.Context(), "failed to create user", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create your account right now")
		return
	}

	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session after signup", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "account created but sign-in failed, please log in")
		return
	}

	applog.Info(r.Context(), "user registered", "userID", user.ID, "email", user.Email)
	writeJSON(w, http.StatusCreated, sessionUserResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}
