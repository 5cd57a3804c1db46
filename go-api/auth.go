package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --------- Helpers (cookie) ---------

func setAuthCookie(w http.ResponseWriter, token string, expires time.Time) {
	c := &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		Domain:   cookieDomain,
		HttpOnly: true,
		SameSite: cookieSameSite,
		Secure:   cookieSecure,
		Expires:  expires,
	}
	http.SetCookie(w, c)
}

func clearAuthCookie(w http.ResponseWriter) {
	c := &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		Domain:   cookieDomain,
		HttpOnly: true,
		SameSite: cookieSameSite,
		Secure:   cookieSecure,
		MaxAge:   -1,
	}
	http.SetCookie(w, c)
}

// --------- DTOs ---------

type signUpReq struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"` // optional
}

type signInReq struct {
	Identifier string `json:"identifier"` // email or username
	Password   string `json:"password"`
}

type userDTO struct {
	ID                  string `json:"id"`
	Username            string `json:"username"`
	Email               string `json:"email"`
	Name                string `json:"name"`
	IsAcceptingMessages bool   `json:"isAcceptingMessages"`
}

// sessionUser is the {user:{...}} payload the pages read.
type sessionUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{2,20}$`)

func validateUsername(s string) error {
	if !usernameRe.MatchString(s) {
		return errors.New("username must be 2-20 characters of letters, digits or underscore")
	}
	return nil
}

// --------- Handlers ---------

// POST /api/sign-up
func handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in signUpReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := validateUsername(in.Username); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		errorJSON(w, http.StatusBadRequest, "valid email required")
		return
	}
	if len(in.Password) < 6 {
		errorJSON(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	var count int64
	if err := DB.Model(&User{}).Where("username = ? OR email = ?", in.Username, in.Email).Count(&count).Error; err != nil {
		errorJSON(w, http.StatusInternalServerError, "db error")
		return
	}
	if count > 0 {
		errorJSON(w, http.StatusConflict, "username or email already in use")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "hash error")
		return
	}
	u := User{
		ID:                  uuid.NewString(),
		Username:            in.Username,
		Email:               in.Email,
		DisplayName:         strings.TrimSpace(in.DisplayName),
		PasswordHash:        string(hash),
		IsAcceptingMessages: true,
	}
	err = DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		if isDemoEnabled() {
			// demo data is best-effort; a failed clone must not abort the sign-up
			tx.SavePoint("demo")
			if err := cloneDemoInbox(u.ID, tx); err != nil {
				tx.RollbackTo("demo")
				log.Printf("[auth] demo clone for %s failed: %v", u.Username, err)
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with a concurrent sign-up for the same username or email
		errorJSON(w, http.StatusConflict, "username or email already in use")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "db error")
		return
	}

	tok, exp, err := issueSession(u, sessionTTL)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "token error")
		return
	}
	setAuthCookie(w, tok, exp)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": toDTO(u)})
}

// POST /api/sign-in
func handleSignIn(w http.ResponseWriter, r *http.Request) {
	var in signInReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	ident := strings.TrimSpace(in.Identifier)

	var u User
	err := DB.Where("email = ? OR username = ?", strings.ToLower(ident), ident).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusUnauthorized, "invalid credentials")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "db error")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		errorJSON(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tok, exp, err := issueSession(u, sessionTTL)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "token error")
		return
	}
	setAuthCookie(w, tok, exp)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": toDTO(u)})
}

// POST /api/sign-out
func handleSignOut(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": "signed_out"})
}

// GET /api/auth/session returns {user:{...}} or null.
func handleSession(w http.ResponseWriter, r *http.Request) {
	cu := currentUser(r)
	if cu == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": sessionUser{Username: cu.Username, Email: cu.Email, Name: cu.Name},
	})
}

// GET /api/check-username-unique?username=
func handleCheckUsername(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if err := validateUsername(username); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	var count int64
	if err := DB.Model(&User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		errorJSON(w, http.StatusInternalServerError, "db error")
		return
	}
	if count > 0 {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Username is already taken"})
		return
	}
	okJSON(w, "Username is unique")
}

// --------- utils ---------

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func toDTO(u User) userDTO {
	return userDTO{
		ID:                  u.ID,
		Username:            u.Username,
		Email:               u.Email,
		Name:                u.name(),
		IsAcceptingMessages: u.IsAcceptingMessages,
	}
}
