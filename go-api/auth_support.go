package main

import (
	"context"
	"net/http"
	"os"
	"strings"
)

// cookie configuration (shared with auth.go); main overrides these from Config.
var (
	cookieName     = "mm_auth"
	cookieSecure   = false
	cookieDomain   = "" // optional, for subdomain setups (api.example.com + www.example.com)
	cookieSameSite = http.SameSiteLaxMode
)

// sameSiteFrom maps COOKIE_SAMESITE: "none" | "lax" | "strict" (default: lax)
func sameSiteFrom(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

// devUserHeader is honored only when DEV_USER_HEADER=true.
const devUserHeader = "X-MM-User"

type ctxKey int

const currentUserKey ctxKey = iota

// CurrentUser is the signed-in account resolved once per request by withSession.
type CurrentUser struct {
	ID       string
	Username string
	Email    string
	Name     string
}

func withCurrentUser(ctx context.Context, u *CurrentUser) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// currentUser returns nil when the request carries no valid session.
func currentUser(r *http.Request) *CurrentUser {
	u, _ := r.Context().Value(currentUserKey).(*CurrentUser)
	return u
}

// withSession resolves the session cookie (or the dev header) to a user row and
// threads it through the request context. Requests without a session pass through.
func withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := userFromRequest(r); u != nil {
			r = r.WithContext(withCurrentUser(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}

// requireUser rejects requests that withSession could not resolve.
func requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r) == nil {
			errorJSON(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}
		next(w, r)
	}
}

func userFromRequest(r *http.Request) *CurrentUser {
	if DB == nil {
		return nil
	}
	var u User
	// 1) Cookie/JWT path
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		if claims, err := verifySession(c.Value); err == nil {
			if err := DB.WithContext(r.Context()).First(&u, "id = ?", claims.UserID).Error; err == nil {
				return toCurrentUser(u)
			}
		}
		return nil
	}
	// 2) Dev fallback header (username)
	if os.Getenv("DEV_USER_HEADER") == "true" {
		if v := strings.TrimSpace(r.Header.Get(devUserHeader)); v != "" {
			if err := DB.WithContext(r.Context()).First(&u, "username = ?", v).Error; err == nil {
				return toCurrentUser(u)
			}
		}
	}
	return nil
}

func toCurrentUser(u User) *CurrentUser {
	return &CurrentUser{ID: u.ID, Username: u.Username, Email: u.Email, Name: u.name()}
}
