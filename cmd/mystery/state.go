package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// savedCookie is the persisted part of a session cookie.
type savedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires,omitempty"`
}

// sessionState is what survives between CLI invocations.
type sessionState struct {
	API     string        `json:"api"`
	Cookies []savedCookie `json:"cookies"`
}

func defaultStatePath() string {
	if p := os.Getenv("MYSTERY_STATE"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "mystery", "session.json")
}

func loadState(path string) (*sessionState, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &sessionState{}, nil
	}
	if err != nil {
		return nil, err
	}
	var st sessionState
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &st, nil
}

func saveState(path string, st *sessionState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func clearState(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// newJar seeds a cookie jar for base with the saved cookies, dropping expired ones.
func newJar(base *url.URL, saved []savedCookie) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	var cs []*http.Cookie
	for _, c := range saved {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		cs = append(cs, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(base, cs)
	return jar, nil
}

// snapshot reads back the cookies the jar would send to base.
// Expiry is not exposed by the jar, so it is taken from ttl.
func snapshot(jar http.CookieJar, base *url.URL, ttl time.Duration) []savedCookie {
	var out []savedCookie
	exp := time.Now().Add(ttl)
	for _, c := range jar.Cookies(base) {
		out = append(out, savedCookie{Name: c.Name, Value: c.Value, Expires: exp})
	}
	return out
}
