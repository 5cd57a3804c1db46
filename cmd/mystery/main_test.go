package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memClipboard struct{ text string }

func (c *memClipboard) WriteText(s string) error { c.text = s; return nil }

// fakeServer is an in-memory stand-in for go-api covering what the CLI calls.
type fakeServer struct {
	mu           sync.Mutex
	accepting    bool
	messages     []map[string]string
	sent         []map[string]string
	failSettings bool
	failMessages bool
}

func (f *fakeServer) set(fn func(f *fakeServer)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeServer) handler() http.Handler {
	write := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	authed := func(r *http.Request) bool {
		c, err := r.Cookie("mm_auth")
		return err == nil && c.Value == "tok-alice"
	}
	guard := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !authed(r) {
				write(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Not Authenticated"})
				return
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			h(w, r)
		}
	}
	alice := map[string]string{"username": "alice", "email": "alice@example.com"}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sign-in", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Identifier, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Identifier != "alice" || body.Password != "secret123" {
			write(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "mm_auth", Value: "tok-alice", Path: "/", HttpOnly: true})
		write(w, http.StatusOK, map[string]any{"success": true, "user": alice})
	})
	mux.HandleFunc("POST /api/sign-out", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "mm_auth", Value: "", Path: "/", MaxAge: -1})
		write(w, http.StatusOK, map[string]any{"success": true})
	})
	mux.HandleFunc("GET /api/auth/session", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			write(w, http.StatusOK, nil)
			return
		}
		write(w, http.StatusOK, map[string]any{"user": alice})
	})
	mux.HandleFunc("GET /api/accept-messages", guard(func(w http.ResponseWriter, r *http.Request) {
		if f.failSettings {
			write(w, http.StatusInternalServerError, map[string]any{"success": false})
			return
		}
		write(w, http.StatusOK, map[string]any{"success": true, "isAcceptingMessage": f.accepting})
	}))
	mux.HandleFunc("POST /api/accept-messages", guard(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			AcceptMessages bool `json:"acceptMessages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.accepting = body.AcceptMessages
		msg := "Message acceptance disabled"
		if f.accepting {
			msg = "Message acceptance enabled"
		}
		write(w, http.StatusOK, map[string]any{"success": true, "message": msg, "isAcceptingMessage": f.accepting})
	}))
	mux.HandleFunc("GET /api/get-messages", guard(func(w http.ResponseWriter, r *http.Request) {
		if f.failMessages {
			write(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Error getting messages"})
			return
		}
		write(w, http.StatusOK, map[string]any{"success": true, "messages": f.messages})
	}))
	mux.HandleFunc("DELETE /api/delete-message/{id}", guard(func(w http.ResponseWriter, r *http.Request) {
		for i, m := range f.messages {
			if m["_id"] == r.PathValue("id") {
				f.messages = append(f.messages[:i], f.messages[i+1:]...)
				write(w, http.StatusOK, map[string]any{"success": true, "message": "Message deleted"})
				return
			}
		}
		write(w, http.StatusNotFound, map[string]any{"success": false, "message": "Message not found or already deleted"})
	}))
	mux.HandleFunc("POST /api/send-message", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.sent = append(f.sent, body)
		f.mu.Unlock()
		write(w, http.StatusCreated, map[string]any{"success": true, "message": "Message sent successfully"})
	})
	mux.HandleFunc("POST /api/suggest-messages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "What inspires you?||Best trip ever?||Favorite snack?")
	})
	return mux
}

type harness struct {
	t     *testing.T
	api   string
	state string
	clip  *memClipboard
	fake  *fakeServer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := &fakeServer{
		accepting: true,
		messages: []map[string]string{
			{"_id": "m1", "title": "Hi", "content": "hello", "createdAt": "2024-05-01T10:00:00Z"},
			{"_id": "m2", "title": "Yo", "content": "nice work", "createdAt": "2024-04-01T10:00:00Z"},
		},
	}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	t.Setenv("MYSTERY_PASSWORD", "")
	return &harness{
		t:     t,
		api:   srv.URL,
		state: filepath.Join(t.TempDir(), "session.json"),
		clip:  &memClipboard{},
		fake:  fake,
	}
}

// run executes one CLI invocation and returns stdout and stderr.
func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	cmd := newRootCmd(h.clip)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api", h.api, "--state", h.state, "--origin", "https://app.example.com"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (h *harness) login() {
	h.t.Helper()
	_, _, err := h.run("secret123\n", "login", "alice")
	require.NoError(h.t, err)
}

func TestLoginPersistsSession(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Mystery Message | [Login -> /sign-in]\n", out)

	_, _, err = h.run("nope\n", "login", "alice")
	require.ErrorContains(t, err, "invalid credentials")

	out, _, err = h.run("secret123\n", "login", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Mystery Message | Welcome, alice | [Logout]\n", out)

	out, _, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Mystery Message | Welcome, alice | [Logout]\n", out)

	out, _, err = h.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Login")
	out, _, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Login")
}

func TestDashboardRequiresLogin(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("", "dashboard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please login")
}

func TestDashboardToggleDelete(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, _, err := h.run("", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile: https://app.example.com/u/alice\n")
	assert.Contains(t, out, "Accept Messages: On\n")
	assert.Contains(t, out, "[m1] Hi: hello")
	assert.Contains(t, out, "[m2] Yo: nice work")

	out, errOut, err := h.run("", "toggle")
	require.NoError(t, err)
	assert.Equal(t, "Accept Messages: Off\n", out)
	assert.Contains(t, errOut, "Message acceptance disabled")

	out, _, err = h.run("", "toggle")
	require.NoError(t, err)
	assert.Equal(t, "Accept Messages: On\n", out)

	out, errOut, err = h.run("", "delete", "m1")
	require.NoError(t, err)
	assert.NotContains(t, out, "m1")
	assert.Contains(t, out, "[m2]")
	assert.Contains(t, errOut, "Message deleted")

	_, errOut, err = h.run("", "delete", "m9")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Message not found or already deleted")
}

func TestCopyURL(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, errOut, err := h.run("", "copy-url")
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/u/alice\n", out)
	assert.Equal(t, "https://app.example.com/u/alice", h.clip.text)
	assert.Contains(t, errOut, "URL copied")
}

func TestHomeCarousel(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("", "home")
	require.NoError(t, err)
	assert.Equal(t, "Please log in to see your messages\n", out)

	h.login()
	out, _, err = h.run("", "home", "--autoplay", "--delay", "1ms", "--slides", "3")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Welcome back, alice!",
		"Visit Your Profile: /u/alice",
		"(1/2) Hi: hello",
		"(2/2) Yo: nice work",
		"(1/2) Hi: hello",
		"(2/2) Yo: nice work",
		"",
	}, "\n"), out)
}

func TestSendAndSuggest(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("", "send", "alice", "you", "rock", "--title", "Kudos")
	require.NoError(t, err)
	assert.Equal(t, "Message sent successfully\n", out)
	h.fake.mu.Lock()
	sent := h.fake.sent
	h.fake.mu.Unlock()
	require.Len(t, sent, 1)
	assert.Equal(t, map[string]string{"username": "alice", "title": "Kudos", "content": "you rock"}, sent[0])

	out, errOut, err := h.run("", "suggest")
	require.NoError(t, err)
	assert.Equal(t, "1. What inspires you?\n2. Best trip ever?\n3. Favorite snack?\n", out)
	assert.Contains(t, errOut, "What inspires you?||")
}

func TestSessionIgnoredForOtherServer(t *testing.T) {
	h := newHarness(t)
	h.login()

	other := newHarness(t)
	other.state = h.state
	out, _, err := other.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Login")
}

func TestDashboardDegradesWhenMessagesFail(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.fake.set(func(f *fakeServer) { f.failMessages = true })

	out, errOut, err := h.run("", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Mystery Message | Welcome, alice | [Logout]\n")
	assert.Contains(t, out, "Profile: https://app.example.com/u/alice\n")
	assert.Contains(t, out, "Accept Messages: On\n")
	assert.Contains(t, out, "No messages to display.\n")
	assert.Contains(t, errOut, "! Error: Error getting messages")

	out, _, err = h.run("", "toggle")
	require.NoError(t, err)
	assert.Equal(t, "Accept Messages: Off\n", out)

	out, _, err = h.run("", "home")
	require.NoError(t, err)
	assert.Contains(t, out, "No messages to display.\n")
}

func TestToggleRefusesWhenSettingUnknown(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.fake.set(func(f *fakeServer) { f.failSettings = true })

	out, errOut, err := h.run("", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "[m1] Hi: hello")
	assert.Contains(t, errOut, "! Error: Failed to fetch message settings")

	_, _, err = h.run("", "toggle")
	require.ErrorContains(t, err, "setting is unknown")
	h.fake.set(func(f *fakeServer) { assert.True(t, f.accepting) })
}
