// Package inbox holds the page-level state of the Mystery Message frontend:
// the dashboard (settings toggle + deletable message list), the home carousel
// and the navbar, all driven through the HTTP API in go-api.
package inbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Message mirrors the API's inbox entry.
type Message struct {
	ID         string     `json:"_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"createdAt"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
}

// APIError is a non-2xx answer from the API. Message is the server's message field, if any.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

// messageOr returns the server-provided message carried by err, or fallback.
func messageOr(err error, fallback string) string {
	var ae *APIError
	if errors.As(err, &ae) && strings.TrimSpace(ae.Message) != "" {
		return ae.Message
	}
	return fallback
}

// SettingResult is the answer to an accept-messages update.
// IsAcceptingMessage is nil when the server did not echo the stored value.
type SettingResult struct {
	Message            string
	IsAcceptingMessage *bool
}

type apiResponse struct {
	Success            bool      `json:"success"`
	Message            string    `json:"message"`
	IsAcceptingMessage *bool     `json:"isAcceptingMessage"`
	Messages           []Message `json:"messages"`
	User               *userBody `json:"user"`
}

type userBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// Client talks to the go-api server. Session state lives in the http.Client's cookie jar.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient returns a client for the API rooted at baseURL.
// hc should carry a cookie jar when the caller needs an authenticated session.
func NewClient(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q needs scheme and host", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: u, http: hc}, nil
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*apiResponse, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, readAPIError(resp)
	}
	var out apiResponse
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return &out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return &out, nil
}

func readAPIError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	_ = json.Unmarshal(raw, &body)
	return &APIError{StatusCode: resp.StatusCode, Message: body.Message}
}

// Session returns the signed-in user, or nil when there is no session.
func (c *Client) Session(ctx context.Context) (*CurrentUser, error) {
	out, err := c.do(ctx, http.MethodGet, "/api/auth/session", nil)
	if err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, nil
	}
	return &CurrentUser{Username: out.User.Username, Email: out.User.Email, Name: out.User.Name}, nil
}

// SignIn exchanges credentials for a session cookie.
func (c *Client) SignIn(ctx context.Context, identifier, password string) (*CurrentUser, error) {
	out, err := c.do(ctx, http.MethodPost, "/api/sign-in", map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	if err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, errors.New("sign-in response carried no user")
	}
	return &CurrentUser{Username: out.User.Username, Email: out.User.Email, Name: out.User.Name}, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/sign-out", nil)
	return err
}

func (c *Client) GetAcceptMessages(ctx context.Context) (bool, error) {
	out, err := c.do(ctx, http.MethodGet, "/api/accept-messages", nil)
	if err != nil {
		return false, err
	}
	if out.IsAcceptingMessage == nil {
		return false, errors.New("response missing isAcceptingMessage")
	}
	return *out.IsAcceptingMessage, nil
}

func (c *Client) SetAcceptMessages(ctx context.Context, accept bool) (SettingResult, error) {
	out, err := c.do(ctx, http.MethodPost, "/api/accept-messages", map[string]bool{"acceptMessages": accept})
	if err != nil {
		return SettingResult{}, err
	}
	return SettingResult{Message: out.Message, IsAcceptingMessage: out.IsAcceptingMessage}, nil
}

func (c *Client) GetMessages(ctx context.Context) ([]Message, error) {
	out, err := c.do(ctx, http.MethodGet, "/api/get-messages", nil)
	if err != nil {
		return nil, err
	}
	if out.Messages == nil {
		return []Message{}, nil
	}
	return out.Messages, nil
}

// DeleteMessage removes one message server-side. A missing message yields an
// APIError for which IsNotFound is true.
func (c *Client) DeleteMessage(ctx context.Context, id string) (string, error) {
	out, err := c.do(ctx, http.MethodDelete, "/api/delete-message/"+url.PathEscape(id), nil)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// AcceptMessage records acceptance of one received message.
func (c *Client) AcceptMessage(ctx context.Context, id string) (string, error) {
	out, err := c.do(ctx, http.MethodPost, "/api/accept-message/"+url.PathEscape(id), nil)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// SendMessage posts an anonymous message to username's inbox.
func (c *Client) SendMessage(ctx context.Context, username, title, content string) (string, error) {
	out, err := c.do(ctx, http.MethodPost, "/api/send-message", map[string]string{
		"username": username,
		"title":    title,
		"content":  content,
	})
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// SuggestMessages calls the suggestion proxy and hands each streamed chunk to
// onChunk (which may be nil). It returns the full text.
func (c *Client) SuggestMessages(ctx context.Context, onChunk func(string)) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/suggest-messages", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", readAPIError(resp)
	}

	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])
			sb.WriteString(chunk)
			if onChunk != nil {
				onChunk(chunk)
			}
		}
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
	}
}
