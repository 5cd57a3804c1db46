package inbox

import (
	"context"
	"errors"
)

// CurrentUser is the session's user, passed explicitly into every page.
// A nil *CurrentUser means nobody is signed in.
type CurrentUser struct {
	Username string
	Email    string
	Name     string
}

// DisplayName prefers the username and falls back to the email, like the navbar greeting.
func (u *CurrentUser) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// ErrNotSignedIn is returned by page loads that need a session.
var ErrNotSignedIn = errors.New("please login")

// API is the subset of *Client the pages depend on.
type API interface {
	GetAcceptMessages(ctx context.Context) (bool, error)
	SetAcceptMessages(ctx context.Context, accept bool) (SettingResult, error)
	GetMessages(ctx context.Context) ([]Message, error)
	DeleteMessage(ctx context.Context, id string) (string, error)
	AcceptMessage(ctx context.Context, id string) (string, error)
}

var _ API = (*Client)(nil)
