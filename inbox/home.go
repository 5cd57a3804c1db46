package inbox

import (
	"context"
	"net/url"
	"sync"
)

// Home is the signed-in landing page: received messages in an autoplaying carousel.
type Home struct {
	api    API
	user   *CurrentUser
	notify Notifier

	carousel Carousel

	mu      sync.Mutex
	loading int // in-flight fetches
}

func NewHome(api API, user *CurrentUser, notify Notifier) *Home {
	if notify == nil {
		notify = NotifierFunc(func(Toast) {})
	}
	return &Home{api: api, user: user, notify: notify}
}

// Load fetches the message list into the carousel.
func (h *Home) Load(ctx context.Context) error {
	if h.user == nil {
		return ErrNotSignedIn
	}
	h.trackLoading(1)
	defer h.trackLoading(-1)

	list, err := h.api.GetMessages(ctx)
	if err != nil {
		h.notify.Notify(errorToast(fetchMessagesFallback))
		return err
	}
	h.carousel.SetSlides(list)
	return nil
}

// Accept records acceptance of one message.
func (h *Home) Accept(ctx context.Context, id string) error {
	msg, err := h.api.AcceptMessage(ctx, id)
	if err != nil {
		h.notify.Notify(errorToast(messageOr(err, "Failed to accept message")))
		return err
	}
	if msg == "" {
		msg = "Message accepted"
	}
	h.notify.Notify(Toast{Title: msg, Variant: VariantDefault})
	return nil
}

func (h *Home) Carousel() *Carousel { return &h.carousel }

// Greeting is the page header for the signed-in user.
func (h *Home) Greeting() string {
	if h.user == nil {
		return "Please log in to see your messages"
	}
	name := h.user.Name
	if name == "" {
		name = h.user.Username
	}
	return "Welcome back, " + name + "!"
}

// ProfilePath is the relative link behind "Visit Your Profile".
func (h *Home) ProfilePath() string {
	if h.user == nil {
		return ""
	}
	return "/u/" + url.PathEscape(h.user.Username)
}

func (h *Home) IsLoading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loading > 0
}

func (h *Home) trackLoading(delta int) {
	h.mu.Lock()
	h.loading += delta
	h.mu.Unlock()
}
