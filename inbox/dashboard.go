package inbox

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	fetchSettingsFallback = "Failed to fetch message settings"
	fetchMessagesFallback = "Failed to fetch messages"
	updateSettingFallback = "Failed to update message settings"
	deleteMessageFallback = "Failed to delete message"
)

// Dashboard is the owner's page: accept-messages toggle, message list, profile link.
type Dashboard struct {
	api    API
	user   *CurrentUser
	origin string
	notify Notifier
	clip   Clipboard

	toggleMu sync.Mutex // serializes toggles so each one negates the previous result

	mu             sync.Mutex
	messages       []Message
	accepting      bool
	settingsLoaded bool
	loading        int // in-flight message fetches
	switchLoading  int // in-flight settings fetches
}

// NewDashboard wires a dashboard for user. origin is the page origin used for the
// profile link, e.g. "https://app.example.com".
func NewDashboard(api API, user *CurrentUser, origin string, notify Notifier, clip Clipboard) *Dashboard {
	if notify == nil {
		notify = NotifierFunc(func(Toast) {})
	}
	if clip == nil {
		clip = SystemClipboard{}
	}
	return &Dashboard{api: api, user: user, origin: origin, notify: notify, clip: clip}
}

// Load fetches the accept-messages setting and the message list concurrently and
// returns once both have settled. Each failure is reported through a toast; the
// first one is also returned.
func (d *Dashboard) Load(ctx context.Context) error {
	if d.user == nil {
		return ErrNotSignedIn
	}
	var g errgroup.Group
	g.Go(func() error { return d.fetchAcceptMessages(ctx) })
	g.Go(func() error { return d.fetchMessages(ctx, false) })
	return g.Wait()
}

// Refresh re-fetches the message list and confirms with a toast.
func (d *Dashboard) Refresh(ctx context.Context) error {
	if d.user == nil {
		return ErrNotSignedIn
	}
	return d.fetchMessages(ctx, true)
}

func (d *Dashboard) fetchAcceptMessages(ctx context.Context) error {
	d.trackSwitchLoading(1)
	defer d.trackSwitchLoading(-1)

	v, err := d.api.GetAcceptMessages(ctx)
	if err != nil {
		d.notify.Notify(errorToast(messageOr(err, fetchSettingsFallback)))
		return err
	}
	d.mu.Lock()
	d.accepting = v
	d.settingsLoaded = true
	d.mu.Unlock()
	return nil
}

func (d *Dashboard) fetchMessages(ctx context.Context, refresh bool) error {
	d.trackLoading(1)
	defer d.trackLoading(-1)

	list, err := d.api.GetMessages(ctx)
	if err != nil {
		d.notify.Notify(errorToast(messageOr(err, fetchMessagesFallback)))
		return err
	}
	d.mu.Lock()
	d.messages = slices.Clone(list)
	if d.messages == nil {
		d.messages = []Message{}
	}
	d.mu.Unlock()
	if refresh {
		d.notify.Notify(Toast{Title: "Refreshed Messages", Description: "Showing latest messages", Variant: VariantDefault})
	}
	return nil
}

// ToggleAcceptMessages sends the negation of the current setting. On success the
// state becomes the value the server confirms; on failure it is left unchanged.
func (d *Dashboard) ToggleAcceptMessages(ctx context.Context) error {
	d.toggleMu.Lock()
	defer d.toggleMu.Unlock()

	next := !d.AcceptingMessages()
	res, err := d.api.SetAcceptMessages(ctx, next)
	if err != nil {
		d.notify.Notify(errorToast(messageOr(err, updateSettingFallback)))
		return err
	}
	confirmed := next
	if res.IsAcceptingMessage != nil {
		confirmed = *res.IsAcceptingMessage
	}
	d.mu.Lock()
	d.accepting = confirmed
	d.settingsLoaded = true
	d.mu.Unlock()
	d.notify.Notify(Toast{Title: res.Message, Variant: VariantDefault})
	return nil
}

// DeleteMessage deletes id on the server and then drops it from the list.
// A message the server no longer has is dropped too; any other failure keeps the list as is.
func (d *Dashboard) DeleteMessage(ctx context.Context, id string) error {
	msg, err := d.api.DeleteMessage(ctx, id)
	if err != nil && !IsNotFound(err) {
		d.notify.Notify(errorToast(messageOr(err, deleteMessageFallback)))
		return err
	}
	d.removeMessage(id)
	if msg == "" {
		msg = messageOr(err, "Message deleted")
	}
	d.notify.Notify(Toast{Title: msg, Variant: VariantDefault})
	return nil
}

// removeMessage drops the entry with id, keeping the rest in order.
func (d *Dashboard) removeMessage(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i := slices.IndexFunc(d.messages, func(m Message) bool { return m.ID == id }); i >= 0 {
		d.messages = slices.Delete(d.messages, i, i+1)
	}
}

// ProfileURL is the public link for the signed-in user.
func (d *Dashboard) ProfileURL() (string, error) {
	if d.user == nil {
		return "", ErrNotSignedIn
	}
	return ProfileURL(d.origin, d.user.Username)
}

// CopyProfileURL writes the profile link to the clipboard and confirms with a toast.
func (d *Dashboard) CopyProfileURL() (string, error) {
	link, err := d.ProfileURL()
	if err != nil {
		return "", err
	}
	if err := d.clip.WriteText(link); err != nil {
		d.notify.Notify(errorToast("Failed to copy profile url"))
		return "", err
	}
	d.notify.Notify(Toast{Title: "URL copied", Description: "Profile url is copied to clipboard", Variant: VariantDefault})
	return link, nil
}

// Messages returns a copy of the displayed list.
func (d *Dashboard) Messages() []Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.messages)
}

// SettingsLoaded reports whether the accept-messages value came from the server,
// either by a successful fetch or a confirmed toggle.
func (d *Dashboard) SettingsLoaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settingsLoaded
}

func (d *Dashboard) AcceptingMessages() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accepting
}

// IsLoading is true only while at least one message list fetch is in flight.
func (d *Dashboard) IsLoading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading > 0
}

// IsSwitchLoading is true only while at least one settings fetch is in flight.
func (d *Dashboard) IsSwitchLoading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.switchLoading > 0
}

func (d *Dashboard) trackLoading(delta int) {
	d.mu.Lock()
	d.loading += delta
	d.mu.Unlock()
}

func (d *Dashboard) trackSwitchLoading(delta int) {
	d.mu.Lock()
	d.switchLoading += delta
	d.mu.Unlock()
}

func (d *Dashboard) User() *CurrentUser { return d.user }
