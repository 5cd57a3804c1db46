package inbox

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
)

// ProfileURL builds the public link visitors use: <protocol>//<host>/u/<username>.
// Any path, query or fragment on origin is ignored.
func ProfileURL(origin, username string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return "", fmt.Errorf("parse origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("origin %q needs scheme and host", origin)
	}
	return u.Scheme + "://" + u.Host + "/u/" + url.PathEscape(username), nil
}

type Clipboard interface {
	WriteText(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error { return clipboard.WriteAll(text) }
