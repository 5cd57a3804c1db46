package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/SujalTripathi/mstrymessage/inbox"
)

const sessionTTL = 30 * 24 * time.Hour

// app carries the per-invocation wiring shared by every subcommand.
type app struct {
	apiURL    string
	origin    string
	statePath string
	timeout   time.Duration

	clip inbox.Clipboard

	base   *url.URL
	hc     *http.Client
	client *inbox.Client
	state  *sessionState
}

// open loads the saved session and builds a client whose jar carries it.
func (a *app) open() error {
	st, err := loadState(a.statePath)
	if err != nil {
		return err
	}
	if st.API != "" && st.API != a.apiURL {
		// session belongs to another server
		st = &sessionState{}
	}
	base, err := url.Parse(strings.TrimRight(a.apiURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("invalid --api %q", a.apiURL)
	}
	jar, err := newJar(base, st.Cookies)
	if err != nil {
		return err
	}
	a.base, a.state = base, st
	a.hc = &http.Client{Jar: jar, Timeout: a.timeout}
	a.client, err = inbox.NewClient(a.apiURL, a.hc)
	return err
}

// persist writes back whatever cookies the jar now holds.
func (a *app) persist() error {
	a.state.API = a.apiURL
	a.state.Cookies = snapshot(a.hc.Jar, a.base, sessionTTL)
	return saveState(a.statePath, a.state)
}

// user resolves the current session; it fails with inbox.ErrNotSignedIn when there is none.
func (a *app) user(ctx context.Context) (*inbox.CurrentUser, error) {
	u, err := a.client.Session(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, inbox.ErrNotSignedIn
	}
	return u, nil
}

func (a *app) profileOrigin() string {
	if a.origin != "" {
		return a.origin
	}
	return a.apiURL
}

// toaster prints toasts to w, errors prefixed so they stand out.
func toaster(w io.Writer) inbox.Notifier {
	return inbox.NotifierFunc(func(t inbox.Toast) {
		line := t.Title
		if t.Description != "" {
			line += ": " + t.Description
		}
		if t.Variant == inbox.VariantDestructive {
			line = "! " + line
		}
		fmt.Fprintln(w, line)
	})
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// readPassword prompts without echo on a terminal and reads a plain line otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	if v := os.Getenv("MYSTERY_PASSWORD"); v != "" {
		return v, nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// newRootCmd builds the command tree. clip overrides the system clipboard when non-nil.
func newRootCmd(clip inbox.Clipboard) *cobra.Command {
	a := &app{clip: clip}

	root := &cobra.Command{
		Use:           "mystery",
		Short:         "Mystery Message from the terminal",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&a.apiURL, "api", envOr("MYSTERY_API", "http://localhost:8080"), "API base URL")
	pf.StringVar(&a.origin, "origin", os.Getenv("MYSTERY_ORIGIN"), "public site origin used for profile links (defaults to --api)")
	pf.StringVar(&a.statePath, "state", defaultStatePath(), "session file")
	pf.DurationVar(&a.timeout, "timeout", 2*time.Minute, "per-request timeout")

	root.AddCommand(
		loginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		dashboardCmd(a),
		toggleCmd(a),
		deleteCmd(a),
		copyURLCmd(a),
		homeCmd(a),
		sendCmd(a),
		suggestCmd(a),
	)
	return root
}
