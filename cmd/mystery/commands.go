package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SujalTripathi/mstrymessage/inbox"
)

func loginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email-or-username>",
		Short: "Sign in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd)
			if err != nil {
				return err
			}
			u, err := a.client.SignIn(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			if err := a.persist(); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			return inbox.Navbar(u).Render(cmd.OutOrStdout())
		},
	}
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.SignOut(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "sign-out: %v\n", err)
			}
			if err := clearState(a.statePath); err != nil {
				return err
			}
			return inbox.Navbar(nil).Render(cmd.OutOrStdout())
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the navbar for the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.client.Session(cmd.Context())
			if err != nil {
				return err
			}
			return inbox.Navbar(u).Render(cmd.OutOrStdout())
		},
	}
}

// loadDashboard resolves the user and fetches settings plus messages.
// Fetch failures are already toasted by Load, so the partially loaded
// dashboard is still returned; only a missing session is an error.
func loadDashboard(cmd *cobra.Command, a *app) (*inbox.Dashboard, error) {
	u, err := a.user(cmd.Context())
	if err != nil {
		return nil, err
	}
	d := inbox.NewDashboard(a.client, u, a.profileOrigin(), toaster(cmd.ErrOrStderr()), a.clip)
	_ = d.Load(cmd.Context())
	return d, nil
}

func dashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show settings, profile link and received messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDashboard(cmd, a)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if err := inbox.Navbar(d.User()).Render(w); err != nil {
				return err
			}
			link, err := d.ProfileURL()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Profile: %s\n", link)
			fmt.Fprintf(w, "Accept Messages: %s\n", onOff(d.AcceptingMessages()))
			printMessages(w, d.Messages())
			return nil
		},
	}
}

func toggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Flip whether the inbox accepts new messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDashboard(cmd, a)
			if err != nil {
				return err
			}
			if !d.SettingsLoaded() {
				return errors.New("current accept-messages setting is unknown; not toggling")
			}
			if err := d.ToggleAcceptMessages(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Accept Messages: %s\n", onOff(d.AcceptingMessages()))
			return nil
		},
	}
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <message-id>",
		Short: "Delete one received message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDashboard(cmd, a)
			if err != nil {
				return err
			}
			if err := d.DeleteMessage(cmd.Context(), args[0]); err != nil {
				return err
			}
			printMessages(cmd.OutOrStdout(), d.Messages())
			return nil
		},
	}
}

func copyURLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "copy-url",
		Short: "Copy the public profile link to the clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.user(cmd.Context())
			if err != nil {
				return err
			}
			d := inbox.NewDashboard(a.client, u, a.profileOrigin(), toaster(cmd.ErrOrStderr()), a.clip)
			link, err := d.CopyProfileURL()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
}

func homeCmd(a *app) *cobra.Command {
	var (
		autoplay bool
		delay    time.Duration
		slides   int
	)
	cmd := &cobra.Command{
		Use:   "home",
		Short: "Show received messages as a carousel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			u, err := a.client.Session(cmd.Context())
			if err != nil {
				return err
			}
			h := inbox.NewHome(a.client, u, toaster(cmd.ErrOrStderr()))
			fmt.Fprintln(w, h.Greeting())
			if u == nil {
				return nil
			}
			_ = h.Load(cmd.Context()) // failure is toasted; the carousel stays empty
			fmt.Fprintf(w, "Visit Your Profile: %s\n", h.ProfilePath())

			c := h.Carousel()
			if c.Len() == 0 {
				fmt.Fprintln(w, "No messages to display.")
				return nil
			}
			printSlide(w, c)
			if !autoplay {
				return nil
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			n := 0
			c.Autoplay(ctx, delay, func(int) {
				printSlide(w, c)
				if n++; slides > 0 && n >= slides {
					cancel()
				}
			})
			return nil
		},
	}
	cmd.Flags().BoolVar(&autoplay, "autoplay", false, "keep advancing until interrupted")
	cmd.Flags().DurationVar(&delay, "delay", inbox.AutoplayDelay, "autoplay interval")
	cmd.Flags().IntVar(&slides, "slides", 0, "stop autoplay after this many advances (0 = until interrupted)")
	return cmd
}

func sendCmd(a *app) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "send <username> <content...>",
		Short: "Send an anonymous message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.client.SendMessage(cmd.Context(), args[0], title, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "optional title")
	return cmd
}

func suggestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Stream three AI-suggested questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			text, err := a.client.SuggestMessages(cmd.Context(), func(chunk string) {
				fmt.Fprint(cmd.ErrOrStderr(), chunk)
			})
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			for i, q := range inbox.SplitSuggestions(text) {
				fmt.Fprintf(w, "%d. %s\n", i+1, q)
			}
			return nil
		},
	}
}

func printMessages(w io.Writer, msgs []inbox.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages to display.")
		return
	}
	for _, m := range msgs {
		fmt.Fprintf(w, "[%s] %s: %s (%s)\n", m.ID, m.Title, m.Content, m.CreatedAt.Format(time.RFC822))
	}
}

func printSlide(w io.Writer, c *inbox.Carousel) {
	m, ok := c.Current()
	if !ok {
		return
	}
	fmt.Fprintf(w, "(%d/%d) %s: %s\n", c.Index()+1, c.Len(), m.Title, m.Content)
}

func onOff(v bool) string {
	if v {
		return "On"
	}
	return "Off"
}
