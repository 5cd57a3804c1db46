package inbox

import (
	"fmt"
	"io"
)

const Brand = "Mystery Message"

type NavAction string

const (
	NavLogin  NavAction = "login"
	NavLogout NavAction = "logout"
)

// NavbarView is what the top bar shows for a given session.
type NavbarView struct {
	Brand    string
	Greeting string // empty when signed out
	Action   NavAction
	Href     string // target of the login action
}

func Navbar(user *CurrentUser) NavbarView {
	if user == nil {
		return NavbarView{Brand: Brand, Action: NavLogin, Href: "/sign-in"}
	}
	return NavbarView{
		Brand:    Brand,
		Greeting: "Welcome, " + user.DisplayName(),
		Action:   NavLogout,
	}
}

// Render writes a one-line text form of the bar.
func (v NavbarView) Render(w io.Writer) error {
	var err error
	if v.Greeting == "" {
		_, err = fmt.Fprintf(w, "%s | [Login -> %s]\n", v.Brand, v.Href)
	} else {
		_, err = fmt.Fprintf(w, "%s | %s | [Logout]\n", v.Brand, v.Greeting)
	}
	return err
}
