package auth

import (
	"errors"
	"net/http"
	"strings"
)

// Cookie is one name/value pair of a session.
type Cookie struct {
	Name  string
	Value string
}

// Session is the immutable cookie set issued to one user at login.
type Session struct {
	cookies []Cookie
}

// NewSession builds a session from cookies. The slice is copied.
func NewSession(cookies ...Cookie) Session {
	return Session{cookies: append([]Cookie(nil), cookies...)}
}

var errNoSessionCookies = errors.New("login response carried no session cookies")

// sessionFromResponse collects every Set-Cookie pair of resp in order.
func sessionFromResponse(resp *http.Response) (Session, error) {
	set := resp.Cookies()
	if len(set) == 0 {
		return Session{}, errNoSessionCookies
	}
	cookies := make([]Cookie, 0, len(set))
	for _, c := range set {
		cookies = append(cookies, Cookie{Name: c.Name, Value: c.Value})
	}
	return Session{cookies: cookies}, nil
}

// Cookies returns a copy of the session cookies.
func (s Session) Cookies() []Cookie {
	return append([]Cookie(nil), s.cookies...)
}

func (s Session) Len() int { return len(s.cookies) }

// Header renders the session as a Cookie header value.
func (s Session) Header() string {
	parts := make([]string, len(s.cookies))
	for i, c := range s.cookies {
		parts[i] = c.Name + "=" + c.Value
	}
	return strings.Join(parts, "; ")
}

// Apply sets the Cookie header of req, replacing any existing value.
func (s Session) Apply(req *http.Request) {
	req.Header.Set("Cookie", s.Header())
}
