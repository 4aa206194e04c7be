// Package guard decides whether a page may render for the current session.
package guard

import (
	"strings"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/session"
)

const LoginPath = "/login"

var publicPaths = map[string]bool{
	"/":       true,
	LoginPath: true,
	"/signup": true,
}

type Verdict int

const (
	// Pending means the session is still being restored; render nothing yet.
	Pending Verdict = iota
	Allow
	Redirect
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "pending"
	}
}

type Decision struct {
	Verdict  Verdict
	Location string // set when Verdict is Redirect
}

func RedirectTo(location string) Decision {
	return Decision{Verdict: Redirect, Location: location}
}

// CanRender applies the route policy: public pages always render, every other
// page needs an authenticated session.
func CanRender(path string, state session.State) Decision {
	if IsPublic(path) {
		return Decision{Verdict: Allow}
	}
	switch state {
	case session.Authenticated:
		return Decision{Verdict: Allow}
	case session.Unknown:
		return Decision{Verdict: Pending}
	default:
		return RedirectTo(LoginPath)
	}
}

func IsPublic(path string) bool {
	return publicPaths[Normalize(path)]
}

// Normalize strips query and fragment and any trailing slash.
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
