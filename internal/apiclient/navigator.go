package apiclient

import (
	"net/url"
	"sync"
)

// Navigator is told where to go when the session is rejected.
type Navigator interface {
	CurrentPath() string
	Navigate(target string)
}

// Location tracks the current view path and the last redirect target.
type Location struct {
	mu         sync.Mutex
	path       string
	redirect   string
	onNavigate func(target string)
}

// NewLocation starts at path. onNavigate may be nil.
func NewLocation(path string, onNavigate func(target string)) *Location {
	return &Location{path: path, onNavigate: onNavigate}
}

func (l *Location) CurrentPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// SetPath records the view the user is on.
func (l *Location) SetPath(path string) {
	l.mu.Lock()
	l.path = path
	l.mu.Unlock()
}

func (l *Location) Navigate(target string) {
	l.mu.Lock()
	l.redirect = target
	fn := l.onNavigate
	l.mu.Unlock()
	if fn != nil {
		fn(target)
	}
}

// LastRedirect returns the most recent Navigate target, or "".
func (l *Location) LastRedirect() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.redirect
}

// LoginURL is loginPath with the current path as the return parameter.
func LoginURL(loginPath, current string) string {
	return loginPath + "?return=" + url.QueryEscape(current)
}
