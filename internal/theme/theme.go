// Package theme owns the light/dark mode of a page session and the CSS token
// set applied to the document root for each mode.
package theme

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode accepts "light" or "dark", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("unknown theme mode %q", s)
}

// Toggle returns the other mode. Toggle(Toggle(m)) == m.
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// Icon is the lucide icon shown on the toggle button: the mode you would switch to.
func (m Mode) Icon() string {
	if m == Dark {
		return "sun"
	}
	return "moon"
}

// Tokens is the set of CSS custom properties for one mode.
type Tokens map[string]string

var palettes = map[Mode]Tokens{
	Light: {
		"--background":       "0 0% 100%",
		"--foreground":       "0 0% 3.9%",
		"--card":             "0 0% 100%",
		"--card-foreground":  "0 0% 3.9%",
		"--muted":            "0 0% 96.1%",
		"--muted-foreground": "0 0% 45.1%",
		"--border":           "0 0% 89.8%",
	},
	Dark: {
		"--background":       "0 0% 3.9%",
		"--foreground":       "0 0% 98%",
		"--card":             "0 0% 7%",
		"--card-foreground":  "0 0% 98%",
		"--muted":            "0 0% 14.9%",
		"--muted-foreground": "0 0% 63.9%",
		"--border":           "0 0% 14.9%",
	},
}

// TokensFor returns a copy of the token set for m.
func TokensFor(m Mode) Tokens {
	src := palettes[m]
	if src == nil {
		src = palettes[Light]
	}
	out := make(Tokens, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// CSS renders the tokens as a :root rule with a stable property order.
func (t Tokens) CSS() string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root{")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s:%s;", k, t[k])
	}
	b.WriteString("}")
	return b.String()
}

// Controller is the single owner of a session's mode. Toggle is the only
// mutator.
type Controller struct {
	mu   sync.RWMutex
	mode Mode
}

func NewController(initial Mode) *Controller {
	if initial != Dark {
		initial = Light
	}
	return &Controller{mode: initial}
}

func (c *Controller) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Toggle flips the mode and returns the new one.
func (c *Controller) Toggle() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = c.mode.Toggle()
	return c.mode
}

func (c *Controller) Tokens() Tokens {
	return TokensFor(c.Mode())
}

// Preferred picks the initial mode from a session cookie value, falling back
// to a client color-scheme hint and then Light.
func Preferred(cookie, hint string) Mode {
	if m, err := ParseMode(cookie); err == nil {
		return m
	}
	if m, err := ParseMode(strings.Trim(hint, `"`)); err == nil {
		return m
	}
	return Light
}
