package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// AppearanceEnv overrides the detected system appearance.
const AppearanceEnv = "FINTRACK_APPEARANCE"

// Appearance is the colour scheme the system is currently using.
type Appearance string

// System appearances.
const (
	AppearanceLight Appearance = "light"
	AppearanceDark  Appearance = "dark"
)

// ParseAppearance converts "light" or "dark" to an Appearance.
func ParseAppearance(s string) (Appearance, error) {
	switch a := Appearance(strings.ToLower(strings.TrimSpace(s))); a {
	case AppearanceLight, AppearanceDark:
		return a, nil
	default:
		return "", fmt.Errorf("invalid appearance %q (want light or dark)", s)
	}
}

// AppearanceSource reports the live system appearance. Resolvers ask on
// every call, so implementations must not cache a stale answer.
type AppearanceSource interface {
	Appearance() Appearance
}

// AppearanceFunc adapts a function to AppearanceSource.
type AppearanceFunc func() Appearance

// Appearance calls f.
func (f AppearanceFunc) Appearance() Appearance {
	return f()
}

// Static always reports a.
func Static(a Appearance) AppearanceSource {
	return AppearanceFunc(func() Appearance { return a })
}

// TerminalAppearance queries the terminal background colour.
func TerminalAppearance() AppearanceSource {
	return AppearanceFunc(func() Appearance {
		if lipgloss.HasDarkBackground() {
			return AppearanceDark
		}
		return AppearanceLight
	})
}

// EnvAppearance reads AppearanceEnv through lookup on each call and falls
// back when it is unset or unrecognised.
func EnvAppearance(lookup func(string) (string, bool), fallback AppearanceSource) AppearanceSource {
	return AppearanceFunc(func() Appearance {
		if v, ok := lookup(AppearanceEnv); ok {
			if a, err := ParseAppearance(v); err == nil {
				return a
			}
		}
		return fallback.Appearance()
	})
}

// SystemAppearance maps the appearance.system setting to a source: "auto"
// detects from the terminal, "light" and "dark" pin the answer.
func SystemAppearance(setting string) (AppearanceSource, error) {
	if strings.EqualFold(strings.TrimSpace(setting), "auto") || strings.TrimSpace(setting) == "" {
		return TerminalAppearance(), nil
	}
	a, err := ParseAppearance(setting)
	if err != nil {
		return nil, err
	}
	return Static(a), nil
}
