// Package theme resolves the light or dark colour scheme from the saved
// preference and the system appearance.
package theme

import (
	"errors"
	"fmt"
	"strings"
)

// PreferenceKey is the preference under which the mode is saved.
const PreferenceKey = "theme_mode_preference"

// ErrInvalidMode is returned for a mode outside light, dark and auto.
var ErrInvalidMode = errors.New("invalid theme mode")

// Mode is the user's theme choice.
type Mode string

// Theme modes.
const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
	ModeAuto  Mode = "auto"
)

// Modes lists every mode in toggle order.
var Modes = []Mode{ModeLight, ModeDark, ModeAuto}

// ParseMode converts user input to a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q (want light, dark or auto)", ErrInvalidMode, s)
	}
	return m, nil
}

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeLight, ModeDark, ModeAuto:
		return true
	default:
		return false
	}
}

// Next returns the mode a toggle moves to: light, dark, auto, light.
// Unknown modes restart the cycle at light.
func (m Mode) Next() Mode {
	switch m {
	case ModeLight:
		return ModeDark
	case ModeDark:
		return ModeAuto
	default:
		return ModeLight
	}
}

func (m Mode) String() string {
	return string(m)
}
