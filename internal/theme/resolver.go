package theme

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Veraticus/fintrack/internal/service"
)

// Theme is the resolved theme handed to renderers.
type Theme struct {
	Palette Palette
	Styles  Styles
	Mode    Mode
	IsDark  bool
}

// Resolver owns the theme mode. The mode starts as auto, is read from the
// preference store by Load, and is saved on every change once Load has run.
// A Resolver is safe for concurrent use.
type Resolver struct {
	store      service.PreferenceStore
	appearance AppearanceSource
	mode       Mode
	loaded     bool
	mu         sync.Mutex
}

// NewResolver creates a Resolver in auto mode.
func NewResolver(store service.PreferenceStore, appearance AppearanceSource) *Resolver {
	return &Resolver{
		store:      store,
		appearance: appearance,
		mode:       ModeAuto,
	}
}

// Load reads the saved mode. A missing or unrecognised value leaves auto.
// Changes made before Load are kept in memory but not saved.
func (r *Resolver) Load(ctx context.Context) Mode {
	saved, ok := r.store.Get(ctx, PreferenceKey)

	r.mu.Lock()
	defer r.mu.Unlock()

	if ok {
		if m, err := ParseMode(saved); err == nil {
			r.mode = m
		} else {
			slog.Warn("Ignoring saved theme mode", "value", saved, "error", err)
		}
	}
	r.loaded = true
	slog.Debug("Theme mode loaded", "mode", r.mode)
	return r.mode
}

// Loaded reports whether Load has completed.
func (r *Resolver) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// Mode returns the current mode.
func (r *Resolver) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// SetMode switches to m.
func (r *Resolver) SetMode(ctx context.Context, m Mode) error {
	if !m.IsValid() {
		return ErrInvalidMode
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.setLocked(ctx, m)
	return nil
}

// Toggle advances light to dark, dark to auto and auto to light, and
// returns the new mode.
func (r *Resolver) Toggle(ctx context.Context) Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.mode.Next()
	r.setLocked(ctx, next)
	return next
}

func (r *Resolver) setLocked(ctx context.Context, m Mode) {
	r.mode = m
	if !r.loaded {
		return
	}
	r.store.Set(ctx, PreferenceKey, string(m))
}

// IsDark applies the mode to the current system appearance.
func (r *Resolver) IsDark() bool {
	return r.isDark(r.Mode())
}

func (r *Resolver) isDark(m Mode) bool {
	switch m {
	case ModeDark:
		return true
	case ModeAuto:
		return r.appearance.Appearance() == AppearanceDark
	default:
		return false
	}
}

// Palette returns the palette for the resolved scheme.
func (r *Resolver) Palette() Palette {
	return paletteFor(r.IsDark())
}

// Theme snapshots the resolved theme.
func (r *Resolver) Theme() Theme {
	mode := r.Mode()
	dark := r.isDark(mode)
	palette := paletteFor(dark)
	return Theme{
		Mode:    mode,
		IsDark:  dark,
		Palette: palette,
		Styles:  NewStyles(palette),
	}
}

func paletteFor(dark bool) Palette {
	if dark {
		return DarkPalette()
	}
	return LightPalette()
}
