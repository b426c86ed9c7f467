package controller

import (
	"context"
	"strconv"
	"sync"

	"budgetboard/internal/kv"
	applog "budgetboard/internal/log"
)

// Theme is the document-wide style state.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Redrawer re-renders the chart so theme-dependent colours refresh.
type Redrawer interface {
	Redraw(ctx context.Context)
}

// RedrawFunc adapts a function to Redrawer.
type RedrawFunc func(ctx context.Context)

func (f RedrawFunc) Redraw(ctx context.Context) { f(ctx) }

// ThemeController owns the light/dark preference. It never reads ledger data.
type ThemeController struct {
	mu       sync.Mutex
	dark     bool
	store    kv.Store
	redrawer Redrawer
	logger   *applog.Logger
}

// NewThemeController creates a controller in light mode. Call Load to restore the
// stored preference.
func NewThemeController(store kv.Store, redrawer Redrawer, logger *applog.Logger) *ThemeController {
	if logger == nil {
		logger = applog.Default(applog.ComponentController)
	}
	return &ThemeController{store: store, redrawer: redrawer, logger: logger}
}

// Load reads the stored preference. Only the text "true" selects dark mode.
func (c *ThemeController) Load(ctx context.Context) Theme {
	raw, _, err := c.store.Get(ctx, kv.KeyDarkTheme)
	if err != nil {
		c.logger.ErrorType(ctx, "Failed to read theme", applog.ErrorTypeDatabase, err,
			applog.FieldKey, kv.KeyDarkTheme)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.dark = raw == "true"
	return c.themeLocked()
}

// Toggle flips the theme, persists it and asks for a chart redraw.
func (c *ThemeController) Toggle(ctx context.Context) Theme {
	c.mu.Lock()
	c.dark = !c.dark
	dark := c.dark
	theme := c.themeLocked()
	c.mu.Unlock()

	if err := c.store.Set(ctx, kv.KeyDarkTheme, strconv.FormatBool(dark)); err != nil {
		c.logger.ErrorType(ctx, "Failed to save theme", applog.ErrorTypeDatabase, err,
			applog.FieldKey, kv.KeyDarkTheme)
	}
	if c.redrawer != nil {
		c.redrawer.Redraw(ctx)
	}
	c.logger.InfoContext(ctx, "Theme toggled", "theme", string(theme))
	return theme
}

// Dark reports whether dark mode is active.
func (c *ThemeController) Dark() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dark
}

// Theme returns the active theme.
func (c *ThemeController) Theme() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.themeLocked()
}

func (c *ThemeController) themeLocked() Theme {
	if c.dark {
		return ThemeDark
	}
	return ThemeLight
}

// Icon is the toggle button icon: the sun offers light mode, the moon offers dark mode.
func (c *ThemeController) Icon() string {
	if c.Dark() {
		return "fas fa-sun"
	}
	return "fas fa-moon"
}

// Label is the toggle button text.
func (c *ThemeController) Label() string {
	if c.Dark() {
		return "Light Mode"
	}
	return "Dark Mode"
}
