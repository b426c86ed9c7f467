package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"budgetboard/internal/kv"
	"budgetboard/internal/kv/memory"
	applog "budgetboard/internal/log"
)

func TestThemeLoad(t *testing.T) {
	cases := map[string]Theme{"true": ThemeDark, "false": ThemeLight, "yes": ThemeLight}
	for raw, want := range cases {
		store := memory.NewWith(map[string]string{kv.KeyDarkTheme: raw})
		c := NewThemeController(store, nil, applog.Discard())
		assert.Equal(t, want, c.Load(context.Background()), raw)
	}

	c := NewThemeController(memory.New(), nil, applog.Discard())
	assert.Equal(t, ThemeLight, c.Load(context.Background()))
	assert.Equal(t, "fas fa-moon", c.Icon())
	assert.Equal(t, "Dark Mode", c.Label())
}

func TestThemeTogglePersistsAndRedraws(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	redraws := 0
	c := NewThemeController(store, RedrawFunc(func(context.Context) { redraws++ }), applog.Discard())
	c.Load(ctx)

	assert.Equal(t, ThemeDark, c.Toggle(ctx))
	raw, _, _ := store.Get(ctx, kv.KeyDarkTheme)
	assert.Equal(t, "true", raw)
	assert.Equal(t, "fas fa-sun", c.Icon())
	assert.Equal(t, "Light Mode", c.Label())

	assert.Equal(t, ThemeLight, c.Toggle(ctx))
	raw, _, _ = store.Get(ctx, kv.KeyDarkTheme)
	assert.Equal(t, "false", raw)
	assert.Equal(t, 2, redraws)
}

func TestThemeStoreFailuresDoNotBlockToggle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.FailReads(errors.New("unavailable"))
	store.FailWrites(errors.New("quota"))

	c := NewThemeController(store, nil, applog.Discard())
	assert.Equal(t, ThemeLight, c.Load(ctx))
	assert.Equal(t, ThemeDark, c.Toggle(ctx))
	assert.True(t, c.Dark())
}
