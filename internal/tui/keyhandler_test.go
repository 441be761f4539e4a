package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/pders01/hnsearch/internal/config"
)

func TestNewKeyHandler_FillsMissingBindings(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Keys.Bindings.LoadMore = "n"
	cfg.Keys.Bindings.Sort = ""

	kh := NewKeyHandler(&App{}, cfg)

	assert.Equal(t, "n", kh.keys.LoadMore)
	assert.Equal(t, "s", kh.keys.Sort)
	assert.Equal(t, "ctrl+c", kh.keys.Quit)
}

func TestNewKeyHandler_NilConfig(t *testing.T) {
	kh := NewKeyHandler(&App{}, nil)
	assert.Equal(t, config.TestConfig().Keys.Bindings, kh.keys)
}

func TestKeyHandler_CustomLoadMoreBinding(t *testing.T) {
	env := started(t)
	env.app.keyHandler.keys.LoadMore = "n"
	env.press(keyTab)

	env.press(runes("m"))
	assert.Equal(t, 0, env.app.lastTicket.Page)

	assert.NotNil(t, env.press(runes("n")))
	assert.Equal(t, 1, env.app.lastTicket.Page)
}

func TestKeyHandler_HistoryIndex(t *testing.T) {
	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"1", 0, true},
		{"9", 8, true},
		{"0", 0, false},
		{"a", 0, false},
		{"12", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := historyIndex(tt.key)
		assert.Equal(t, tt.ok, ok, "key %q", tt.key)
		if tt.ok {
			assert.Equal(t, tt.want, got, "key %q", tt.key)
		}
	}
}

func TestKeyHandler_HelpOverlay(t *testing.T) {
	env := started(t)
	env.press(keyTab)

	env.press(runes("?"))
	assert.True(t, env.app.showHelp)
	assert.Contains(t, env.app.View(), "load next page")

	// Any key closes the overlay without acting.
	seq := env.app.lastTicket.Seq
	env.press(runes("m"))
	assert.False(t, env.app.showHelp)
	assert.Equal(t, seq, env.app.lastTicket.Seq)
}

func TestKeyHandler_QuestionMarkTypesWhileEditing(t *testing.T) {
	env := started(t)
	env.app.input.SetValue("")

	env.press(runes("?"))

	assert.False(t, env.app.showHelp)
	assert.Equal(t, "?", env.app.input.Value())
}

func TestKeyHandler_EscBlursSearchInput(t *testing.T) {
	env := started(t)
	env.press(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, env.app.input.Focused())
	assert.Equal(t, ViewSearch, env.app.view)
}

func TestKeyHandler_FocusKeysReturnToInput(t *testing.T) {
	for _, k := range []tea.KeyMsg{keyTab, runes("i")} {
		env := started(t)
		env.press(keyTab)
		env.press(k)
		assert.True(t, env.app.input.Focused(), "key %q", k.String())
	}
}

func TestKeyHandler_GetHelpForCurrentView(t *testing.T) {
	env := started(t)

	editing := strings.Join(env.app.keyHandler.GetHelpForCurrentView(), " ")
	assert.Contains(t, editing, "enter: search")

	env.press(keyTab)
	browsing := strings.Join(env.app.keyHandler.GetHelpForCurrentView(), " ")
	assert.Contains(t, browsing, "m: more")
	assert.NotContains(t, browsing, "history")

	_, _ = env.app.keyHandler.submitSearch("webpack")
	env.runFetch(t)
	browsing = strings.Join(env.app.keyHandler.GetHelpForCurrentView(), " ")
	assert.Contains(t, browsing, "1-1: history")
	assert.NotContains(t, browsing, "m: more", "webpack has a single page")

	env.app.view = ViewDetail
	assert.Equal(t, []string{"o: open", "esc: back"}, env.app.keyHandler.GetHelpForCurrentView())
}

func TestKeyHandler_HelpTableListsBindings(t *testing.T) {
	env := newTestEnv(t, nil)
	table := env.app.keyHandler.HelpTable()

	for _, want := range []string{"m", "x", "s", "S", "o", "/", "1-9", "esc", "ctrl+c"} {
		assert.Contains(t, table, want)
	}
}
