package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/hnsearch/internal/config"
	"github.com/pders01/hnsearch/internal/hn"
	"github.com/pders01/hnsearch/internal/session"
)

const reverseSortKey = "S"

type KeyHandler struct {
	app  *App
	keys config.KeyBindings
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	keys := config.TestConfig().Keys.Bindings
	if cfg != nil {
		keys = mergeBindings(keys, cfg.Keys.Bindings)
	}
	return &KeyHandler{app: app, keys: keys}
}

// mergeBindings fills unset entries of b from defaults.
func mergeBindings(defaults, b config.KeyBindings) config.KeyBindings {
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return config.KeyBindings{
		Quit:     pick(b.Quit, defaults.Quit),
		Focus:    pick(b.Focus, defaults.Focus),
		LoadMore: pick(b.LoadMore, defaults.LoadMore),
		Remove:   pick(b.Remove, defaults.Remove),
		Sort:     pick(b.Sort, defaults.Sort),
		Open:     pick(b.Open, defaults.Open),
		Find:     pick(b.Find, defaults.Find),
		Back:     pick(b.Back, defaults.Back),
		Help:     pick(b.Help, defaults.Help),
	}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	kh.app.err = nil

	if key == kh.keys.Quit {
		return kh.app.quit()
	}

	if kh.app.showHelp {
		kh.app.showHelp = false
		return kh.app, nil
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewSearch:
		return kh.app.input.Focused()
	case ViewFind:
		return kh.app.findInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case kh.keys.Back:
		if kh.app.view == ViewFind {
			return kh.navigateBack()
		}
		kh.app.input.Blur()
		return kh.app, nil
	case "enter":
		return kh.handleTextInputEnter()
	case kh.keys.Focus, "down":
		kh.focusList()
		return kh.app, nil
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSearch:
		return kh.submitSearch(kh.app.input.Value())
	case ViewFind:
		if i, ok := kh.app.findList.SelectedItem().(archiveItem); ok {
			return kh.showDetail(i.toHN())
		}
		return kh.app, nil
	default:
		return kh.app, nil
	}
}

// focusList moves focus from the input to the list below it when there is
// anything to select.
func (kh *KeyHandler) focusList() {
	switch kh.app.view {
	case ViewSearch:
		if len(kh.app.results.Items()) > 0 {
			kh.app.input.Blur()
		}
	case ViewFind:
		if len(kh.app.findList.Items()) > 0 {
			kh.app.findInput.Blur()
			kh.app.findList.Select(0)
		}
	}
}

func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSearch:
		prev := kh.app.input.Value()
		var cmd tea.Cmd
		kh.app.input, cmd = kh.app.input.Update(msg)
		if v := kh.app.input.Value(); v != prev {
			kh.app.session.UpdateSearchInput(v)
		}
		return kh.app, cmd

	case ViewFind:
		prev := kh.app.findInput.Value()
		var cmd tea.Cmd
		kh.app.findInput, cmd = kh.app.findInput.Update(msg)
		query := strings.TrimSpace(kh.app.findInput.Value())
		if query == strings.TrimSpace(prev) {
			return kh.app, cmd
		}
		if len(query) < 2 {
			kh.app.findSeq++
			kh.app.findList.SetItems([]list.Item{})
			kh.app.clearStatus()
			return kh.app, cmd
		}
		return kh.app, tea.Batch(cmd, kh.app.performFind(query))

	default:
		return kh.app, nil
	}
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "q":
		model, cmd := kh.app.quit()
		return model, cmd, true
	case kh.keys.Help:
		kh.app.showHelp = true
		return kh.app, nil, true
	case kh.keys.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	}

	switch kh.app.view {
	case ViewSearch:
		return kh.handleSearchKeys(key)
	case ViewDetail:
		return kh.handleDetailKeys(key)
	case ViewFind:
		return kh.handleFindKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleSearchKeys(key string) (tea.Model, tea.Cmd, bool) {
	if idx, ok := historyIndex(key); ok {
		model, cmd := kh.pickHistory(idx)
		return model, cmd, true
	}

	switch key {
	case kh.keys.Focus, "i":
		kh.app.input.Focus()
		return kh.app, nil, true

	case kh.keys.LoadMore:
		return kh.app, kh.loadMore(), true

	case kh.keys.Remove:
		if s, ok := kh.app.selectedStory(); ok {
			kh.app.session.RemoveItem(s.ObjectID)
			kh.app.syncResults()
		}
		return kh.app, nil, true

	case kh.keys.Sort:
		kh.app.sortKey = kh.app.sortKey.Next()
		kh.app.syncResults()
		kh.app.results.Select(0)
		return kh.app, nil, true

	case reverseSortKey:
		kh.app.sortReverse = !kh.app.sortReverse
		kh.app.syncResults()
		kh.app.results.Select(0)
		return kh.app, nil, true

	case kh.keys.Open:
		if s, ok := kh.app.selectedStory(); ok {
			return kh.app, kh.openStory(s), true
		}
		return kh.app, nil, true

	case kh.keys.Find:
		model, cmd := kh.enterFindMode()
		return model, cmd, true

	case "enter":
		if s, ok := kh.app.selectedStory(); ok {
			model, cmd := kh.showDetail(s)
			return model, cmd, true
		}
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleDetailKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case kh.keys.Open:
		if kh.app.current != nil {
			return kh.app, kh.openStory(*kh.app.current), true
		}
		return kh.app, nil, true
	case kh.keys.Find:
		model, cmd := kh.enterFindMode()
		return model, cmd, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleFindKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case kh.keys.Focus, "i", kh.keys.Find:
		kh.app.findInput.Focus()
		return kh.app, nil, true
	case kh.keys.Open:
		if i, ok := kh.app.findList.SelectedItem().(archiveItem); ok {
			return kh.app, kh.openStory(i.toHN()), true
		}
		return kh.app, nil, true
	case "enter":
		if i, ok := kh.app.findList.SelectedItem().(archiveItem); ok {
			model, cmd := kh.showDetail(i.toHN())
			return model, cmd, true
		}
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewSearch:
		if msg.String() == "up" && kh.app.results.Index() == 0 {
			kh.app.input.Focus()
			return kh.app, nil
		}
		kh.app.results, cmd = kh.app.results.Update(msg)
		return kh.app, cmd

	case ViewDetail:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	case ViewFind:
		if msg.String() == "up" && kh.app.findList.Index() == 0 {
			kh.app.findInput.Focus()
			return kh.app, nil
		}
		kh.app.findList, cmd = kh.app.findList.Update(msg)
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) submitSearch(term string) (tea.Model, tea.Cmd) {
	t, err := kh.app.session.SubmitSearch(term)
	if err != nil {
		kh.app.err = opError("search", err)
		return kh.app, nil
	}
	kh.app.input.SetValue(t.Term)
	kh.app.input.Blur()
	return kh.app, kh.app.beginFetch(t)
}

func (kh *KeyHandler) loadMore() tea.Cmd {
	t, err := kh.app.session.LoadMore()
	switch {
	case errors.Is(err, session.ErrFetchPending):
		kh.app.setStatus(MsgStillLoading, StatusWarn)
		return nil
	case errors.Is(err, session.ErrNoPageLoaded):
		kh.app.setStatus(MsgNothingToContinue, StatusWarn)
		return nil
	case errors.Is(err, session.ErrNoMorePages):
		kh.app.setStatus(MsgNoMorePages, StatusInfo)
		return nil
	case err != nil:
		kh.app.err = opError("load more", err)
		return nil
	}
	return kh.app.beginFetch(t)
}

func (kh *KeyHandler) pickHistory(idx int) (tea.Model, tea.Cmd) {
	history := kh.app.session.View().History
	if idx >= len(history) {
		return kh.app, nil
	}
	t, err := kh.app.session.PickHistory(history[idx])
	if err != nil {
		kh.app.err = opError("history", err)
		return kh.app, nil
	}
	kh.app.input.SetValue(t.Term)
	return kh.app, kh.app.beginFetch(t)
}

// historyIndex maps "1".."9" to a zero-based history index.
func historyIndex(key string) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '0'+maxHistoryKeys {
		return 0, false
	}
	return int(key[0] - '1'), true
}

func (kh *KeyHandler) showDetail(s hn.Story) (tea.Model, tea.Cmd) {
	story := s
	kh.app.current = &story
	kh.app.previousView = kh.app.view
	kh.app.view = ViewDetail
	kh.app.loadingDetail = true
	return kh.app, tea.Batch(kh.app.spinner.Tick, kh.app.renderDetail(story))
}

func (kh *KeyHandler) openStory(s hn.Story) tea.Cmd {
	if s.URL == "" {
		kh.app.setStatus(MsgNoLink, StatusWarn)
		return nil
	}
	return kh.app.openURL(s.URL)
}

// navigateBack returns to the view the current one was entered from.
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewDetail:
		kh.app.view = kh.app.previousView
		kh.app.current = nil
		kh.app.loadingDetail = false
		return kh.app, nil

	case ViewFind:
		kh.app.view = ViewSearch
		kh.app.findSeq++
		kh.app.findInput.Reset()
		kh.app.findInput.Blur()
		kh.app.findList.SetItems([]list.Item{})
		kh.app.clearStatus()
		return kh.app, nil

	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) enterFindMode() (tea.Model, tea.Cmd) {
	kh.app.previousView = ViewSearch
	kh.app.view = ViewFind
	kh.app.findInput.Reset()
	kh.app.findInput.Focus()
	kh.app.findList.SetItems([]list.Item{})

	if kh.app.searcher == nil {
		kh.app.setStatus(MsgNoArchive, StatusWarn)
		return kh.app, nil
	}
	if n, err := kh.app.searcher.DocCount(); err == nil {
		kh.app.setStatus(MsgArchiveCount(n), StatusInfo)
	}
	return kh.app, nil
}

// GetHelpForCurrentView returns the short key hints for the status bar.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	k := kh.keys
	switch kh.app.view {
	case ViewSearch:
		if kh.app.input.Focused() {
			return []string{"enter: search", k.Focus + ": results", k.Quit + ": quit"}
		}
		v := kh.app.session.View()
		var help []string
		if v.HasMore {
			help = append(help, k.LoadMore+": more")
		}
		help = append(help,
			k.Remove+": remove",
			k.Sort+": sort",
			k.Open+": open",
			k.Find+": find",
		)
		if n := len(v.History); n > 0 {
			if n > maxHistoryKeys {
				n = maxHistoryKeys
			}
			help = append(help, fmt.Sprintf("1-%d: history", n))
		}
		return append(help, k.Help+": help")

	case ViewDetail:
		return []string{k.Open + ": open", k.Back + ": back"}

	case ViewFind:
		return []string{"enter: view", k.Open + ": open", k.Back + ": back"}

	default:
		return []string{}
	}
}

// HelpTable lists every binding for the help overlay.
func (kh *KeyHandler) HelpTable() string {
	k := kh.keys
	rows := [][2]string{
		{"enter", "search / view story"},
		{k.Focus, "switch input and results"},
		{k.LoadMore, "load next page"},
		{k.Remove, "remove story from results"},
		{k.Sort, "cycle sort key"},
		{reverseSortKey, "reverse sort"},
		{k.Open, "open link in browser"},
		{k.Find, "find in archive"},
		{fmt.Sprintf("1-%d", maxHistoryKeys), "re-run earlier search"},
		{k.Back, "back"},
		{"q / " + k.Quit, "quit"},
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("keys") + "\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-10s %s\n", r[0], r[1])
	}
	return b.String()
}
