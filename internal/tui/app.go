package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/hnsearch/internal/browser"
	"github.com/pders01/hnsearch/internal/config"
	"github.com/pders01/hnsearch/internal/hn"
	"github.com/pders01/hnsearch/internal/search"
	"github.com/pders01/hnsearch/internal/session"
	"github.com/pders01/hnsearch/internal/validation"
)

type View int

const (
	ViewSearch View = iota
	ViewDetail
	ViewFind
)

// maxHistoryKeys is the number of history entries reachable with 1-9.
const maxHistoryKeys = 9

type App struct {
	config     *config.Config
	session    *session.Controller
	searcher   search.Searcher
	launcher   *browser.Launcher
	keyHandler *KeyHandler

	input     textinput.Model
	results   list.Model
	findInput textinput.Model
	findList  list.Model
	viewport  viewport.Model
	spinner   spinner.Model

	view          View
	previousView  View
	showHelp      bool
	sortKey       session.SortKey
	sortReverse   bool
	current       *hn.Story
	loadingDetail bool
	lastTicket    session.Ticket
	lastFetchErr  error
	findSeq       int

	status     string
	statusKind StatusKind
	err        error

	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp builds the interactive front end for ctrl. searcher may be nil,
// which disables the archive find view.
func NewApp(ctrl *session.Controller, searcher search.Searcher, cfg *config.Config) *App {
	results := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	results.Title = "› stories"
	results.SetShowStatusBar(false)
	results.SetFilteringEnabled(false)
	results.SetShowHelp(false)

	findList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	findList.Title = "› archive"
	findList.SetShowStatusBar(false)
	findList.SetFilteringEnabled(false)
	findList.SetShowHelp(false)

	in := textinput.New()
	in.Placeholder = "Search Hacker News…"
	in.Prompt = "› "
	in.CharLimit = validation.MaxTermLength
	in.SetValue(ctrl.View().SearchTerm)
	in.Focus()

	fi := textinput.New()
	fi.Placeholder = "Find in archived stories…"
	fi.Prompt = "/ "

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config:    cfg,
		session:   ctrl,
		searcher:  searcher,
		launcher:  browser.NewLauncher(cfg),
		input:     in,
		results:   results,
		findInput: fi,
		findList:  findList,
		viewport:  viewport.New(0, 0),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		view:      ViewSearch,
		sortKey:   session.SortNone,
		ctx:       ctx,
		cancel:    cancel,
	}
	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > 100 {
		wordWrapWidth = 100
	}
	if wordWrapWidth < 20 {
		wordWrapWidth = 20
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.beginFetch(a.session.Start()),
		textinput.Blink,
	)
}

// beginFetch records t as the latest request and schedules its fetch.
func (a *App) beginFetch(t session.Ticket) tea.Cmd {
	a.lastTicket = t
	a.lastFetchErr = nil
	a.clearStatus()
	return tea.Batch(a.fetchCmd(t), a.spinner.Tick)
}

func (a *App) quit() (tea.Model, tea.Cmd) {
	a.cancel()
	a.session.Close()
	return a, tea.Quit
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusKind = StatusInfo
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// input frame (3) + header (2) + history (1) + status (3)
		listHeight := msg.Height - 9
		if listHeight < 5 {
			listHeight = 5
		}
		a.results.SetSize(msg.Width, listHeight)
		a.findList.SetSize(msg.Width, listHeight)
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - 3

		inputWidth := msg.Width - 8
		if inputWidth < 10 {
			inputWidth = msg.Width
		}
		a.input.Width = inputWidth
		a.findInput.Width = inputWidth

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case fetchDoneMsg:
		if !a.session.Settle(msg.out) {
			return a, nil
		}
		a.syncResults()
		if msg.out.Ticket.Page == 0 && len(a.results.Items()) > 0 {
			a.results.Select(0)
		}
		if msg.out.Err != nil {
			a.lastFetchErr = msg.out.Err
		}
		return a, nil

	case spinner.TickMsg:
		if a.session.View().IsLoading || a.loadingDetail {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case detailRenderedMsg:
		if a.view == ViewDetail {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.loadingDetail = false
		}
		return a, nil

	case findResultsMsg:
		if msg.seq != a.findSeq || a.view != ViewFind {
			return a, nil
		}
		if msg.err != nil {
			a.err = opError("find", msg.err)
			return a, nil
		}
		items := make([]list.Item, len(msg.results))
		for i, r := range msg.results {
			items[i] = archiveItem{result: r}
		}
		a.findList.SetItems(items)
		if len(items) == 0 {
			a.setStatus(MsgNoResults, StatusWarn)
		} else {
			a.setStatus(MsgResultsCount(len(items)), StatusInfo)
		}
		return a, nil

	case statusMsg:
		a.setStatus(msg.text, msg.kind)
		return a, nil

	case errorMsg:
		a.err = msg.err
		return a, nil
	}

	switch a.view {
	case ViewSearch:
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		cmds = append(cmds, cmd)
	case ViewFind:
		var cmd tea.Cmd
		a.findInput, cmd = a.findInput.Update(msg)
		cmds = append(cmds, cmd)
	case ViewDetail:
		if _, ok := msg.(tea.MouseMsg); ok {
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return a, tea.Batch(cmds...)
}

// syncResults redraws the story list from the session, keeping the cursor
// where it was when possible.
func (a *App) syncResults() {
	v := a.session.View()
	stories := session.SortStories(v.Items, a.sortKey, a.sortReverse)

	items := make([]list.Item, len(stories))
	for i, s := range stories {
		items[i] = storyItem{story: s}
	}

	idx := a.results.Index()
	a.results.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		a.results.Select(idx)
	}
}

func (a *App) selectedStory() (hn.Story, bool) {
	i, ok := a.results.SelectedItem().(storyItem)
	if !ok {
		return hn.Story{}, false
	}
	return i.story, true
}

func (a *App) View() string {
	if a.showHelp {
		return lipgloss.JoinVertical(lipgloss.Top,
			renderCentered(a.width, a.height-2, a.keyHandler.HelpTable()),
			renderHelp("press any key to close"),
		)
	}

	var content string
	switch a.view {
	case ViewSearch:
		content = a.searchView()
	case ViewDetail:
		if a.loadingDetail {
			content = renderCentered(a.width, a.height-3, a.spinner.View()+" "+MsgLoading)
		} else {
			content = a.viewport.View()
		}
	case ViewFind:
		content = a.findView()
	}

	return lipgloss.JoinVertical(lipgloss.Top,
		content,
		renderSeparator(a.width),
		a.statusLine(),
		StatusBarStyle.Render(strings.Join(a.keyHandler.GetHelpForCurrentView(), " • ")),
	)
}

func (a *App) searchView() string {
	v := a.session.View()

	header := renderHeader("› hacker news", "active: "+v.ActiveTerm, a.width)
	input := renderInputFrame(a.input.View(), a.input.Focused(), a.input.Width)

	rows := []string{header, input}
	if h := renderHistory(v.History, a.width); h != "" {
		rows = append(rows, h)
	}

	bodyHeight := a.height - 9
	switch {
	case len(v.Items) == 0 && v.IsLoading:
		rows = append(rows, renderCentered(a.width, bodyHeight, a.spinner.View()+" "+MsgLoading))
	case len(v.Items) == 0 && v.IsError:
		rows = append(rows, renderCentered(a.width, bodyHeight, StatusErrorStyle.Render(MsgFetchFailed)))
	case len(v.Items) == 0:
		rows = append(rows, renderCentered(a.width, bodyHeight, GetCompactBanner(MsgNoResults)))
	default:
		rows = append(rows, a.results.View())
	}

	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

func (a *App) findView() string {
	subtitle := MsgNoArchive
	if a.searcher != nil {
		if n, err := a.searcher.DocCount(); err == nil {
			subtitle = MsgArchiveCount(n)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Top,
		renderHeader("› find", subtitle, a.width),
		renderInputFrame(a.findInput.View(), a.findInput.Focused(), a.findInput.Width),
		a.findList.View(),
	)
}

func (a *App) statusLine() string {
	v := a.session.View()

	var text string
	switch {
	case a.err != nil:
		text = StatusErrorStyle.Render(fmt.Sprintf("✗ %v", a.err))
	case v.IsLoading:
		text = a.spinner.View() + " " + StatusInfoStyle.Render(MsgLoading)
	case v.IsError:
		msg := MsgFetchFailed
		if a.lastFetchErr != nil {
			msg += " " + a.lastFetchErr.Error()
		}
		text = StatusErrorStyle.Render("✗ " + msg)
	case a.status != "":
		text = statusStyle(a.statusKind).Render(a.status)
	default:
		text = StatusInfoStyle.Render(MsgSummary(len(v.Items), v.TotalComments, v.Page, string(a.sortKey), a.sortReverse))
	}

	return lipgloss.NewStyle().
		Width(a.width).
		MaxWidth(a.width).
		Padding(0, 1).
		Render(text)
}

func statusStyle(kind StatusKind) lipgloss.Style {
	switch kind {
	case StatusSuccess:
		return StatusSuccessStyle
	case StatusWarn:
		return StatusWarnStyle
	case StatusError:
		return StatusErrorStyle
	default:
		return StatusInfoStyle
	}
}

type storyItem struct {
	story hn.Story
}

func (i storyItem) Title() string {
	if i.story.Title == "" {
		return "(untitled)"
	}
	return i.story.Title
}

func (i storyItem) Description() string {
	parts := []string{
		"by " + i.story.Author,
		fmt.Sprintf("%d points", i.story.Points),
		MsgComments(i.story.NumComments),
	}
	if host := hostOf(i.story.URL); host != "" {
		parts = append(parts, host)
	}
	return strings.Join(parts, " • ")
}

func (i storyItem) FilterValue() string { return i.story.Title }

type archiveItem struct {
	result *search.Result
}

func (i archiveItem) Title() string {
	if i.result.Story.Title == "" {
		return "(untitled)"
	}
	return i.result.Story.Title
}

func (i archiveItem) Description() string {
	s := i.result.Story
	parts := []string{"by " + s.Author}
	if s.Query != "" {
		parts = append(parts, fmt.Sprintf("from %q", s.Query))
	}
	if !s.FetchedAt.IsZero() {
		parts = append(parts, s.FetchedAt.Local().Format("Jan 2"))
	}
	return strings.Join(parts, " • ")
}

func (i archiveItem) FilterValue() string { return i.result.Story.Title }

func (i archiveItem) toHN() hn.Story {
	s := i.result.Story
	return hn.Story{
		ObjectID:    s.ID,
		Title:       s.Title,
		URL:         s.URL,
		Author:      s.Author,
		NumComments: s.NumComments,
		Points:      s.Points,
	}
}

type fetchDoneMsg struct {
	out session.Outcome
}

type detailRenderedMsg struct {
	content string
}

type findResultsMsg struct {
	seq     int
	results []*search.Result
	err     error
}

type statusMsg struct {
	text string
	kind StatusKind
}

type errorMsg struct {
	err error
}
