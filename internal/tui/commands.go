package tui

import (
	"fmt"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/hnsearch/internal/hn"
	"github.com/pders01/hnsearch/internal/session"
)

const findLimit = 50

func (a *App) fetchCmd(t session.Ticket) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return fetchDoneMsg{out: a.session.Run(ctx, t)}
	}
}

func (a *App) renderDetail(story hn.Story) tea.Cmd {
	return func() tea.Msg {
		r, err := a.getRenderer()
		if err != nil {
			return detailRenderedMsg{content: "Error initializing renderer: " + err.Error()}
		}

		rendered, err := r.Render(storyMarkdown(story))
		if err != nil {
			// Still a detailRenderedMsg so loadingDetail is cleared
			return detailRenderedMsg{content: fmt.Sprintf("Failed to render story: %s\n\nPress Escape to go back.", err)}
		}
		return detailRenderedMsg{content: rendered}
	}
}

// storyMarkdown lays out a story for the detail view.
func storyMarkdown(s hn.Story) string {
	title := s.Title
	if title == "" {
		title = "(untitled)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "*by %s • %d points • %s*\n\n", s.Author, s.Points, MsgComments(s.NumComments))
	if s.URL != "" {
		label := hostOf(s.URL)
		if label == "" {
			label = s.URL
		}
		fmt.Fprintf(&b, "[%s](%s)\n\n", label, s.URL)
	}
	b.WriteString("---\n\n")
	if s.ObjectID != "" {
		fmt.Fprintf(&b, "Discussion: https://news.ycombinator.com/item?id=%s\n", url.QueryEscape(s.ObjectID))
	}
	return b.String()
}

func (a *App) performFind(query string) tea.Cmd {
	a.findSeq++
	seq := a.findSeq
	searcher := a.searcher
	return func() tea.Msg {
		if searcher == nil {
			return findResultsMsg{seq: seq}
		}
		results, err := searcher.Search(query, findLimit)
		return findResultsMsg{seq: seq, results: results, err: err}
	}
}

func (a *App) openURL(link string) tea.Cmd {
	launcher := a.launcher
	return func() tea.Msg {
		if err := launcher.Open(link); err != nil {
			return errorMsg{err: opError("open", err)}
		}
		return statusMsg{text: MsgOpened(link), kind: StatusSuccess}
	}
}
