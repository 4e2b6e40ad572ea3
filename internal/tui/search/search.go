// Package search is the interactive title search screen.
package search

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Digital-Shane/show-manager/internal/presenter"
	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/tui/components"
	"github.com/Digital-Shane/show-manager/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// statusTTL is how long a transient status message stays visible.
const statusTTL = 4 * time.Second

type focusArea int

const (
	focusInput focusArea = iota
	focusList
	focusDetails
)

type clearStatusMsg struct{ seq int }

// Model is the search screen. It is the presenter's view: presenter
// callbacks arrive as messages through a bridge.
type Model struct {
	presenter *presenter.SearchPresenter
	bridge    *bridge
	theme     theme.Theme

	input    textinput.Model
	spinner  spinner.Model
	pager    progress.Model
	adapter  *components.ShowListAdapter
	details  *viewport.Model
	selected int
	focus    focusArea

	loading    bool
	query      string
	page       int
	totalPages int
	totalFound int
	searched   bool
	hasDetails bool

	status    string
	statusErr bool
	statusSeq int

	width  int
	height int
}

// Option configures a Model during construction.
type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(th theme.Theme) Option {
	return func(m *Model) {
		m.theme = th
	}
}

// WithQuery pre-fills the search box and runs the search on start.
func WithQuery(query string) Option {
	return func(m *Model) {
		m.input.SetValue(query)
		m.input.CursorEnd()
	}
}

// New creates the search screen over backend.
func New(backend presenter.Backend, opts ...Option) *Model {
	m := &Model{
		bridge: newBridge(),
		theme:  theme.Default(),
		width:  80,
		height: 24,
		page:   1,
	}
	m.input = textinput.New()
	for _, opt := range opts {
		opt(m)
	}

	m.presenter = presenter.NewSearchPresenter(backend, m.bridge)

	colors := m.theme.Colors()
	m.input.Prompt = m.theme.Icon("search") + " "
	m.input.Placeholder = "Search titles"
	m.input.CharLimit = 256
	m.input.Cursor.Style = lipgloss.NewStyle().Foreground(colors.Background).Background(colors.Accent)
	m.input.TextStyle = lipgloss.NewStyle().Foreground(colors.Primary)
	m.input.Focus()

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = lipgloss.NewStyle().Foreground(colors.Accent)

	m.pager = progress.New(progress.WithSolidFill(string(colors.Accent)), progress.WithoutPercentage())
	m.pager.Width = 20

	m.adapter = components.NewShowListAdapter(m.theme)
	m.details = components.NewViewport(m.detailsWidth()-4, m.bodyHeight()-3, m.theme)
	m.resize()
	return m
}

// Presenter exposes the presenter driving this view.
func (m *Model) Presenter() *presenter.SearchPresenter {
	return m.presenter
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.bridge.listen()}
	if strings.TrimSpace(m.input.Value()) != "" {
		cmds = append(cmds, m.searchCmd(m.input.Value(), 1))
	}
	return tea.Batch(cmds...)
}

// Close releases the presenter. Pending sends are dropped first so
// OnDestroy never waits on a view callback. Close is safe to call more
// than once.
func (m *Model) Close() {
	m.bridge.close()
	m.presenter.OnDestroy()
}

func (m *Model) shutdown() tea.Cmd {
	m.Close()
	return tea.Quit
}

func (m *Model) searchCmd(query string, page int) tea.Cmd {
	p := m.presenter
	return func() tea.Msg {
		p.SearchByTitle(query, page)
		return nil
	}
}

func (m *Model) detailsCmd(id string) tea.Cmd {
	p := m.presenter
	return func() tea.Msg {
		p.ShowDetails(id)
		return nil
	}
}

func (m *Model) bookmarkCmd(show provider.ShowSummary) tea.Cmd {
	p := m.presenter
	return func() tea.Msg {
		p.SaveBookmark(show)
		return nil
	}
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusErr = isErr
	return components.DebounceMsg(statusTTL, clearStatusMsg{seq: m.statusSeq})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil
	}

	if cmd, handled := m.handleEvent(msg); handled {
		return m, tea.Batch(cmd, m.bridge.listen())
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleEvent applies a presenter callback.
func (m *Model) handleEvent(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case progressMsg:
		m.loading = msg.loading
		if m.loading {
			return m.spinner.Tick, true
		}
		return nil, true

	case pageInfoMsg:
		m.query = msg.query
		m.page = msg.page
		m.totalPages = msg.pages
		m.totalFound = msg.totalFound
		return nil, true

	case resultsMsg:
		m.searched = true
		m.adapter.SetItems(msg.shows)
		m.selected = 0
		if len(msg.shows) == 0 {
			return m.setStatus(fmt.Sprintf("No results for %q", m.query), false), true
		}
		if m.focus == focusInput {
			m.setFocus(focusList)
		}
		return nil, true

	case emptyTitleMsg:
		return m.setStatus("Enter a title to search", true), true

	case failureMsg:
		return m.setStatus(describeFailure(msg.err), true), true

	case detailsMsg:
		m.hasDetails = true
		m.details.SetContent(formatDetails(msg.details, m.theme, m.details.Width))
		m.details.GotoTop()
		return nil, true

	case bookmarkSavedMsg:
		text := fmt.Sprintf("%s Saved %s", m.theme.Icon("bookmark"), msg.show.Title)
		if !msg.created {
			text = fmt.Sprintf("%s is already bookmarked", msg.show.Title)
		}
		return m.setStatus(text, false), true

	case bookmarkFailedMsg:
		return m.setStatus(fmt.Sprintf("Could not save %s: %v", msg.show.Title, msg.err), true), true

	case bookmarksMsg:
		return m.setStatus(fmt.Sprintf("%d bookmarks", len(msg.bookmarks)), false), true
	}
	return nil, false
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		return m, m.shutdown()

	case "tab":
		next := (m.focus + 1) % 3
		if next == focusDetails && !m.hasDetails {
			next = focusInput
		}
		m.setFocus(next)
		return m, nil

	case "shift+tab":
		m.setFocus(focusInput)
		return m, nil

	case "enter":
		if m.focus == focusInput {
			m.query = strings.TrimSpace(m.input.Value())
			return m, m.searchCmd(m.input.Value(), 1)
		}
		if show, ok := m.adapter.Item(m.selected); ok {
			return m, m.detailsCmd(show.ID)
		}
		return m, nil

	case "ctrl+n":
		if m.searched && m.page < m.totalPages {
			return m, m.searchCmd(m.query, m.page+1)
		}
		return m, nil

	case "ctrl+p":
		if m.searched && m.page > 1 {
			return m, m.searchCmd(m.query, m.page-1)
		}
		return m, nil

	case "ctrl+b":
		if show, ok := m.adapter.Item(m.selected); ok {
			return m, m.bookmarkCmd(show)
		}
		return m, nil

	case "ctrl+d":
		if show, ok := m.adapter.Item(m.selected); ok {
			return m, m.detailsCmd(show.ID)
		}
		return m, nil
	}

	switch m.focus {
	case focusList:
		switch msg.String() {
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < m.adapter.ItemCount()-1 {
				m.selected++
			}
		case "home", "g":
			m.selected = 0
		case "end", "G":
			if n := m.adapter.ItemCount(); n > 0 {
				m.selected = n - 1
			}
		}
		return m, nil

	case focusDetails:
		switch msg.String() {
		case "up", "k":
			m.details.ScrollUp(1)
		case "down", "j":
			m.details.ScrollDown(1)
		case "pgup":
			m.details.HalfPageUp()
		case "pgdown":
			m.details.HalfPageDown()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func describeFailure(err error) string {
	if err == nil {
		return "Request failed"
	}
	var perr *provider.ProviderError
	if errors.As(err, &perr) {
		switch perr.Code {
		case provider.CodeAuthFailed:
			return "Catalog rejected the API key. Run 'show-manager config set omdb_api_key <key>'"
		case provider.CodeRateLimited:
			return "Catalog rate limit reached, try again shortly"
		case provider.CodeUnavailable:
			return "Catalog unavailable, check your connection"
		}
	}
	return "Request failed: " + err.Error()
}

func (m *Model) listWidth() int {
	if m.width < 40 {
		return m.width
	}
	return m.width / 2
}

func (m *Model) detailsWidth() int {
	return m.width - m.listWidth()
}

// bodyHeight is the space left for the panels under the header, input,
// status and help lines.
func (m *Model) bodyHeight() int {
	h := m.height - 5
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) resize() {
	m.input.Width = m.width - 4
	m.details.Width = m.detailsWidth() - 4
	m.details.Height = m.bodyHeight() - 3
	if m.details.Height < 1 {
		m.details.Height = 1
	}
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.HeaderStyle().Width(m.width).Render("Show Manager"))
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(m.renderStatus())
	b.WriteByte('\n')

	list := m.renderList(m.listWidth(), m.bodyHeight())
	details := m.renderDetails(m.detailsWidth(), m.bodyHeight())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, details))
	b.WriteByte('\n')
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m *Model) renderStatus() string {
	switch {
	case m.loading:
		return m.spinner.View() + " Searching..."
	case m.status != "" && m.statusErr:
		return m.theme.ErrorStyle().Render(m.theme.Icon("error") + " " + m.status)
	case m.status != "":
		return m.theme.MutedStyle().Render(m.status)
	case m.searched && m.totalPages > 0:
		info := fmt.Sprintf("%s Page %d of %d · %d results ", m.theme.Icon("page"), m.page, m.totalPages, m.totalFound)
		return info + m.pager.ViewAs(float64(m.page)/float64(m.totalPages))
	default:
		return ""
	}
}

func (m *Model) renderList(width, height int) string {
	colors := m.theme.Colors()
	border := colors.Primary
	if m.focus == focusList {
		border = colors.Accent
	}
	panel := components.SizedPanel(m.theme, width, height, border)

	title := lipgloss.NewStyle().Bold(true).Foreground(colors.Primary).Render("Results")
	inner := width - panel.GetHorizontalFrameSize()

	var body string
	switch {
	case m.adapter.ItemCount() > 0:
		body = m.adapter.RenderWindow(inner, height-3, m.selected)
	case m.searched:
		body = m.theme.MutedStyle().Render("No results")
	default:
		body = m.theme.MutedStyle().Render("Type a title and press enter")
	}
	return panel.Render(title + "\n" + body)
}

func (m *Model) renderDetails(width, height int) string {
	colors := m.theme.Colors()
	border := colors.Secondary
	if m.focus == focusDetails {
		border = colors.Accent
	}
	panel := components.SizedPanel(m.theme, width, height, border)

	title := lipgloss.NewStyle().Bold(true).Foreground(colors.Secondary).Render("Details")
	body := m.theme.MutedStyle().Italic(true).Render("ctrl+d shows details for the selected title")
	if m.hasDetails {
		body = m.details.View()
	}
	return panel.Render(title + "\n" + body)
}

func (m *Model) renderHelp() string {
	help := "enter: search · ↑↓: select · ctrl+d: details · ctrl+b: bookmark · ctrl+n/ctrl+p: page · tab: focus · esc: quit"
	return m.theme.MutedStyle().Italic(true).Width(m.width).Render(help)
}
