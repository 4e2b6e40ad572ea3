// Package bookmarks is the live bookmark browser.
package bookmarks

import (
	"context"
	"fmt"
	"strings"

	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/repository"
	"github.com/Digital-Shane/show-manager/internal/store"
	"github.com/Digital-Shane/show-manager/internal/tui/components"
	"github.com/Digital-Shane/show-manager/internal/tui/theme"
	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Backend is what the browser needs from the repository.
type Backend interface {
	SubscribeBookmarks() *repository.Subscription
	DeleteBookmark(ctx context.Context, id string) repository.Outcome
}

// listMsg carries a fresh bookmark list from the subscription.
type listMsg struct{ bookmarks []store.Bookmark }

// closedMsg reports that the subscription ended.
type closedMsg struct{}

// deletedMsg reports the result of a delete.
type deletedMsg struct {
	bookmark store.Bookmark
	outcome  repository.Outcome
}

// Model lists bookmarks and follows the store as it changes.
type Model struct {
	*treeview.TuiTreeModel[store.Bookmark]
	backend Backend
	sub     *repository.Subscription
	theme   theme.Theme

	count      int
	loaded     bool
	confirming bool
	deleting   bool
	status     string
	statusErr  bool

	width      int
	height     int
	splitRatio float64

	detailsViewport *viewport.Model
	detailsFocused  bool
}

// Option configures a Model during construction.
type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(th theme.Theme) Option {
	return func(m *Model) {
		m.theme = th
	}
}

// New creates the browser. The subscription opens in Init.
func New(backend Backend, opts ...Option) *Model {
	m := &Model{
		backend:    backend,
		theme:      theme.Default(),
		width:      80,
		height:     24,
		splitRatio: 0.5,
	}
	for _, opt := range opts {
		opt(m)
	}

	keyMap := treeview.DefaultKeyMap()
	keyMap.SearchStart = []string{}
	keyMap.Reset = []string{}

	tree := treeview.NewTree([]*treeview.Node[store.Bookmark]{}, treeview.WithProvider(components.CreateBookmarkProvider(m.theme)))
	treeWidth := int(float64(m.width)*m.splitRatio) - 2
	m.TuiTreeModel = treeview.NewTuiTreeModel(tree,
		treeview.WithTuiWidth[store.Bookmark](treeWidth),
		treeview.WithTuiHeight[store.Bookmark](m.height-4),
		treeview.WithTuiAllowResize[store.Bookmark](true),
		treeview.WithTuiDisableNavBar[store.Bookmark](true),
		treeview.WithTuiKeyMap[store.Bookmark](keyMap),
	)

	m.detailsViewport = components.NewViewport(m.width-treeWidth-6, m.height-8, m.theme)
	return m
}

func (m *Model) Init() tea.Cmd {
	m.sub = m.backend.SubscribeBookmarks()
	return m.listen()
}

// listen waits for the next list from the subscription.
func (m *Model) listen() tea.Cmd {
	sub := m.sub
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		list, ok := <-sub.C
		if !ok {
			return closedMsg{}
		}
		return listMsg{bookmarks: list}
	}
}

func (m *Model) quit() tea.Cmd {
	m.sub.Close()
	return tea.Quit
}

// Focused returns the bookmark under the cursor.
func (m *Model) Focused() (store.Bookmark, bool) {
	node := m.TuiTreeModel.Tree.GetFocusedNode()
	if node == nil {
		return store.Bookmark{}, false
	}
	return *node.Data(), true
}

// setList replaces the tree contents and keeps focus on the same bookmark
// when it is still present.
func (m *Model) setList(list []store.Bookmark) {
	previous, hadFocus := m.Focused()
	nodes := components.BookmarkNodes(list)
	m.TuiTreeModel.Tree.SetNodes(nodes)
	m.count = len(list)
	m.loaded = true

	if len(nodes) == 0 {
		return
	}
	target := nodes[0].ID()
	if hadFocus {
		for _, b := range list {
			if b.ID == previous.ID {
				target = b.ID
				break
			}
		}
	}
	_, _ = m.TuiTreeModel.Tree.SetFocusedID(context.Background(), target)
}

func (m *Model) deleteCmd(b store.Bookmark) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		return deletedMsg{bookmark: b, outcome: backend.DeleteBookmark(context.Background(), b.ID)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		treeWidth := int(float64(m.width)*m.splitRatio) - 2
		treeModel, cmd := m.TuiTreeModel.Update(tea.WindowSizeMsg{Width: treeWidth, Height: m.height - 4})
		m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[store.Bookmark])
		m.detailsViewport.Width = m.width - treeWidth - 6
		m.detailsViewport.Height = m.height - 8
		return m, cmd

	case listMsg:
		m.setList(msg.bookmarks)
		return m, m.listen()

	case closedMsg:
		m.sub = nil
		return m, nil

	case deletedMsg:
		m.deleting = false
		switch {
		case !msg.outcome.OK():
			m.status = fmt.Sprintf("Could not remove %s: %v", msg.bookmark.Title, msg.outcome.Err)
			m.statusErr = true
		case msg.outcome.Changed:
			m.status = fmt.Sprintf("Removed %s", msg.bookmark.Title)
			m.statusErr = false
		default:
			m.status = fmt.Sprintf("%s was already removed", msg.bookmark.Title)
			m.statusErr = false
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c", "q":
			if m.confirming && msg.String() != "ctrl+c" {
				m.confirming = false
				return m, nil
			}
			return m, m.quit()

		case "tab":
			m.detailsFocused = !m.detailsFocused
			return m, nil

		case "x", "delete":
			if !m.confirming && !m.deleting {
				if _, ok := m.Focused(); ok {
					m.confirming = true
				}
			}
			return m, nil

		case "enter", "y", "Y":
			if m.confirming {
				m.confirming = false
				if b, ok := m.Focused(); ok {
					m.deleting = true
					return m, m.deleteCmd(b)
				}
			}
			return m, nil

		case "n", "N":
			m.confirming = false
			return m, nil

		case "up", "down", "pgup", "pgdown":
			if m.detailsFocused {
				switch msg.String() {
				case "up":
					m.detailsViewport.ScrollUp(1)
				case "down":
					m.detailsViewport.ScrollDown(1)
				case "pgup":
					m.detailsViewport.HalfPageUp()
				case "pgdown":
					m.detailsViewport.HalfPageDown()
				}
				return m, nil
			}
			m.status = ""
		}
	}

	if !m.confirming && !m.detailsFocused {
		treeModel, cmd := m.TuiTreeModel.Update(msg)
		m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[store.Bookmark])
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder
	header := fmt.Sprintf("%s Bookmarks (%d)", m.theme.Icon("bookmark"), m.count)
	b.WriteString(m.theme.HeaderStyle().Width(m.width).Render(header))
	b.WriteByte('\n')

	if m.confirming {
		if bm, ok := m.Focused(); ok {
			b.WriteString(m.renderConfirmation(bm))
			return b.String()
		}
	}

	leftWidth := int(float64(m.width) * m.splitRatio)
	content := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderList(leftWidth, m.height-4),
		m.renderDetails(m.width-leftWidth, m.height-4),
	)
	b.WriteString(content)
	b.WriteByte('\n')
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m *Model) renderList(width, height int) string {
	colors := m.theme.Colors()
	panel := components.SizedPanel(m.theme, width, height, colors.Primary)
	title := lipgloss.NewStyle().Bold(true).Foreground(colors.Primary).Render("Saved")

	body := m.TuiTreeModel.View()
	switch {
	case !m.loaded:
		body = m.theme.MutedStyle().Render("Loading...")
	case m.count == 0:
		body = m.theme.MutedStyle().Italic(true).Render("No bookmarks yet. Save one from search with ctrl+b.")
	}
	return panel.Render(title + "\n" + body)
}

func (m *Model) renderDetails(width, height int) string {
	colors := m.theme.Colors()
	border := colors.Secondary
	if m.detailsFocused {
		border = colors.Accent
	}
	panel := components.SizedPanel(m.theme, width, height, border)
	title := lipgloss.NewStyle().Bold(true).Foreground(colors.Secondary).Render("Details")

	if bm, ok := m.Focused(); ok {
		m.detailsViewport.SetContent(m.formatBookmark(bm))
	} else {
		m.detailsViewport.SetContent("")
	}
	return panel.Render(title + "\n\n" + m.detailsViewport.View())
}

func (m *Model) formatBookmark(b store.Bookmark) string {
	colors := m.theme.Colors()
	label := lipgloss.NewStyle().Bold(true).Foreground(colors.Accent)
	value := lipgloss.NewStyle().Foreground(colors.Primary)

	var s strings.Builder
	row := func(name, v string) {
		if v == "" {
			return
		}
		s.WriteString(label.Render(name+": ") + value.Render(v) + "\n")
	}
	row("Title", b.Title)
	row("Year", b.Year)
	row("Type", string(b.Type))
	row("ID", b.ID)
	row("Catalog", b.Catalog)
	if !b.CreatedAt.IsZero() {
		row("Saved", b.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if provider.HasPoster(b.Poster) {
		row("Poster", b.Poster)
	} else {
		s.WriteString(m.theme.MutedStyle().Render(m.theme.Icon("noposter") + " No poster"))
	}
	return s.String()
}

func (m *Model) renderStatus() string {
	if m.status != "" {
		if m.statusErr {
			return m.theme.ErrorStyle().Render(m.status)
		}
		return m.theme.MutedStyle().Render(m.status)
	}
	help := "↑↓ Navigate | Tab: Details | x: Remove | Esc/q: Quit"
	return lipgloss.NewStyle().Italic(true).Width(m.width).Align(lipgloss.Center).
		Foreground(m.theme.Colors().Muted).Render(help)
}

func (m *Model) renderConfirmation(b store.Bookmark) string {
	colors := m.theme.Colors()
	box := m.theme.PanelStyle().
		BorderForeground(colors.Accent).
		Padding(1, 2).
		Width(56).
		Align(lipgloss.Center)

	text := fmt.Sprintf("Remove bookmark?\n\n%s\n\nPress ENTER or 'y' to remove, 'n' to cancel", components.BookmarkLabel(b))
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(box.Render(text))
}
