package undo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Digital-Shane/show-manager/internal/log"
	"github.com/Digital-Shane/show-manager/internal/tui/components"
	"github.com/Digital-Shane/show-manager/internal/tui/theme"
	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	undoSessionFn   = log.UndoSession
	removeSessionFn = log.RemoveSession
)

// UndoCompleteMsg is emitted when undo operation completes.
type UndoCompleteMsg struct{ successCount, errorCount int }

func (u UndoCompleteMsg) SuccessCount() int { return u.successCount }

func (u UndoCompleteMsg) ErrorCount() int { return u.errorCount }

// UndoModel lists journal sessions and reverses the selected one
type UndoModel struct {
	*treeview.TuiTreeModel[log.SessionSummary]
	writer         log.BookmarkWriter
	confirmingUndo bool
	undoInProgress bool
	undoComplete   bool
	undoSuccess    int
	undoFailed     int
	width          int
	height         int
	splitRatio     float64
	theme          theme.Theme

	// Session details scrolling
	detailsViewport *viewport.Model
	detailsFocused  bool
}

// Option configures an UndoModel during construction.
type Option func(*UndoModel)

// WithTheme overrides the default theme for the undo TUI.
func WithTheme(th theme.Theme) Option {
	return func(m *UndoModel) {
		m.theme = th
	}
}

func (m *UndoModel) colors() theme.Colors {
	return m.theme.Colors()
}

// NewUndoModel creates the session picker. Undone bookmarks are written
// through writer.
func NewUndoModel(tree *treeview.Tree[log.SessionSummary], writer log.BookmarkWriter, opts ...Option) *UndoModel {
	m := &UndoModel{
		writer:     writer,
		width:      80,
		height:     24,
		splitRatio: 0.5, // 50/50 split by default
	}

	initOpts := append([]Option{WithTheme(theme.Default())}, opts...)
	for _, opt := range initOpts {
		opt(m)
	}

	keyMap := treeview.DefaultKeyMap()
	keyMap.SearchStart = []string{} // Disable search
	keyMap.Reset = []string{}       // Disable reset

	// Use half width for the tree view initially
	treeWidth := int(float64(m.width)*m.splitRatio) - 2
	m.TuiTreeModel = treeview.NewTuiTreeModel(tree,
		treeview.WithTuiWidth[log.SessionSummary](treeWidth),
		treeview.WithTuiHeight[log.SessionSummary](m.height-4),
		treeview.WithTuiAllowResize[log.SessionSummary](true),
		treeview.WithTuiDisableNavBar[log.SessionSummary](true),
		treeview.WithTuiKeyMap[log.SessionSummary](keyMap),
	)

	// Initialize details viewport
	rightWidth := m.width - treeWidth
	viewportHeight := m.height - 4 - 4 // header, borders and instructions
	m.detailsViewport = components.NewViewport(rightWidth-6, viewportHeight, m.theme)

	return m
}

// SessionNodes builds tree nodes for the session picker, newest first.
func SessionNodes(summaries []log.SessionSummary) []*treeview.Node[log.SessionSummary] {
	nodes := make([]*treeview.Node[log.SessionSummary], 0, len(summaries))
	for _, s := range summaries {
		label := fmt.Sprintf("%s %s (%s)", s.Icon, strings.Join(s.Session.Metadata.CommandArgs, " "), s.RelativeTime)
		nodes = append(nodes, treeview.NewNode("session-"+s.Session.Metadata.SessionID, label, s))
	}
	return nodes
}

func (m *UndoModel) Init() tea.Cmd {
	return nil
}

func (m *UndoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Update the tree width to account for split
		treeWidth := int(float64(m.width)*m.splitRatio) - 2
		resizeMsg := tea.WindowSizeMsg{
			Width:  treeWidth,
			Height: m.height - 4,
		}
		treeModel, cmd := m.TuiTreeModel.Update(resizeMsg)
		m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[log.SessionSummary])

		// Update details viewport dimensions
		rightWidth := m.width - treeWidth
		m.detailsViewport.Width = rightWidth - 6 // border and padding
		m.detailsViewport.Height = m.height - 4 - 4

		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit

		case "tab":
			// Toggle between session list and details panel focus
			m.detailsFocused = !m.detailsFocused
			return m, nil

		case "up":
			if m.detailsFocused {
				// Scroll details panel up
				m.detailsViewport.ScrollUp(1)
				return m, nil
			}

		case "down":
			if m.detailsFocused {
				// Scroll details panel down
				m.detailsViewport.ScrollDown(1)
				return m, nil
			}

		case "pgup":
			if m.detailsFocused {
				// Page up in details panel
				m.detailsViewport.HalfPageUp()
				return m, nil
			}

		case "pgdown":
			if m.detailsFocused {
				// Page down in details panel
				m.detailsViewport.HalfPageDown()
				return m, nil
			}

		case "enter", "y", "Y":
			if m.confirmingUndo {
				focusedNode := m.TuiTreeModel.Tree.GetFocusedNode()
				if focusedNode != nil {
					// Execute the undo
					m.undoInProgress = true
					m.confirmingUndo = false
					return m, m.performUndo(*focusedNode.Data())
				}
			} else if msg.String() == "enter" && !m.undoInProgress && !m.undoComplete {
				// Ask for confirmation on the selected session
				m.confirmingUndo = true
			}
			return m, nil

		case "n", "N":
			if m.confirmingUndo {
				m.confirmingUndo = false
			}
			return m, nil
		}

	case tea.MouseMsg:
		// Handle mouse wheel scrolling
		switch {
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelUp:
			if m.detailsFocused {
				m.detailsViewport.ScrollUp(1)
				return m, nil
			}
			// A focused tree takes the wheel in the default handler below
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelDown:
			if m.detailsFocused {
				m.detailsViewport.ScrollDown(1)
				return m, nil
			}
		}

	case UndoCompleteMsg:
		m.undoInProgress = false
		m.undoComplete = true
		m.undoSuccess = msg.successCount
		m.undoFailed = msg.errorCount
		return m, nil
	}

	// Pass other messages to the tree model if not in special states and tree is focused
	if !m.confirmingUndo && !m.undoInProgress && !m.detailsFocused {
		treeModel, cmd := m.TuiTreeModel.Update(msg)
		m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[log.SessionSummary])
		return m, cmd
	}

	return m, nil
}

func (m *UndoModel) View() string {
	var b strings.Builder

	// Header
	header := m.theme.HeaderStyle().Width(m.width).Render("Show Manager Undo")
	b.WriteString(header)
	b.WriteByte('\n')

	switch {
	case m.undoComplete:
		// Show undo results
		resultText := fmt.Sprintf("Undo completed: %d bookmark changes reversed", m.undoSuccess)
		if m.undoFailed > 0 {
			resultText = fmt.Sprintf("Undo completed: %d success, %d failed", m.undoSuccess, m.undoFailed)
		}
		b.WriteString(m.theme.StatusBarStyle().Width(m.width).Render(resultText))
		b.WriteByte('\n')

		status := lipgloss.NewStyle().
			Width(m.width).
			Align(lipgloss.Center).
			Foreground(m.colors().Muted).
			Render("Press 'Ctrl+C' or 'esc' to exit")
		b.WriteString(status)

	case m.undoInProgress:
		// Show undo in progress
		b.WriteString(m.theme.StatusBarStyle().Width(m.width).Render("Undoing bookmark changes..."))
		b.WriteByte('\n')

	case m.confirmingUndo:
		// Show confirmation dialog
		if focusedNode := m.TuiTreeModel.Tree.GetFocusedNode(); focusedNode != nil {
			b.WriteString(m.renderConfirmation(*focusedNode.Data()))
		}

	default:
		// Show session list with sidebar
		b.WriteString(m.renderMainView())
	}

	return b.String()
}

// renderMainView renders the split view with session list and preview
func (m *UndoModel) renderMainView() string {
	// Calculate widths
	leftWidth := int(float64(m.width) * m.splitRatio)
	rightWidth := m.width - leftWidth

	leftPanel := m.renderSessionList(leftWidth, m.height-3)
	rightPanel := m.renderSessionPreview(rightWidth, m.height-3)
	// Combine panels side by side
	content := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)

	// Add instructions at the bottom
	focusInfo := "Tab: Details Focus | "
	if m.detailsFocused {
		focusInfo = "Tab: List Focus | "
	}

	instruction := lipgloss.NewStyle().
		Italic(true).
		Width(m.width).
		Align(lipgloss.Center).
		Foreground(m.colors().Muted).
		Render(focusInfo + "↑↓ Navigate | PgUp/PgDn: Page | Enter: Undo | Esc/Ctrl+C: Quit")

	return content + "\n" + instruction
}

// renderSessionList renders the left panel with the session tree
func (m *UndoModel) renderSessionList(width, height int) string {
	colors := m.colors()
	border := components.SizedPanel(m.theme, width, height, colors.Primary)
	titleWidth := width - 4
	if titleWidth < 0 {
		titleWidth = width
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Primary).
		Width(titleWidth).
		Align(lipgloss.Center).
		Render("Sessions")

	return border.Render(title + "\n" + m.TuiTreeModel.View())
}

// renderSessionPreview refreshes the details viewport from the focused
// session before drawing it.
func (m *UndoModel) renderSessionPreview(width, height int) string {
	colors := m.colors()
	if focusedNode := m.TuiTreeModel.Tree.GetFocusedNode(); focusedNode != nil {
		m.detailsViewport.SetContent(m.formatSessionDetails(*focusedNode.Data(), m.detailsViewport.Width))
	} else {
		m.detailsViewport.SetContent(lipgloss.NewStyle().
			Italic(true).
			Foreground(colors.Muted).
			Render("Select a session to view details"))
	}

	border := components.SizedPanel(m.theme, width, height, colors.Secondary)
	titleWidth := width - 4
	if titleWidth < 0 {
		titleWidth = width
	}
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Secondary).
		Width(titleWidth).
		Align(lipgloss.Center)

	// Create title with scroll indicator
	scrollIndicator := ""
	if m.detailsViewport.TotalLineCount() > m.detailsViewport.Height {
		if m.detailsFocused {
			scrollIndicator = " [Use Tab+↑↓]"
		} else {
			scrollIndicator = " [Tab to scroll]"
		}
	}

	full := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Session Details"+scrollIndicator),
		"", // Empty line separator
		m.detailsViewport.View(),
	)
	return border.Render(full)
}

// formatSessionDetails formats detailed information about a session
func (m *UndoModel) formatSessionDetails(summary log.SessionSummary, width int) string {
	var b strings.Builder
	session := summary.Session
	colors := m.colors()

	// Style for labels
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(colors.Accent)
	valueStyle := lipgloss.NewStyle().Foreground(colors.Primary)
	indent := lipgloss.NewStyle().MarginLeft(2)

	b.WriteString(labelStyle.Render("Command: "))
	b.WriteString(valueStyle.Render(strings.Join(session.Metadata.CommandArgs, " ")))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Time: "))
	b.WriteString(valueStyle.Render(summary.RelativeTime))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Date: "))
	b.WriteString(valueStyle.Render(session.Metadata.Timestamp.Format("2006-01-02 15:04:05")))
	b.WriteString("\n\n")

	// Operation statistics
	b.WriteString(labelStyle.Render("Operations:"))
	b.WriteString("\n")
	stats := fmt.Sprintf("Total: %d\nSuccessful: %d\nFailed: %d",
		session.Metadata.TotalOps,
		session.Metadata.SuccessfulOps,
		session.Metadata.FailedOps)
	b.WriteString(indent.Render(valueStyle.Render(stats)))
	b.WriteString("\n\n")

	if len(session.Operations) > 0 {
		b.WriteString(labelStyle.Render("Recent Operations:"))
		b.WriteString("\n")

		// Show up to 5 recent operations
		start := 0
		if len(session.Operations) > 5 {
			start = len(session.Operations) - 5
		}
		for _, op := range session.Operations[start:] {
			line := fmt.Sprintf("%s %s", m.operationIcon(op), formatOperation(op, width-6))
			b.WriteString(indent.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Session ID: "))
	b.WriteString(lipgloss.NewStyle().
		Foreground(colors.Muted).
		Italic(true).
		Render(session.Metadata.SessionID))

	return b.String()
}

// operationIcon returns an icon for the operation type
func (m *UndoModel) operationIcon(op log.OperationLog) string {
	if !op.Success {
		return m.theme.Icon("error")
	}
	switch op.Type {
	case log.OpBookmarkAdd:
		return m.theme.Icon("bookmark")
	case log.OpBookmarkRemove:
		return m.theme.Icon("delete")
	default:
		return m.theme.Icon("unknown")
	}
}

// formatOperation formats a single operation for display
func formatOperation(op log.OperationLog, maxWidth int) string {
	name := op.Bookmark.Title
	if name == "" {
		name = op.Bookmark.ID
	}

	var text string
	switch op.Type {
	case log.OpBookmarkAdd:
		text = "Added: " + name
	case log.OpBookmarkRemove:
		text = "Removed: " + name
	default:
		text = string(op.Type)
	}

	// Truncate if too long
	if maxWidth > 3 && len(text) > maxWidth {
		text = text[:maxWidth-3] + "..."
	}
	if !op.Success && op.Error != "" {
		text += " (failed)"
	}
	return text
}

// renderConfirmation renders the confirmation dialog
func (m *UndoModel) renderConfirmation(summary log.SessionSummary) string {
	session := summary.Session
	colors := m.colors()
	confirmStyle := m.theme.PanelStyle().
		BorderForeground(colors.Accent).
		Padding(1, 2).
		Width(60).
		Align(lipgloss.Center).
		Background(colors.Background)

	command := "unknown"
	if len(session.Metadata.CommandArgs) > 0 {
		command = session.Metadata.CommandArgs[0]
	}

	confirmText := fmt.Sprintf(
		"Confirm Undo\n\n"+
			"Session: %s\n"+
			"Time: %s\n"+
			"Operations: %d (Success: %d, Failed: %d)\n\n"+
			"Added bookmarks are removed and removed bookmarks are restored.\n\n"+
			"Press ENTER or 'y' to confirm, 'n' to cancel",
		command,
		summary.RelativeTime,
		session.Metadata.TotalOps,
		session.Metadata.SuccessfulOps,
		session.Metadata.FailedOps)

	// Center the confirmation box
	center := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-2).
		Align(lipgloss.Center, lipgloss.Center)

	return center.Render(confirmStyle.Render(confirmText))
}

// performUndo reverses the session and drops its journal file when every
// operation was reversed.
func (m *UndoModel) performUndo(summary log.SessionSummary) tea.Cmd {
	writer := m.writer
	return func() tea.Msg {
		successful, failed, _ := undoSessionFn(context.Background(), writer, summary.Session)
		if failed == 0 && summary.FilePath != "" {
			if err := removeSessionFn(summary.FilePath); err != nil {
				failed++
			}
		}
		return UndoCompleteMsg{successCount: successful, errorCount: failed}
	}
}
