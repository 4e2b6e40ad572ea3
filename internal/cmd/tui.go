package cmd

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/show-manager/internal/tui/bookmarks"
	"github.com/Digital-Shane/show-manager/internal/tui/search"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [title]",
	Short: "Open the interactive search screen",
	Long: `Open the interactive search screen. A title argument runs that search
right away.

Keys: enter search, ctrl+n/ctrl+p page, ctrl+d details, ctrl+b bookmark,
tab focus, esc quit.`,
	RunE: runSearchTUI,
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse and remove bookmarks interactively",
	Args:  cobra.NoArgs,
	RunE:  runBrowseTUI,
}

func runSearchTUI(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, setupOptions{tui: true, repository: true, journal: true})
	if err != nil {
		return err
	}
	defer e.Close()

	var opts []search.Option
	if query := strings.TrimSpace(strings.Join(args, " ")); query != "" {
		opts = append(opts, search.WithQuery(query))
	}
	model := search.New(e.repo, opts...)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := p.Run()

	// Quitting closes the model already; this covers a failed Run.
	model.Close()
	model.Presenter().Wait()

	if runErr != nil {
		return fmt.Errorf("failed to run search UI: %w", runErr)
	}
	return nil
}

func runBrowseTUI(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, setupOptions{tui: true, repository: true, journal: true})
	if err != nil {
		return err
	}
	defer e.Close()

	model := bookmarks.New(e.repo)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run bookmarks UI: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(browseCmd)
}
