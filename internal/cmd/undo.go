package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Digital-Shane/show-manager/internal/log"
	"github.com/Digital-Shane/show-manager/internal/store"
	"github.com/Digital-Shane/show-manager/internal/tui/undo"

	"github.com/Digital-Shane/treeview"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var undoLatest bool

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo recent bookmark changes",
	Long: `Display recent bookmark sessions and allow selective undo.

Undoing a session removes the bookmarks it added and restores the ones it
removed. With --latest the most recent session is undone without prompting.`,
	Args: cobra.NoArgs,
	RunE: runUndoCommand,
}

func runUndoCommand(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, setupOptions{tui: !undoLatest})
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := store.Open(store.Options{
		Path:             e.cfg.DatabasePath,
		DestructiveReset: e.cfg.DestructiveReset,
		Logger:           &e.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open bookmark store: %w", err)
	}
	defer st.Close()

	if undoLatest {
		return undoLatestSession(cmd, st)
	}

	summaries, err := log.GetSessionSummaries()
	if err != nil {
		return fmt.Errorf("failed to read journal sessions: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No bookmark sessions found to undo.")
		return nil
	}

	tree := treeview.NewTree(undo.SessionNodes(summaries))
	model := undo.NewUndoModel(tree, st)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func undoLatestSession(cmd *cobra.Command, w log.BookmarkWriter) error {
	session, path, err := log.FindLatestSession()
	if errors.Is(err, log.ErrNoSessions) {
		fmt.Fprintln(cmd.OutOrStdout(), "No bookmark sessions found to undo.")
		return nil
	}
	if err != nil {
		return err
	}

	successful, failed, errs := log.UndoSession(cmd.Context(), w, session)
	fmt.Fprintf(cmd.OutOrStdout(), "Undid %q: %d reversed, %d failed\n",
		strings.Join(session.Metadata.CommandArgs, " "), successful, failed)

	if failed > 0 {
		for _, err := range errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", err)
		}
		return fmt.Errorf("%d operations could not be undone", failed)
	}
	return log.RemoveSession(path)
}

func init() {
	undoCmd.Flags().BoolVar(&undoLatest, "latest", false, "Undo the most recent session without prompting")
	rootCmd.AddCommand(undoCmd)
}
