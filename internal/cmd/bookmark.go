package cmd

import (
	"fmt"
	"io"

	"github.com/Digital-Shane/show-manager/internal/log"
	"github.com/Digital-Shane/show-manager/internal/store"
	"github.com/Digital-Shane/show-manager/internal/tui/components"

	"github.com/spf13/cobra"
)

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Add or remove bookmarks",
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add <id>...",
	Short: "Bookmark shows by id",
	Long: `Look up each id in the catalog that issued it and save it as a bookmark.
Ids that are already bookmarked are left untouched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBookmarkAdd,
}

var bookmarkRemoveCmd = &cobra.Command{
	Use:     "remove <id>...",
	Aliases: []string{"rm"},
	Short:   "Remove bookmarks by id",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runBookmarkRemove,
}

var bookmarksJSON bool

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "List saved bookmarks",
	Args:  cobra.NoArgs,
	RunE:  runBookmarksList,
}

func runBookmarkAdd(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, setupOptions{repository: true, journal: true})
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	failed := 0
	for _, id := range args {
		res := e.repo.Details(cmd.Context(), id)
		if !res.OK() {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", id, resultError("lookup", res.Status, res.Err))
			continue
		}

		b := store.FromSummary(res.Value.Summary(), e.repo.CatalogFor(id))
		outcome := e.repo.InsertBookmark(cmd.Context(), b)
		switch {
		case !outcome.OK():
			failed++
			log.LogBookmarkAdd(b, false, outcome.Err)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", id, resultError("bookmark", outcome.Status, outcome.Err))
		case outcome.Changed:
			fmt.Fprintf(out, "Bookmarked %s\n", components.BookmarkLabel(b))
		default:
			fmt.Fprintf(out, "%s is already bookmarked\n", components.BookmarkLabel(b))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d bookmarks failed", failed, len(args))
	}
	return nil
}

func runBookmarkRemove(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, setupOptions{repository: true, journal: true})
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	failed := 0
	for _, id := range args {
		outcome := e.repo.DeleteBookmark(cmd.Context(), id)
		switch {
		case !outcome.OK():
			failed++
			log.LogBookmarkRemove(store.Bookmark{ID: id}, false, outcome.Err)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", id, resultError("remove", outcome.Status, outcome.Err))
		case outcome.Changed:
			fmt.Fprintf(out, "Removed %s\n", id)
		default:
			fmt.Fprintf(out, "%s is not bookmarked\n", id)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d removals failed", failed, len(args))
	}
	return nil
}

func runBookmarksList(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, setupOptions{repository: true})
	if err != nil {
		return err
	}
	defer e.Close()

	res := e.repo.Bookmarks(cmd.Context())
	if !res.OK() {
		return resultError("list bookmarks", res.Status, res.Err)
	}

	out := cmd.OutOrStdout()
	if bookmarksJSON {
		return writeJSON(out, *res.Value)
	}
	printBookmarks(out, *res.Value)
	return nil
}

func printBookmarks(w io.Writer, list []store.Bookmark) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No bookmarks yet.")
		return
	}
	for _, b := range list {
		fmt.Fprintf(w, "%-12s %-9s %-6s %s\n", b.ID, b.Type, b.Year, b.Title)
	}
	fmt.Fprintf(w, "\n%d bookmarks\n", len(list))
}

func init() {
	bookmarksCmd.Flags().BoolVar(&bookmarksJSON, "json", false, "Print bookmarks as JSON")

	bookmarkCmd.AddCommand(bookmarkAddCmd)
	bookmarkCmd.AddCommand(bookmarkRemoveCmd)
	rootCmd.AddCommand(bookmarkCmd)
	rootCmd.AddCommand(bookmarksCmd)
}
