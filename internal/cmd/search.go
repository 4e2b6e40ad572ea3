package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/repository"

	"github.com/spf13/cobra"
)

var (
	searchPage int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search <title>",
	Short: "Search the catalog by title",
	Long: `Search the configured catalog for shows and movies matching a title.

Results are printed one per line with their id, which can be passed to
"details" or "bookmark add".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCommand,
}

var detailsJSON bool

var detailsCmd = &cobra.Command{
	Use:   "details <id>",
	Short: "Show the full record for a show id",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetailsCommand,
}

func runSearchCommand(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, setupOptions{repository: true})
	if err != nil {
		return err
	}
	defer e.Close()

	query := strings.Join(args, " ")
	res := e.repo.Search(cmd.Context(), query, searchPage)
	out := cmd.OutOrStdout()

	switch {
	case res.OK():
		if searchJSON {
			return writeJSON(out, res.Value)
		}
		printSearchPage(out, res.Value)
		return nil
	case res.Status == repository.StatusNotFound:
		if searchJSON {
			return writeJSON(out, provider.SearchPage{Query: query, Page: provider.NormalizePage(searchPage), Results: []provider.ShowSummary{}})
		}
		fmt.Fprintf(out, "No results for %q\n", query)
		return nil
	default:
		return resultError("search", res.Status, res.Err)
	}
}

func printSearchPage(w io.Writer, page *provider.SearchPage) {
	for _, show := range page.Results {
		year := show.Year
		if year == "" {
			year = "----"
		}
		fmt.Fprintf(w, "%-12s %-9s %-6s %s\n", show.ID, show.Type, year, show.Title)
	}
	fmt.Fprintf(w, "\nPage %d of %d (%d results)\n", page.Page, page.TotalPages, page.TotalResults)
	if page.HasNext() {
		fmt.Fprintf(w, "Next page: --page %d\n", page.Page+1)
	}
}

func runDetailsCommand(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, setupOptions{repository: true})
	if err != nil {
		return err
	}
	defer e.Close()

	res := e.repo.Details(cmd.Context(), args[0])
	if !res.OK() {
		return resultError("details", res.Status, res.Err)
	}

	out := cmd.OutOrStdout()
	if detailsJSON {
		return writeJSON(out, res.Value)
	}
	printDetails(out, res.Value)
	return nil
}

func printDetails(w io.Writer, d *provider.ShowDetails) {
	fmt.Fprintf(w, "%s (%s)\n", d.Title, d.Year)
	field := func(name, value string) {
		if value != "" && value != "N/A" {
			fmt.Fprintf(w, "  %-10s %s\n", name+":", value)
		}
	}
	field("ID", d.ID)
	field("Type", string(d.Type))
	if d.Rating > 0 {
		field("Rating", fmt.Sprintf("%.1f", d.Rating))
	}
	field("Rated", d.Rated)
	field("Released", d.Released)
	if d.Runtime > 0 {
		field("Runtime", fmt.Sprintf("%d min", d.Runtime))
	}
	if d.TotalSeasons > 0 {
		field("Seasons", fmt.Sprintf("%d", d.TotalSeasons))
	}
	field("Genre", strings.Join(d.Genres, ", "))
	field("Director", d.Director)
	field("Writer", d.Writer)
	field("Cast", strings.Join(d.Actors, ", "))
	field("Networks", strings.Join(d.Networks, ", "))
	field("Language", d.Language)
	field("Country", d.Country)
	field("Awards", d.Awards)
	field("Poster", d.Poster)
	field("Source", d.Source)
	if d.Plot != "" && d.Plot != "N/A" {
		fmt.Fprintf(w, "\n%s\n", d.Plot)
	}
}

func init() {
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "Result page to fetch")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print the page as JSON")
	detailsCmd.Flags().BoolVar(&detailsJSON, "json", false, "Print the record as JSON")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(detailsCmd)
}
