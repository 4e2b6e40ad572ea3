package search

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// formatDetails renders details for the details viewport, wrapped to width.
func formatDetails(d provider.ShowDetails, th theme.Theme, width int) string {
	colors := th.Colors()
	if width < 10 {
		width = 10
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(colors.Primary).Width(width)
	label := lipgloss.NewStyle().Foreground(colors.Secondary).Bold(true)
	body := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	heading := d.Title
	if d.Year != "" {
		heading = fmt.Sprintf("%s (%s)", d.Title, d.Year)
	}
	b.WriteString(title.Render(heading))
	b.WriteByte('\n')

	field := func(icon, name, value string) {
		if value == "" || value == "N/A" {
			return
		}
		line := label.Render(name+":") + " " + value
		if icon != "" {
			line = th.Icon(icon) + " " + line
		}
		b.WriteString(body.Render(line))
		b.WriteByte('\n')
	}

	if d.Rating > 0 {
		rating := fmt.Sprintf("%.1f/10", d.Rating)
		if d.Votes != "" {
			rating += " (" + d.Votes + " votes)"
		}
		field("star", "Rating", rating)
	}
	field("calendar", "Released", d.Released)
	if d.Runtime > 0 {
		field("", "Runtime", fmt.Sprintf("%d min", d.Runtime))
	}
	if d.TotalSeasons > 0 {
		field("", "Seasons", fmt.Sprintf("%d", d.TotalSeasons))
	}
	field("", "Rated", d.Rated)
	field("", "Genre", strings.Join(d.Genres, ", "))
	field("", "Director", d.Director)
	field("", "Writer", d.Writer)
	field("", "Cast", strings.Join(d.Actors, ", "))
	field("", "Networks", strings.Join(d.Networks, ", "))
	field("globe", "Language", d.Language)
	field("", "Country", d.Country)
	field("", "Awards", d.Awards)

	if d.Plot != "" && d.Plot != "N/A" {
		b.WriteByte('\n')
		b.WriteString(body.Render(d.Plot))
		b.WriteByte('\n')
	}

	poster := th.Icon("noposter") + " No poster"
	if provider.HasPoster(d.Poster) {
		poster = th.Icon("poster") + " " + d.Poster
	}
	b.WriteByte('\n')
	b.WriteString(th.MutedStyle().Width(width).Render(poster))

	return b.String()
}
