package omdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Digital-Shane/omdb"
	"github.com/Digital-Shane/show-manager/internal/provider"
)

// Search retrieves one page of titles matching the request.
func (p *Provider) Search(ctx context.Context, request provider.SearchRequest) (*provider.SearchPage, error) {
	query := strings.TrimSpace(request.Query)
	if query == "" {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeInvalidRequest,
			Message:  "search requires a title",
		}
	}
	page := provider.NormalizePage(request.Page)
	if page > maxPage {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeInvalidRequest,
			Message:  fmt.Sprintf("OMDb serves at most %d pages", maxPage),
		}
	}

	if err := p.ready(ctx); err != nil {
		return nil, err
	}

	resp, err := p.client.SearchByText(omdb.QueryData{
		Title:      query,
		SearchType: string(request.MediaType),
		Year:       request.Year,
		Page:       strconv.Itoa(page),
	})
	if err != nil {
		return nil, p.mapError(err)
	}

	total := parseCount(resp.TotalResults)
	result := &provider.SearchPage{
		Query:        query,
		Page:         page,
		Results:      make([]provider.ShowSummary, 0, len(resp.Search)),
		TotalResults: total,
		TotalPages:   provider.TotalPages(total, pageSize),
		Source:       providerName,
	}
	for _, item := range resp.Search {
		result.Results = append(result.Results, provider.ShowSummary{
			ID:     item.ImdbID,
			Title:  item.Title,
			Year:   item.Year,
			Poster: item.Poster,
			Type:   provider.MediaType(item.Type),
		})
	}

	return result, nil
}

// Details retrieves the full record for an IMDb identifier.
func (p *Provider) Details(ctx context.Context, id string) (*provider.ShowDetails, error) {
	id = strings.TrimSpace(id)
	if !p.OwnsID(id) {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeInvalidRequest,
			Message:  fmt.Sprintf("%q is not an IMDb ID", id),
		}
	}

	if err := p.ready(ctx); err != nil {
		return nil, err
	}

	result, err := p.client.SearchByImdbID(omdb.QueryData{ImdbID: id})
	if err != nil {
		return nil, p.mapError(err)
	}

	switch r := result.(type) {
	case omdb.MovieResult:
		return movieToDetails(r), nil
	case omdb.SeriesResult:
		return seriesToDetails(r), nil
	case omdb.EpisodeResult:
		return episodeToDetails(r), nil
	default:
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  fmt.Sprintf("%s is not a movie, series or episode", id),
		}
	}
}

// ready waits for the rate limiter once the catalog is configured.
func (p *Provider) ready(ctx context.Context) error {
	if p.client == nil || p.apiKey == "" {
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Message:  "OMDb catalog not configured",
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.rateLimiter.Wait(ctx)
}

// record holds the fields OMDb movie, series and episode results share.
type record struct {
	ImdbID, Title, Year, Rated, Released, Runtime, Genre      string
	Director, Writer, Actors, Plot, Language, Country, Awards string
	Poster, ImdbRating, ImdbVotes                             string
}

func movieToDetails(m omdb.MovieResult) *provider.ShowDetails {
	return record{
		ImdbID: m.ImdbID, Title: m.Title, Year: m.Year, Rated: m.Rated,
		Released: m.Released, Runtime: m.Runtime, Genre: m.Genre,
		Director: m.Director, Writer: m.Writer, Actors: m.Actors, Plot: m.Plot,
		Language: m.Language, Country: m.Country, Awards: m.Awards,
		Poster: m.Poster, ImdbRating: m.ImdbRating, ImdbVotes: m.ImdbVotes,
	}.details(provider.MediaTypeMovie)
}

func seriesToDetails(s omdb.SeriesResult) *provider.ShowDetails {
	d := record{
		ImdbID: s.ImdbID, Title: s.Title, Year: s.Year, Rated: s.Rated,
		Released: s.Released, Runtime: s.Runtime, Genre: s.Genre,
		Director: s.Director, Writer: s.Writer, Actors: s.Actors, Plot: s.Plot,
		Language: s.Language, Country: s.Country, Awards: s.Awards,
		Poster: s.Poster, ImdbRating: s.ImdbRating, ImdbVotes: s.ImdbVotes,
	}.details(provider.MediaTypeSeries)
	d.TotalSeasons = parseCount(s.TotalSeasons)
	return d
}

func episodeToDetails(e omdb.EpisodeResult) *provider.ShowDetails {
	return record{
		ImdbID: e.ImdbID, Title: e.Title, Year: e.Year, Rated: e.Rated,
		Released: e.Released, Runtime: e.Runtime, Genre: e.Genre,
		Director: e.Director, Writer: e.Writer, Actors: e.Actors, Plot: e.Plot,
		Language: e.Language, Country: e.Country, Awards: e.Awards,
		Poster: e.Poster, ImdbRating: e.ImdbRating, ImdbVotes: e.ImdbVotes,
	}.details(provider.MediaTypeEpisode)
}

func (r record) details(kind provider.MediaType) *provider.ShowDetails {
	return &provider.ShowDetails{
		ID:       r.ImdbID,
		Title:    r.Title,
		Year:     omdb.FirstYear(r.Year),
		Rated:    notAvailable(r.Rated),
		Released: notAvailable(r.Released),
		Runtime:  parseRuntime(r.Runtime),
		Genres:   splitList(r.Genre),
		Director: notAvailable(r.Director),
		Writer:   notAvailable(r.Writer),
		Actors:   splitList(r.Actors),
		Plot:     notAvailable(r.Plot),
		Language: notAvailable(r.Language),
		Country:  notAvailable(r.Country),
		Awards:   notAvailable(r.Awards),
		Poster:   r.Poster,
		Rating:   omdb.ParseRating(r.ImdbRating),
		Votes:    notAvailable(r.ImdbVotes),
		Type:     kind,
		Source:   providerName,
	}
}

func splitList(value string) []string {
	if notAvailable(value) == "" {
		return nil
	}
	return omdb.SplitAndTrim(value)
}

// notAvailable blanks OMDb's "N/A" placeholder.
func notAvailable(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}
