package tmdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/ryanbradynd05/go-tmdb"
)

// tvResult is the element type of tmdb.TvSearchResults.Results
type tvResult = struct {
	BackdropPath  string `json:"backdrop_path"`
	ID            int
	OriginalName  string   `json:"original_name"`
	FirstAirDate  string   `json:"first_air_date"`
	OriginCountry []string `json:"origin_country"`
	PosterPath    string   `json:"poster_path"`
	Popularity    float32
	Name          string
	VoteAverage   float32 `json:"vote_average"`
	VoteCount     uint32  `json:"vote_count"`
}

// Search retrieves one page of TV shows matching the request
func (p *Provider) Search(ctx context.Context, request provider.SearchRequest) (*provider.SearchPage, error) {
	if p.client == nil {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Message:  "TMDB catalog not configured",
		}
	}

	query := strings.TrimSpace(request.Query)
	if query == "" {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeInvalidRequest,
			Message:  "search requires a title",
		}
	}
	page := provider.NormalizePage(request.Page)

	options := map[string]string{
		"language": p.language,
		"page":     strconv.Itoa(page),
	}
	if request.Year != "" {
		options["first_air_date_year"] = request.Year
	}

	// Apply rate limiting
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	results, err := p.client.SearchTv(query, options)
	if err != nil {
		return nil, p.mapError(err)
	}

	out := &provider.SearchPage{
		Query:   query,
		Page:    page,
		Results: []provider.ShowSummary{},
		Source:  providerName,
	}
	if results == nil {
		return out, nil
	}

	for i := range results.Results {
		out.Results = append(out.Results, tvResultToSummary(&results.Results[i]))
	}
	out.TotalResults = results.TotalResults
	out.TotalPages = results.TotalPages
	if out.TotalPages == 0 {
		out.TotalPages = provider.TotalPages(out.TotalResults, pageSize)
	}

	return out, nil
}

// Details retrieves the full record for a tmdb:<id> identifier
func (p *Provider) Details(ctx context.Context, id string) (*provider.ShowDetails, error) {
	if p.client == nil {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Message:  "TMDB catalog not configured",
		}
	}

	showID, ok := parseID(id)
	if !ok {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeInvalidRequest,
			Message:  fmt.Sprintf("%q is not a TMDB ID", id),
		}
	}

	// Apply rate limiting
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	show, err := p.client.GetTvInfo(showID, map[string]string{"language": p.language})
	if err != nil {
		return nil, p.mapError(err)
	}
	if show == nil {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  fmt.Sprintf("no show found for %s", id),
		}
	}

	return tvToDetails(show), nil
}

func tvResultToSummary(show *tvResult) provider.ShowSummary {
	return provider.ShowSummary{
		ID:     formatID(show.ID),
		Title:  show.Name,
		Year:   firstYear(show.FirstAirDate),
		Poster: posterURL(show.PosterPath),
		Type:   provider.MediaTypeSeries,
	}
}

func tvToDetails(show *tmdb.TV) *provider.ShowDetails {
	genres := make([]string, 0, len(show.Genres))
	for _, g := range show.Genres {
		genres = append(genres, g.Name)
	}

	networks := make([]string, 0, len(show.Networks))
	for _, n := range show.Networks {
		networks = append(networks, n.Name)
	}

	runtime := 0
	if len(show.EpisodeRunTime) > 0 {
		runtime = show.EpisodeRunTime[0]
	}

	details := &provider.ShowDetails{
		ID:           formatID(show.ID),
		Title:        show.Name,
		Year:         firstYear(show.FirstAirDate),
		Released:     show.FirstAirDate,
		Runtime:      runtime,
		Genres:       genres,
		Networks:     networks,
		Plot:         show.Overview,
		Poster:       posterURL(show.PosterPath),
		Rating:       show.VoteAverage,
		Type:         provider.MediaTypeSeries,
		TotalSeasons: show.NumberOfSeasons,
		Source:       providerName,
	}
	if show.VoteCount > 0 {
		details.Votes = strconv.FormatUint(uint64(show.VoteCount), 10)
	}
	if len(show.OriginCountry) > 0 {
		details.Country = strings.Join(show.OriginCountry, ", ")
	}
	if len(show.Languages) > 0 {
		details.Language = strings.Join(show.Languages, ", ")
	}

	return details
}
