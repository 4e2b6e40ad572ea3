package tmdb

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/ryanbradynd05/go-tmdb"
)

const (
	providerName = "tmdb"
	idPrefix     = "tmdb:"

	// posterBaseURL turns a TMDB poster_path into a displayable URL.
	posterBaseURL = "https://image.tmdb.org/t/p/w342"

	pageSize = 20
)

// Provider implements the provider.Catalog interface for TMDB TV search
type Provider struct {
	client      TMDBClient
	language    string
	apiKey      string
	rateLimiter *provider.RateLimiter
	config      map[string]interface{}
}

// TMDBClient interface for testing (subset of *tmdb.TMDb)
type TMDBClient interface {
	SearchTv(name string, options map[string]string) (*tmdb.TvSearchResults, error)
	GetTvInfo(id int, options map[string]string) (*tmdb.TV, error)
}

// New creates a new TMDB catalog instance
func New() *Provider {
	return &Provider{
		language:    "en-US",
		rateLimiter: provider.NewRateLimiter(38, 10*time.Second), // 38 requests per 10 seconds
		config:      make(map[string]interface{}),
	}
}

// WithClient swaps the TMDB client, used by tests
func (p *Provider) WithClient(client TMDBClient) *Provider {
	p.client = client
	return p
}

// Name returns the catalog name
func (p *Provider) Name() string {
	return providerName
}

// Description returns the catalog description
func (p *Provider) Description() string {
	return "The Movie Database (TMDB) TV search"
}

// Capabilities returns what this catalog can do
func (p *Provider) Capabilities() provider.CatalogCapabilities {
	return provider.CatalogCapabilities{
		MediaTypes:   []provider.MediaType{provider.MediaTypeSeries},
		RequiresAuth: true,
		PageSize:     pageSize,
		Priority:     80,
	}
}

// ConfigSchema returns the configuration schema for this catalog
func (p *Provider) ConfigSchema() provider.ConfigSchema {
	return provider.ConfigSchema{
		Fields: []provider.ConfigField{
			{
				Name:        "api_key",
				DisplayName: "API Key",
				Type:        provider.ConfigFieldTypePassword,
				Required:    true,
				Description: "TMDB API key (not the Read Access Token). Get it from themoviedb.org/settings/api",
				Sensitive:   true,
			},
			{
				Name:        "language",
				DisplayName: "Language",
				Type:        provider.ConfigFieldTypeString,
				Required:    false,
				Default:     "en-US",
				Description: "Preferred language for show data",
			},
		},
	}
}

// Configure applies configuration to the catalog
func (p *Provider) Configure(config map[string]interface{}) error {
	apiKey, ok := config["api_key"].(string)
	if !ok || strings.TrimSpace(apiKey) == "" {
		return fmt.Errorf("api_key is required")
	}
	p.apiKey = strings.TrimSpace(apiKey)
	p.config = config

	if language, ok := config["language"].(string); ok && language != "" {
		p.language = language
	} else {
		p.language = "en-US"
	}

	// Keep an injected client
	if p.client == nil {
		p.client = tmdb.Init(tmdb.Config{
			APIKey:   p.apiKey,
			Proxies:  nil,
			UseProxy: false,
		})
	}

	return nil
}

// OwnsID reports whether id was issued by this catalog
func (p *Provider) OwnsID(id string) bool {
	_, ok := parseID(id)
	return ok
}

// formatID renders a numeric TMDB id as an external identifier
func formatID(id int) string {
	return idPrefix + strconv.Itoa(id)
}

func parseID(id string) (int, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(id), idPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func posterURL(path string) string {
	if path == "" {
		return ""
	}
	return posterBaseURL + path
}

func firstYear(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

// mapError maps TMDB errors to catalog errors
func (p *Provider) mapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "invalid api key") {
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Message:  "TMDB authentication failed: " + err.Error(),
			Retry:    false,
		}
	}
	if strings.Contains(errStr, "404") || strings.Contains(errStr, "could not be found") {
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  "TMDB resource not found",
			Retry:    false,
		}
	}
	if strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") {
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeRateLimited,
			Message:    "TMDB rate limit exceeded",
			Retry:      true,
			RetryAfter: 10,
		}
	}
	if strings.Contains(errStr, "503") || strings.Contains(errStr, "unavailable") {
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeUnavailable,
			Message:    "TMDB service unavailable",
			Retry:      true,
			RetryAfter: 30,
		}
	}

	return &provider.ProviderError{
		Provider: providerName,
		Code:     provider.CodeUnknown,
		Message:  "TMDB error: " + err.Error(),
		Retry:    false,
	}
}
