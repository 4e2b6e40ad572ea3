package provider

import (
	"context"
)

// MediaType represents the type of catalog entry
type MediaType string

const (
	MediaTypeMovie   MediaType = "movie"
	MediaTypeSeries  MediaType = "series"
	MediaTypeEpisode MediaType = "episode"
	MediaTypeGame    MediaType = "game"
)

// Catalog is the interface every remote show catalog must implement
type Catalog interface {
	// Identification
	Name() string
	Description() string

	// Capability discovery
	Capabilities() CatalogCapabilities

	// Configuration
	Configure(config map[string]interface{}) error
	ConfigSchema() ConfigSchema

	// OwnsID reports whether an external identifier was issued by this catalog
	OwnsID(id string) bool

	// Data fetching
	Search(ctx context.Context, request SearchRequest) (*SearchPage, error)
	Details(ctx context.Context, id string) (*ShowDetails, error)
}

// CatalogCapabilities describes what a catalog can do
type CatalogCapabilities struct {
	MediaTypes   []MediaType // What media types can be searched
	RequiresAuth bool        // Whether an API key is required
	PageSize     int         // Results per search page
	Priority     int         // Default priority for this catalog (higher = preferred)
}

// ConfigSchema describes the configuration requirements for a catalog
type ConfigSchema struct {
	Fields []ConfigField
}

// ConfigField describes a single configuration field
type ConfigField struct {
	Name        string          // Field name
	DisplayName string          // Human-readable name
	Type        ConfigFieldType // Field type
	Required    bool            // Whether this field is required
	Default     interface{}     // Default value
	Description string          // Help text
	Sensitive   bool            // Whether this contains sensitive data (for masking)
}

// ConfigFieldType represents the type of a configuration field
type ConfigFieldType string

const (
	ConfigFieldTypeString   ConfigFieldType = "string"
	ConfigFieldTypeInt      ConfigFieldType = "int"
	ConfigFieldTypePassword ConfigFieldType = "password"
)

// SearchRequest represents a paged title search
type SearchRequest struct {
	Query     string
	Page      int       // 1-based
	MediaType MediaType // Optional filter
	Year      string    // Optional filter
}

// ShowSummary is a single search result row
type ShowSummary struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Year   string    `json:"year"`
	Poster string    `json:"poster"`
	Type   MediaType `json:"type"`
}

// SearchPage is one page of search results for a query
type SearchPage struct {
	Query        string        `json:"query"`
	Page         int           `json:"page"`
	Results      []ShowSummary `json:"results"`
	TotalResults int           `json:"total_results"`
	TotalPages   int           `json:"total_pages"`
	Source       string        `json:"source"`
}

// HasNext reports whether a later page exists
func (p *SearchPage) HasNext() bool {
	return p != nil && p.Page < p.TotalPages
}

// ShowDetails holds the extended attributes of a single show
type ShowDetails struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Year         string    `json:"year"`
	Rated        string    `json:"rated,omitempty"`
	Released     string    `json:"released,omitempty"`
	Runtime      int       `json:"runtime,omitempty"` // minutes
	Genres       []string  `json:"genres,omitempty"`
	Director     string    `json:"director,omitempty"`
	Writer       string    `json:"writer,omitempty"`
	Actors       []string  `json:"actors,omitempty"`
	Plot         string    `json:"plot,omitempty"`
	Language     string    `json:"language,omitempty"`
	Country      string    `json:"country,omitempty"`
	Awards       string    `json:"awards,omitempty"`
	Networks     []string  `json:"networks,omitempty"`
	Poster       string    `json:"poster,omitempty"`
	Rating       float32   `json:"rating,omitempty"`
	Votes        string    `json:"votes,omitempty"`
	Type         MediaType `json:"type"`
	TotalSeasons int       `json:"total_seasons,omitempty"`
	Source       string    `json:"source"`
}

// Summary narrows the details down to a search-result row
func (d *ShowDetails) Summary() ShowSummary {
	return ShowSummary{
		ID:     d.ID,
		Title:  d.Title,
		Year:   d.Year,
		Poster: d.Poster,
		Type:   d.Type,
	}
}

// ProviderError represents an error from a catalog
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	Retry      bool
	RetryAfter int // Seconds to wait before retry
}

func (e *ProviderError) Error() string {
	return e.Message
}

// Error codes shared by every catalog.
const (
	CodeAuthFailed     = "AUTH_FAILED"
	CodeNotFound       = "NOT_FOUND"
	CodeRateLimited    = "RATE_LIMITED"
	CodeUnavailable    = "UNAVAILABLE"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeDecodeFailed   = "DECODE_FAILED"
	CodeUnknown        = "UNKNOWN"
)
