package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/omdb"
	"github.com/Digital-Shane/show-manager/internal/provider"
)

const (
	providerName = "omdb"

	// pageSize is fixed by the OMDb search endpoint.
	pageSize = 10

	// maxPage is the last page OMDb will serve for a search.
	maxPage = 100

	defaultTimeout = 10 * time.Second
)

// Provider implements the provider.Catalog interface for OMDb.
type Provider struct {
	client      *omdb.Client
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	timeout     time.Duration
	rateLimiter *provider.RateLimiter
	config      map[string]interface{}
}

// New creates a new OMDb catalog instance.
func New() *Provider {
	return &Provider{
		baseURL:     omdb.DefaultURL,
		timeout:     defaultTimeout,
		rateLimiter: provider.NewRateLimiter(20, time.Second),
		config:      make(map[string]interface{}),
	}
}

// WithHTTPClient overrides the HTTP client used for requests.
func (p *Provider) WithHTTPClient(client *http.Client) *Provider {
	p.httpClient = client
	return p
}

// WithBaseURL points the catalog at a different endpoint, such as a
// caching proxy in front of OMDb.
func (p *Provider) WithBaseURL(base string) *Provider {
	if base != "" {
		p.baseURL = base
	}
	return p
}

// Name returns the catalog name.
func (p *Provider) Name() string {
	return providerName
}

// Description returns a human readable description of the catalog.
func (p *Provider) Description() string {
	return "Open Movie Database (OMDb) title search"
}

// Capabilities returns what this catalog can handle.
func (p *Provider) Capabilities() provider.CatalogCapabilities {
	return provider.CatalogCapabilities{
		MediaTypes: []provider.MediaType{
			provider.MediaTypeMovie,
			provider.MediaTypeSeries,
			provider.MediaTypeEpisode,
		},
		RequiresAuth: true,
		PageSize:     pageSize,
		Priority:     90,
	}
}

// ConfigSchema returns the configuration schema for this catalog.
func (p *Provider) ConfigSchema() provider.ConfigSchema {
	return provider.ConfigSchema{
		Fields: []provider.ConfigField{
			{
				Name:        "api_key",
				DisplayName: "API Key",
				Type:        provider.ConfigFieldTypePassword,
				Required:    true,
				Description: "OMDb API key. Request one from https://www.omdbapi.com/apikey.aspx",
				Sensitive:   true,
			},
			{
				Name:        "timeout_seconds",
				DisplayName: "Timeout",
				Type:        provider.ConfigFieldTypeInt,
				Default:     int(defaultTimeout / time.Second),
				Description: "HTTP timeout in seconds",
			},
			{
				Name:        "base_url",
				DisplayName: "Endpoint",
				Type:        provider.ConfigFieldTypeString,
				Default:     omdb.DefaultURL,
				Description: "Alternate OMDb endpoint, e.g. a local mirror",
			},
		},
	}
}

// Configure applies configuration to the catalog.
func (p *Provider) Configure(config map[string]interface{}) error {
	apiKeyRaw, ok := config["api_key"].(string)
	if !ok {
		return fmt.Errorf("api_key is required")
	}

	apiKey := strings.TrimSpace(apiKeyRaw)
	if apiKey == "" {
		return fmt.Errorf("api_key is required")
	}

	switch v := config["timeout_seconds"].(type) {
	case int:
		if v > 0 {
			p.timeout = time.Duration(v) * time.Second
		}
	case float64:
		if v > 0 {
			p.timeout = time.Duration(v * float64(time.Second))
		}
	}

	if base, ok := config["base_url"].(string); ok {
		p.WithBaseURL(strings.TrimSpace(base))
	}

	// Allow overriding the HTTP client before configuration (useful for tests).
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: p.timeout}
	}

	httpClient, err := p.endpointClient()
	if err != nil {
		return err
	}

	p.apiKey = apiKey
	p.config = config
	p.client = omdb.NewClient(p.apiKey, httpClient)

	return nil
}

// endpointClient returns the HTTP client handed to the OMDb client. The
// library always targets omdb.DefaultURL, so a custom endpoint is applied
// by rewriting requests in the transport.
func (p *Provider) endpointClient() (*http.Client, error) {
	if p.baseURL == "" || p.baseURL == omdb.DefaultURL {
		return p.httpClient, nil
	}

	target, err := url.Parse(p.baseURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid base_url %q", p.baseURL)
	}

	next := p.httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	client := *p.httpClient
	client.Transport = &endpointTransport{target: target, next: next}
	return &client, nil
}

// endpointTransport sends every request to target, keeping the query.
type endpointTransport struct {
	target *url.URL
	next   http.RoundTripper
}

func (t *endpointTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.URL.Path = t.target.Path
	out.Host = t.target.Host
	return t.next.RoundTrip(out)
}

// OwnsID reports whether id is an IMDb identifier.
func (p *Provider) OwnsID(id string) bool {
	return strings.HasPrefix(strings.TrimSpace(id), "tt")
}

func (p *Provider) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeUnavailable,
			Message:  fmt.Sprintf("OMDb request failed: %v", err),
			Retry:    true,
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeDecodeFailed,
			Message:  fmt.Sprintf("decoding OMDb response: %v", err),
		}
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	// The client reports non-200 replies as "http Status = <code>".
	var status int
	if _, scanErr := fmt.Sscanf(msg, "http Status = %d", &status); scanErr == nil {
		return statusError(status)
	}

	switch {
	case strings.Contains(lower, "invalid api key"), strings.Contains(lower, "no api key provided"),
		strings.Contains(lower, "missing omdb api key"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Message:  "OMDb authentication failed: " + msg,
			Retry:    false,
		}
	case strings.Contains(lower, "not found"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  msg,
			Retry:    false,
		}
	case strings.Contains(lower, "limit reached"), strings.Contains(lower, "too many requests"):
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeRateLimited,
			Message:    msg,
			Retry:      true,
			RetryAfter: 5,
		}
	case strings.Contains(lower, "too many results"), strings.Contains(lower, "incorrect imdb id"),
		strings.Contains(lower, "should be"), strings.Contains(lower, "is missing"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeInvalidRequest,
			Message:  msg,
			Retry:    false,
		}
	case strings.Contains(lower, "unable to parse"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeDecodeFailed,
			Message:  msg,
		}
	default:
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeUnknown,
			Message:  msg,
			Retry:    false,
		}
	}
}

// statusError classifies a non-200 HTTP response.
func statusError(status int) error {
	perr := &provider.ProviderError{
		Provider: providerName,
		Code:     provider.CodeUnknown,
		Message:  fmt.Sprintf("OMDb returned HTTP %d", status),
	}
	switch {
	case status == http.StatusUnauthorized:
		perr.Code = provider.CodeAuthFailed
	case status == http.StatusTooManyRequests:
		perr.Code = provider.CodeRateLimited
		perr.Retry = true
		perr.RetryAfter = 5
	case status >= 500:
		perr.Code = provider.CodeUnavailable
		perr.Retry = true
	}
	return perr
}

// parseRuntime attempts to convert runtime strings (e.g., "136 min") to integer minutes.
func parseRuntime(value string) int {
	if value == "" {
		return 0
	}
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0
	}
	minutes, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return minutes
}

// parseCount reads OMDb's stringly typed counters ("1,234", "N/A").
func parseCount(value string) int {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
