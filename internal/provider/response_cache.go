package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ResponseCache provides byte-level access to cached catalog responses.
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// GenerateCacheKey creates a unique key for caching catalog responses.
func GenerateCacheKey(kind, catalog, query string, page int) string {
	query = strings.ToLower(strings.TrimSpace(query))
	switch kind {
	case "search":
		return fmt.Sprintf("search:%s:%s:%d", catalog, query, NormalizePage(page))
	case "details":
		return fmt.Sprintf("details:%s", query)
	default:
		return ""
	}
}

// SearchWithCache serves a search from cache when possible and stores fresh
// results. Errors are never cached.
func SearchWithCache(ctx context.Context, catalog Catalog, request SearchRequest, cache ResponseCache) (*SearchPage, bool, error) {
	if catalog == nil {
		return nil, false, fmt.Errorf("no catalog configured")
	}
	request.Page = NormalizePage(request.Page)
	key := GenerateCacheKey("search", catalog.Name(), request.Query, request.Page)

	if page, ok := getCached[SearchPage](cache, key); ok {
		// Keys ignore case; the page reports the query as this caller typed it.
		page.Query = strings.TrimSpace(request.Query)
		return page, true, nil
	}

	page, err := catalog.Search(ctx, request)
	if err != nil {
		return nil, false, err
	}
	setCached(cache, key, page)
	return page, false, nil
}

// DetailsWithCache serves a detail lookup from cache when possible and
// stores fresh results. Errors are never cached.
func DetailsWithCache(ctx context.Context, catalog Catalog, id string, cache ResponseCache) (*ShowDetails, bool, error) {
	if catalog == nil {
		return nil, false, fmt.Errorf("no catalog configured")
	}
	key := GenerateCacheKey("details", catalog.Name(), id, 0)

	if details, ok := getCached[ShowDetails](cache, key); ok {
		return details, true, nil
	}

	details, err := catalog.Details(ctx, id)
	if err != nil {
		return nil, false, err
	}
	setCached(cache, key, details)
	return details, false, nil
}

func getCached[T any](cache ResponseCache, key string) (*T, bool) {
	if cache == nil || key == "" {
		return nil, false
	}
	data, ok := cache.Get(key)
	if !ok {
		return nil, false
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false
	}
	return &value, true
}

func setCached(cache ResponseCache, key string, value any) {
	if cache == nil || key == "" || value == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	cache.Set(key, data)
}
