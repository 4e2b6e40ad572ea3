package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ValidateCapabilities checks if catalog capabilities are valid and consistent
func ValidateCapabilities(caps CatalogCapabilities) error {
	if len(caps.MediaTypes) == 0 {
		return fmt.Errorf("catalog must support at least one media type")
	}
	if caps.PageSize <= 0 {
		return fmt.Errorf("catalog must report a positive page size")
	}

	return nil
}

// NormalizePage clamps a requested page number to the 1-based range.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// TotalPages derives the page count from a result count and page size.
func TotalPages(totalResults, pageSize int) int {
	if totalResults <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalResults + pageSize - 1) / pageSize
}

// IsNotFound reports whether err is a catalog NOT_FOUND error.
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// HasCode reports whether err is a *ProviderError carrying code.
func HasCode(err error, code string) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Code == code
	}
	return false
}

// HasPoster reports whether a poster value points at an actual image.
func HasPoster(poster string) bool {
	poster = strings.TrimSpace(poster)
	return poster != "" && !strings.EqualFold(poster, "N/A")
}
