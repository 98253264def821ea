package utils

import "errors"

// Common application errors used across services.
var (
	ErrCatalogNotLoaded    = errors.New("CATALOG_NOT_LOADED")
	ErrSourceUnavailable   = errors.New("SOURCE_UNAVAILABLE")
	ErrSessionNotFound     = errors.New("SESSION_NOT_FOUND")
	ErrInvalidAvailability = errors.New("INVALID_AVAILABILITY")
	ErrInvalidSortKey      = errors.New("INVALID_SORT_KEY")
	ErrInvalidPriceRange   = errors.New("INVALID_PRICE_RANGE")
	ErrInvalidPage         = errors.New("INVALID_PAGE")
	ErrInvalidToken        = errors.New("INVALID_TOKEN")
)
