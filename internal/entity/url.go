// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents the mapping between a short code
// and the original URL, along with the errors shared by the use case and adapters.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrShortCodeExists is returned when attempting to create a URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when no active URL matches the specified short code.
	ErrURLNotFound = errors.New("url not found")
	// ErrAllocationExhausted is returned when no unique short code could be allocated within the retry budget.
	ErrAllocationExhausted = errors.New("short code allocation exhausted")
	// ErrInvalidURL is returned when an empty original URL reaches the use case.
	ErrInvalidURL = errors.New("invalid url")
	// ErrStorage marks failures of the underlying store.
	ErrStorage = errors.New("storage error")
)

// URL represents a shortened URL.
type URL struct {
	ID          int64     // ID is the unique identifier of the URL in the database.
	ShortCode   string    // ShortCode is the generated code used to shorten the original URL.
	OriginalURL string    // OriginalURL is the full URL that the short code resolves to.
	IsActive    bool      // IsActive is false once the URL is retired; retired URLs never resolve.
	Clicks      int64     // Clicks is the number of times the short code has been resolved.
	CreatedAt   time.Time // CreatedAt is the timestamp when the URL was created.
}
