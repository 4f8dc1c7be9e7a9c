package model

import "github.com/m-mizutani/goerr/v2"

// Recoverable error conditions. Batch callers skip the offending input and
// continue with the rest.
var (
	// ErrInvalidInput is returned for an empty document identifier or filename
	ErrInvalidInput = goerr.New("invalid input")

	// ErrInvalidQuery is returned for a malformed boolean search expression
	ErrInvalidQuery = goerr.New("invalid query")

	// ErrMalformedGraph is returned when an edge references an unknown node
	ErrMalformedGraph = goerr.New("malformed graph")

	// ErrInvalidCatalog is returned when a tag catalog fails validation
	ErrInvalidCatalog = goerr.New("invalid catalog")

	// ErrIndexSealed is returned when inserting into an index after the build phase
	ErrIndexSealed = goerr.New("index is sealed")
)

// InputError pairs a rejected batch input with the reason it was rejected
type InputError struct {
	Input string `json:"input"`
	Error string `json:"error"`
}
