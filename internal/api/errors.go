// API error definitions
package api

import "errors"

var (
	// ErrMissingClientID is returned when client_id is missing from context
	ErrMissingClientID = errors.New("missing client_id in context")
)
