package models

import "errors"

// Common errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrOriginUnavailable is returned by the origin client for transport
	// failures and non-2xx responses. It is absorbed at the orchestrator
	// boundary as "no data", never surfaced to HTTP clients.
	ErrOriginUnavailable = errors.New("content origin unavailable")

	// ErrValidation is the class wrapped by checkout validation failures
	ErrValidation = errors.New("validation failed")
)
