package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrUpstream indicates the Moodle API or a file download answered with a failure
	ErrUpstream = errors.New("upstream error")

	// ErrInference indicates the classification model call failed
	ErrInference = errors.New("inference error")

	// ErrProcessing indicates retrieval or answer generation failed
	ErrProcessing = errors.New("processing error")

	// ErrConfiguration indicates required configuration is missing or malformed
	ErrConfiguration = errors.New("configuration error")

	// ErrNoData indicates the Moodle site returned no course records at all
	ErrNoData = errors.New("no data")

	// ErrIndexNotReady indicates no vector index handle has been loaded yet
	ErrIndexNotReady = errors.New("index not ready")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")
)
