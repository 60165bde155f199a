package api

import "errors"

// Error codes returned in the "code" field of error bodies.
const (
	codeBadRequest       = "bad_request"
	codeValidation       = "validation_error"
	codeNotFound         = "not_found"
	codeUnsupportedMedia = "unsupported_media_type"
	codeMethodNotAllowed = "method_not_allowed"
	codeInternal         = "internal_error"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrUnsupportedMedia = errors.New("unsupported content type; use application/json or text/plain")

	errRouteNotFound    = errors.New("route not found")
	errMethodNotAllowed = errors.New("method not allowed")
	errInternal         = errors.New("internal error")
)
