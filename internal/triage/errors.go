package triage

import "errors"

// Input validation errors for per-ticket skip decisions.
var (
	errMissingID        = errors.New("ticket id missing")
	errMissingCreatedAt = errors.New("ticket created_at missing")
)
