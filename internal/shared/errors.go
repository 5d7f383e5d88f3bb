package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrValidation       = fmt.Errorf("validation error")
	ErrAuthRejected     = fmt.Errorf("credentials rejected")
	ErrNetworkFailure   = fmt.Errorf("network failure")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// ErrStale marks a response that answered a superseded query. It never leaves the search package.
	ErrStale = fmt.Errorf("stale response")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
