package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Pipeline errors
	ErrSuggestionUnavailable = fmt.Errorf("similar songs unavailable")
	ErrNotFound              = fmt.Errorf("downloaded file not found")
	ErrDeviceUnavailable     = fmt.Errorf("device unavailable")
	ErrTransferFailed        = fmt.Errorf("device transfer failed")
	ErrToolFailed            = fmt.Errorf("external tool failed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRecordNotFound     = fmt.Errorf("record not found")

	// Input validation errors
	ErrValidation      = fmt.Errorf("validation error")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
