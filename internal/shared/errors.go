package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrNotAuthorized    = fmt.Errorf("not authorized")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrNoStoredToken    = fmt.Errorf("no stored token")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrAPIStatus          = fmt.Errorf("API returned an error status")
	ErrDecodeResponse     = fmt.Errorf("failed to decode API response")
	ErrRequestCanceled    = fmt.Errorf("request canceled")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrMediaNotFound      = fmt.Errorf("media not found")
	ErrUserNotFound       = fmt.Errorf("user not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
