package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnknownProfile is returned when a business type has no scoring profile
	ErrUnknownProfile = errors.New("unknown business type")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRecsAPIFailure is returned when a request to the scoring API cannot be completed
	ErrRecsAPIFailure = errors.New("scoring API request failed")

	// ErrMalformedResponse is returned when the scoring API answers with something that is not the expected JSON
	ErrMalformedResponse = errors.New("malformed scoring API response")

	// ErrElementNotFound is returned when a dashboard render target is missing from the page
	ErrElementNotFound = errors.New("element not found")

	// ErrMissingFields is returned when registration lacks email, password or name
	ErrMissingFields = errors.New("email, password, name are required")

	// ErrEmailTaken is returned when registering an email that already has an account
	ErrEmailTaken = errors.New("Email already registered")

	// ErrInvalidCredentials is returned on a failed login
	ErrInvalidCredentials = errors.New("Invalid credentials")

	// ErrUserNotFound is returned when a user id does not resolve
	ErrUserNotFound = errors.New("User not found")

	// ErrUnauthorized is returned when a request carries no valid access token
	ErrUnauthorized = errors.New("missing or invalid access token")
)
