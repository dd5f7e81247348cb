package eightsleep

import "errors"

var (
	// ErrNotStarted signals a request issued before Start; this is a
	// programming error, not a transient condition.
	ErrNotStarted = errors.New("client not started")

	// ErrDeviceUnavailable covers every transport-level failure: timeout,
	// refused connection, unexpected status. Reported by value so callers
	// can treat "device unreachable" uniformly.
	ErrDeviceUnavailable = errors.New("device unavailable")

	errMalformedResponse = errors.New("malformed device response")
)
