package coordinator

import "errors"

var (
	ErrHealthIntervalTooShort = errors.New("health poll interval must be at least one minute")
)
