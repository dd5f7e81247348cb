package config

import "errors"

var (
	errDeviceHostRequired     = errors.New("device host is required")
	errInvalidDevicePort      = errors.New("invalid device port")
	errInvalidStatusInterval  = errors.New("status interval must be positive")
	errHealthIntervalTooShort = errors.New("health interval must be at least one minute")
	errInvalidRequestTimeout  = errors.New("request timeout must be positive")
)
