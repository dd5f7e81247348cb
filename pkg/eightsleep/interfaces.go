// Package eightsleep pkg/eightsleep/interfaces.go

package eightsleep

import (
	"context"
	"encoding/json"
)

//go:generate mockgen -destination=mock_transport.go -package=eightsleep github.com/mfreeman451/eightlocal/pkg/eightsleep Transport

// Transport issues requests against the pod's local HTTP API.
type Transport interface {
	// Start prepares the transport for use
	Start() error
	// Stop releases the transport's resources
	Stop() error
	// Do performs one request. A 204 yields (nil, nil), a 200 yields the
	// raw body; every transport fault yields ErrDeviceUnavailable.
	Do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error)
}
