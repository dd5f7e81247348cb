// Package coordinator pkg/coordinator/interfaces.go

package coordinator

import (
	"context"

	"github.com/mfreeman451/eightlocal/pkg/eightsleep"
)

//go:generate mockgen -destination=mock_coordinator.go -package=coordinator github.com/mfreeman451/eightlocal/pkg/coordinator DeviceClient

// DeviceClient is the slice of the device client the coordinators consume.
type DeviceClient interface {
	// UpdateDeviceData fetches the device status into the rolling history
	UpdateDeviceData(ctx context.Context) error
	// DeviceData returns the most recent snapshot
	DeviceData() eightsleep.Snapshot
	// Presence fetches the per-side presence report
	Presence(ctx context.Context) (eightsleep.Presence, error)
	// SleepRecords fetches completed sleep sessions
	SleepRecords(ctx context.Context, f eightsleep.MetricsFilter) ([]eightsleep.SleepRecord, error)
	// VitalsSummary fetches aggregated vitals for a side and window
	VitalsSummary(ctx context.Context, f eightsleep.MetricsFilter) (eightsleep.VitalsSummary, error)
}
