// Package api pkg/api/interfaces.go

package api

import (
	"context"

	"github.com/mfreeman451/eightlocal/pkg/eightsleep"
	"github.com/mfreeman451/eightlocal/pkg/models"
)

// DeviceController is the slice of the device client the API invokes for
// user-triggered actions.
type DeviceController interface {
	SetTemperature(ctx context.Context, side eightsleep.Side, temperatureF, secondsRemaining int) bool
	TurnOn(ctx context.Context, side eightsleep.Side, secondsRemaining int) bool
	TurnOff(ctx context.Context, side eightsleep.Side) bool
	StopAlarm(ctx context.Context, side eightsleep.Side) bool
	StartPriming(ctx context.Context) bool
	SetLEDBrightness(ctx context.Context, brightness int) bool
	TriggerAlarm(ctx context.Context, side eightsleep.Side, intensity int, pattern string, durationSeconds int) bool
	UpdateAlarmSchedule(ctx context.Context, side eightsleep.Side, schedule eightsleep.AlarmSchedule) bool
	Schedules(ctx context.Context) (map[string]interface{}, error)
	History() []eightsleep.Snapshot
}

// StatusProvider serves the cached composite status.
type StatusProvider interface {
	Status() (models.Status, bool)
	Healthy() bool
	RequestRefresh(ctx context.Context) error
	AddListener(fn func())
}

// HealthProvider serves the cached composite health result.
type HealthProvider interface {
	Health() (models.Health, bool)
	Healthy() bool
}
