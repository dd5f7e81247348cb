// Package api pkg/api/types.go

package api

import "github.com/mfreeman451/eightlocal/pkg/models"

// Settings is the bridge-side (not device-side) control state: the sync
// flags that fan one user action out to both sides, and the defaults used
// when an alarm trigger omits fields. It never leaves this process.
type Settings struct {
	SyncMode         bool   `json:"sync_mode"`
	InstantAlarmSync bool   `json:"instant_alarm_sync"`
	AlarmIntensity   int    `json:"alarm_intensity"`
	AlarmPattern     string `json:"alarm_pattern"`
	AlarmDuration    int    `json:"alarm_duration"`
}

// DefaultSettings mirrors the defaults a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		AlarmIntensity: 80,
		AlarmPattern:   "rise",
		AlarmDuration:  60,
	}
}

type statusResponse struct {
	models.Status
	Available bool `json:"available"`
}

type healthResponse struct {
	models.Health
	Available bool `json:"available"`
}

type temperatureRequest struct {
	TemperatureF int `json:"temperatureF"`
	Duration     int `json:"duration,omitempty"`
}

type powerRequest struct {
	On       bool `json:"on"`
	Duration int  `json:"duration,omitempty"`
}

// alarmTriggerRequest fields are pointers so an omitted field falls back
// to the bridge settings while an explicit zero is validated as given.
type alarmTriggerRequest struct {
	Intensity *int    `json:"intensity,omitempty"`
	Pattern   *string `json:"pattern,omitempty"`
	Duration  *int    `json:"duration,omitempty"`
}

type ledRequest struct {
	Brightness *int `json:"brightness"`
}

type commandResponse struct {
	OK bool `json:"ok"`
}
