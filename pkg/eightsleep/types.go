// Package eightsleep pkg/eightsleep/types.go
package eightsleep

import (
	"strings"
	"time"
)

// Side identifies one of the two independently controlled bed halves.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Valid reports whether s names a real bed side.
func (s Side) Valid() bool {
	return s == SideLeft || s == SideRight
}

// SideStatus is the per-side portion of a device status response.
// Missing fields unmarshal to zero values.
type SideStatus struct {
	CurrentTemperatureF int  `json:"currentTemperatureF"`
	TargetTemperatureF  int  `json:"targetTemperatureF"`
	SecondsRemaining    int  `json:"secondsRemaining"`
	IsAlarmVibrating    bool `json:"isAlarmVibrating"`
	IsOn                bool `json:"isOn"`
}

// Snapshot is one parsed response from the device status endpoint.
// The water level is string-typed ("true"/"false") on the wire; an empty
// string means the device never reported it.
type Snapshot struct {
	Left        SideStatus             `json:"left"`
	Right       SideStatus             `json:"right"`
	WaterLevel  string                 `json:"waterLevel"`
	IsPriming   bool                   `json:"isPriming"`
	Settings    map[string]interface{} `json:"settings"`
	SensorLabel string                 `json:"sensorLabel"`
}

// Side returns the status for the named side, or a zero status for an
// unknown side.
func (s Snapshot) Side(side Side) SideStatus {
	switch side {
	case SideLeft:
		return s.Left
	case SideRight:
		return s.Right
	default:
		return SideStatus{}
	}
}

// WaterLevelOK reports whether the device considers its water level good.
func (s Snapshot) WaterLevelOK() bool {
	return strings.EqualFold(s.WaterLevel, "true")
}

// SidePresence is the per-side presence report.
type SidePresence struct {
	Present     bool      `json:"present"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Presence holds both sides' presence reports.
type Presence struct {
	Left  SidePresence `json:"left"`
	Right SidePresence `json:"right"`
}

// SleepRecord describes one completed sleep session for a side.
type SleepRecord struct {
	Side               Side      `json:"side"`
	EnteredBedAt       time.Time `json:"entered_bed_at"`
	LeftBedAt          time.Time `json:"left_bed_at"`
	SleepPeriodSeconds int       `json:"sleep_period_seconds"`
	TimesExitedBed     int       `json:"times_exited_bed"`
}

// VitalRecord is one raw vitals sample.
type VitalRecord struct {
	Side          Side      `json:"side"`
	Timestamp     time.Time `json:"timestamp"`
	HeartRate     float64   `json:"heartRate"`
	HRV           float64   `json:"hrv"`
	BreathingRate float64   `json:"breathingRate"`
}

// VitalsSummary is the device-aggregated vitals for a side and time window.
type VitalsSummary struct {
	AvgHeartRate     float64 `json:"avgHeartRate"`
	MinHeartRate     float64 `json:"minHeartRate"`
	MaxHeartRate     float64 `json:"maxHeartRate"`
	AvgHRV           float64 `json:"avgHRV"`
	AvgBreathingRate float64 `json:"avgBreathingRate"`
}

// MovementRecord is one movement sample.
type MovementRecord struct {
	Side      Side      `json:"side"`
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
}

// AlarmSchedule maps day names (monday..sunday) to that day's alarm
// settings as accepted by the schedules endpoint.
type AlarmSchedule map[string]map[string]interface{}

// MetricsFilter narrows a metrics query. Zero-valued fields are omitted
// from the query string entirely.
type MetricsFilter struct {
	Side      Side
	StartTime time.Time
	EndTime   time.Time
}

// query renders the filter as a query string ("" when empty). Parameters
// keep a fixed side, startTime, endTime order.
func (f MetricsFilter) query() string {
	params := make([]string, 0, 3)

	if f.Side != "" {
		params = append(params, "side="+string(f.Side))
	}

	if !f.StartTime.IsZero() {
		params = append(params, "startTime="+f.StartTime.Format(time.RFC3339))
	}

	if !f.EndTime.IsZero() {
		params = append(params, "endTime="+f.EndTime.Format(time.RFC3339))
	}

	if len(params) == 0 {
		return ""
	}

	return "?" + strings.Join(params, "&")
}
