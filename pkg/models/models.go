// Package models holds the composite snapshot types served by the
// coordinators and rendered by the bridge API.
package models

import (
	"time"

	"github.com/mfreeman451/eightlocal/pkg/eightsleep"
)

// Status is the composite result of one status poll: the latest device
// snapshot plus the presence report. Presence degrades to its zero value
// (both sides absent) when the presence fetch fails; the device snapshot
// does not degrade — a failed status fetch fails the poll.
type Status struct {
	Device   eightsleep.Snapshot `json:"device"`
	Presence eightsleep.Presence `json:"presence"`
	Updated  time.Time           `json:"updated"`
}

// SideHealth pairs a side's most recent sleep session with the vitals
// summary for that session's window. Nil fields mean no data exists for
// the side.
type SideHealth struct {
	Sleep         *eightsleep.SleepRecord   `json:"sleep,omitempty"`
	VitalsSummary *eightsleep.VitalsSummary `json:"vitals_summary,omitempty"`
}

// Health is the composite result of one health poll.
type Health struct {
	Left    SideHealth `json:"left"`
	Right   SideHealth `json:"right"`
	Updated time.Time  `json:"updated"`
}
