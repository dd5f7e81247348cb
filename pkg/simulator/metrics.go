// Package simulator pkg/simulator/metrics.go

package simulator

import (
	"net/http"
	"time"

	"github.com/mfreeman451/eightlocal/pkg/eightsleep"
)

// metricsFilter mirrors the query parameters the metrics endpoints accept.
type metricsFilter struct {
	side      string
	startTime time.Time
	endTime   time.Time
}

func parseFilter(r *http.Request) metricsFilter {
	q := r.URL.Query()

	f := metricsFilter{side: q.Get("side")}

	if v := q.Get("startTime"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.startTime = t
		}
	}

	if v := q.Get("endTime"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.endTime = t
		}
	}

	return f
}

func (f metricsFilter) matches(side eightsleep.Side, ts time.Time) bool {
	if f.side != "" && f.side != string(side) {
		return false
	}

	if !f.startTime.IsZero() && ts.Before(f.startTime) {
		return false
	}

	if !f.endTime.IsZero() && ts.After(f.endTime) {
		return false
	}

	return true
}

func (s *Simulator) getVitals(w http.ResponseWriter, r *http.Request) {
	f := parseFilter(r)

	s.mu.RLock()
	out := make([]eightsleep.VitalRecord, 0, len(s.vitals))

	for _, v := range s.vitals {
		if f.matches(v.Side, v.Timestamp) {
			out = append(out, v)
		}
	}
	s.mu.RUnlock()

	writeJSON(w, out)
}

func (s *Simulator) getVitalsSummary(w http.ResponseWriter, r *http.Request) {
	f := parseFilter(r)

	s.mu.RLock()
	var summary eightsleep.VitalsSummary

	var hr, hrv, br float64

	count := 0

	for _, v := range s.vitals {
		if !f.matches(v.Side, v.Timestamp) {
			continue
		}

		if count == 0 || v.HeartRate < summary.MinHeartRate {
			summary.MinHeartRate = v.HeartRate
		}

		if v.HeartRate > summary.MaxHeartRate {
			summary.MaxHeartRate = v.HeartRate
		}

		hr += v.HeartRate
		hrv += v.HRV
		br += v.BreathingRate
		count++
	}
	s.mu.RUnlock()

	if count > 0 {
		summary.AvgHeartRate = hr / float64(count)
		summary.AvgHRV = hrv / float64(count)
		summary.AvgBreathingRate = br / float64(count)
	}

	writeJSON(w, summary)
}

func (s *Simulator) getSleep(w http.ResponseWriter, r *http.Request) {
	f := parseFilter(r)

	s.mu.RLock()
	out := make([]eightsleep.SleepRecord, 0, len(s.sleep))

	for _, rec := range s.sleep {
		if f.matches(rec.Side, rec.EnteredBedAt) {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()

	writeJSON(w, out)
}

func (s *Simulator) getMovement(w http.ResponseWriter, r *http.Request) {
	f := parseFilter(r)

	s.mu.RLock()
	out := make([]eightsleep.MovementRecord, 0, len(s.movement))

	for _, rec := range s.movement {
		if f.matches(rec.Side, rec.Timestamp) {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()

	writeJSON(w, out)
}
