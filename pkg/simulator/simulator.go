// Package simulator implements an in-memory stand-in for the pod's local
// HTTP API, for development and tests. It honors the same merge semantics
// as the device: a status POST updates only the keys it carries.
package simulator

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/mfreeman451/eightlocal/pkg/eightsleep"
)

// AlarmEvent records one alarm trigger accepted by the simulator.
type AlarmEvent struct {
	Side               string    `json:"side"`
	VibrationIntensity int       `json:"vibrationIntensity"`
	VibrationPattern   string    `json:"vibrationPattern"`
	Duration           int       `json:"duration"`
	At                 time.Time `json:"at"`
}

// Simulator holds the fake pod state behind a mux router.
type Simulator struct {
	mu sync.RWMutex

	status    map[string]interface{}
	schedules map[string]interface{}
	presence  eightsleep.Presence
	sleep     []eightsleep.SleepRecord
	vitals    []eightsleep.VitalRecord
	movement  []eightsleep.MovementRecord
	alarms    []AlarmEvent

	router *mux.Router
}

// New creates a simulator with a plausible initial device state.
func New() *Simulator {
	s := &Simulator{
		status: map[string]interface{}{
			"left": map[string]interface{}{
				"currentTemperatureF": 82,
				"targetTemperatureF":  82,
				"secondsRemaining":    0,
				"isAlarmVibrating":    false,
				"isOn":                false,
			},
			"right": map[string]interface{}{
				"currentTemperatureF": 81,
				"targetTemperatureF":  81,
				"secondsRemaining":    0,
				"isAlarmVibrating":    false,
				"isOn":                false,
			},
			"waterLevel": "true",
			"isPriming":  false,
			"settings": map[string]interface{}{
				"ledBrightness": 100,
			},
			"sensorLabel": "sim-00000-0000",
		},
		schedules: map[string]interface{}{
			"left":  map[string]interface{}{},
			"right": map[string]interface{}{},
		},
		router: mux.NewRouter(),
	}

	s.setupRoutes()

	return s
}

func (s *Simulator) setupRoutes() {
	s.router.HandleFunc("/api/deviceStatus", s.getDeviceStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/api/deviceStatus", s.postDeviceStatus).Methods(http.MethodPost)
	s.router.HandleFunc("/api/alarm", s.postAlarm).Methods(http.MethodPost)
	s.router.HandleFunc("/api/schedules", s.getSchedules).Methods(http.MethodGet)
	s.router.HandleFunc("/api/schedules", s.postSchedules).Methods(http.MethodPost)
	s.router.HandleFunc("/api/presence", s.getPresence).Methods(http.MethodGet)
	s.router.HandleFunc("/api/metrics/vitals", s.getVitals).Methods(http.MethodGet)
	s.router.HandleFunc("/api/metrics/vitals/summary", s.getVitalsSummary).Methods(http.MethodGet)
	s.router.HandleFunc("/api/metrics/sleep", s.getSleep).Methods(http.MethodGet)
	s.router.HandleFunc("/api/metrics/movement", s.getMovement).Methods(http.MethodGet)
}

// Router returns the simulator's HTTP handler.
func (s *Simulator) Router() http.Handler {
	return s.router
}

// SetPresence seeds the presence report.
func (s *Simulator) SetPresence(p eightsleep.Presence) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.presence = p
}

// SetSleepRecords seeds the sleep sessions served by the metrics endpoint.
func (s *Simulator) SetSleepRecords(records []eightsleep.SleepRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sleep = records
}

// SetVitals seeds the raw vitals samples.
func (s *Simulator) SetVitals(records []eightsleep.VitalRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vitals = records
}

// SetMovement seeds the movement samples.
func (s *Simulator) SetMovement(records []eightsleep.MovementRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.movement = records
}

// Alarms returns the alarm triggers accepted so far.
func (s *Simulator) Alarms() []AlarmEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]AlarmEvent, len(s.alarms))
	copy(out, s.alarms)

	return out
}

func (s *Simulator) getDeviceStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, s.status)
}

func (s *Simulator) postDeviceStatus(w http.ResponseWriter, r *http.Request) {
	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	for key, value := range patch {
		nested, isMap := value.(map[string]interface{})
		existing, hasMap := s.status[key].(map[string]interface{})

		if isMap && hasMap {
			for k, v := range nested {
				existing[k] = v
			}
		} else {
			s.status[key] = value
		}
	}
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Simulator) postAlarm(w http.ResponseWriter, r *http.Request) {
	var event AlarmEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	event.At = time.Now()

	s.mu.Lock()
	s.alarms = append(s.alarms, event)

	if side, ok := s.status[event.Side].(map[string]interface{}); ok {
		side["isAlarmVibrating"] = true
	}
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Simulator) getSchedules(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, s.schedules)
}

func (s *Simulator) postSchedules(w http.ResponseWriter, r *http.Request) {
	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	for side, days := range patch {
		s.schedules[side] = days
	}
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Simulator) getPresence(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, s.presence)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Simulator failed to encode response: %v", err)
	}
}
