// Package api pkg/api/handlers.go

package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mfreeman451/eightlocal/pkg/eightsleep"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// sideFromRequest resolves the {side} path variable.
func sideFromRequest(r *http.Request) (eightsleep.Side, bool) {
	side := eightsleep.Side(mux.Vars(r)["side"])
	return side, side.Valid()
}

// targetSides expands one side to both when the relevant sync flag is set.
func (s *Server) targetSides(side eightsleep.Side, sync bool) []eightsleep.Side {
	if sync {
		return []eightsleep.Side{eightsleep.SideLeft, eightsleep.SideRight}
	}

	return []eightsleep.Side{side}
}

// requestRefresh keeps the cached status current after a control action.
// The refresh runs on a context detached from the request: a client that
// disconnects right after its command must not cancel the poll and have
// the cancellation recorded as a device failure.
func (s *Server) requestRefresh(r *http.Request) {
	if err := s.status.RequestRefresh(context.WithoutCancel(r.Context())); err != nil {
		log.Printf("Post-command refresh failed: %v", err)
	}
}

// finishCommand translates a control outcome to a response: false covers
// both device rejection and unreachability, so it maps to 502.
func (s *Server) finishCommand(w http.ResponseWriter, r *http.Request, ok bool) {
	if !ok {
		writeJSON(w, http.StatusBadGateway, commandResponse{OK: false})
		return
	}

	s.requestRefresh(r)
	writeJSON(w, http.StatusOK, commandResponse{OK: true})
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	status, ok := s.status.Status()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no successful poll yet")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: status, Available: s.status.Healthy()})
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	health, ok := s.health.Health()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no successful poll yet")
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{Health: health, Available: s.health.Healthy()})
}

func (s *Server) getHistory(w http.ResponseWriter, _ *http.Request) {
	history := s.device.History()
	if history == nil {
		// An empty history is a JSON array, not null.
		history = []eightsleep.Snapshot{}
	}

	writeJSON(w, http.StatusOK, history)
}

func (s *Server) getSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.device.Schedules(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to fetch schedules")
		return
	}

	writeJSON(w, http.StatusOK, schedules)
}

func (s *Server) getSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.CurrentSettings())
}

func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	var settings Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "malformed settings")
		return
	}

	if settings.AlarmIntensity < 1 || settings.AlarmIntensity > 100 {
		writeError(w, http.StatusBadRequest, "alarm intensity out of range (1-100)")
		return
	}

	if settings.AlarmPattern != "rise" && settings.AlarmPattern != "double" {
		writeError(w, http.StatusBadRequest, "alarm pattern must be rise or double")
		return
	}

	if settings.AlarmDuration < 0 || settings.AlarmDuration > 180 {
		writeError(w, http.StatusBadRequest, "alarm duration out of range (0-180)")
		return
	}

	s.settingsMu.Lock()
	s.settings = settings
	s.settingsMu.Unlock()

	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) postTemperature(w http.ResponseWriter, r *http.Request) {
	side, valid := sideFromRequest(r)
	if !valid {
		writeError(w, http.StatusBadRequest, "unknown side")
		return
	}

	var req temperatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	ok := true
	for _, target := range s.targetSides(side, s.CurrentSettings().SyncMode) {
		ok = s.device.SetTemperature(r.Context(), target, req.TemperatureF, req.Duration) && ok
	}

	s.finishCommand(w, r, ok)
}

func (s *Server) postPower(w http.ResponseWriter, r *http.Request) {
	side, valid := sideFromRequest(r)
	if !valid {
		writeError(w, http.StatusBadRequest, "unknown side")
		return
	}

	var req powerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	ok := true

	for _, target := range s.targetSides(side, s.CurrentSettings().SyncMode) {
		if req.On {
			ok = s.device.TurnOn(r.Context(), target, req.Duration) && ok
		} else {
			ok = s.device.TurnOff(r.Context(), target) && ok
		}
	}

	s.finishCommand(w, r, ok)
}

func (s *Server) postAlarmStop(w http.ResponseWriter, r *http.Request) {
	side, valid := sideFromRequest(r)
	if !valid {
		writeError(w, http.StatusBadRequest, "unknown side")
		return
	}

	ok := true
	for _, target := range s.targetSides(side, s.CurrentSettings().SyncMode) {
		ok = s.device.StopAlarm(r.Context(), target) && ok
	}

	s.finishCommand(w, r, ok)
}

func (s *Server) postAlarmTrigger(w http.ResponseWriter, r *http.Request) {
	side, valid := sideFromRequest(r)
	if !valid {
		writeError(w, http.StatusBadRequest, "unknown side")
		return
	}

	req := alarmTriggerRequest{}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}

	settings := s.CurrentSettings()

	intensity := settings.AlarmIntensity
	if req.Intensity != nil {
		intensity = *req.Intensity
	}

	pattern := settings.AlarmPattern
	if req.Pattern != nil {
		pattern = *req.Pattern
	}

	duration := settings.AlarmDuration
	if req.Duration != nil {
		duration = *req.Duration
	}

	ok := true
	for _, target := range s.targetSides(side, settings.InstantAlarmSync) {
		ok = s.device.TriggerAlarm(r.Context(), target, intensity, pattern, duration) && ok
	}

	s.finishCommand(w, r, ok)
}

func (s *Server) putSchedule(w http.ResponseWriter, r *http.Request) {
	side, valid := sideFromRequest(r)
	if !valid {
		writeError(w, http.StatusBadRequest, "unknown side")
		return
	}

	var schedule eightsleep.AlarmSchedule
	if err := json.NewDecoder(r.Body).Decode(&schedule); err != nil {
		writeError(w, http.StatusBadRequest, "malformed schedule")
		return
	}

	s.finishCommand(w, r, s.device.UpdateAlarmSchedule(r.Context(), side, schedule))
}

func (s *Server) postPrime(w http.ResponseWriter, r *http.Request) {
	s.finishCommand(w, r, s.device.StartPriming(r.Context()))
}

func (s *Server) postLED(w http.ResponseWriter, r *http.Request) {
	var req ledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Brightness == nil {
		writeError(w, http.StatusBadRequest, "brightness is required")
		return
	}

	s.finishCommand(w, r, s.device.SetLEDBrightness(r.Context(), *req.Brightness))
}
