// Package api implements the bridge's HTTP surface: cached status and
// health reads, device control posts and a websocket status stream.
package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
)

// Server renders the coordinators' cached snapshots and forwards control
// actions to the device client.
type Server struct {
	device DeviceController
	status StatusProvider
	health HealthProvider

	router   *mux.Router
	handler  http.Handler
	upgrader websocket.Upgrader

	settingsMu sync.RWMutex
	settings   Settings

	connsMu sync.Mutex
	conns   map[*websocket.Conn]struct{}
}

// NewServer wires the API over a device controller and the two
// coordinators. The server subscribes itself to status updates so
// websocket clients see every refresh.
func NewServer(device DeviceController, status StatusProvider, health HealthProvider) *Server {
	s := &Server{
		device:   device,
		status:   status,
		health:   health,
		router:   mux.NewRouter(),
		settings: DefaultSettings(),
		conns:    make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			// The bridge serves a trusted LAN; cross-origin reads are
			// already allowed on the REST side.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	s.setupRoutes()
	s.handler = cors.AllowAll().Handler(s.router)

	if status != nil {
		status.AddListener(s.broadcastStatus)
	}

	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/status", s.getStatus).Methods(http.MethodGet)
	api.HandleFunc("/health", s.getHealth).Methods(http.MethodGet)
	api.HandleFunc("/history", s.getHistory).Methods(http.MethodGet)
	api.HandleFunc("/schedules", s.getSchedules).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.getSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.putSettings).Methods(http.MethodPut)

	api.HandleFunc("/sides/{side}/temperature", s.postTemperature).Methods(http.MethodPost)
	api.HandleFunc("/sides/{side}/power", s.postPower).Methods(http.MethodPost)
	api.HandleFunc("/sides/{side}/alarm/stop", s.postAlarmStop).Methods(http.MethodPost)
	api.HandleFunc("/sides/{side}/alarm/trigger", s.postAlarmTrigger).Methods(http.MethodPost)
	api.HandleFunc("/sides/{side}/schedule", s.putSchedule).Methods(http.MethodPut)

	api.HandleFunc("/prime", s.postPrime).Methods(http.MethodPost)
	api.HandleFunc("/led", s.postLED).Methods(http.MethodPost)

	s.router.HandleFunc("/api/ws", s.handleWS)
}

// Handler returns the CORS-wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// CurrentSettings returns a copy of the bridge settings.
func (s *Server) CurrentSettings() Settings {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()

	return s.settings
}
