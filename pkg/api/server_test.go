package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/eightlocal/pkg/eightsleep"
	"github.com/mfreeman451/eightlocal/pkg/models"
)

type tempCall struct {
	Side         eightsleep.Side
	TemperatureF int
	Duration     int
}

type alarmCall struct {
	Side      eightsleep.Side
	Intensity int
	Pattern   string
	Duration  int
}

// fakeDevice records control calls and answers them all with result.
type fakeDevice struct {
	mu sync.Mutex

	result bool

	tempCalls    []tempCall
	onCalls      []eightsleep.Side
	offCalls     []eightsleep.Side
	stopCalls    []eightsleep.Side
	alarmCalls   []alarmCall
	ledCalls     []int
	primeCalls   int
	scheduleSide eightsleep.Side
	schedule     eightsleep.AlarmSchedule

	schedules map[string]interface{}
	history   []eightsleep.Snapshot
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{result: true}
}

func (f *fakeDevice) SetTemperature(_ context.Context, side eightsleep.Side, temperatureF, secondsRemaining int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tempCalls = append(f.tempCalls, tempCall{side, temperatureF, secondsRemaining})

	return f.result
}

func (f *fakeDevice) TurnOn(_ context.Context, side eightsleep.Side, _ int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.onCalls = append(f.onCalls, side)

	return f.result
}

func (f *fakeDevice) TurnOff(_ context.Context, side eightsleep.Side) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.offCalls = append(f.offCalls, side)

	return f.result
}

func (f *fakeDevice) StopAlarm(_ context.Context, side eightsleep.Side) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopCalls = append(f.stopCalls, side)

	return f.result
}

func (f *fakeDevice) StartPriming(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.primeCalls++

	return f.result
}

func (f *fakeDevice) SetLEDBrightness(_ context.Context, brightness int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ledCalls = append(f.ledCalls, brightness)

	return f.result
}

func (f *fakeDevice) TriggerAlarm(_ context.Context, side eightsleep.Side, intensity int, pattern string, durationSeconds int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.alarmCalls = append(f.alarmCalls, alarmCall{side, intensity, pattern, durationSeconds})

	return f.result
}

func (f *fakeDevice) UpdateAlarmSchedule(_ context.Context, side eightsleep.Side, schedule eightsleep.AlarmSchedule) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scheduleSide = side
	f.schedule = schedule

	return f.result
}

func (f *fakeDevice) Schedules(context.Context) (map[string]interface{}, error) {
	return f.schedules, nil
}

func (f *fakeDevice) History() []eightsleep.Snapshot {
	return f.history
}

type fakeStatus struct {
	mu         sync.Mutex
	status     models.Status
	has        bool
	healthy    bool
	refreshes  int
	refreshCtx context.Context
	listeners  []func()
}

func (f *fakeStatus) Status() (models.Status, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.status, f.has
}

func (f *fakeStatus) Healthy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.healthy
}

func (f *fakeStatus) RequestRefresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.refreshes++
	f.refreshCtx = ctx

	return nil
}

func (f *fakeStatus) AddListener(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listeners = append(f.listeners, fn)
}

func (f *fakeStatus) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.refreshes
}

type fakeHealth struct {
	health  models.Health
	has     bool
	healthy bool
}

func (f *fakeHealth) Health() (models.Health, bool) { return f.health, f.has }
func (f *fakeHealth) Healthy() bool                 { return f.healthy }

func newTestServer() (*Server, *fakeDevice, *fakeStatus, *fakeHealth) {
	device := newFakeDevice()
	status := &fakeStatus{}
	health := &fakeHealth{}

	return NewServer(device, status, health), device, status, health
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	return rec
}

func TestGetStatus(t *testing.T) {
	t.Run("503 before the first successful poll", func(t *testing.T) {
		s, _, _, _ := newTestServer()

		rec := doRequest(s, http.MethodGet, "/api/v1/status", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("serves cached status with availability flag", func(t *testing.T) {
		s, _, status, _ := newTestServer()
		status.status = models.Status{
			Device:  eightsleep.Snapshot{Left: eightsleep.SideStatus{IsOn: true}},
			Updated: time.Now(),
		}
		status.has = true
		status.healthy = false // stale but retained

		rec := doRequest(s, http.MethodGet, "/api/v1/status", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Device    eightsleep.Snapshot `json:"device"`
			Available bool                `json:"available"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Device.Left.IsOn)
		assert.False(t, resp.Available)
	})
}

func TestGetHealth(t *testing.T) {
	s, _, _, health := newTestServer()

	rec := doRequest(s, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	health.has = true
	health.healthy = true
	health.health = models.Health{Updated: time.Now()}

	rec = doRequest(s, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostTemperature(t *testing.T) {
	t.Run("forwards to the device and refreshes", func(t *testing.T) {
		s, device, status, _ := newTestServer()

		rec := doRequest(s, http.MethodPost, "/api/v1/sides/left/temperature", `{"temperatureF":72}`)
		require.Equal(t, http.StatusOK, rec.Code)

		require.Len(t, device.tempCalls, 1)
		assert.Equal(t, tempCall{eightsleep.SideLeft, 72, 0}, device.tempCalls[0])
		assert.Equal(t, 1, status.refreshCount())
	})

	t.Run("unknown side is rejected before the device", func(t *testing.T) {
		s, device, _, _ := newTestServer()

		rec := doRequest(s, http.MethodPost, "/api/v1/sides/middle/temperature", `{"temperatureF":72}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, device.tempCalls)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		s, device, _, _ := newTestServer()

		rec := doRequest(s, http.MethodPost, "/api/v1/sides/left/temperature", `{"temperatureF":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, device.tempCalls)
	})

	t.Run("device rejection maps to 502 without refresh", func(t *testing.T) {
		s, device, status, _ := newTestServer()
		device.result = false

		rec := doRequest(s, http.MethodPost, "/api/v1/sides/left/temperature", `{"temperatureF":72}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, 0, status.refreshCount())
	})
}

func TestSyncModeFansOutToBothSides(t *testing.T) {
	s, device, _, _ := newTestServer()

	rec := doRequest(s, http.MethodPut, "/api/v1/settings",
		`{"sync_mode":true,"alarm_intensity":80,"alarm_pattern":"rise","alarm_duration":60}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodPost, "/api/v1/sides/left/temperature", `{"temperatureF":90,"duration":300}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, device.tempCalls, 2)
	assert.Equal(t, tempCall{eightsleep.SideLeft, 90, 300}, device.tempCalls[0])
	assert.Equal(t, tempCall{eightsleep.SideRight, 90, 300}, device.tempCalls[1])
}

func TestPostPower(t *testing.T) {
	s, device, _, _ := newTestServer()

	rec := doRequest(s, http.MethodPost, "/api/v1/sides/right/power", `{"on":true,"duration":600}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []eightsleep.Side{eightsleep.SideRight}, device.onCalls)

	rec = doRequest(s, http.MethodPost, "/api/v1/sides/right/power", `{"on":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []eightsleep.Side{eightsleep.SideRight}, device.offCalls)
}

func TestAlarmTrigger(t *testing.T) {
	t.Run("empty body falls back to bridge settings", func(t *testing.T) {
		s, device, _, _ := newTestServer()

		rec := doRequest(s, http.MethodPost, "/api/v1/sides/left/alarm/trigger", "")
		require.Equal(t, http.StatusOK, rec.Code)

		require.Len(t, device.alarmCalls, 1)
		assert.Equal(t, alarmCall{eightsleep.SideLeft, 80, "rise", 60}, device.alarmCalls[0])
	})

	t.Run("explicit fields override the defaults", func(t *testing.T) {
		s, device, _, _ := newTestServer()

		rec := doRequest(s, http.MethodPost, "/api/v1/sides/left/alarm/trigger",
			`{"intensity":50,"duration":0}`)
		require.Equal(t, http.StatusOK, rec.Code)

		require.Len(t, device.alarmCalls, 1)
		assert.Equal(t, alarmCall{eightsleep.SideLeft, 50, "rise", 0}, device.alarmCalls[0])
	})

	t.Run("instant alarm sync fans out", func(t *testing.T) {
		s, device, _, _ := newTestServer()

		rec := doRequest(s, http.MethodPut, "/api/v1/settings",
			`{"instant_alarm_sync":true,"alarm_intensity":80,"alarm_pattern":"double","alarm_duration":30}`)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(s, http.MethodPost, "/api/v1/sides/right/alarm/trigger", "")
		require.Equal(t, http.StatusOK, rec.Code)

		require.Len(t, device.alarmCalls, 2)
		assert.Equal(t, alarmCall{eightsleep.SideLeft, 80, "double", 30}, device.alarmCalls[0])
		assert.Equal(t, alarmCall{eightsleep.SideRight, 80, "double", 30}, device.alarmCalls[1])
	})
}

func TestAlarmStop(t *testing.T) {
	s, device, _, _ := newTestServer()

	rec := doRequest(s, http.MethodPost, "/api/v1/sides/left/alarm/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []eightsleep.Side{eightsleep.SideLeft}, device.stopCalls)
}

func TestPutSettings(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"sync_mode":true,"alarm_intensity":50,"alarm_pattern":"double","alarm_duration":120}`, http.StatusOK},
		{"intensity too low", `{"alarm_intensity":0,"alarm_pattern":"rise","alarm_duration":60}`, http.StatusBadRequest},
		{"bad pattern", `{"alarm_intensity":80,"alarm_pattern":"pulse","alarm_duration":60}`, http.StatusBadRequest},
		{"duration too long", `{"alarm_intensity":80,"alarm_pattern":"rise","alarm_duration":181}`, http.StatusBadRequest},
		{"malformed", `{"alarm_intensity":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _, _ := newTestServer()

			rec := doRequest(s, http.MethodPut, "/api/v1/settings", tt.body)
			assert.Equal(t, tt.want, rec.Code)

			if tt.want == http.StatusOK {
				assert.True(t, s.CurrentSettings().SyncMode)
			} else {
				assert.Equal(t, DefaultSettings(), s.CurrentSettings(), "rejected settings must not stick")
			}
		})
	}
}

func TestPutSchedule(t *testing.T) {
	s, device, _, _ := newTestServer()

	rec := doRequest(s, http.MethodPut, "/api/v1/sides/left/schedule",
		`{"monday":{"time":"07:00","enabled":true}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, eightsleep.SideLeft, device.scheduleSide)
	assert.Equal(t, "07:00", device.schedule["monday"]["time"])
}

func TestPostLED(t *testing.T) {
	s, device, _, _ := newTestServer()

	rec := doRequest(s, http.MethodPost, "/api/v1/led", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "brightness is required")

	rec = doRequest(s, http.MethodPost, "/api/v1/led", `{"brightness":40}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{40}, device.ledCalls)
}

func TestPostPrime(t *testing.T) {
	s, device, _, _ := newTestServer()

	rec := doRequest(s, http.MethodPost, "/api/v1/prime", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, device.primeCalls)
}

func TestGetHistory(t *testing.T) {
	t.Run("serves retained snapshots", func(t *testing.T) {
		s, device, _, _ := newTestServer()
		device.history = []eightsleep.Snapshot{
			{Left: eightsleep.SideStatus{CurrentTemperatureF: 72}},
		}

		rec := doRequest(s, http.MethodGet, "/api/v1/history", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var got []eightsleep.Snapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, 72, got[0].Left.CurrentTemperatureF)
	})

	t.Run("empty history is an array, not null", func(t *testing.T) {
		s, _, _, _ := newTestServer()

		rec := doRequest(s, http.MethodGet, "/api/v1/history", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestRefreshSurvivesClientDisconnect(t *testing.T) {
	s, _, status, _ := newTestServer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // the client is already gone when the command lands

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sides/left/alarm/stop", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, status.refreshCount())

	status.mu.Lock()
	refreshCtx := status.refreshCtx
	status.mu.Unlock()

	assert.NoError(t, refreshCtx.Err(),
		"the post-command poll must not inherit the request's cancellation")
}

func TestWebsocketStream(t *testing.T) {
	s, _, status, _ := newTestServer()

	status.status = models.Status{
		Device:  eightsleep.Snapshot{Left: eightsleep.SideStatus{IsOn: true}},
		Updated: time.Now(),
	}
	status.has = true
	status.healthy = true

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	defer func() {
		_ = conn.Close()
		_ = resp.Body.Close()
	}()

	var first struct {
		Device    eightsleep.Snapshot `json:"device"`
		Available bool                `json:"available"`
	}
	require.NoError(t, conn.ReadJSON(&first))
	assert.True(t, first.Device.Left.IsOn)
	assert.True(t, first.Available)

	// A coordinator refresh reaches connected clients.
	status.mu.Lock()
	status.status.Device.Left.IsOn = false
	listeners := status.listeners
	status.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}

	var second struct {
		Device eightsleep.Snapshot `json:"device"`
	}
	require.NoError(t, conn.ReadJSON(&second))
	assert.False(t, second.Device.Left.IsOn)
}

func (s *Server) connCount() int {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()

	return len(s.conns)
}

func TestBroadcastDropsStalledClient(t *testing.T) {
	s, _, status, _ := newTestServer()

	oldWait := writeWait
	writeWait = 50 * time.Millisecond

	t.Cleanup(func() { writeWait = oldWait })

	// A large frame fills the stalled client's socket buffers within a few
	// broadcasts instead of thousands.
	status.status = models.Status{
		Device: eightsleep.Snapshot{
			Settings: map[string]interface{}{"padding": strings.Repeat("x", 1<<16)},
		},
		Updated: time.Now(),
	}
	status.has = true
	status.healthy = true

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	defer func() {
		_ = conn.Close()
		_ = resp.Body.Close()
	}()

	// The client never reads. Broadcasts run on the coordinator's refresh
	// path, so they must keep completing and the client must get dropped.
	done := make(chan struct{})

	go func() {
		defer close(done)

		for i := 0; i < 200 && s.connCount() > 0; i++ {
			s.broadcastStatus()
		}
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("broadcastStatus blocked on a stalled client; a coordinator refresh would hang here")
	}

	assert.Equal(t, 0, s.connCount(), "the stalled client should have been dropped")
}
