/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package eightsleep implements a client for the Eight Sleep pod's local,
// unauthenticated HTTP API.
package eightsleep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	ttlcache "github.com/jellydator/ttlcache/v2"
)

const (
	deviceStatusPath  = "/api/deviceStatus"
	alarmPath         = "/api/alarm"
	schedulesPath     = "/api/schedules"
	presencePath      = "/api/presence"
	vitalsPath        = "/api/metrics/vitals"
	vitalsSummaryPath = "/api/metrics/vitals/summary"
	sleepPath         = "/api/metrics/sleep"
	movementPath      = "/api/metrics/movement"

	// DefaultOnDuration is how long a side stays on when no duration is
	// given: 12 hours.
	DefaultOnDuration = 43200

	schedulesCacheKey = "schedules"
	schedulesCacheTTL = 30 * time.Second
)

const (
	minTemperatureF = 55
	maxTemperatureF = 110

	minBrightness = 0
	maxBrightness = 100

	minAlarmIntensity = 1
	maxAlarmIntensity = 100

	minAlarmDuration = 0
	maxAlarmDuration = 180
)

var scheduleDays = map[string]struct{}{
	"monday":    {},
	"tuesday":   {},
	"wednesday": {},
	"thursday":  {},
	"friday":    {},
	"saturday":  {},
	"sunday":    {},
}

// Client owns the connection to one pod and a rolling history of its
// most recent status snapshots.
type Client struct {
	host    string
	port    int
	timeout time.Duration

	mu            sync.Mutex
	transport     Transport
	ownsTransport bool
	started       bool

	history    snapshotHistory
	schedCache *ttlcache.Cache
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTransport supplies an externally managed transport. The client will
// never close a transport it did not create.
func WithTransport(t Transport) ClientOption {
	return func(c *Client) {
		c.transport = t
		c.ownsTransport = false
	}
}

// WithRequestTimeout overrides the per-request timeout used when the
// client creates its own transport.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a client for the pod at host:port.
func NewClient(host string, port int, opts ...ClientOption) *Client {
	c := &Client{
		host:    host,
		port:    port,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start prepares the client for use. It is idempotent: an owned transport
// is created only if none was supplied, and repeat calls are no-ops.
func (c *Client) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	if c.transport == nil {
		c.transport = newHTTPTransport(c.host, c.port, c.timeout)
		c.ownsTransport = true
	}

	if err := c.transport.Start(); err != nil {
		return fmt.Errorf("failed to start transport: %w", err)
	}

	cache := ttlcache.NewCache()
	if err := cache.SetTTL(schedulesCacheTTL); err != nil {
		log.Printf("Failed to set schedules cache TTL: %v", err)
	}

	cache.SkipTTLExtensionOnHit(true)
	c.schedCache = cache

	c.started = true

	return nil
}

// Stop releases the transport if the client owns it; stopping a stopped or
// externally managed client is a no-op. Safe to call from any shutdown path.
func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil
	}

	c.started = false

	if c.schedCache != nil {
		if err := c.schedCache.Close(); err != nil {
			log.Printf("Error closing schedules cache: %v", err)
		}

		c.schedCache = nil
	}

	if !c.ownsTransport {
		log.Printf("Transport is externally managed, leaving it open")
		return nil
	}

	if err := c.transport.Stop(); err != nil {
		return fmt.Errorf("failed to stop transport: %w", err)
	}

	c.transport = nil

	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	t := c.transport
	started := c.started
	c.mu.Unlock()

	if !started || t == nil {
		return nil, ErrNotStarted
	}

	return t.Do(ctx, method, path, body)
}

// post issues a control request and resolves both validation and transport
// failures to false; the distinction is only visible in the logs.
func (c *Client) post(ctx context.Context, path string, payload interface{}) bool {
	if _, err := c.do(ctx, http.MethodPost, path, payload); err != nil {
		log.Printf("Control request to %s failed: %v", path, err)
		return false
	}

	return true
}

// UpdateDeviceData fetches the current device status and pushes it onto the
// rolling history. On failure the history is left untouched so callers keep
// serving the last known-good snapshot.
func (c *Client) UpdateDeviceData(ctx context.Context) error {
	raw, err := c.do(ctx, http.MethodGet, deviceStatusPath, nil)
	if err != nil {
		return err
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("%w: %v", errMalformedResponse, err)
	}

	c.history.Push(snap)

	return nil
}

// DeviceData returns the most recent snapshot, or a zero snapshot when no
// poll has succeeded yet.
func (c *Client) DeviceData() Snapshot {
	snap, _ := c.history.Latest()
	return snap
}

// History returns the retained snapshots, most recent first.
func (c *Client) History() []Snapshot {
	return c.history.All()
}

// Presence fetches the per-side presence report.
func (c *Client) Presence(ctx context.Context) (Presence, error) {
	var p Presence
	if err := c.getJSON(ctx, presencePath, &p); err != nil {
		return Presence{}, err
	}

	return p, nil
}

// Vitals fetches raw vitals samples matching the filter.
func (c *Client) Vitals(ctx context.Context, f MetricsFilter) ([]VitalRecord, error) {
	var out []VitalRecord
	if err := c.getJSON(ctx, vitalsPath+f.query(), &out); err != nil {
		return nil, err
	}

	return out, nil
}

// VitalsSummary fetches the device-aggregated vitals for the filter window.
func (c *Client) VitalsSummary(ctx context.Context, f MetricsFilter) (VitalsSummary, error) {
	var out VitalsSummary
	if err := c.getJSON(ctx, vitalsSummaryPath+f.query(), &out); err != nil {
		return VitalsSummary{}, err
	}

	return out, nil
}

// SleepRecords fetches completed sleep sessions matching the filter.
func (c *Client) SleepRecords(ctx context.Context, f MetricsFilter) ([]SleepRecord, error) {
	var out []SleepRecord
	if err := c.getJSON(ctx, sleepPath+f.query(), &out); err != nil {
		return nil, err
	}

	return out, nil
}

// Movement fetches movement samples matching the filter.
func (c *Client) Movement(ctx context.Context, f MetricsFilter) ([]MovementRecord, error) {
	var out []MovementRecord
	if err := c.getJSON(ctx, movementPath+f.query(), &out); err != nil {
		return nil, err
	}

	return out, nil
}

// Schedules fetches all schedules. Responses are cached briefly since the
// schedule only changes through UpdateAlarmSchedule, which invalidates the
// cache.
func (c *Client) Schedules(ctx context.Context) (map[string]interface{}, error) {
	c.mu.Lock()
	cache := c.schedCache
	c.mu.Unlock()

	if cache != nil {
		if cached, err := cache.Get(schedulesCacheKey); err == nil {
			return cached.(map[string]interface{}), nil
		}
	}

	var out map[string]interface{}
	if err := c.getJSON(ctx, schedulesPath, &out); err != nil {
		return nil, err
	}

	if cache != nil {
		if err := cache.Set(schedulesCacheKey, out); err != nil {
			log.Printf("Failed to cache schedules: %v", err)
		}
	}

	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst interface{}) error {
	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedResponse, err)
	}

	return nil
}

// SetTemperature sets the target temperature (Fahrenheit, 55-110) for a
// side. A positive secondsRemaining is sent along; zero or negative means
// leave the remaining time untouched.
func (c *Client) SetTemperature(ctx context.Context, side Side, temperatureF, secondsRemaining int) bool {
	if !side.Valid() {
		log.Printf("Invalid side %q", side)
		return false
	}

	if temperatureF < minTemperatureF || temperatureF > maxTemperatureF {
		log.Printf("Temperature %d out of range (%d-%d)", temperatureF, minTemperatureF, maxTemperatureF)
		return false
	}

	settings := map[string]interface{}{
		"targetTemperatureF": temperatureF,
	}
	if secondsRemaining > 0 {
		settings["secondsRemaining"] = secondsRemaining
	}

	return c.post(ctx, deviceStatusPath, map[string]interface{}{
		string(side): settings,
	})
}

// TurnOn turns a side on for secondsRemaining seconds (DefaultOnDuration
// when zero or negative).
func (c *Client) TurnOn(ctx context.Context, side Side, secondsRemaining int) bool {
	if !side.Valid() {
		log.Printf("Invalid side %q", side)
		return false
	}

	if secondsRemaining <= 0 {
		secondsRemaining = DefaultOnDuration
	}

	return c.post(ctx, deviceStatusPath, map[string]interface{}{
		string(side): map[string]interface{}{
			"isOn":             true,
			"secondsRemaining": secondsRemaining,
		},
	})
}

// TurnOff turns a side off.
func (c *Client) TurnOff(ctx context.Context, side Side) bool {
	if !side.Valid() {
		log.Printf("Invalid side %q", side)
		return false
	}

	return c.post(ctx, deviceStatusPath, map[string]interface{}{
		string(side): map[string]interface{}{
			"isOn": false,
		},
	})
}

// StopAlarm clears an active alarm vibration on a side.
func (c *Client) StopAlarm(ctx context.Context, side Side) bool {
	if !side.Valid() {
		log.Printf("Invalid side %q", side)
		return false
	}

	return c.post(ctx, deviceStatusPath, map[string]interface{}{
		string(side): map[string]interface{}{
			"isAlarmVibrating": false,
		},
	})
}

// StartPriming starts the pod priming process.
func (c *Client) StartPriming(ctx context.Context) bool {
	return c.post(ctx, deviceStatusPath, map[string]interface{}{
		"isPriming": true,
	})
}

// SetLEDBrightness sets the hub LED brightness (0-100).
func (c *Client) SetLEDBrightness(ctx context.Context, brightness int) bool {
	if brightness < minBrightness || brightness > maxBrightness {
		log.Printf("LED brightness %d out of range (%d-%d)", brightness, minBrightness, maxBrightness)
		return false
	}

	return c.post(ctx, deviceStatusPath, map[string]interface{}{
		"settings": map[string]interface{}{
			"ledBrightness": brightness,
		},
	})
}

// TriggerAlarm starts an immediate alarm vibration. Intensity is 1-100,
// pattern is "rise" or "double", duration is 0-180 seconds. Defaults for
// these live with the caller; values are validated exactly as given.
func (c *Client) TriggerAlarm(ctx context.Context, side Side, intensity int, pattern string, durationSeconds int) bool {
	if !side.Valid() {
		log.Printf("Invalid side %q", side)
		return false
	}

	if intensity < minAlarmIntensity || intensity > maxAlarmIntensity {
		log.Printf("Alarm intensity %d out of range (%d-%d)", intensity, minAlarmIntensity, maxAlarmIntensity)
		return false
	}

	if pattern != "rise" && pattern != "double" {
		log.Printf("Invalid alarm pattern %q", pattern)
		return false
	}

	if durationSeconds < minAlarmDuration || durationSeconds > maxAlarmDuration {
		log.Printf("Alarm duration %d out of range (%d-%d)", durationSeconds, minAlarmDuration, maxAlarmDuration)
		return false
	}

	return c.post(ctx, alarmPath, map[string]interface{}{
		"side":               string(side),
		"vibrationIntensity": intensity,
		"vibrationPattern":   pattern,
		"duration":           durationSeconds,
	})
}

// UpdateAlarmSchedule replaces the alarm schedule for a side. Day keys must
// be monday..sunday; each day's settings are wrapped under an "alarm" key
// before posting.
func (c *Client) UpdateAlarmSchedule(ctx context.Context, side Side, schedule AlarmSchedule) bool {
	if !side.Valid() {
		log.Printf("Invalid side %q", side)
		return false
	}

	days := make(map[string]interface{}, len(schedule))

	for day, settings := range schedule {
		if _, ok := scheduleDays[day]; !ok {
			log.Printf("Invalid schedule day %q", day)
			return false
		}

		days[day] = map[string]interface{}{"alarm": settings}
	}

	ok := c.post(ctx, schedulesPath, map[string]interface{}{
		string(side): days,
	})

	if ok {
		c.mu.Lock()
		if c.schedCache != nil {
			if err := c.schedCache.Remove(schedulesCacheKey); err != nil && !errors.Is(err, ttlcache.ErrNotFound) {
				log.Printf("Failed to invalidate schedules cache: %v", err)
			}
		}
		c.mu.Unlock()
	}

	return ok
}
