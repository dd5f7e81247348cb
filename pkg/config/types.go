package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

const (
	defaultDevicePort     = 3000
	defaultStatusInterval = Duration(30 * time.Second)
	defaultHealthInterval = Duration(5 * time.Minute)
	defaultRequestTimeout = Duration(10 * time.Second)
	defaultListenAddr     = ":8093"

	// The pod recomputes health metrics at most once a minute; polling
	// faster than that is wasted work.
	minHealthInterval = Duration(time.Minute)
)

// BridgeConfig represents the configuration for a bridge instance.
type BridgeConfig struct {
	DeviceHost     string   `json:"device_host"`               // Hostname or IP of the pod
	DevicePort     int      `json:"device_port"`               // Local API port, e.g. 3000
	ListenAddr     string   `json:"listen_addr"`               // HTTP API listen address
	GrpcAddr       string   `json:"grpc_addr,omitempty"`       // Health endpoint, disabled when empty
	StatusInterval Duration `json:"status_interval,omitempty"` // How often to poll device status
	HealthInterval Duration `json:"health_interval,omitempty"` // How often to poll sleep/vitals
	RequestTimeout Duration `json:"request_timeout,omitempty"` // Whole-call timeout per device request
}

// ApplyDefaults fills in zero-valued fields.
func (c *BridgeConfig) ApplyDefaults() {
	if c.DeviceHost == "" {
		c.DeviceHost = "localhost"
	}

	if c.DevicePort == 0 {
		c.DevicePort = defaultDevicePort
	}

	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.StatusInterval == 0 {
		c.StatusInterval = defaultStatusInterval
	}

	if c.HealthInterval == 0 {
		c.HealthInterval = defaultHealthInterval
	}

	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
}

// ApplyEnv overrides config fields from the environment. Callers load a
// .env file first (godotenv) so both sources flow through here.
func (c *BridgeConfig) ApplyEnv() error {
	if v := os.Getenv("EIGHT_DEVICE_HOST"); v != "" {
		c.DeviceHost = v
	}

	if v := os.Getenv("EIGHT_DEVICE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid EIGHT_DEVICE_PORT '%s': %w", v, err)
		}

		c.DevicePort = port
	}

	if v := os.Getenv("EIGHT_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}

	if v := os.Getenv("EIGHT_GRPC_ADDR"); v != "" {
		c.GrpcAddr = v
	}

	return nil
}

// Validate implements Validator.
func (c *BridgeConfig) Validate() error {
	if c.DeviceHost == "" {
		return errDeviceHostRequired
	}

	if c.DevicePort <= 0 || c.DevicePort > 65535 {
		return fmt.Errorf("%w: %d", errInvalidDevicePort, c.DevicePort)
	}

	if c.StatusInterval <= 0 {
		return errInvalidStatusInterval
	}

	if c.HealthInterval < minHealthInterval {
		return fmt.Errorf("%w: %s", errHealthIntervalTooShort,
			time.Duration(c.HealthInterval))
	}

	if c.RequestTimeout <= 0 {
		return errInvalidRequestTimeout
	}

	return nil
}
