package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bridge.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAndValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := writeConfig(t, `{
			"device_host": "10.0.0.8",
			"device_port": 3000,
			"listen_addr": ":8093",
			"status_interval": "30s",
			"health_interval": "5m",
			"request_timeout": "10s"
		}`)

		var cfg BridgeConfig
		require.NoError(t, LoadAndValidate(path, &cfg))

		assert.Equal(t, "10.0.0.8", cfg.DeviceHost)
		assert.Equal(t, Duration(30*time.Second), cfg.StatusInterval)
		assert.Equal(t, Duration(5*time.Minute), cfg.HealthInterval)
	})

	t.Run("missing file", func(t *testing.T) {
		var cfg BridgeConfig
		assert.Error(t, LoadAndValidate(filepath.Join(t.TempDir(), "nope.json"), &cfg))
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeConfig(t, `{"device_host":`)

		var cfg BridgeConfig
		assert.Error(t, LoadAndValidate(path, &cfg))
	})
}

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    time.Duration
		wantErr bool
	}{
		{"string form", `"45s"`, 45 * time.Second, false},
		{"numeric nanoseconds", `30000000000`, 30 * time.Second, false},
		{"bad string", `"not-a-duration"`, 0, true},
		{"wrong type", `true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration

			err := d.UnmarshalJSON([]byte(tt.json))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, Duration(tt.want), d)
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg BridgeConfig

	cfg.ApplyDefaults()

	assert.Equal(t, "localhost", cfg.DeviceHost)
	assert.Equal(t, 3000, cfg.DevicePort)
	assert.Equal(t, ":8093", cfg.ListenAddr)
	assert.Equal(t, Duration(30*time.Second), cfg.StatusInterval)
	assert.Equal(t, Duration(5*time.Minute), cfg.HealthInterval)
	assert.Equal(t, Duration(10*time.Second), cfg.RequestTimeout)
	assert.Empty(t, cfg.GrpcAddr, "grpc health endpoint stays off unless configured")
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := BridgeConfig{DeviceHost: "pod.local", DevicePort: 3001}

	cfg.ApplyDefaults()

	assert.Equal(t, "pod.local", cfg.DeviceHost)
	assert.Equal(t, 3001, cfg.DevicePort)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("EIGHT_DEVICE_HOST", "192.168.1.40")
	t.Setenv("EIGHT_DEVICE_PORT", "3100")
	t.Setenv("EIGHT_LISTEN_ADDR", ":9000")
	t.Setenv("EIGHT_GRPC_ADDR", ":50052")

	cfg := BridgeConfig{DeviceHost: "from-file", DevicePort: 3000}
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "192.168.1.40", cfg.DeviceHost)
	assert.Equal(t, 3100, cfg.DevicePort)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, ":50052", cfg.GrpcAddr)
}

func TestApplyEnvBadPort(t *testing.T) {
	t.Setenv("EIGHT_DEVICE_PORT", "not-a-port")

	var cfg BridgeConfig
	assert.Error(t, cfg.ApplyEnv())
}

func TestValidate(t *testing.T) {
	valid := BridgeConfig{
		DeviceHost:     "localhost",
		DevicePort:     3000,
		ListenAddr:     ":8093",
		StatusInterval: Duration(30 * time.Second),
		HealthInterval: Duration(5 * time.Minute),
		RequestTimeout: Duration(10 * time.Second),
	}

	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*BridgeConfig)
	}{
		{"empty host", func(c *BridgeConfig) { c.DeviceHost = "" }},
		{"port too high", func(c *BridgeConfig) { c.DevicePort = 70000 }},
		{"zero status interval", func(c *BridgeConfig) { c.StatusInterval = 0 }},
		{"health interval below floor", func(c *BridgeConfig) { c.HealthInterval = Duration(30 * time.Second) }},
		{"zero request timeout", func(c *BridgeConfig) { c.RequestTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
