package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/zktransfer/internal/model"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	configureEnv(v)
	setDefaults(v, model.DefaultConfig())
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newTestViper())
	require.NoError(t, err)

	def := model.DefaultConfig()
	assert.Equal(t, def.Attestation.Endpoint, cfg.Attestation.Endpoint)
	assert.Equal(t, def.Attestation.Timeout, cfg.Attestation.Timeout)
	assert.Equal(t, "raw", cfg.Canonical.ParametersEncoding)
	assert.Equal(t, def.Cache.DiskTTL, cfg.Cache.DiskTTL)
	assert.Empty(t, cfg.Attestation.Token)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("ZKTRANSFER_ATTESTATION_TOKEN", "tok")
	t.Setenv("ZKTRANSFER_ATTESTATION_TIMEOUT", "5s")
	t.Setenv("ZKTRANSFER_CANONICAL_PARAMETERS_ENCODING", "reserialized")
	t.Setenv("ZKTRANSFER_CACHE_ENABLED", "false")
	t.Setenv("ZKTRANSFER_RATE_LIMITING_BURST_SIZE", "7")

	cfg, err := loadConfig(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.Attestation.Token)
	assert.Equal(t, 5*time.Second, cfg.Attestation.Timeout)
	assert.Equal(t, "reserialized", cfg.Canonical.ParametersEncoding)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 7, cfg.RateLimiting.BurstSize)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("attestation:\n  endpoint: https://attest.example\n  max_attempts: 5\noutput:\n  sink: file\n  path: pv.hex\n"), 0600))

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "https://attest.example", cfg.Attestation.Endpoint)
	assert.Equal(t, 5, cfg.Attestation.MaxAttempts)
	assert.Equal(t, "file", cfg.Output.Sink)
	assert.Equal(t, "pv.hex", cfg.Output.Path)
}

func TestLoadConfig_HostRates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `rate_limiting:
  requests_per_second: 2
  hosts:
    - host: attest.example:8443
      requests_per_second: 0.5
      burst_size: 1
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.RateLimiting.RequestsPerSecond)
	assert.Equal(t, []model.HostRateConfig{
		{Host: "attest.example:8443", RequestsPerSecond: 0.5, BurstSize: 1},
	}, cfg.RateLimiting.Hosts)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), model.ConfigDirName, "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ZKTRANSFER_ATTESTATION_TOKEN")

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, model.DefaultConfig().Attestation.Endpoint, cfg.Attestation.Endpoint)

	// round trip through viper
	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	loaded, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig().Attestation.Timeout, loaded.Attestation.Timeout)

	err = writeDefaultConfig(path)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "already exists"))
}

func TestPublicValuesBytes(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"0x hex", []byte("0x00ab\n"), []byte{0x00, 0xab}},
		{"upper prefix", []byte("0X00AB"), []byte{0x00, 0xab}},
		{"bare hex", []byte("  00ab  "), []byte{0x00, 0xab}},
		{"binary", []byte{0x00, 0x00, 0x20}, []byte{0x00, 0x00, 0x20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := publicValuesBytes(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := publicValuesBytes([]byte("0xabc"))
	assert.Error(t, err, "odd-length hex")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"prove", "encode", "decode", "batch", "config", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
