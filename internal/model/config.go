package model

import (
	"time"
)

// Config holds all zktransfer settings
type Config struct {
	Attestation  AttestationConfig  `yaml:"attestation" mapstructure:"attestation"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Canonical    CanonicalConfig    `yaml:"canonical" mapstructure:"canonical"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Queue        QueueConfig        `yaml:"queue" mapstructure:"queue"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
}

// AttestationConfig configures the upstream attestation service client
type AttestationConfig struct {
	Endpoint     string        `yaml:"endpoint" mapstructure:"endpoint"`
	Token        string        `yaml:"-" mapstructure:"token"` // never written to config files
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxAttempts  int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures the attestation response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// CanonicalConfig pins the claim-info canonical form
type CanonicalConfig struct {
	ParametersEncoding string `yaml:"parameters_encoding" mapstructure:"parameters_encoding"` // raw | reserialized
}

// OutputConfig configures where committed public values go
type OutputConfig struct {
	Sink    string `yaml:"sink" mapstructure:"sink"`     // stdout | file | dir | queue
	Path    string `yaml:"path" mapstructure:"path"`     // file sink target
	Format  string `yaml:"format" mapstructure:"format"` // hex | binary
	Report  string `yaml:"report,omitempty" mapstructure:"report"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// QueueConfig configures the AMQP sink
type QueueConfig struct {
	URL        string `yaml:"url" mapstructure:"url"`
	Exchange   string `yaml:"exchange" mapstructure:"exchange"`
	RoutingKey string `yaml:"routing_key" mapstructure:"routing_key"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Pretty bool   `yaml:"pretty" mapstructure:"pretty"`
}

// ConcurrencyConfig configures the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig limits requests to the attestation service per host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`

	// Hosts overrides the rate for individual attestation hosts (host[:port])
	Hosts []HostRateConfig `yaml:"hosts,omitempty" mapstructure:"hosts"`
}

// HostRateConfig is a per-host rate override
type HostRateConfig struct {
	Host              string  `yaml:"host" mapstructure:"host"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Attestation: AttestationConfig{
			Endpoint:     "https://mock.blocknaut.xyz/generateTransferProof",
			Timeout:      30 * time.Second,
			UserAgent:    "zktransfer/0.1",
			MaxBodyBytes: 1 << 20,
			MaxAttempts:  3,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Canonical: CanonicalConfig{
			ParametersEncoding: "raw",
		},
		Output: OutputConfig{
			Sink:   "stdout",
			Format: "hex",
		},
		Queue: QueueConfig{
			Exchange:   "zktransfer",
			RoutingKey: "public-values",
		},
		Log: LogConfig{
			Level: "info",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
	}
}
