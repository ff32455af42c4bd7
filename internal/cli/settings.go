package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ppiankov/zktransfer/internal/claim"
	"github.com/ppiankov/zktransfer/internal/model"
	"github.com/ppiankov/zktransfer/internal/publicvalues"
)

// configureEnv reads environment variables that match ZKTRANSFER_*; attestation.token
// becomes ZKTRANSFER_ATTESTATION_TOKEN
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("ZKTRANSFER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setDefaults registers every key so environment variables can override it
func setDefaults(v *viper.Viper, cfg *model.Config) {
	v.SetDefault("attestation.endpoint", cfg.Attestation.Endpoint)
	v.SetDefault("attestation.token", cfg.Attestation.Token)
	v.SetDefault("attestation.timeout", cfg.Attestation.Timeout)
	v.SetDefault("attestation.user_agent", cfg.Attestation.UserAgent)
	v.SetDefault("attestation.max_body_bytes", cfg.Attestation.MaxBodyBytes)
	v.SetDefault("attestation.max_attempts", cfg.Attestation.MaxAttempts)
	v.SetDefault("attestation.http_proxy", cfg.Attestation.HTTPProxy)
	v.SetDefault("attestation.https_proxy", cfg.Attestation.HTTPSProxy)
	v.SetDefault("attestation.no_proxy", cfg.Attestation.NoProxy)

	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)

	v.SetDefault("canonical.parameters_encoding", cfg.Canonical.ParametersEncoding)

	v.SetDefault("output.sink", cfg.Output.Sink)
	v.SetDefault("output.path", cfg.Output.Path)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("output.report", cfg.Output.Report)
	v.SetDefault("output.verbose", cfg.Output.Verbose)

	v.SetDefault("queue.url", cfg.Queue.URL)
	v.SetDefault("queue.exchange", cfg.Queue.Exchange)
	v.SetDefault("queue.routing_key", cfg.Queue.RoutingKey)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.pretty", cfg.Log.Pretty)

	v.SetDefault("concurrency.workers", cfg.Concurrency.Workers)

	v.SetDefault("rate_limiting.requests_per_second", cfg.RateLimiting.RequestsPerSecond)
	v.SetDefault("rate_limiting.burst_size", cfg.RateLimiting.BurstSize)
}

// loadConfig merges defaults, config file, environment and bound flags
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func layoutVersion() int { return publicvalues.LayoutVersion }
func schemaVersion() int { return claim.SchemaVersion }
