// Package pipeline drives one proof-input run on the host: obtain the attested envelope,
// run the guest program against it, hand the committed bytes to a sink and describe the run.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ppiankov/zktransfer/internal/attest"
	"github.com/ppiankov/zktransfer/internal/cache"
	"github.com/ppiankov/zktransfer/internal/canon"
	"github.com/ppiankov/zktransfer/internal/guest"
	"github.com/ppiankov/zktransfer/internal/model"
	"github.com/ppiankov/zktransfer/internal/sink"
)

// Pipeline orchestrates attestation, guest execution and delivery
type Pipeline struct {
	client   *attest.Client
	cache    cache.Cache // nil when caching is disabled
	program  *guest.Program
	sink     sink.Sink
	renderer *Renderer
	config   *model.Config
	log      zerolog.Logger
}

// NewPipeline creates a new pipeline with the given configuration. limiter may be nil.
func NewPipeline(cfg *model.Config, out sink.Sink, limiter attest.Waiter, log zerolog.Logger) (*Pipeline, error) {
	enc, err := canon.ParseEncoding(cfg.Canonical.ParametersEncoding)
	if err != nil {
		return nil, fmt.Errorf("canonical config: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("no sink configured")
	}

	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	client := attest.NewClient(attest.Options{
		Endpoint:     cfg.Attestation.Endpoint,
		Token:        cfg.Attestation.Token,
		Timeout:      cfg.Attestation.Timeout,
		UserAgent:    cfg.Attestation.UserAgent,
		MaxBodyBytes: cfg.Attestation.MaxBodyBytes,
		MaxAttempts:  cfg.Attestation.MaxAttempts,
		HTTPProxy:    cfg.Attestation.HTTPProxy,
		HTTPSProxy:   cfg.Attestation.HTTPSProxy,
		NoProxy:      cfg.Attestation.NoProxy,
	}, limiter, log)

	return &Pipeline{
		client:   client,
		cache:    c,
		program:  guest.New(enc),
		sink:     out,
		renderer: NewRenderer(),
		config:   cfg,
		log:      log,
	}, nil
}

// RunResult is the outcome of one successful run
type RunResult struct {
	Report *model.Report
	Output *guest.Output
}

// Prove attests one transfer and commits its public values
func (p *Pipeline) Prove(ctx context.Context, req attest.Request) (*RunResult, error) {
	runID := uuid.NewString()
	log := p.log.With().Str("run_id", runID).Logger()

	// 1. Obtain the envelope, from cache when possible
	key := cache.CacheKey(p.client.Endpoint(), req.Bank, req.ID)
	raw, hit := p.cached(key)
	if hit {
		log.Debug().Msg("attestation cache hit")
	} else {
		body, err := p.client.Fetch(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("attest: %w", err)
		}
		raw = body
	}

	// 2. Run the guest and commit
	out, err := p.run(ctx, runID, raw)
	if err != nil {
		return nil, err
	}

	// 3. Cache only envelopes the guest accepted
	if !hit && p.cache != nil {
		if err := p.cache.Set(key, []byte(raw), 0); err != nil {
			log.Warn().Err(err).Msg("cache write failed")
		}
	}

	report := p.renderer.BuildReport(runID, p.client.Endpoint(), p.program.Encoding, out)
	report.CacheHit = hit
	report.Sink = p.sink.Name()

	log.Info().Int("bytes", len(out.Encoded)).Bool("cache_hit", hit).Str("sink", report.Sink).Msg("public values committed")
	return &RunResult{Report: report, Output: out}, nil
}

// Encode runs the guest on an envelope obtained elsewhere; source names it in the report
func (p *Pipeline) Encode(ctx context.Context, raw, source string) (*RunResult, error) {
	runID := uuid.NewString()

	out, err := p.run(ctx, runID, raw)
	if err != nil {
		return nil, err
	}

	report := p.renderer.BuildReport(runID, source, p.program.Encoding, out)
	report.Sink = p.sink.Name()

	p.log.Info().Str("run_id", runID).Str("source", source).Int("bytes", len(out.Encoded)).Msg("public values committed")
	return &RunResult{Report: report, Output: out}, nil
}

func (p *Pipeline) run(ctx context.Context, runID, raw string) (*guest.Output, error) {
	start := time.Now()
	ch := sink.NewChannel(ctx, runID, raw, p.sink)

	out, err := p.program.Run(ch)
	if err != nil {
		p.log.Warn().Err(err).Str("run_id", runID).Msg("guest rejected envelope")
		return nil, fmt.Errorf("guest: %w", err)
	}

	p.log.Debug().Str("run_id", runID).Dur("elapsed", time.Since(start)).Msg("guest finished")
	return out, nil
}

func (p *Pipeline) cached(key string) (string, bool) {
	if p.cache == nil {
		return "", false
	}
	b, ok := p.cache.Get(key)
	if !ok {
		return "", false
	}
	return string(b), true
}

// Renderer returns the pipeline's report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// RenderReport writes the JSON report when a path is configured and prints the summary
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	return p.renderer.RenderSummary(report)
}

// Close releases the sink
func (p *Pipeline) Close() error {
	return p.sink.Close()
}
