package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/zktransfer/internal/logging"
	"github.com/ppiankov/zktransfer/internal/model"
	"github.com/ppiankov/zktransfer/internal/pipeline"
	"github.com/ppiankov/zktransfer/internal/sink"
	"github.com/ppiankov/zktransfer/internal/worker"
)

// runFlags are shared by the commands that run the guest
type runFlags struct {
	sinkName string
	outPath  string
	format   string
	report   string
	encoding string
	noCache  bool
	timeout  time.Duration
}

func (f *runFlags) register(cmd *cobra.Command, defaultTimeout time.Duration) {
	cmd.Flags().StringVar(&f.sinkName, "sink", "", "where to commit public values (stdout, file, dir, queue)")
	cmd.Flags().StringVarP(&f.outPath, "output", "o", "", "output file or directory for the file and dir sinks")
	cmd.Flags().StringVar(&f.format, "format", "", "output format (hex, binary)")
	cmd.Flags().StringVar(&f.report, "json", "", "write a JSON run report to this path")
	cmd.Flags().StringVar(&f.encoding, "parameters-encoding", "", "claim-info parameters form (raw, reserialized)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable cache (force fresh attestation)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", defaultTimeout, "overall timeout")
}

// apply overrides configuration with the flags the user set
func (f *runFlags) apply(cmd *cobra.Command, cfg *model.Config) {
	if cmd.Flags().Changed("sink") {
		cfg.Output.Sink = f.sinkName
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Path = f.outPath
		if !cmd.Flags().Changed("sink") && cfg.Output.Sink == "stdout" {
			cfg.Output.Sink = "file"
		}
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = f.format
	}
	if cmd.Flags().Changed("json") {
		cfg.Output.Report = f.report
	}
	if cmd.Flags().Changed("parameters-encoding") {
		cfg.Canonical.ParametersEncoding = f.encoding
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
}

// newPipeline wires logger, sink and rate limiter into a pipeline
func newPipeline(cfg *model.Config, out sink.Sink) (*pipeline.Pipeline, error) {
	log := logging.NewFromConfig(cfg.Log)

	if out == nil {
		s, err := sink.New(cfg.Output, cfg.Queue)
		if err != nil {
			return nil, fmt.Errorf("sink: %w", err)
		}
		out = s
	}

	limiter := worker.NewLimiterFromConfig(cfg.RateLimiting)

	p, err := pipeline.NewPipeline(cfg, out, limiter, log)
	if err != nil {
		_ = out.Close()
		return nil, err
	}
	return p, nil
}

// readInput reads a file, or standard input for "" and "-"
func readInput(arg string) ([]byte, string, error) {
	if arg == "" || arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "stdin", nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", arg, err)
	}
	return data, arg, nil
}
