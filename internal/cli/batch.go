package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/zktransfer/internal/sink"
	"github.com/ppiankov/zktransfer/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	envelopes    bool
	batchToken   string
	batchNoCache bool
	batchFormat  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Prove many transfers from a file in parallel",
	Long: `Batch processes many transfers concurrently:
- Read "bank,transfer-id" lines from the input file (or envelope paths with --envelopes)
- Attest and encode them in parallel with a configurable worker count
- Requests to the attestation service are rate limited per host
- Write public values and a JSON report per run into the output directory

Example:
  zktransfer batch transfers.csv
  zktransfer batch transfers.csv --concurrency 8 --output-dir ./public-values
  zktransfer batch envelopes.txt --envelopes`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./zktransfer-out", "output directory for public values and reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&envelopes, "envelopes", false, "input lines are envelope file paths (no attestation)")
	batchCmd.Flags().StringVar(&batchToken, "token", "", "attestation bearer token (overrides ZKTRANSFER_ATTESTATION_TOKEN)")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "disable cache (force fresh attestation)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "", "output format (hex, binary)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") || cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if batchToken != "" {
		cfg.Attestation.Token = batchToken
	}
	if batchNoCache {
		cfg.Cache.Enabled = false
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = batchFormat
	}

	format, err := sink.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  zktransfer Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	out := sink.NewDir(outputDir, format)
	p, err := newPipeline(cfg, out)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)

	fmt.Fprintf(os.Stderr, "⚙️  Processing %s with %d workers...\n", file, cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "\n")

	results, err := processor.ProcessFile(ctx, file, envelopes)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Item.Label(), result.Error)
			continue
		}

		report := result.Run.Report
		jsonPath := filepath.Join(outputDir, report.RunID+".json")
		if err := p.Renderer().RenderJSON(report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Item.Label(), err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s -> %s\n", result.Item.Label(), out.PathFor(report.RunID))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d items failed", failureCount, len(results))
	}
	return nil
}
