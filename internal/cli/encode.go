package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var encodeFlags runFlags

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode [file|-]",
	Short: "Derive public values from a local attestation envelope",
	Long: `Encode runs the same checks and encoding as prove on an envelope that was
obtained elsewhere, read from a file or standard input. Nothing is fetched.

Example:
  zktransfer encode envelope.json
  cat envelope.json | zktransfer encode --format binary --output pv.bin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeFlags.register(encodeCmd, 30*time.Second)
}

func runEncode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	encodeFlags.apply(cmd, cfg)

	arg := ""
	if len(args) == 1 {
		arg = args[0]
	}
	data, source, err := readInput(arg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), encodeFlags.timeout)
	defer cancel()

	p, err := newPipeline(cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	result, err := p.Encode(ctx, string(data), source)
	if err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}

	if err := p.RenderReport(result.Report, cfg.Output.Report, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}
