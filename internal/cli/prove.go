package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/zktransfer/internal/attest"
)

var (
	proveBank  string
	proveTx    string
	proveToken string
	proveFlags runFlags
)

// proveCmd represents the prove command
var proveCmd = &cobra.Command{
	Use:   "prove",
	Short: "Attest one transfer and commit its public values",
	Long: `Prove asks the attestation service for the signed claim of one transfer,
checks it, derives the public values and commits them to the configured sink.

The bearer token comes from --token, ZKTRANSFER_ATTESTATION_TOKEN or .env.

Example:
  zktransfer prove --bank BANK-001 --tx TX-1
  zktransfer prove --bank BANK-001 --tx TX-1 --output pv.hex --json report.json
  zktransfer prove --bank BANK-001 --tx TX-1 --sink queue`,
	Args: cobra.NoArgs,
	RunE: runProve,
}

func init() {
	rootCmd.AddCommand(proveCmd)

	proveCmd.Flags().StringVar(&proveBank, "bank", "", "bank identifier")
	proveCmd.Flags().StringVar(&proveTx, "tx", "", "transfer identifier")
	proveCmd.Flags().StringVar(&proveToken, "token", "", "attestation bearer token (overrides ZKTRANSFER_ATTESTATION_TOKEN)")
	_ = proveCmd.MarkFlagRequired("bank")
	_ = proveCmd.MarkFlagRequired("tx")

	proveFlags.register(proveCmd, 2*time.Minute)
}

func runProve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	proveFlags.apply(cmd, cfg)
	if proveToken != "" {
		cfg.Attestation.Token = proveToken
	}

	ctx, cancel := context.WithTimeout(context.Background(), proveFlags.timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Attestation: %s\n", cfg.Attestation.Endpoint)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", proveFlags.timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := newPipeline(cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	result, err := p.Prove(ctx, attest.Request{ID: proveTx, Bank: proveBank})
	if err != nil {
		if errors.Is(err, attest.ErrUnauthorized) {
			return fmt.Errorf("prove failed: %w (set ZKTRANSFER_ATTESTATION_TOKEN or pass --token with a fresh token)", err)
		}
		return fmt.Errorf("prove failed: %w", err)
	}

	if err := p.RenderReport(result.Report, cfg.Output.Report, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
