package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ppiankov/zktransfer/internal/canon"
	"github.com/ppiankov/zktransfer/internal/claim"
	"github.com/ppiankov/zktransfer/internal/guest"
	"github.com/ppiankov/zktransfer/internal/model"
	"github.com/ppiankov/zktransfer/internal/publicvalues"
)

// Renderer turns run results into reports. Human-readable output goes to its writer,
// standard error by default, so stdout stays free for committed bytes.
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer writing summaries to standard error
func NewRenderer() *Renderer {
	return &Renderer{out: os.Stderr}
}

// NewRendererTo creates a renderer writing summaries to w
func NewRendererTo(w io.Writer) *Renderer {
	return &Renderer{out: w}
}

// BuildReport describes one committed run
func (r *Renderer) BuildReport(runID, source string, enc canon.ParametersEncoding, out *guest.Output) *model.Report {
	return &model.Report{
		RunID:              runID,
		Source:             source,
		GeneratedAt:        time.Now().UTC(),
		SchemaVersion:      claim.SchemaVersion,
		LayoutVersion:      publicvalues.LayoutVersion,
		ParametersEncoding: string(enc),
		PublicValues:       ViewOf(out.Values),
		Encoded:            hexutil.Encode(out.Encoded),
		EncodedSize:        len(out.Encoded),
	}
}

// ViewOf renders public values as hex strings
func ViewOf(pv *publicvalues.PublicValues) model.PublicValuesView {
	signatures := make([]string, len(pv.SignedClaim.Signatures))
	for i, sig := range pv.SignedClaim.Signatures {
		signatures[i] = hexutil.Encode(sig)
	}

	amount := "0"
	if pv.Amount != nil {
		amount = pv.Amount.String()
	}

	return model.PublicValuesView{
		HashedChannelID:      hexutil.Encode(pv.HashedChannelID[:]),
		HashedChannelAccount: hexutil.Encode(pv.HashedChannelAccount[:]),
		Amount:               amount,
		HashedClaimInfo:      hexutil.Encode(pv.HashedClaimInfo[:]),
		SignedClaim: model.SignedClaimView{
			Identifier: hexutil.Encode(pv.SignedClaim.Claim.Identifier[:]),
			Owner:      pv.SignedClaim.Claim.Owner.Hex(),
			TimestampS: pv.SignedClaim.Claim.TimestampS,
			Epoch:      pv.SignedClaim.Claim.Epoch,
			Signatures: signatures,
		},
	}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderSummary prints a short description of the run
func (r *Renderer) RenderSummary(report *model.Report) error {
	pv := report.PublicValues

	lines := []string{
		"",
		"═══════════════════════════════════════════════════════════",
		"  Public values committed",
		"═══════════════════════════════════════════════════════════",
		"",
		fmt.Sprintf("  Run:                 %s", report.RunID),
		fmt.Sprintf("  Source:              %s", report.Source),
		fmt.Sprintf("  Sink:                %s", report.Sink),
		fmt.Sprintf("  Layout / schema:     v%d / v%d (%s parameters)", report.LayoutVersion, report.SchemaVersion, report.ParametersEncoding),
		fmt.Sprintf("  Encoded size:        %d bytes", report.EncodedSize),
		"",
		fmt.Sprintf("  Hashed channel id:   %s", pv.HashedChannelID),
		fmt.Sprintf("  Hashed account:      %s", pv.HashedChannelAccount),
		fmt.Sprintf("  Amount:              %s", pv.Amount),
		fmt.Sprintf("  Hashed claim info:   %s", pv.HashedClaimInfo),
		fmt.Sprintf("  Claim identifier:    %s", pv.SignedClaim.Identifier),
		fmt.Sprintf("  Owner:               %s", pv.SignedClaim.Owner),
		fmt.Sprintf("  Timestamp / epoch:   %d / %d", pv.SignedClaim.TimestampS, pv.SignedClaim.Epoch),
		fmt.Sprintf("  Signatures:          %d", len(pv.SignedClaim.Signatures)),
		"",
	}
	if report.CacheHit {
		lines = append(lines, "  (attestation served from cache)", "")
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return nil
}

// RenderDecoded prints decoded public values as indented JSON
func (r *Renderer) RenderDecoded(w io.Writer, pv *publicvalues.PublicValues) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ViewOf(pv)); err != nil {
		return fmt.Errorf("render decoded values: %w", err)
	}
	return nil
}
