package cli

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/ppiankov/zktransfer/internal/pipeline"
	"github.com/ppiankov/zktransfer/internal/publicvalues"
)

var decodeStrict bool

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode [file|-]",
	Short: "Decode committed public values",
	Long: `Decode reads committed public values, as 0x-hex text or raw bytes, and prints
the record an on-chain verifier would see after abi.decode.

With --strict (the default) the input must be the exact canonical encoding
of the record it decodes to.

Example:
  zktransfer decode pv.hex
  zktransfer prove --bank BANK-001 --tx TX-1 | zktransfer decode`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().BoolVar(&decodeStrict, "strict", true, "reject non-canonical encodings")
}

func runDecode(cmd *cobra.Command, args []string) error {
	arg := ""
	if len(args) == 1 {
		arg = args[0]
	}
	data, _, err := readInput(arg)
	if err != nil {
		return err
	}

	encoded, err := publicValuesBytes(data)
	if err != nil {
		return err
	}

	decode := publicvalues.Decode
	if decodeStrict {
		decode = publicvalues.DecodeStrict
	}
	pv, err := decode(encoded)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	return pipeline.NewRenderer().RenderDecoded(os.Stdout, pv)
}

// publicValuesBytes accepts 0x-hex text, bare hex text or raw ABI bytes
func publicValuesBytes(data []byte) ([]byte, error) {
	text := strings.TrimSpace(string(data))

	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		b, err := hexutil.Decode("0x" + text[2:])
		if err != nil {
			return nil, fmt.Errorf("decode hex input: %w", err)
		}
		return b, nil
	}

	if text != "" && isHexText(text) {
		b, err := hex.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("decode hex input: %w", err)
		}
		return b, nil
	}

	return data, nil
}

func isHexText(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
