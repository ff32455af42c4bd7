// Package canon computes the domain-separated Keccak-256 digests committed in the public values.
package canon

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ppiankov/zktransfer/internal/claim"
)

// ParametersEncoding selects the byte form of claimInfo.parameters that enters the claim-info hash
type ParametersEncoding string

const (
	// EncodingRaw hashes the parameters string exactly as the attestor delivered it (schema v1)
	EncodingRaw ParametersEncoding = "raw"

	// EncodingReserialized hashes compact JSON of the parsed parameters in schema field order
	EncodingReserialized ParametersEncoding = "reserialized"
)

// DefaultEncoding is the canonical form for claim.SchemaVersion 1
const DefaultEncoding = EncodingRaw

// ParseEncoding validates a configured encoding name; empty selects the default
func ParseEncoding(s string) (ParametersEncoding, error) {
	switch ParametersEncoding(s) {
	case "":
		return DefaultEncoding, nil
	case EncodingRaw, EncodingReserialized:
		return ParametersEncoding(s), nil
	default:
		return "", fmt.Errorf("unknown parameters encoding %q (want %q or %q)", s, EncodingRaw, EncodingReserialized)
	}
}

var separator = []byte{'\n'}

// Hashes are the three digests of one claim
type Hashes struct {
	ClaimInfo      [32]byte
	ChannelID      [32]byte
	ChannelAccount [32]byte
}

// Compute derives all digests from a parsed envelope
func Compute(p *claim.Parsed, enc ParametersEncoding) (Hashes, error) {
	info, err := HashClaimInfo(p.Envelope.ClaimInfo, p.Parameters, enc)
	if err != nil {
		return Hashes{}, err
	}
	return Hashes{
		ClaimInfo:      info,
		ChannelID:      HashChannelID(p.Transfer),
		ChannelAccount: HashChannelAccount(p.Transfer),
	}, nil
}

// ClaimInfoPreimage returns provider || 0x0A || parameters || 0x0A || context
func ClaimInfoPreimage(info claim.Info, params claim.Parameters, enc ParametersEncoding) ([]byte, error) {
	var parameters []byte
	switch enc {
	case EncodingRaw:
		parameters = []byte(info.Parameters)
	case EncodingReserialized:
		b, err := reserialize(params)
		if err != nil {
			return nil, err
		}
		parameters = b
	default:
		return nil, fmt.Errorf("unknown parameters encoding %q", enc)
	}

	return bytes.Join([][]byte{
		[]byte(info.Provider),
		parameters,
		[]byte(info.Context),
	}, separator), nil
}

// HashClaimInfo is KECCAK256 of the claim-info preimage
func HashClaimInfo(info claim.Info, params claim.Parameters, enc ParametersEncoding) ([32]byte, error) {
	preimage, err := ClaimInfoPreimage(info, params, enc)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Keccak256Hash(preimage), nil
}

// HashChannelID is KECCAK256 of the bank field bytes
func HashChannelID(rec claim.TransferRecord) [32]byte {
	return crypto.Keccak256Hash([]byte(rec.Bank))
}

// HashChannelAccount is KECCAK256 of the counterparty field bytes
func HashChannelAccount(rec claim.TransferRecord) [32]byte {
	return crypto.Keccak256Hash([]byte(rec.To))
}

// reserialize writes compact JSON without HTML escaping, so '<', '>' and '&' stay literal
func reserialize(params claim.Parameters) ([]byte, error) {
	if params.ResponseMatches == nil {
		params.ResponseMatches = []claim.ResponseMatch{}
	}
	if params.ResponseRedactions == nil {
		params.ResponseRedactions = []claim.ResponseMatch{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(params); err != nil {
		return nil, fmt.Errorf("reserialize parameters: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
