package publicvalues

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/ppiankov/zktransfer/internal/canon"
	"github.com/ppiankov/zktransfer/internal/claim"
	"github.com/ppiankov/zktransfer/internal/identity"
)

// ErrNotCanonical is returned by DecodeStrict when the input is decodable but is not
// the exact encoding of the record it decodes to
var ErrNotCanonical = errors.New("public values are not canonically encoded")

// Build assembles the committed record from the digests and the resolved identities
func Build(h canon.Hashes, r *identity.Resolved) *PublicValues {
	return &PublicValues{
		HashedChannelID:      h.ChannelID,
		HashedChannelAccount: h.ChannelAccount,
		Amount:               r.Amount,
		HashedClaimInfo:      h.ClaimInfo,
		SignedClaim: SignedClaim{
			Claim: ClaimData{
				Identifier: r.Identifier,
				Owner:      r.Owner,
				TimestampS: r.TimestampS,
				Epoch:      r.Epoch,
			},
			Signatures: r.Signatures,
		},
	}
}

// Encode serializes the record with the ABI head/tail rules
func Encode(pv *PublicValues) ([]byte, error) {
	if pv == nil {
		return nil, fmt.Errorf("%w: nil public values", claim.ErrEncoding)
	}
	if pv.Amount == nil || pv.Amount.Sign() < 0 || pv.Amount.BitLen() > 256 {
		return nil, fmt.Errorf("%w: amount must be an unsigned 256-bit integer", claim.ErrRange)
	}

	signatures := pv.SignedClaim.Signatures
	if signatures == nil {
		signatures = [][]byte{}
	}
	record := *pv
	record.SignedClaim.Signatures = signatures

	out, err := arguments.Pack(record)
	if err != nil {
		return nil, fmt.Errorf("%w: abi pack: %v", claim.ErrEncoding, err)
	}
	return out, nil
}

// Decode reads a record with a standard ABI decoder
func Decode(data []byte) (pv *PublicValues, err error) {
	values, err := arguments.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("abi unpack: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("abi unpack: expected 1 value, got %d", len(values))
	}

	// ConvertType panics when the shapes disagree
	defer func() {
		if r := recover(); r != nil {
			pv, err = nil, fmt.Errorf("abi convert: %v", r)
		}
	}()
	return abi.ConvertType(values[0], new(PublicValues)).(*PublicValues), nil
}

// DecodeStrict decodes and then requires that re-encoding reproduces data bit for bit
func DecodeStrict(data []byte) (*PublicValues, error) {
	pv, err := Decode(data)
	if err != nil {
		return nil, err
	}
	again, err := Encode(pv)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(again, data) {
		return nil, ErrNotCanonical
	}
	return pv, nil
}
