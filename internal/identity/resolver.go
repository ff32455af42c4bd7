// Package identity turns the hex and numeric fields of a signed claim into fixed-width values.
package identity

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ppiankov/zktransfer/internal/claim"
)

const (
	identifierLength = 32
	ownerLength      = common.AddressLength
	hexPrefix        = "0x"
)

// Resolved holds the binary identities of one claim
type Resolved struct {
	Identifier [32]byte
	Owner      common.Address
	TimestampS uint32
	Epoch      uint32
	Signatures [][]byte
	Amount     *big.Int
}

// Resolve converts every identity field of a parsed envelope
func Resolve(p *claim.Parsed) (*Resolved, error) {
	c := p.Envelope.SignedClaim.Claim

	identifier, err := ParseIdentifier(c.Identifier)
	if err != nil {
		return nil, err
	}
	owner, err := ParseOwner(c.Owner)
	if err != nil {
		return nil, err
	}
	signatures, err := ParseSignatures(p.Envelope.SignedClaim.Signatures)
	if err != nil {
		return nil, err
	}
	amount, err := p.Transfer.Uint64Amount()
	if err != nil {
		return nil, err
	}

	return &Resolved{
		Identifier: identifier,
		Owner:      owner,
		TimestampS: c.TimestampS,
		Epoch:      c.Epoch,
		Signatures: signatures,
		Amount:     WidenAmount(amount),
	}, nil
}

// ParseIdentifier decodes a claim identifier into exactly 32 bytes
func ParseIdentifier(s string) ([32]byte, error) {
	var out [32]byte
	b, err := decodeHex(s)
	if err != nil {
		return out, fmt.Errorf("%w: identifier: %v", claim.ErrEncoding, err)
	}
	if len(b) != identifierLength {
		return out, fmt.Errorf("%w: identifier is %d bytes, want %d", claim.ErrEncoding, len(b), identifierLength)
	}
	copy(out[:], b)
	return out, nil
}

// ParseOwner decodes an owner address into exactly 20 bytes.
// Mixed case is accepted; the EIP-55 checksum is not enforced.
func ParseOwner(s string) (common.Address, error) {
	b, err := decodeHex(s)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: owner: %v", claim.ErrEncoding, err)
	}
	if len(b) != ownerLength {
		return common.Address{}, fmt.Errorf("%w: owner is %d bytes, want %d", claim.ErrEncoding, len(b), ownerLength)
	}
	return common.BytesToAddress(b), nil
}

// ParseSignatures hex-decodes each signature (optional 0x), preserving order. Lengths are
// not checked. The committed bytes are the decoded signature, so "0xAB" commits [0xab];
// a verifier expecting the UTF-8 bytes of the hex string will not match. Text that is not
// valid hex is rejected with ErrEncoding instead of being committed as-is.
func ParseSignatures(sigs []string) ([][]byte, error) {
	out := make([][]byte, len(sigs))
	for i, s := range sigs {
		b, err := decodeHex(s)
		if err != nil {
			return nil, fmt.Errorf("%w: signature %d: %v", claim.ErrEncoding, i, err)
		}
		out[i] = b
	}
	return out, nil
}

// WidenAmount zero-extends a uint64 amount into a uint256 value
func WidenAmount(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// decodeHex accepts an optional 0x prefix and requires an even number of hex digits
func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, hexPrefix) {
		s = hexPrefix + s
	}
	return hexutil.Decode(s)
}
