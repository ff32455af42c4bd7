package publicvalues

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/zktransfer/internal/claim"
)

func scenario() *PublicValues {
	return &PublicValues{
		HashedChannelID:      crypto.Keccak256Hash([]byte("BANK-001")),
		HashedChannelAccount: crypto.Keccak256Hash([]byte("ACC-42")),
		Amount:               big.NewInt(1000),
		HashedClaimInfo:      crypto.Keccak256Hash([]byte("http\n{}\n")),
		SignedClaim: SignedClaim{
			Claim: ClaimData{
				TimestampS: 1718000000,
				Epoch:      1,
			},
			Signatures: [][]byte{{0xab}},
		},
	}
}

func word(b []byte, i int) []byte {
	return b[i*32 : (i+1)*32]
}

func uintWord(v uint64) []byte {
	return common.LeftPadBytes(new(big.Int).SetUint64(v).Bytes(), 32)
}

func TestSignature(t *testing.T) {
	assert.Equal(t, "(bytes32,bytes32,uint256,bytes32,((bytes32,address,uint32,uint32),bytes[]))", Signature())
}

func TestEncode_Layout(t *testing.T) {
	pv := scenario()
	out, err := Encode(pv)
	require.NoError(t, err)
	require.Len(t, out, 15*32)

	assert.Equal(t, uintWord(0x20), word(out, 0), "offset of the record")
	assert.Equal(t, pv.HashedChannelID[:], word(out, 1))
	assert.Equal(t, pv.HashedChannelAccount[:], word(out, 2))
	assert.Equal(t, uintWord(1000), word(out, 3))
	assert.Equal(t, pv.HashedClaimInfo[:], word(out, 4))
	assert.Equal(t, uintWord(5*32), word(out, 5), "offset of signedClaim")

	assert.Equal(t, make([]byte, 32), word(out, 6), "identifier")
	assert.Equal(t, make([]byte, 32), word(out, 7), "owner")
	assert.Equal(t, uintWord(1718000000), word(out, 8))
	assert.Equal(t, uintWord(1), word(out, 9))
	assert.Equal(t, uintWord(5*32), word(out, 10), "offset of signatures")

	assert.Equal(t, uintWord(1), word(out, 11), "signature count")
	assert.Equal(t, uintWord(0x20), word(out, 12), "offset of signature 0")
	assert.Equal(t, uintWord(1), word(out, 13), "signature 0 length")
	assert.Equal(t, common.RightPadBytes([]byte{0xab}, 32), word(out, 14))
}

func TestEncode_Deterministic(t *testing.T) {
	a, err := Encode(scenario())
	require.NoError(t, err)
	b, err := Encode(scenario())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncode_RoundTrip(t *testing.T) {
	pv := scenario()
	pv.SignedClaim.Claim.Identifier = common.HexToHash("0x01")
	pv.SignedClaim.Claim.Owner = common.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	pv.SignedClaim.Signatures = [][]byte{
		common.FromHex("0x" + "11223344556677889900aabbccddeeff11223344556677889900aabbccddeeff11223344556677889900aabbccddeeff11223344556677889900aabbccddeeff1b"),
		{0xab},
	}
	pv.Amount = new(big.Int).SetUint64(18446744073709551615)

	out, err := Encode(pv)
	require.NoError(t, err)

	got, err := DecodeStrict(out)
	require.NoError(t, err)

	assert.Equal(t, pv.HashedChannelID, got.HashedChannelID)
	assert.Equal(t, pv.HashedChannelAccount, got.HashedChannelAccount)
	assert.Equal(t, 0, pv.Amount.Cmp(got.Amount))
	assert.Equal(t, pv.HashedClaimInfo, got.HashedClaimInfo)
	assert.Equal(t, pv.SignedClaim.Claim, got.SignedClaim.Claim)
	require.Len(t, got.SignedClaim.Signatures, 2)
	assert.Equal(t, pv.SignedClaim.Signatures[0], got.SignedClaim.Signatures[0])
	assert.Equal(t, pv.SignedClaim.Signatures[1], got.SignedClaim.Signatures[1])
}

func TestEncode_RejectsBadAmount(t *testing.T) {
	pv := scenario()
	pv.Amount = nil
	_, err := Encode(pv)
	assert.ErrorIs(t, err, claim.ErrRange)

	pv.Amount = big.NewInt(-1)
	_, err = Encode(pv)
	assert.ErrorIs(t, err, claim.ErrRange)

	pv.Amount = new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = Encode(pv)
	assert.ErrorIs(t, err, claim.ErrRange)

	_, err = Encode(nil)
	assert.ErrorIs(t, err, claim.ErrEncoding)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(nil)
	assert.Error(t, err)

	out, err := Encode(scenario())
	require.NoError(t, err)

	_, err = Decode(out[:len(out)-32])
	assert.Error(t, err, "truncated input")
}

func TestDecodeStrict_RejectsTrailingData(t *testing.T) {
	out, err := Encode(scenario())
	require.NoError(t, err)

	padded := append(append([]byte{}, out...), make([]byte, 32)...)

	_, err = Decode(padded)
	require.NoError(t, err, "lenient decoder ignores trailing words")

	_, err = DecodeStrict(padded)
	assert.ErrorIs(t, err, ErrNotCanonical)
}
