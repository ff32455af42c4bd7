package identity

import (
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/zktransfer/internal/claim"
	"github.com/ppiankov/zktransfer/internal/claim/claimtest"
)

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"32 bytes prefixed", "0x" + strings.Repeat("ab", 32), false},
		{"32 bytes bare", strings.Repeat("AB", 32), false},
		{"31 bytes", "0x" + strings.Repeat("ab", 31), true},
		{"33 bytes", "0x" + strings.Repeat("ab", 33), true},
		{"odd length", "0x" + strings.Repeat("a", 63), true},
		{"not hex", "0x" + strings.Repeat("zz", 32), true},
		{"empty", "", true},
		{"prefix only", "0x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIdentifier(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, claim.ErrEncoding)
				return
			}
			require.NoError(t, err)
			for _, b := range got {
				assert.Equal(t, byte(0xab), b)
			}
		})
	}
}

func TestParseOwner(t *testing.T) {
	addr, err := ParseOwner("0x" + strings.Repeat("0", 40))
	require.NoError(t, err)
	assert.Equal(t, common.Address{}, addr)

	addr, err = ParseOwner("5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"), addr)

	for _, bad := range []string{
		"0x" + strings.Repeat("0", 38),
		"0x" + strings.Repeat("0", 42),
		"0X" + strings.Repeat("0", 40),
		"",
	} {
		_, err := ParseOwner(bad)
		assert.ErrorIs(t, err, claim.ErrEncoding, "owner %q", bad)
	}
}

func TestParseSignatures(t *testing.T) {
	sigs, err := ParseSignatures([]string{"0xAB", "cdef", "0x" + strings.Repeat("11", 65)})
	require.NoError(t, err)
	require.Len(t, sigs, 3)
	assert.Equal(t, []byte{0xab}, sigs[0])
	assert.Equal(t, []byte{0xcd, 0xef}, sigs[1])
	assert.Len(t, sigs[2], 65)

	_, err = ParseSignatures([]string{"0xAB", "0xABC"})
	assert.ErrorIs(t, err, claim.ErrEncoding)
}

func TestWidenAmount(t *testing.T) {
	assert.Equal(t, 0, big.NewInt(1000).Cmp(WidenAmount(1000)))
	assert.Equal(t, "18446744073709551615", WidenAmount(math.MaxUint64).String())
	assert.Equal(t, 0, WidenAmount(0).Sign())
}

func TestResolve_Scenario(t *testing.T) {
	p, err := claim.Parse(claimtest.Default().JSON())
	require.NoError(t, err)

	r, err := Resolve(p)
	require.NoError(t, err)

	assert.Equal(t, [32]byte{}, r.Identifier)
	assert.Equal(t, common.Address{}, r.Owner)
	assert.Equal(t, [][]byte{{0xab}}, r.Signatures)
	assert.Equal(t, "1000", r.Amount.String())
	assert.Equal(t, uint32(1), r.Epoch)
	assert.Equal(t, uint32(1718000000), r.TimestampS)
}

func TestResolve_Failures(t *testing.T) {
	fx := claimtest.Default()
	fx.Identifier = "0x" + strings.Repeat("0", 62)
	p, err := claim.Parse(fx.JSON())
	require.NoError(t, err)
	_, err = Resolve(p)
	assert.ErrorIs(t, err, claim.ErrEncoding)

	fx = claimtest.Default()
	fx.Owner = "0x" + strings.Repeat("0", 66)
	p, err = claim.Parse(fx.JSON())
	require.NoError(t, err)
	_, err = Resolve(p)
	assert.ErrorIs(t, err, claim.ErrEncoding)

	fx = claimtest.Default()
	fx.RawTransfer = `{"data":[{"bank":"B","to":"T","amount":-5}]}`
	p, err = claim.Parse(fx.JSON())
	require.NoError(t, err)
	_, err = Resolve(p)
	assert.ErrorIs(t, err, claim.ErrRange)
}
