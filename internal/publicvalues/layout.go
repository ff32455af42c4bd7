// Package publicvalues encodes the committed public values with the Ethereum contract ABI.
//
// The record is encoded as one ABI parameter of tuple type, the same bytes Solidity produces
// for abi.encode(PublicValuesStruct) and consumes with abi.decode(data, (PublicValuesStruct)):
//
//	struct CompleteClaimData { bytes32 identifier; address owner; uint32 timestampS; uint32 epoch; }
//	struct SignedClaim       { CompleteClaimData claim; bytes[] signatures; }
//	struct PublicValuesStruct {
//	    bytes32 hashedChannelId;
//	    bytes32 hashedChannelAccount;
//	    uint256 amount;
//	    bytes32 hashedClaimInfo;
//	    SignedClaim signedClaim;
//	}
package publicvalues

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// LayoutVersion is bumped with any change to the components below
const LayoutVersion = 1

// ClaimData mirrors CompleteClaimData
type ClaimData struct {
	Identifier [32]byte       `abi:"identifier"`
	Owner      common.Address `abi:"owner"`
	TimestampS uint32         `abi:"timestampS"`
	Epoch      uint32         `abi:"epoch"`
}

// SignedClaim mirrors SignedClaim
type SignedClaim struct {
	Claim      ClaimData `abi:"claim"`
	Signatures [][]byte  `abi:"signatures"`
}

// PublicValues mirrors PublicValuesStruct; it is the only observable output of a run
type PublicValues struct {
	HashedChannelID      [32]byte    `abi:"hashedChannelId"`
	HashedChannelAccount [32]byte    `abi:"hashedChannelAccount"`
	Amount               *big.Int    `abi:"amount"`
	HashedClaimInfo      [32]byte    `abi:"hashedClaimInfo"`
	SignedClaim          SignedClaim `abi:"signedClaim"`
}

var claimDataComponents = []abi.ArgumentMarshaling{
	{Name: "identifier", Type: "bytes32"},
	{Name: "owner", Type: "address"},
	{Name: "timestampS", Type: "uint32"},
	{Name: "epoch", Type: "uint32"},
}

var signedClaimComponents = []abi.ArgumentMarshaling{
	{Name: "claim", Type: "tuple", InternalType: "struct CompleteClaimData", Components: claimDataComponents},
	{Name: "signatures", Type: "bytes[]"},
}

var publicValuesComponents = []abi.ArgumentMarshaling{
	{Name: "hashedChannelId", Type: "bytes32"},
	{Name: "hashedChannelAccount", Type: "bytes32"},
	{Name: "amount", Type: "uint256"},
	{Name: "hashedClaimInfo", Type: "bytes32"},
	{Name: "signedClaim", Type: "tuple", InternalType: "struct SignedClaim", Components: signedClaimComponents},
}

// arguments is the single-parameter argument list the verifier decodes
var arguments = mustArguments()

func mustArguments() abi.Arguments {
	typ, err := abi.NewType("tuple", "struct PublicValuesStruct", publicValuesComponents)
	if err != nil {
		panic("publicvalues: invalid layout: " + err.Error())
	}
	return abi.Arguments{{Name: "publicValues", Type: typ}}
}

// Signature is the canonical Solidity type string of the layout
func Signature() string {
	return arguments[0].Type.String()
}
