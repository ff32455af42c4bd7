package claim

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// SchemaVersion identifies the envelope layout and the public-values layout built from it.
// Bump it whenever a field, its order, or the claim-info canonical form changes.
const SchemaVersion = 1

// Envelope is the outer document returned by the attestation service
type Envelope struct {
	ClaimInfo   Info        `json:"claimInfo"`
	SignedClaim SignedClaim `json:"signedClaim"`
}

// Info is the provenance metadata of the attested web interaction.
// Parameters and Context are kept as the exact strings the attestor signed over.
type Info struct {
	Provider   string `json:"provider"`
	Parameters string `json:"parameters"`
	Context    string `json:"context"`
}

// SignedClaim is the claim plus its attestor signatures, in order
type SignedClaim struct {
	Claim      Data     `json:"claim"`
	Signatures []string `json:"signatures"`
}

// Data is the claim body committed to by the signatures
type Data struct {
	Epoch      uint32 `json:"epoch"`
	Identifier string `json:"identifier"`
	Owner      string `json:"owner"`
	TimestampS uint32 `json:"timestampS"`
}

// Parameters is the request/response matcher configuration carried in Info.Parameters.
// Field order is the canonical order used when the parameters are re-serialized.
type Parameters struct {
	Body               string          `json:"body"`
	Method             string          `json:"method"`
	ResponseMatches    []ResponseMatch `json:"responseMatches"`
	ResponseRedactions []ResponseMatch `json:"responseRedactions"`
	URL                string          `json:"url"`
}

// ResponseMatch is one extracted field of the attested HTTP response
type ResponseMatch struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// TransferRecord is the asserted bank transfer
type TransferRecord struct {
	ID           string      `json:"id"`
	Bank         string      `json:"bank"`
	To           string      `json:"to"`
	TransferDate string      `json:"transfer_date"`
	Amount       json.Number `json:"amount"`
}

// Uint64Amount returns the amount in its source width (unsigned 64-bit)
func (r TransferRecord) Uint64Amount() (uint64, error) {
	v, err := strconv.ParseUint(r.Amount.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q is not an unsigned 64-bit integer", ErrRange, r.Amount.String())
	}
	return v, nil
}

// Parsed holds every layer of a decoded envelope
type Parsed struct {
	Envelope   Envelope
	Parameters Parameters
	Match      ResponseMatch
	Transfer   TransferRecord
}
