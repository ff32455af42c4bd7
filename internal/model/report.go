package model

import "time"

// Report describes one proof-input run. It never carries the raw bank or account identifiers.
type Report struct {
	RunID              string    `json:"run_id"`
	Source             string    `json:"source"`               // attestation endpoint or input path
	GeneratedAt        time.Time `json:"generated_at"`
	SchemaVersion      int       `json:"schema_version"`
	LayoutVersion      int       `json:"layout_version"`
	ParametersEncoding string    `json:"parameters_encoding"`
	CacheHit           bool      `json:"cache_hit,omitempty"`

	PublicValues PublicValuesView `json:"public_values"`
	Encoded      string           `json:"encoded"` // 0x-prefixed ABI bytes
	EncodedSize  int              `json:"encoded_size"`

	Sink string `json:"sink,omitempty"`
}

// PublicValuesView is the hex rendering of the committed record
type PublicValuesView struct {
	HashedChannelID      string          `json:"hashed_channel_id"`
	HashedChannelAccount string          `json:"hashed_channel_account"`
	Amount               string          `json:"amount"`
	HashedClaimInfo      string          `json:"hashed_claim_info"`
	SignedClaim          SignedClaimView `json:"signed_claim"`
}

// SignedClaimView is the hex rendering of the signed claim
type SignedClaimView struct {
	Identifier string   `json:"identifier"`
	Owner      string   `json:"owner"`
	TimestampS uint32   `json:"timestamp_s"`
	Epoch      uint32   `json:"epoch"`
	Signatures []string `json:"signatures"`
}
