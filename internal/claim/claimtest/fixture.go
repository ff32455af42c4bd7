// Package claimtest builds attestation envelopes for tests.
package claimtest

import (
	"encoding/json"
	"strings"
)

// Transfer is one entry of the transfer document
type Transfer struct {
	ID           string `json:"id"`
	Bank         string `json:"bank"`
	To           string `json:"to"`
	TransferDate string `json:"transfer_date"`
	Amount       uint64 `json:"amount"`
}

// Fixture describes an envelope; zero values are replaced by Default()
type Fixture struct {
	Provider   string
	Context    string
	Epoch      uint32
	Identifier string
	Owner      string
	Timestamp  uint32
	Signatures []string
	Transfers  []Transfer

	// RawParameters, when set, replaces the generated parameters string
	RawParameters string
	// RawTransfer, when set, replaces the generated transfer document
	RawTransfer string
	// Matches overrides the number of response matches (all carry the same value)
	Matches int
}

// Default is the reference scenario: BANK-001 -> ACC-42, amount 1000, zero ids, one 0xAB signature
func Default() Fixture {
	return Fixture{
		Provider:   "http",
		Context:    `{"contextAddress":"0x0","contextMessage":"transfer"}`,
		Epoch:      1,
		Identifier: "0x" + strings.Repeat("0", 64),
		Owner:      "0x" + strings.Repeat("0", 40),
		Timestamp:  1718000000,
		Signatures: []string{"0xAB"},
		Transfers: []Transfer{{
			ID:           "TX-1",
			Bank:         "BANK-001",
			To:           "ACC-42",
			TransferDate: "2024-06-10",
			Amount:       1000,
		}},
		Matches: 1,
	}
}

// TransferDocument renders the innermost document
func (f Fixture) TransferDocument() string {
	if f.RawTransfer != "" {
		return f.RawTransfer
	}
	return mustJSON(map[string]any{"data": f.Transfers})
}

// ParametersDocument renders the parameters string exactly as it is embedded in the envelope
func (f Fixture) ParametersDocument() string {
	if f.RawParameters != "" {
		return f.RawParameters
	}
	matches := make([]map[string]string, f.Matches)
	for i := range matches {
		matches[i] = map[string]string{"type": "contains", "value": f.TransferDocument()}
	}
	return mustJSON(struct {
		Body               string              `json:"body"`
		Method             string              `json:"method"`
		ResponseMatches    []map[string]string `json:"responseMatches"`
		ResponseRedactions []map[string]string `json:"responseRedactions"`
		URL                string              `json:"url"`
	}{
		Body:               `{"id":"TX-1"}`,
		Method:             "POST",
		ResponseMatches:    matches,
		ResponseRedactions: []map[string]string{},
		URL:                "https://bank.example/transfers",
	})
}

// JSON renders the whole envelope
func (f Fixture) JSON() string {
	return mustJSON(map[string]any{
		"claimInfo": map[string]any{
			"provider":   f.Provider,
			"parameters": f.ParametersDocument(),
			"context":    f.Context,
		},
		"signedClaim": map[string]any{
			"claim": map[string]any{
				"epoch":      f.Epoch,
				"identifier": f.Identifier,
				"owner":      f.Owner,
				"timestampS": f.Timestamp,
			},
			"signatures": f.Signatures,
		},
	})
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
