package claim

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// layer describes one JSON object of the envelope
type layer struct {
	name     string
	required []string
	optional []string
}

var (
	envelopeLayer   = layer{name: "envelope", required: []string{"claimInfo", "signedClaim"}}
	claimInfoLayer  = layer{name: "claimInfo", required: []string{"provider", "parameters", "context"}}
	signedLayer     = layer{name: "signedClaim", required: []string{"claim", "signatures"}}
	claimDataLayer  = layer{name: "claim", required: []string{"epoch", "identifier", "owner", "timestampS"}}
	parametersLayer = layer{
		name:     "parameters",
		required: []string{"responseMatches"},
		optional: []string{"body", "method", "responseRedactions", "url"},
	}
	matchLayer    = layer{name: "responseMatches[0]", required: []string{"type", "value"}}
	transferLayer = layer{name: "transfer", required: []string{"data"}}
	recordLayer   = layer{
		name:     "data[0]",
		required: []string{"bank", "to", "amount"},
		optional: []string{"id", "transfer_date"},
	}
)

// Parse decodes the outer envelope, the string-encoded parameters document and the
// string-encoded transfer document found in responseMatches[0].value.
// Each layer is decoded on its own; the first failure aborts the whole parse.
func Parse(raw string) (*Parsed, error) {
	var out Parsed

	var outer struct {
		ClaimInfo   json.RawMessage `json:"claimInfo"`
		SignedClaim json.RawMessage `json:"signedClaim"`
	}
	if _, err := decodeLayer([]byte(raw), envelopeLayer, &outer); err != nil {
		return nil, err
	}
	if _, err := decodeLayer(outer.ClaimInfo, claimInfoLayer, &out.Envelope.ClaimInfo); err != nil {
		return nil, err
	}

	var signed struct {
		Claim      json.RawMessage `json:"claim"`
		Signatures []string        `json:"signatures"`
	}
	if _, err := decodeLayer(outer.SignedClaim, signedLayer, &signed); err != nil {
		return nil, err
	}
	if _, err := decodeLayer(signed.Claim, claimDataLayer, &out.Envelope.SignedClaim.Claim); err != nil {
		return nil, err
	}
	if len(signed.Signatures) == 0 {
		return nil, fmt.Errorf("%w: signedClaim.signatures is empty", ErrMissingElement)
	}
	out.Envelope.SignedClaim.Signatures = signed.Signatures

	var params struct {
		Parameters
		ResponseMatches []json.RawMessage `json:"responseMatches"`
	}
	if _, err := decodeLayer([]byte(out.Envelope.ClaimInfo.Parameters), parametersLayer, &params); err != nil {
		return nil, err
	}
	if err := exactlyOne("parameters.responseMatches", len(params.ResponseMatches)); err != nil {
		return nil, err
	}
	if _, err := decodeLayer(params.ResponseMatches[0], matchLayer, &out.Match); err != nil {
		return nil, err
	}
	out.Parameters = params.Parameters
	out.Parameters.ResponseMatches = []ResponseMatch{out.Match}

	var transfer struct {
		Data []json.RawMessage `json:"data"`
	}
	if _, err := decodeLayer([]byte(out.Match.Value), transferLayer, &transfer); err != nil {
		return nil, err
	}
	if err := exactlyOne("transfer.data", len(transfer.Data)); err != nil {
		return nil, err
	}
	fields, err := decodeLayer(transfer.Data[0], recordLayer, &out.Transfer)
	if err != nil {
		return nil, err
	}
	if amount := bytes.TrimSpace(fields["amount"]); len(amount) > 0 && amount[0] == '"' {
		return nil, fmt.Errorf("%w: %s: amount must be a JSON number", ErrDeserialization, recordLayer.name)
	}

	return &out, nil
}

func exactlyOne(name string, n int) error {
	if n != 1 {
		return fmt.Errorf("%w: %s must hold exactly 1 element, got %d", ErrMissingElement, name, n)
	}
	return nil
}

// decodeLayer decodes one JSON object into v after checking its keys:
// no duplicates, no case-folded aliases of known keys, every required key present and non-null.
func decodeLayer(data []byte, l layer, v any) (map[string]json.RawMessage, error) {
	fields, err := objectFields(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDeserialization, l.name, err)
	}

	known := append(append([]string{}, l.required...), l.optional...)
	for key := range fields {
		for _, k := range known {
			if key != k && strings.EqualFold(key, k) {
				return nil, fmt.Errorf("%w: %s: field %q shadows %q", ErrDeserialization, l.name, key, k)
			}
		}
	}
	for _, k := range l.required {
		raw, ok := fields[k]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, fmt.Errorf("%w: %s: missing field %q", ErrDeserialization, l.name, k)
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDeserialization, l.name, err)
	}
	return fields, nil
}

// objectFields splits a JSON object into its raw members, rejecting duplicate keys and
// text the decoder would otherwise rewrite
func objectFields(data []byte) (map[string]json.RawMessage, error) {
	if err := validText(data); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected a JSON object")
	}

	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("expected an object key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("duplicate field %q", key)
		}
		fields[key] = raw
	}

	// closing brace, then nothing but whitespace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after object")
	}

	return fields, nil
}
