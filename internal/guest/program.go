// Package guest is the program that runs inside the proof engine: it reads one attested
// envelope, derives the public values and commits them exactly once.
//
// Everything here is single-threaded and deterministic. The proof engine is reached only
// through IO so the program can run unchanged in tests and on the host.
package guest

import (
	"errors"
	"fmt"

	"github.com/ppiankov/zktransfer/internal/canon"
	"github.com/ppiankov/zktransfer/internal/claim"
	"github.com/ppiankov/zktransfer/internal/identity"
	"github.com/ppiankov/zktransfer/internal/publicvalues"
)

// IO is the proof engine's message boundary
type IO interface {
	// Read returns the single input string
	Read() (string, error)
	// Commit publishes the public values; it is called at most once per run
	Commit(publicValues []byte) error
}

// Output is the result of one execution
type Output struct {
	Parsed  *claim.Parsed
	Values  *publicvalues.PublicValues
	Encoded []byte
}

// Program carries the versioned canonicalization choice
type Program struct {
	Encoding canon.ParametersEncoding
}

// New returns a program using the given parameters encoding
func New(enc canon.ParametersEncoding) *Program {
	return &Program{Encoding: enc}
}

// Execute runs parse -> hash -> resolve -> encode without touching IO
func (p *Program) Execute(raw string) (*Output, error) {
	enc := p.Encoding
	if enc == "" {
		enc = canon.DefaultEncoding
	}

	// 1. Parse every layer
	parsed, err := claim.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	// 2. Hash
	hashes, err := canon.Compute(parsed, enc)
	if err != nil {
		return nil, fmt.Errorf("hash: %w", err)
	}

	// 3. Resolve identities
	resolved, err := identity.Resolve(parsed)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	// 4. Encode
	values := publicvalues.Build(hashes, resolved)
	encoded, err := publicvalues.Encode(values)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return &Output{
		Parsed:  parsed,
		Values:  values,
		Encoded: encoded,
	}, nil
}

// Run reads, executes and commits. On any failure nothing is committed.
func (p *Program) Run(ch IO) (*Output, error) {
	raw, err := ch.Read()
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	out, err := p.Execute(raw)
	if err != nil {
		return nil, err
	}

	if err := ch.Commit(out.Encoded); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// ErrAlreadyCommitted is returned by MemoryIO on a second commit
var ErrAlreadyCommitted = errors.New("public values already committed")

// MemoryIO is an in-memory IO holding one input and at most one commitment
type MemoryIO struct {
	Input     string
	committed []byte
	done      bool
}

// NewMemoryIO returns an IO that will serve input
func NewMemoryIO(input string) *MemoryIO {
	return &MemoryIO{Input: input}
}

// Read returns the input
func (m *MemoryIO) Read() (string, error) {
	return m.Input, nil
}

// Commit stores a copy of the public values
func (m *MemoryIO) Commit(publicValues []byte) error {
	if m.done {
		return ErrAlreadyCommitted
	}
	m.committed = append([]byte(nil), publicValues...)
	m.done = true
	return nil
}

// Committed returns the committed bytes and whether a commit happened
func (m *MemoryIO) Committed() ([]byte, bool) {
	return m.committed, m.done
}
