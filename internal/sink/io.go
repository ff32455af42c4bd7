package sink

import (
	"context"
	"fmt"

	"github.com/ppiankov/zktransfer/internal/guest"
)

// Channel connects a guest run to a sink: it serves one input string and forwards the
// single commitment
type Channel struct {
	ctx       context.Context
	runID     string
	input     string
	sink      Sink
	committed []byte
	done      bool
}

// NewChannel returns the guest IO for one run
func NewChannel(ctx context.Context, runID, input string, s Sink) *Channel {
	return &Channel{ctx: ctx, runID: runID, input: input, sink: s}
}

// Read returns the input
func (c *Channel) Read() (string, error) {
	return c.input, nil
}

// Commit forwards the public values to the sink once
func (c *Channel) Commit(publicValues []byte) error {
	if c.done {
		return guest.ErrAlreadyCommitted
	}
	if err := c.sink.Write(c.ctx, c.runID, publicValues); err != nil {
		return fmt.Errorf("sink %s: %w", c.sink.Name(), err)
	}
	c.committed = append([]byte(nil), publicValues...)
	c.done = true
	return nil
}

// Committed returns the forwarded bytes and whether a commit happened
func (c *Channel) Committed() ([]byte, bool) {
	return c.committed, c.done
}
