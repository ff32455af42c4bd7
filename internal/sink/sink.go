// Package sink delivers committed public values to their destination.
package sink

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ppiankov/zktransfer/internal/model"
)

// Sink receives the committed public values of a run
type Sink interface {
	Write(ctx context.Context, runID string, publicValues []byte) error
	Name() string
	Close() error
}

// Format is the on-disk or on-stream rendering of the committed bytes
type Format string

const (
	FormatHex    Format = "hex"
	FormatBinary Format = "binary"
)

// ParseFormat accepts "hex" (default) or "binary"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "hex":
		return FormatHex, nil
	case "binary", "bin", "raw":
		return FormatBinary, nil
	default:
		return "", fmt.Errorf("unknown output format: %s (supported: hex, binary)", s)
	}
}

// render returns the bytes written for data in format f
func render(f Format, data []byte) []byte {
	if f == FormatBinary {
		return data
	}
	return []byte("0x" + hex.EncodeToString(data) + "\n")
}

// New creates a sink based on configuration
func New(out model.OutputConfig, queue model.QueueConfig) (Sink, error) {
	format, err := ParseFormat(out.Format)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(out.Sink) {
	case "", "stdout":
		return NewStdout(format), nil

	case "file":
		if out.Path == "" {
			return nil, fmt.Errorf("file sink requires output.path")
		}
		return NewFile(out.Path, format), nil

	case "dir":
		if out.Path == "" {
			return nil, fmt.Errorf("dir sink requires output.path")
		}
		return NewDir(out.Path, format), nil

	case "queue", "amqp":
		if queue.URL == "" {
			return nil, fmt.Errorf("queue sink requires queue.url")
		}
		return DialQueue(queue.URL, queue.Exchange, queue.RoutingKey)

	default:
		return nil, fmt.Errorf("unknown sink: %s (supported: stdout, file, dir, queue)", out.Sink)
	}
}
