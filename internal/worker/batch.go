package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/zktransfer/internal/attest"
	"github.com/ppiankov/zktransfer/internal/pipeline"
)

// Prover defines the part of the pipeline a batch drives
type Prover interface {
	Prove(ctx context.Context, req attest.Request) (*pipeline.RunResult, error)
	Encode(ctx context.Context, raw, source string) (*pipeline.RunResult, error)
}

// Item is one batch entry: a transfer to attest, or a local envelope file
type Item struct {
	Line    int
	Request attest.Request
	Path    string
}

// Label names the item without echoing bank or transfer identifiers
func (i Item) Label() string {
	if i.Path != "" {
		return i.Path
	}
	return fmt.Sprintf("line %d", i.Line)
}

// ProveJob runs one item through the pipeline
type ProveJob struct {
	Item   Item
	Prover Prover
	pos    int
}

// Execute executes the job
func (j *ProveJob) Execute(ctx context.Context) Result {
	var (
		run *pipeline.RunResult
		err error
	)

	if j.Item.Path != "" {
		data, readErr := os.ReadFile(j.Item.Path)
		if readErr != nil {
			return &ItemResult{Item: j.Item, Error: fmt.Errorf("read envelope: %w", readErr), pos: j.pos}
		}
		run, err = j.Prover.Encode(ctx, string(data), j.Item.Path)
	} else {
		run, err = j.Prover.Prove(ctx, j.Item.Request)
	}

	if err != nil {
		return &ItemResult{Item: j.Item, Error: err, pos: j.pos}
	}
	return &ItemResult{Item: j.Item, Run: run, pos: j.pos}
}

// ItemResult represents the result of a job
type ItemResult struct {
	Item  Item
	Run   *pipeline.RunResult
	Error error
	pos   int
}

// GetError returns the error from the result
func (r *ItemResult) GetError() error {
	return r.Error
}

// BatchProcessor processes many items concurrently
type BatchProcessor struct {
	prover      Prover
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(prover Prover, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		prover:      prover,
		concurrency: concurrency,
	}
}

// Process runs the items concurrently and returns one result per item, in input order.
// Items never started because ctx ended carry ctx's error.
func (b *BatchProcessor) Process(ctx context.Context, items []Item) []*ItemResult {
	if len(items) == 0 {
		return []*ItemResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, item := range items {
		if !pool.Submit(&ProveJob{Item: item, Prover: b.prover, pos: i}) {
			break
		}
	}

	itemResults := make([]*ItemResult, len(items))
	for _, result := range pool.Wait() {
		r := result.(*ItemResult)
		itemResults[r.pos] = r
	}

	for i, r := range itemResults {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			itemResults[i] = &ItemResult{Item: items[i], Error: fmt.Errorf("not started: %w", err), pos: i}
		}
	}

	return itemResults
}

// ProcessFile reads items from a file and processes them concurrently. With envelopes set,
// each line is a path to an envelope file; otherwise each line is "bank,transfer-id".
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, envelopes bool) ([]*ItemResult, error) {
	items, err := ReadItems(filePath, envelopes)
	if err != nil {
		return nil, err
	}

	return b.Process(ctx, items), nil
}

// ReadItems reads and parses a batch file
func ReadItems(filePath string, envelopes bool) ([]Item, error) {
	lines, err := ReadLinesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		if envelopes {
			items = append(items, Item{Line: l.Number, Path: l.Text})
			continue
		}
		req, err := ParseRequestLine(l.Text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", l.Number, err)
		}
		items = append(items, Item{Line: l.Number, Request: req})
	}
	return items, nil
}

// ParseRequestLine parses "bank,transfer-id"
func ParseRequestLine(s string) (attest.Request, error) {
	bank, id, ok := strings.Cut(s, ",")
	bank = strings.TrimSpace(bank)
	id = strings.TrimSpace(id)
	if !ok || bank == "" || id == "" || strings.Contains(id, ",") {
		return attest.Request{}, fmt.Errorf("want \"bank,transfer-id\", got %q", s)
	}
	return attest.Request{ID: id, Bank: bank}, nil
}

// Line is a non-empty, non-comment line and its 1-based position
type Line struct {
	Number int
	Text   string
}

// ReadLinesFromFile reads entries from a file (one per line), skipping blanks, comments
// and repeats
func ReadLinesFromFile(filePath string) ([]Line, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []Line
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			lines = append(lines, Line{Number: n, Text: line})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return lines, nil
}
