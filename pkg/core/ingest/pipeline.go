package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"financeos/pkg/core/aggregate"
	"financeos/pkg/core/normalize"
	"financeos/pkg/core/schema"
	"financeos/pkg/core/sheet"
	"financeos/pkg/models"
)

// State tracks where the current upload sits in the pipeline. The dashboard
// polls this to drive its progress UI.
type State string

const (
	StateIdle            State = "idle"
	StateUploading       State = "uploading"
	StateSchemaResolving State = "resolving_schema"
	StateNormalizing     State = "normalizing"
	StateReady           State = "ready"
)

var (
	// ErrEmptyResult: the file parsed but zero usable transactions survived
	// normalization.
	ErrEmptyResult = errors.New("no usable transactions found in file")
	// ErrInFlight: a second upload arrived while one was still processing.
	// The caller should retry once the first finishes.
	ErrInFlight = errors.New("an upload is already being processed")
)

// Snapshot is the complete in-memory dataset produced by one successful
// ingestion. It is immutable once published; a new upload replaces it wholesale.
type Snapshot struct {
	Filename   string                    `json:"filename"`
	UploadedAt time.Time                 `json:"uploaded_at"`
	Schema     *schema.Config            `json:"schema"`
	Records    []models.FinancialRecord  `json:"records"`
	Months     []models.MonthlyAggregate `json:"months"`
	Demo       bool                      `json:"demo"`
}

// Pipeline owns the upload lifecycle: parse, classify, normalize, aggregate,
// publish. One dataset lives at a time and nothing is persisted.
type Pipeline struct {
	resolver schema.Resolver

	mu       sync.Mutex
	state    State
	inFlight bool
	current  *Snapshot
}

func New(resolver schema.Resolver) *Pipeline {
	return &Pipeline{resolver: resolver, state: StateIdle}
}

// Ingest runs the full pipeline on one uploaded file. Concurrent calls are
// refused with ErrInFlight rather than queued; the previous published
// snapshot stays readable throughout and is only replaced on success. A
// failure with no prior snapshot returns the pipeline to idle.
func (p *Pipeline) Ingest(ctx context.Context, filename string, content []byte) (*Snapshot, error) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return nil, ErrInFlight
	}
	p.inFlight = true
	p.state = StateUploading
	p.mu.Unlock()

	snap, err := p.run(ctx, filename, content)

	p.mu.Lock()
	p.inFlight = false
	switch {
	case err == nil:
		p.current = snap
		p.state = StateReady
	case p.current != nil:
		// Failed replacement: the previous snapshot is still being served.
		p.state = StateReady
	default:
		p.state = StateIdle
	}
	p.mu.Unlock()

	return snap, err
}

func (p *Pipeline) run(ctx context.Context, filename string, content []byte) (*Snapshot, error) {
	fmt.Printf("[INGEST] Parsing %s (%d bytes)\n", filename, len(content))
	rows, err := sheet.ReadWorkbook(filename, content)
	if err != nil {
		return nil, fmt.Errorf("WORKBOOK_PARSE_ERROR: %w", err)
	}

	headerIdx := sheet.DetectHeaderRow(rows)
	headers, rawRows := sheet.RowsToRecords(rows, headerIdx)
	if len(rawRows) == 0 {
		return nil, ErrEmptyResult
	}

	p.setState(StateSchemaResolving)
	fmt.Printf("[INGEST] Classifying schema: %d headers, %d rows\n", len(headers), len(rawRows))

	samples := make([]map[string]string, 0, len(rawRows))
	for i := 0; i < len(rawRows) && i < 10; i++ {
		samples = append(samples, rawRows[i].Map())
	}
	cfg, err := p.resolver.Resolve(ctx, headers, samples)
	if err != nil {
		return nil, err
	}
	fmt.Printf("[INGEST] Schema resolved: strategy=%s\n", cfg.Strategy)

	p.setState(StateNormalizing)
	records := normalize.New(cfg).Apply(rawRows)
	if len(records) == 0 {
		return nil, ErrEmptyResult
	}

	snap := &Snapshot{
		Filename:   filename,
		UploadedAt: time.Now(),
		Schema:     cfg,
		Records:    records,
		Months:     aggregate.Monthly(records),
	}
	fmt.Printf("[INGEST] Ready: %d records across %d months\n", len(snap.Records), len(snap.Months))
	return snap, nil
}

// Publish installs a pre-normalized dataset, bypassing parse and
// classification. The demo dataset loads through here.
func (p *Pipeline) Publish(filename string, records []models.FinancialRecord, demo bool) *Snapshot {
	snap := &Snapshot{
		Filename:   filename,
		UploadedAt: time.Now(),
		Records:    records,
		Months:     aggregate.Monthly(records),
		Demo:       demo,
	}
	p.mu.Lock()
	p.current = snap
	p.state = StateReady
	p.mu.Unlock()
	return snap
}

// Current returns the last published snapshot, or false when nothing has been
// ingested yet.
func (p *Pipeline) Current() (*Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.current != nil
}

// State reports the pipeline phase for progress polling.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Reset discards the published snapshot and returns to idle. An in-flight
// upload keeps running and will publish over the reset.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = nil
	if !p.inFlight {
		p.state = StateIdle
	}
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}
