package engine

import (
	"errors"

	"github.com/shandysiswandi/gosales/internal/sales/entity"
)

var (
	ErrInputFinished    = errors.New("input already finished")
	ErrInputNotFinished = errors.New("input not finished")
	ErrAlreadyFinalized = errors.New("job already finalized")
)

// Stats are the live counters of one job, owned by the processing goroutine.
// Snapshots are taken between chunks, so reads are always consistent.
type Stats struct {
	RowsProcessed  uint64
	MalformedRows  uint64
	BytesConsumed  uint64
	TotalSizeBytes uint64
}

// Result carries everything derived from a finished stream.
type Result struct {
	Entries           []Entry
	RowsProcessed     uint64
	MalformedRows     uint64
	TotalSales        int64
	UniqueDepartments uint64
}

// Processor aggregates one job's byte stream: chunks are reassembled into
// lines, each line is validated and folded into the table, and the counters
// advance as bytes are consumed. A malformed row is counted and skipped,
// never fatal. Rejected calls (input after Finish, double Finalize) leave all
// prior state intact.
type Processor struct {
	buf   LineBuffer
	table *Table
	stats Stats

	totalSet   bool
	headerDone bool
	finished   bool
	finalized  bool
}

func NewProcessor() *Processor {
	return &Processor{table: NewTable()}
}

// ProcessChunk consumes one inbound chunk. The first chunk's declared total
// file size is authoritative; later declarations are ignored.
func (p *Processor) ProcessChunk(msg entity.ChunkMessage) error {
	if p.finished {
		return ErrInputFinished
	}

	if !p.totalSet {
		p.stats.TotalSizeBytes = msg.TotalFileSizeBytes
		p.totalSet = true
	}

	p.stats.BytesConsumed += uint64(len(msg.Data))
	p.buf.Feed(msg.Data, p.consumeLine)

	return nil
}

// Finish signals end-of-input and flushes the pending fragment as the final
// line. Calling it twice is an error.
func (p *Processor) Finish() error {
	if p.finished {
		return ErrInputFinished
	}

	p.finished = true
	p.buf.Finish(p.consumeLine)

	return nil
}

// Finalize computes the summary numbers. It may run exactly once, and only
// after Finish.
func (p *Processor) Finalize() (Result, error) {
	if !p.finished {
		return Result{}, ErrInputNotFinished
	}
	if p.finalized {
		return Result{}, ErrAlreadyFinalized
	}
	p.finalized = true

	entries := p.table.Snapshot()

	return Result{
		Entries:           entries,
		RowsProcessed:     p.stats.RowsProcessed,
		MalformedRows:     p.stats.MalformedRows,
		TotalSales:        p.table.Total(),
		UniqueDepartments: uint64(len(entries)),
	}, nil
}

func (p *Processor) Stats() Stats {
	return p.stats
}

func (p *Processor) consumeLine(raw []byte) {
	line := string(raw)
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}

	// Empty lines are neither rows nor malformed.
	if line == "" {
		return
	}

	if !p.headerDone {
		p.headerDone = true
		if IsHeader(line) {
			return
		}
	}

	row, err := ParseRow(line)
	if err != nil {
		p.stats.MalformedRows++
		return
	}

	p.stats.RowsProcessed++
	p.table.Add(row.Department, row.Sales)
}
