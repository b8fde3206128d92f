package engine

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shandysiswandi/gosales/internal/sales/entity"
)

const testHeader = "Department Name,Date,Number of Sales\n"

func runChunked(t *testing.T, input string, chunkSize int) (*Processor, Result) {
	t.Helper()

	proc := NewProcessor()
	data := []byte(input)
	for pos := 0; pos < len(data); pos += chunkSize {
		end := pos + chunkSize
		if end > len(data) {
			end = len(data)
		}
		msg := entity.ChunkMessage{Data: data[pos:end]}
		if pos == 0 {
			msg.TotalFileSizeBytes = uint64(len(data))
		}
		if err := proc.ProcessChunk(msg); err != nil {
			t.Fatalf("ProcessChunk() err = %v", err)
		}
	}

	if err := proc.Finish(); err != nil {
		t.Fatalf("Finish() err = %v", err)
	}
	result, err := proc.Finalize()
	if err != nil {
		t.Fatalf("Finalize() err = %v", err)
	}

	return proc, result
}

func TestProcessorSplitMidRow(t *testing.T) {
	t.Parallel()

	input := testHeader +
		"Electronics,2024-01-01,100\n" +
		"Clothing,2024-01-02,50\n" +
		"Electronics,2024-01-03,25\n"

	// split inside the word "Electronics" on the third data line
	cut := strings.LastIndex(input, "Electronics") + 5
	proc := NewProcessor()

	first := entity.ChunkMessage{Data: []byte(input[:cut]), TotalFileSizeBytes: uint64(len(input))}
	if err := proc.ProcessChunk(first); err != nil {
		t.Fatalf("ProcessChunk() err = %v", err)
	}
	if err := proc.ProcessChunk(entity.ChunkMessage{Data: []byte(input[cut:])}); err != nil {
		t.Fatalf("ProcessChunk() err = %v", err)
	}
	if err := proc.Finish(); err != nil {
		t.Fatalf("Finish() err = %v", err)
	}

	result, err := proc.Finalize()
	if err != nil {
		t.Fatalf("Finalize() err = %v", err)
	}

	wantEntries := []Entry{
		{Department: "Clothing", Total: 50},
		{Department: "Electronics", Total: 125},
	}
	if !reflect.DeepEqual(result.Entries, wantEntries) {
		t.Fatalf("Entries = %v, want %v", result.Entries, wantEntries)
	}
	if result.RowsProcessed != 3 || result.MalformedRows != 0 {
		t.Fatalf("counters = %d/%d, want 3/0", result.RowsProcessed, result.MalformedRows)
	}
	if result.TotalSales != 175 || result.UniqueDepartments != 2 {
		t.Fatalf("totals = %d/%d, want 175/2", result.TotalSales, result.UniqueDepartments)
	}
}

func TestProcessorMalformedRows(t *testing.T) {
	t.Parallel()

	input := testHeader +
		"Electronics,2024-01-01,not-a-number\n" + // malformed amount
		"OnlyTwoColumns,100\n" + // wrong field count
		"Books,2024-01-01,-50\n" + // negative amount
		",2024-01-01,100\n" + // empty department
		"Clothing,not-a-date,200\n" + // valid, date is opaque
		"Electronics,2024-01-02,100\n"

	_, result := runChunked(t, input, 7)

	if result.MalformedRows != 4 {
		t.Fatalf("MalformedRows = %d, want 4", result.MalformedRows)
	}
	if result.RowsProcessed != 2 {
		t.Fatalf("RowsProcessed = %d, want 2", result.RowsProcessed)
	}

	wantEntries := []Entry{
		{Department: "Clothing", Total: 200},
		{Department: "Electronics", Total: 100},
	}
	if !reflect.DeepEqual(result.Entries, wantEntries) {
		t.Fatalf("Entries = %v, want %v", result.Entries, wantEntries)
	}
}

func TestProcessorChunkBoundaryInvariance(t *testing.T) {
	t.Parallel()

	input := testHeader +
		"Électronique,2024-01-01,10\n" +
		"日用品,2024-01-02,5\n" +
		"broken line\n" +
		"\n" +
		`"Toys, Games",2024-02-01,7` + "\n" +
		"Électronique,2024-03-01,3\n" +
		"tail row,2024-04-01,2" // no trailing newline

	_, whole := runChunked(t, input, len(input))

	for _, chunkSize := range []int{1, 2, 3, 5, 8, 13, 64, 1024} {
		_, chunked := runChunked(t, input, chunkSize)
		if !reflect.DeepEqual(chunked, whole) {
			t.Fatalf("chunk size %d: result = %+v, want %+v", chunkSize, chunked, whole)
		}
	}
}

func TestProcessorConservationLaw(t *testing.T) {
	t.Parallel()

	inputs := []string{
		testHeader,
		testHeader + "Electronics,2024-01-01,100\n\n\nClothing,2024-01-02,50\n",
		testHeader + "bad\n,x,1\nBooks,2024,5\n   \n",
		"no header at all,2024-01-01,1\nsecond,2024-01-02,2\n",
		"",
	}

	for _, input := range inputs {
		_, result := runChunked(t, input, 3)

		nonEmpty := uint64(0)
		headerSeen := false
		for _, line := range wholeLines(input) {
			line = strings.TrimSuffix(line, "\r")
			if line == "" {
				continue
			}
			if !headerSeen {
				headerSeen = true
				if IsHeader(line) {
					continue
				}
			}
			nonEmpty++
		}

		if got := result.RowsProcessed + result.MalformedRows; got != nonEmpty {
			t.Fatalf("input %q: rows+malformed = %d, want %d", input, got, nonEmpty)
		}
	}
}

func TestProcessorHeaderOnly(t *testing.T) {
	t.Parallel()

	for _, input := range []string{testHeader, strings.TrimSuffix(testHeader, "\n")} {
		_, result := runChunked(t, input, 4)

		if result.RowsProcessed != 0 || result.MalformedRows != 0 {
			t.Fatalf("counters = %d/%d, want 0/0", result.RowsProcessed, result.MalformedRows)
		}
		if result.UniqueDepartments != 0 || result.TotalSales != 0 {
			t.Fatalf("totals = %d/%d, want 0/0", result.UniqueDepartments, result.TotalSales)
		}
		if len(result.Entries) != 0 {
			t.Fatalf("Entries = %v, want empty", result.Entries)
		}
	}
}

func TestProcessorEmptyInput(t *testing.T) {
	t.Parallel()

	proc := NewProcessor()
	if err := proc.Finish(); err != nil {
		t.Fatalf("Finish() err = %v", err)
	}

	result, err := proc.Finalize()
	if err != nil {
		t.Fatalf("Finalize() err = %v", err)
	}
	if result.RowsProcessed != 0 || result.MalformedRows != 0 || result.TotalSales != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestProcessorFirstChunkTotalWins(t *testing.T) {
	t.Parallel()

	proc := NewProcessor()
	if err := proc.ProcessChunk(entity.ChunkMessage{Data: []byte("a"), TotalFileSizeBytes: 100}); err != nil {
		t.Fatalf("ProcessChunk() err = %v", err)
	}
	if err := proc.ProcessChunk(entity.ChunkMessage{Data: []byte("b"), TotalFileSizeBytes: 999}); err != nil {
		t.Fatalf("ProcessChunk() err = %v", err)
	}

	if got := proc.Stats().TotalSizeBytes; got != 100 {
		t.Fatalf("TotalSizeBytes = %d, want 100", got)
	}
	if got := proc.Stats().BytesConsumed; got != 2 {
		t.Fatalf("BytesConsumed = %d, want 2", got)
	}
}

func TestProcessorRejectsChunkAfterFinish(t *testing.T) {
	t.Parallel()

	proc := NewProcessor()
	if err := proc.ProcessChunk(entity.ChunkMessage{Data: []byte(testHeader + "Books,2024,5\n")}); err != nil {
		t.Fatalf("ProcessChunk() err = %v", err)
	}
	if err := proc.Finish(); err != nil {
		t.Fatalf("Finish() err = %v", err)
	}

	before := proc.Stats()
	if err := proc.ProcessChunk(entity.ChunkMessage{Data: []byte("More,2024,1\n")}); !errors.Is(err, ErrInputFinished) {
		t.Fatalf("ProcessChunk() after Finish err = %v, want ErrInputFinished", err)
	}
	if proc.Stats() != before {
		t.Fatalf("stats changed by rejected chunk: %+v -> %+v", before, proc.Stats())
	}

	if err := proc.Finish(); !errors.Is(err, ErrInputFinished) {
		t.Fatalf("second Finish() err = %v, want ErrInputFinished", err)
	}
}

func TestProcessorFinalizeGuards(t *testing.T) {
	t.Parallel()

	proc := NewProcessor()
	if _, err := proc.Finalize(); !errors.Is(err, ErrInputNotFinished) {
		t.Fatalf("Finalize() before Finish err = %v, want ErrInputNotFinished", err)
	}

	if err := proc.Finish(); err != nil {
		t.Fatalf("Finish() err = %v", err)
	}
	if _, err := proc.Finalize(); err != nil {
		t.Fatalf("Finalize() err = %v", err)
	}
	if _, err := proc.Finalize(); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("second Finalize() err = %v, want ErrAlreadyFinalized", err)
	}
}

func TestProcessorFirstLineNotHeader(t *testing.T) {
	t.Parallel()

	input := "Electronics,2024-01-01,100\nClothing,2024-01-02,50\n"
	_, result := runChunked(t, input, 9)

	if result.RowsProcessed != 2 || result.MalformedRows != 0 {
		t.Fatalf("counters = %d/%d, want 2/0", result.RowsProcessed, result.MalformedRows)
	}
	if result.TotalSales != 150 {
		t.Fatalf("TotalSales = %d, want 150", result.TotalSales)
	}
}

func TestProcessorCRLFInput(t *testing.T) {
	t.Parallel()

	input := "Department Name,Date,Number of Sales\r\n" +
		"Electronics,2024-01-01,100\r\n" +
		"Clothing,2024-01-02,50\r\n"
	_, result := runChunked(t, input, 6)

	wantEntries := []Entry{
		{Department: "Clothing", Total: 50},
		{Department: "Electronics", Total: 100},
	}
	if !reflect.DeepEqual(result.Entries, wantEntries) {
		t.Fatalf("Entries = %v, want %v", result.Entries, wantEntries)
	}
	if result.RowsProcessed != 2 || result.MalformedRows != 0 {
		t.Fatalf("counters = %d/%d, want 2/0", result.RowsProcessed, result.MalformedRows)
	}
}

func TestProcessorDeterminism(t *testing.T) {
	t.Parallel()

	input := testHeader +
		"Electronics,2024-01-01,100\n" +
		"Électronique,2024-01-02,10\n" +
		"broken\n" +
		"Electronics,2024-01-03,1\n"

	_, a := runChunked(t, input, 11)
	_, b := runChunked(t, input, 2)

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("results differ: %+v vs %+v", a, b)
	}
}
