package engine

import (
	"encoding/csv"
	"io"
	"strconv"
)

// ArtifactHeader is the first line of every result artifact.
var ArtifactHeader = []string{"Department Name", "Total Number of Sales"}

// WriteArtifact renders the aggregated entries as CSV: the header row, then
// one `department,total` row per entry in the order given (callers pass the
// sorted snapshot). Departments containing commas or quotes are escaped by
// the CSV writer.
func WriteArtifact(w io.Writer, entries []Entry) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ArtifactHeader); err != nil {
		return err
	}

	for _, entry := range entries {
		if err := writer.Write([]string{entry.Department, strconv.FormatInt(entry.Total, 10)}); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}
