package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Header is the expected first line of an input file.
const Header = "Department Name,Date,Number of Sales"

type Row struct {
	Department string
	Date       string
	Sales      int64
}

// IsHeader reports whether line is the expected header, ignoring surrounding
// whitespace.
func IsHeader(line string) bool {
	return strings.TrimSpace(line) == Header
}

// ParseRow validates one complete line and returns its (department, sales)
// pair. The date field is carried as-is: producers do not agree on a format
// and nothing downstream reads it.
func ParseRow(line string) (Row, error) {
	fields, err := splitFields(line)
	if err != nil {
		return Row{}, err
	}

	if len(fields) != 3 {
		return Row{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}

	department := strings.TrimSpace(fields[0])
	if department == "" {
		return Row{}, errors.New("empty department name")
	}

	sales, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("invalid sales amount: %w", err)
	}
	if sales < 0 {
		return Row{}, fmt.Errorf("negative sales amount: %d", sales)
	}

	return Row{
		Department: department,
		Date:       strings.TrimSpace(fields[1]),
		Sales:      sales,
	}, nil
}

// splitFields takes the cheap path for the common unquoted case and falls
// back to a real CSV parse when the line contains a quote character, so
// departments like `"Toys, Games"` keep their embedded comma.
func splitFields(line string) ([]string, error) {
	if !strings.ContainsRune(line, '"') {
		return strings.Split(line, ","), nil
	}

	reader := csv.NewReader(strings.NewReader(line))
	reader.TrimLeadingSpace = true

	fields, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("invalid quoting: %w", err)
	}

	return fields, nil
}
