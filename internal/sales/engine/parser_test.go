package engine

import (
	"testing"
)

func TestParseRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		want    Row
		wantErr bool
	}{
		{
			name: "valid",
			line: "Electronics,2024-01-01,100",
			want: Row{Department: "Electronics", Date: "2024-01-01", Sales: 100},
		},
		{
			name: "valid with surrounding spaces",
			line: "  Clothing , 2024-01-02 , 50 ",
			want: Row{Department: "Clothing", Date: "2024-01-02", Sales: 50},
		},
		{
			name: "date is not validated",
			line: "Clothing,not-a-date,200",
			want: Row{Department: "Clothing", Date: "not-a-date", Sales: 200},
		},
		{
			name: "empty date",
			line: "Books,,10",
			want: Row{Department: "Books", Date: "", Sales: 10},
		},
		{
			name: "quoted department keeps its comma",
			line: `"Toys, Games",2024-03-01,7`,
			want: Row{Department: "Toys, Games", Date: "2024-03-01", Sales: 7},
		},
		{
			name: "explicit plus sign",
			line: "Garden,2024-01-05,+5",
			want: Row{Department: "Garden", Date: "2024-01-05", Sales: 5},
		},
		{
			name: "unicode department",
			line: "Électronique,2024-01-01,10",
			want: Row{Department: "Électronique", Date: "2024-01-01", Sales: 10},
		},
		{
			name:    "two fields",
			line:    "Electronics,100",
			wantErr: true,
		},
		{
			name:    "four fields",
			line:    "Electronics,2024-01-01,100,extra",
			wantErr: true,
		},
		{
			name:    "empty department",
			line:    ",2024-01-01,100",
			wantErr: true,
		},
		{
			name:    "whitespace department",
			line:    "   ,2024-01-01,100",
			wantErr: true,
		},
		{
			name:    "empty amount",
			line:    "Electronics,2024-01-01,",
			wantErr: true,
		},
		{
			name:    "non-numeric amount",
			line:    "Electronics,2024-01-01,abc",
			wantErr: true,
		},
		{
			name:    "fractional amount",
			line:    "Electronics,2024-01-01,10.5",
			wantErr: true,
		},
		{
			name:    "negative amount",
			line:    "Electronics,2024-01-01,-5",
			wantErr: true,
		},
		{
			name:    "unterminated quote",
			line:    `"Electronics,2024-01-01,100`,
			wantErr: true,
		},
		{
			name:    "blank-ish line",
			line:    "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseRow(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRow(%q) expected error, got %+v", tt.line, got)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseRow(%q) err = %v", tt.line, err)
			}
			if got != tt.want {
				t.Fatalf("ParseRow(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestIsHeader(t *testing.T) {
	t.Parallel()

	if !IsHeader("Department Name,Date,Number of Sales") {
		t.Fatal("exact header not recognized")
	}
	if !IsHeader("  Department Name,Date,Number of Sales \r") {
		t.Fatal("header with surrounding whitespace not recognized")
	}
	if IsHeader("Department Name,Date") {
		t.Fatal("truncated header recognized")
	}
	if IsHeader("Electronics,2024-01-01,100") {
		t.Fatal("data row recognized as header")
	}
}
