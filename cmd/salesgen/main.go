package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	genRecords     int
	genDepartments int
	genOutput      string
	genSeed        int64
	genMinAmount   int
	genMaxAmount   int
)

var rootCmd = &cobra.Command{
	Use:   "salesgen",
	Short: "Generate sales CSV files for load testing",
	Long: `Generate CSV files in the sales upload format:

  Department Name,Date,Number of Sales
  Department 7,2024-03-17,142

Dates are spread across 2024 and amounts are drawn uniformly from the
configured range. A fixed seed makes the output reproducible.

Examples:
  salesgen                              # 1,000,000 rows to output.csv
  salesgen -r 5000 -d 10 -o small.csv   # small file with 10 departments
  salesgen --seed 42                    # reproducible output`,
	RunE: runGenerate,
}

func init() {
	rootCmd.Flags().IntVarP(&genRecords, "records", "r", 1_000_000, "Number of data rows to generate")
	rootCmd.Flags().IntVarP(&genDepartments, "departments", "d", 100, "Number of distinct departments")
	rootCmd.Flags().StringVarP(&genOutput, "output", "o", "output.csv", "Output file path")
	rootCmd.Flags().Int64Var(&genSeed, "seed", 0, "Random seed (0 uses the current time)")
	rootCmd.Flags().IntVar(&genMinAmount, "min-amount", 10, "Smallest sales amount")
	rootCmd.Flags().IntVar(&genMaxAmount, "max-amount", 500, "Largest sales amount")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if genRecords < 0 {
		return fmt.Errorf("records must not be negative, got %d", genRecords)
	}
	if genDepartments < 1 {
		return fmt.Errorf("departments must be at least 1, got %d", genDepartments)
	}
	if genMinAmount < 0 || genMaxAmount < genMinAmount {
		return fmt.Errorf("invalid amount range [%d, %d]", genMinAmount, genMaxAmount)
	}

	seed := genSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	departments := make([]string, genDepartments)
	for i := range departments {
		departments[i] = fmt.Sprintf("Department %d", i+1)
	}

	file, err := os.Create(genOutput)
	if err != nil {
		return fmt.Errorf("create %s: %w", genOutput, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintln(writer, "Department Name,Date,Number of Sales")

	baseDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	amountSpan := genMaxAmount - genMinAmount + 1

	for i := 0; i < genRecords; i++ {
		dept := departments[rng.Intn(genDepartments)]
		date := baseDate.AddDate(0, 0, rng.Intn(365))
		amount := genMinAmount + rng.Intn(amountSpan)

		fmt.Fprintf(writer, "%s,%s,%d\n", dept, date.Format("2006-01-02"), amount)

		if i > 0 && i%1_000_000 == 0 {
			if err := writer.Flush(); err != nil {
				return fmt.Errorf("write %s: %w", genOutput, err)
			}
			fmt.Printf("written %d rows...\n", i)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", genOutput, err)
	}

	fmt.Printf("generated %d rows across %d departments in %s\n", genRecords, genDepartments, genOutput)

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
