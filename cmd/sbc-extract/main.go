// sbc-extract classifies SBC documents from the command line and prints the
// results as JSON.
//
// Usage:
//
//	sbc-extract plan.pdf other.pdf
//	sbc-extract --concurrency 8 ./sbcs/*.pdf
//	sbc-extract --text extracted.txt     # pages separated by form feeds
//	sbc-extract --verbose plan.pdf       # include matches and facts
package main

import (
	"fmt"
	"os"
	"time"

	"sbc-validator-backend/textextract"

	"github.com/spf13/cobra"
)

var flags struct {
	concurrency int
	text        bool
	verbose     bool
	binary      string
	timeout     time.Duration
}

var rootCmd = &cobra.Command{
	Use:   "sbc-extract [files...]",
	Short: "Classify Summary of Benefits and Coverage documents",
	Long: `Extract the company name and the Minimum Essential Coverage and Minimum
Value Standards answers from one or more SBC documents.

PDFs are converted with pdftotext. With --text the inputs are already
extracted text files whose pages are separated by form feeds.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runExtract,
}

func init() {
	rootCmd.Flags().IntVarP(&flags.concurrency, "concurrency", "j", 4, "documents processed in parallel")
	rootCmd.Flags().BoolVar(&flags.text, "text", false, "inputs are extracted text, pages separated by form feeds")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "include matched strategies and plan facts")
	rootCmd.Flags().StringVar(&flags.binary, "pdftotext", textextract.DefaultBinary, "pdftotext binary")
	rootCmd.Flags().DurationVar(&flags.timeout, "timeout", textextract.DefaultTimeout, "per-document pdftotext timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
