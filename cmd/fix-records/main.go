// fix-records repairs stored SBC records: legacy answers outside Yes/No/Unknown
// are coerced and missing explanations are regenerated.
//
// Usage:
//
//	fix-records              # fix invalid or unexplained records
//	fix-records --force      # regenerate every explanation
//	fix-records --dry-run    # report what would change
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"sbc-validator-backend/config"
	"sbc-validator-backend/extraction"
	"sbc-validator-backend/repository"
	"sbc-validator-backend/service"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var flags struct {
	force  bool
	dryRun bool
}

var rootCmd = &cobra.Command{
	Use:   "fix-records",
	Short: "Repair stored SBC answers and regenerate explanations",
	Long: `Scan every stored SBC record and repair it.

Answers outside Yes/No/Unknown are coerced: the legacy "S" value-standards
answer becomes Yes and anything else becomes Unknown. Explanations are
regenerated for repaired records and for records whose explanations are
missing or shorter than 10 characters. Valid Yes/No answers are never changed.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().BoolVar(&flags.force, "force", false, "regenerate explanations for every record")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "report changes without writing them")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := config.Load()
	ctx := context.Background()

	store, err := repository.OpenRecordStore(ctx, cfg.StoreConfig())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	svc := service.NewRecordService(
		service.WithRecordStore(store),
		service.WithEngine(extraction.NewEngine(extraction.WithExplanationConfig(cfg.ExplanationConfig()))),
	)

	res, err := svc.RegenerateExplanations(ctx, service.RegenerateRequest{
		Force:  flags.force,
		DryRun: flags.dryRun,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	verb := "Updated"
	if flags.dryRun {
		verb = "Would update"
	}
	for _, r := range res.Updated {
		fmt.Fprintf(out, "%s %s (%s): penalty_a %s -> %s, penalty_b %s -> %s\n",
			verb, r.ID, r.GroupName, r.OldA, r.NewA, r.OldB, r.NewB)
	}
	fmt.Fprintf(out, "✓ Checked %d records, %s %d\n", res.Checked, strings.ToLower(verb), len(res.Updated))
	return nil
}
