// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nullaware/pgtyper/cmd/flags"
	"github.com/nullaware/pgtyper/pkg/catalog"
	"github.com/nullaware/pgtyper/pkg/infer"
	"github.com/nullaware/pgtyper/pkg/types"
)

// analyzeCmd builds the `pgtyper analyze <file...>` command: one SQL
// statement per file, described against a shared catalog client over one
// connection pool, printed as a JSON object keyed by file path (spec.md
// §6's CLI contract). A file whose analysis errored still gets a slot in
// the output rather than aborting the batch; the process exits non-zero
// iff any file errored.
func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file...>",
		Short: "Infer parameter and column nullability for one or more SQL files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), args)
		},
	}
}

func runAnalyze(ctx context.Context, files []string) error {
	db, client, err := NewCatalogClient()
	if err != nil {
		return err
	}
	defer db.Close()

	verbose := flags.Verbose() && len(files) > 1
	var sp *pterm.SpinnerPrinter
	if verbose {
		sp, _ = pterm.DefaultSpinner.WithText(fmt.Sprintf("Analyzing %d files...", len(files))).Start()
	}

	results := make(map[string]types.StatementDescription, len(files))
	failed := false

	for i, file := range files {
		if sp != nil {
			sp.UpdateText(fmt.Sprintf("Analyzing %s (%d/%d)...", file, i+1, len(files)))
		}

		desc, err := analyzeFile(ctx, db, client, file)
		if err != nil {
			desc = types.StatementDescription{
				Status: types.AnalyzeStatus{Error: err.Error()},
			}
		}
		if !desc.Status.Success() {
			failed = true
		}
		results[file] = desc
	}

	if sp != nil {
		if failed {
			sp.Fail("analysis completed with errors")
		} else {
			sp.Success("analysis complete")
		}
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if failed {
		os.Exit(1)
	}
	return nil
}

func analyzeFile(ctx context.Context, db *sql.DB, client *catalog.Client, file string) (types.StatementDescription, error) {
	contents, err := os.ReadFile(file)
	if err != nil {
		return types.StatementDescription{}, fmt.Errorf("reading %s: %w", file, err)
	}

	sqlText := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(string(contents)), ";"))
	return infer.Analyze(ctx, db, client, sqlText), nil
}
