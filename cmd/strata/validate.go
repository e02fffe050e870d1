package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/cli"
	"github.com/spf13/cobra"
)

// errInvalid is returned when a document loads with node failures.
var errInvalid = errors.New("document has nodes that failed to load")

var validateCmd = &cobra.Command{
	Use:   "validate <document.kra>",
	Short: "Check that every node of a document loads",
	Long: `Loads every layer and mask of the document and lists the nodes that failed
and the limitations met. Exits non-zero when any node failed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(ctx context.Context, w io.Writer, path string) error {
	opts := append(cli.LoadOptions(cfg.Loader, logger), strata.WithBestEffort(true))
	doc, err := strata.Open(ctx, path, opts...)
	if err != nil {
		return err
	}

	report := doc.Report
	for _, res := range report.Nodes {
		if res.Err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", res.Name, res.Err)
		}
	}
	for _, lim := range report.Limitations {
		fmt.Fprintf(w, "WARN %s: %v\n", lim.Name, lim.Err)
	}
	if report.LegacyMasks > 0 {
		fmt.Fprintf(w, "converted %d legacy masks\n", report.LegacyMasks)
	}

	if !report.OK() {
		return fmt.Errorf("%w: %d of %d", errInvalid, report.Failed(), len(report.Nodes))
	}
	fmt.Fprintf(w, "%s is valid (%d nodes, syntax %d)\n", doc.Name, len(report.Nodes), doc.SyntaxVersion)
	return nil
}
