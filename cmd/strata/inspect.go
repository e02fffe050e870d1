package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/cli"
	"github.com/aretw0/strata/internal/dto"
	"github.com/aretw0/strata/internal/presentation/graph"
	"github.com/aretw0/strata/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <document.kra>",
	Short: "Print the layer tree of a document",
	Long: `Loads a .kra file or unpacked KRA directory and prints its node tree.
Node failures are shown in the output instead of aborting.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		noColor, _ := cmd.Flags().GetBool("no-color")
		return runInspect(cmd.Context(), cmd.OutOrStdout(), args[0], format, noColor)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("format", "f", "tree", "Output format: tree, json, markdown or mermaid")
	inspectCmd.Flags().Bool("no-color", false, "Disable colored output")
}

func runInspect(ctx context.Context, w io.Writer, path, format string, noColor bool) error {
	opts := append(cli.LoadOptions(cfg.Loader, logger), strata.WithBestEffort(true))
	doc, err := strata.Open(ctx, path, opts...)
	if err != nil {
		return err
	}

	switch format {
	case "tree":
		tui.RenderTree(w, doc, tui.TreeOptions{Profile: cli.ColorProfile(w, noColor)})
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dto.FromDocument(doc))
	case "markdown":
		md := tui.Markdown(doc)
		if noColor || !cli.IsTerminal(w) {
			_, err := io.WriteString(w, md)
			return err
		}
		render, err := tui.NewRenderer(cli.TerminalWidth(w, 80))
		if err != nil {
			return err
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case "mermaid":
		_, err := io.WriteString(w, graph.GenerateMermaid(doc))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}
