package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/cli"
	"github.com/aretw0/strata/internal/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <document.kra>",
	Short: "Write the pixels of a layer as PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layer, _ := cmd.Flags().GetString("layer")
		out, _ := cmd.Flags().GetString("out")
		width, _ := cmd.Flags().GetInt("width")

		if out == "" || out == "-" {
			return runExport(cmd.Context(), cmd.OutOrStdout(), args[0], layer, width)
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := runExport(cmd.Context(), f, args[0], layer, width); err != nil {
			f.Close()
			os.Remove(out)
			return err
		}
		return f.Close()
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("layer", "l", "", "Name of the layer or mask to export")
	exportCmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	exportCmd.Flags().IntP("width", "w", 0, "Scale to this width, keeping the aspect ratio")
	_ = exportCmd.MarkFlagRequired("layer")
}

func runExport(ctx context.Context, w io.Writer, path, layer string, width int) error {
	opts := append(cli.LoadOptions(cfg.Loader, logger), strata.WithBestEffort(true))
	doc, err := strata.Open(ctx, path, opts...)
	if err != nil {
		return err
	}
	node := doc.Layer(layer)
	if node == nil {
		return fmt.Errorf("layer %q not found in %s", layer, doc.Name)
	}
	if res, ok := doc.Report.Result(node.ID()); ok && res.Err != nil {
		return fmt.Errorf("layer %q did not load: %w", layer, res.Err)
	}
	return export.WritePNG(w, node, width)
}
