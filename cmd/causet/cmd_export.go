package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agenthands/causet/internal/core/export"
)

var exportFlags struct {
	out string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the whole model as a YAML file",
	Long: `Export serializes the current model (references, nodes, links) into
the YAML schema that ingest accepts, so a store-backed model can be
versioned or moved between stores.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.out, "out", "o", "model.yaml", "Output path")
}

func runExport(cmd *cobra.Command, args []string) error {
	c, closeModel, err := openModel(cmd.Context())
	if err != nil {
		return err
	}
	defer closeModel()

	out, err := os.Create(exportFlags.out)
	if err != nil {
		return err
	}
	defer out.Close()

	mf := export.Snapshot(c)
	if err := export.WriteModelYAML(out, mf); err != nil {
		return err
	}

	fmt.Printf("Exported %d references, %d nodes, %d links to %s\n",
		len(mf.References), len(mf.Nodes), len(mf.Links), exportFlags.out)
	return nil
}
