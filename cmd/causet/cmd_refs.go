package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agenthands/causet/internal/core/ris"
)

var refsFlags struct {
	ids string
}

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Manage bibliographic references",
}

var refsImportCmd = &cobra.Command{
	Use:   "import <file.ris>",
	Short: "Import references from a RIS file",
	Long: `Import parses a RIS bibliography export and adds one reference per
entry. The --ids list supplies the reference ids in entry order and
must match the entry count:

  causet refs import papers.ris --ids smith19,jones2,osha1`,
	Args: cobra.ExactArgs(1),
	RunE: runRefsImport,
}

var refsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List references in the model",
	RunE:  runRefsList,
}

func init() {
	refsImportCmd.Flags().StringVar(&refsFlags.ids, "ids", "", "Comma-separated reference ids, one per RIS entry (required)")
	_ = refsImportCmd.MarkFlagRequired("ids")

	refsCmd.AddCommand(refsImportCmd)
	refsCmd.AddCommand(refsListCmd)
}

func runRefsImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	ids := strings.Split(refsFlags.ids, ",")
	refs, err := ris.Parse(f, ids)
	if err != nil {
		return err
	}

	c, closeModel, err := openModel(ctx)
	if err != nil {
		return err
	}
	defer closeModel()

	for _, ref := range refs {
		if err := c.AddReference(ctx, ref); err != nil {
			return err
		}
	}

	fmt.Printf("Imported %d references from %s\n", len(refs), args[0])
	return nil
}

func runRefsList(cmd *cobra.Command, args []string) error {
	c, closeModel, err := openModel(cmd.Context())
	if err != nil {
		return err
	}
	defer closeModel()

	for _, r := range c.References() {
		fmt.Printf("%-10s %s (%s) %s\n", r.ID, r.Title, r.Year, r.Authors)
	}
	return nil
}
