package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	modelFile  string
}

var rootCmd = &cobra.Command{
	Use:   "causet",
	Short: "Causal evidence base with Monte-Carlo CPT quantification",
	Long: "Causet manages a causal network of evidence-linked factors and\n" +
		"quantifies conditional-probability tables for any target factor by\n" +
		"propagating analyst-elicited uncertainty through Monte-Carlo sampling.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "Path to config TOML (default config/config.toml)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.modelFile, "file", "", "Operate on a YAML model file in memory instead of the graph store")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(quantifyCmd)
	rootCmd.AddCommand(refsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.Version = version
}

func main() {
	_ = godotenv.Load()
	log.SetFlags(0)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
