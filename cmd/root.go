package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "clauselens",
	Short: "Retrieval-augmented legal document assistant",
	Long: `ClauseLens reads legal documents, splits them into clause-tagged
sections and indexes them for semantic search. Ask questions in plain
language and get grounded, simplified answers with conversational
follow-up.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".clauselens.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
