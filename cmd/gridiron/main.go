package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridiron",
		Short: "Schema-validated query gateway for college football statistics",
		Long: `Gridiron exposes a college football statistics database to automated
callers through controlled, schema-validated queries. Requests are checked
against a known entity schema, bounded in depth, field count, and cost, and
compiled into GraphQL documents with bound variables.`,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(validateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gridiron %s (%s)\n", Version, GitCommit)
	},
}
