package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gridiron-data/gridiron/internal/config"
	"github.com/gridiron-data/gridiron/internal/query"
)

var validateCmd = &cobra.Command{
	Use:   "validate <request.json>",
	Short: "Validate a query request and print the compiled GraphQL document",
	Long: `Validate reads a query request from a JSON file (or stdin when the
argument is "-"), runs it through the full validation pipeline, and prints the
compiled GraphQL document, bound variables, and complexity score.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		var err error
		if args[0] == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read request: %w", err)
		}

		var req query.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			return fmt.Errorf("invalid request JSON: %w", err)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path := schemaPath
		if path == "" {
			path = cfg.SchemaPath
		}
		registry, err := loadRegistry(path)
		if err != nil {
			return err
		}

		builder := query.NewBuilder(registry, cfg.Engine.Options())
		plan, err := builder.Build(&req)
		if err != nil {
			if rejection, ok := query.AsRejection(err); ok {
				color.New(color.FgRed, color.Bold).Printf("rejected: %s\n", rejection.Kind)
				if rejection.Path != "" {
					fmt.Printf("  path: %s\n", rejection.Path)
				}
				fmt.Printf("  hint: %s\n", rejection.Hint)
				os.Exit(1)
			}
			return err
		}

		doc := query.Render(plan)
		color.New(color.FgGreen, color.Bold).Println("valid")
		fmt.Printf("complexity: %g\n\n", plan.Complexity)
		fmt.Println(doc.Query)

		if len(doc.Variables) > 0 {
			vars, err := json.MarshalIndent(doc.Variables, "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("variables: %s\n", vars)
		}
		return nil
	},
}
