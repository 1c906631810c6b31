package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gridiron-data/gridiron/internal/config"
	"github.com/gridiron-data/gridiron/internal/explorer"
)

var schemaPath string

func init() {
	for _, cmd := range []*cobra.Command{exploreCmd, describeCmd, statsCmd, validateCmd} {
		cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to a YAML schema definition (default: embedded schema)")
	}
}

func newExplorer() (*explorer.Explorer, error) {
	path := schemaPath
	if path == "" {
		if cfg, err := config.Load(); err == nil {
			path = cfg.SchemaPath
		}
	}
	registry, err := loadRegistry(path)
	if err != nil {
		return nil, err
	}
	return explorer.New(registry), nil
}

var exploreCmd = &cobra.Command{
	Use:   "explore <term>",
	Short: "Search entities and fields in the schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := newExplorer()
		if err != nil {
			return err
		}

		matches := exp.Search(args[0])
		if len(matches) == 0 {
			fmt.Printf("No matches for %q\n", args[0])
			return nil
		}

		entity := color.New(color.FgCyan, color.Bold)
		for _, match := range matches {
			if match.Field == "" {
				entity.Println(match.Entity)
			} else {
				fmt.Printf("%s.%s\n", entity.Sprint(match.Entity), match.Field)
			}
		}
		return nil
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <entity>",
	Short: "Show all fields and relationships of an entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := newExplorer()
		if err != nil {
			return err
		}

		desc, exists := exp.DescribeEntity(args[0])
		if !exists {
			return fmt.Errorf("unknown entity: %s", args[0])
		}

		color.New(color.FgCyan, color.Bold).Println(desc.Name)
		if desc.Description != "" {
			fmt.Printf("  %s\n", desc.Description)
		}

		fmt.Println("\nFields:")
		for _, field := range desc.Fields {
			fmt.Printf("  %-20s %s\n", field.Name, field.Type)
		}

		if len(desc.Relationships) > 0 {
			fmt.Println("\nRelationships:")
			for _, rel := range desc.Relationships {
				fmt.Printf("  %-20s -> %s (%s)\n", rel.Name, rel.Target, rel.Cardinality)
			}
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show schema statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := newExplorer()
		if err != nil {
			return err
		}

		stats := exp.Stats()
		fmt.Printf("Entities:      %d\n", stats.Entities)
		fmt.Printf("Fields:        %d\n", stats.Fields)
		fmt.Printf("Relationships: %d\n", stats.Relationships)
		return nil
	},
}
