package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eventflow/internal/export"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <storyline-id> <file>",
		Short: "Import a storyline document into an existing storyline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], args[1])
		},
	}
	return cmd
}

func runImport(storylineID, path string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	// Parse rejects unusable documents before anything touches the store.
	events, err := export.Parse(data)
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	storyline, err := db.GetStoryline(ctx, storylineID)
	if err != nil {
		return fmt.Errorf("storyline %s: %w", storylineID, err)
	}

	result, err := export.Apply(ctx, db, storyline, events)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Import complete.\n")
	fmt.Fprintf(os.Stdout, "  Events created: %d\n", result.Created)

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("import completed with errors")
	}
	return nil
}
