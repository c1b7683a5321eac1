package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"eventflow/internal/export"
	"eventflow/internal/graph"
)

func exportCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export <storyline-id>",
		Short: "Export a storyline to a portable JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args[0], outDir)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (defaults to the configured export dir)")
	return cmd
}

func runExport(storylineID, outDir string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = cfg.Export.Dir
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	m, err := graph.New(db).LoadModel(ctx, storylineID)
	if err != nil {
		return err
	}

	document, err := export.Marshal(m.Events())
	if err != nil {
		return err
	}

	path := filepath.Join(outDir, export.Filename(storylineID))
	if err := os.WriteFile(path, document, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(os.Stdout, "Exported %d events to %s\n", m.Len(), path)
	return nil
}
