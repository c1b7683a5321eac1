package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"eventflow/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// stdout carries the MCP protocol; operational messages go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	logger.Info("serving MCP over stdio", "project", cfg.Project, "version", version)
	server := mcp.NewServer(db, version)
	if err := server.Run(ctx, &sdk.StdioTransport{}); err != nil {
		logger.Error("server stopped", "error", err)
		return err
	}
	return nil
}
