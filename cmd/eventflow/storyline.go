package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eventflow/internal/narrative"
	"eventflow/internal/store"
)

func storylineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storyline",
		Short: "Manage storylines",
	}
	cmd.AddCommand(storylineCreateCmd())
	cmd.AddCommand(storylineDeleteCmd())
	return cmd
}

func storylineCreateCmd() *cobra.Command {
	var storyID, title, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a storyline in a story",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if storyID == "" {
				return fmt.Errorf("--story is required")
			}
			ctx := context.Background()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			if _, err := db.GetStory(ctx, storyID); err != nil {
				return fmt.Errorf("story %s: %w", storyID, err)
			}
			storyline := &narrative.Storyline{
				ID:          narrative.NewID(),
				StoryID:     storyID,
				Title:       title,
				Description: description,
			}
			if err := db.AddStoryline(ctx, storyline); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Created storyline %s\n", storyline.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&storyID, "story", "", "Parent story id")
	cmd.Flags().StringVar(&title, "title", "", "Storyline title")
	cmd.Flags().StringVar(&description, "description", "", "Storyline description")
	return cmd
}

func storylineDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <storyline-id>",
		Short: "Delete a storyline and its events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			if err := deleteStorylineCascade(ctx, db, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Deleted storyline %s\n", args[0])
			return nil
		},
	}
}

func deleteStorylineCascade(ctx context.Context, db store.Store, storylineID string) error {
	if err := db.DeleteEventsByStoryline(ctx, storylineID); err != nil {
		return err
	}
	return db.DeleteStoryline(ctx, storylineID)
}
