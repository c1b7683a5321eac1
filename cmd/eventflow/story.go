package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eventflow/internal/narrative"
	"eventflow/internal/store"
)

func storyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Manage stories",
	}
	cmd.AddCommand(storyCreateCmd())
	cmd.AddCommand(storyDeleteCmd())
	return cmd
}

func storyCreateCmd() *cobra.Command {
	var title, description, author string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a story",
		Args:  cobra.NoArgs,
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

			story := &narrative.Story{
				ID:          narrative.NewID(),
				Title:       title,
				Description: description,
				Author:      author,
			}
			if err := db.AddStory(ctx, story); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Created story %s\n", story.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Story title")
	cmd.Flags().StringVar(&description, "description", "", "Story description")
	cmd.Flags().StringVar(&author, "author", "", "Story author")
	return cmd
}

func storyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <story-id>",
		Short: "Delete a story, its storylines, and their events",
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

			if err := deleteStoryCascade(ctx, db, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Deleted story %s\n", args[0])
			return nil
		},
	}
}

// deleteStoryCascade removes children before parents so a failure partway
// through never leaves events whose storyline is already gone.
func deleteStoryCascade(ctx context.Context, db store.Store, storyID string) error {
	storylines, err := db.ListStorylinesByStory(ctx, storyID)
	if err != nil {
		return err
	}
	for _, storyline := range storylines {
		if err := db.DeleteEventsByStoryline(ctx, storyline.ID); err != nil {
			return err
		}
		if err := db.DeleteStoryline(ctx, storyline.ID); err != nil {
			return err
		}
	}
	return db.DeleteStory(ctx, storyID)
}
