package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eventflow/internal/graph"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stories, storylines, or events",
	}
	cmd.AddCommand(listStoriesCmd())
	cmd.AddCommand(listStorylinesCmd())
	cmd.AddCommand(listEventsCmd())
	return cmd
}

func listStoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stories",
		Short: "List all stories",
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

			stories, err := db.ListStories(ctx)
			if err != nil {
				return err
			}
			if len(stories) == 0 {
				fmt.Fprintln(os.Stdout, "No stories found.")
				return nil
			}
			for _, story := range stories {
				status := "draft"
				if story.Published {
					status = "published"
				}
				fmt.Fprintf(os.Stdout, "%s  %s [%s]\n", story.ID, story.Title, status)
			}
			return nil
		},
	}
}

func listStorylinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "storylines <story-id>",
		Short: "List the storylines of a story",
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

			storylines, err := db.ListStorylinesByStory(ctx, args[0])
			if err != nil {
				return err
			}
			if len(storylines) == 0 {
				fmt.Fprintln(os.Stdout, "No storylines found.")
				return nil
			}
			for _, storyline := range storylines {
				fmt.Fprintf(os.Stdout, "%s  %s\n", storyline.ID, storyline.Title)
			}
			return nil
		},
	}
}

func listEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events <storyline-id>",
		Short: "List the events of a storyline",
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

			m, err := graph.New(db).LoadModel(ctx, args[0])
			if err != nil {
				return err
			}
			if m.Len() == 0 {
				fmt.Fprintln(os.Stdout, "No events found.")
				return nil
			}
			for _, event := range m.Events() {
				marker := " "
				if event.IsStarter {
					marker = "*"
				}
				fmt.Fprintf(os.Stdout, "%s %s  %s (%d options)\n", marker, event.ID, event.Title, len(event.Options))
			}
			return nil
		},
	}
}
