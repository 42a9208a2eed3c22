package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var progressClear string

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "List saved reading positions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		store, err := openProgressStore(ctx)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("progress tracking is disabled")
		}
		defer store.Close() //nolint:errcheck

		if progressClear != "" {
			if err := store.Delete(ctx, progressClear); err != nil {
				return fmt.Errorf("unable to clear position: %w", err)
			}
			fmt.Println("Cleared position for:", progressClear)
			return nil
		}

		positions, err := store.List(ctx)
		if err != nil {
			return err
		}
		if len(positions) == 0 {
			fmt.Println("No saved reading positions.")
			return nil
		}
		for _, p := range positions {
			fmt.Printf("%s: page %d, %s\n", filepath.Base(p.Book), p.Page+1, humanize.Time(p.UpdatedAt))
		}
		return nil
	},
}

func init() {
	progressCmd.Flags().StringVar(&progressClear, "clear", "", "clear the saved position for a book")
}
