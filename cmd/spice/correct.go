package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-talk/internal/cli"
)

func correctCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "correct <draft-id> <category-id>",
		Short: "Tell the category model which category a draft belonged to",
		Long: `Record the right category for a draft shown by 'spice parse'. Each
correction becomes a training label; once enough have been collected the
category model is retrained in the background.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category ID %q: %w", args[1], err)
			}

			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			recorded, err := a.engine.RecordCorrection(ctx, args[0], categoryID)
			if err != nil {
				return fmt.Errorf("failed to record correction: %w", err)
			}

			out := cmd.OutOrStdout()
			if !recorded {
				fmt.Fprintln(out, cli.FormatInfo("The draft already predicted that category, nothing to learn."))
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Recorded category %d for draft %s", categoryID, args[0])))
			fmt.Fprintln(out, cli.FormatInfo("Retraining the category model..."))
			return nil
		},
	}
}
