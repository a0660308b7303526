package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-talk/internal/amount"
	"github.com/Veraticus/spice-talk/internal/category"
	"github.com/Veraticus/spice-talk/internal/cli"
	"github.com/Veraticus/spice-talk/internal/common"
	"github.com/Veraticus/spice-talk/internal/intent"
)

var modelNames = []string{intent.ModelName, amount.ModelName, category.ModelName}

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect and reset the saved models",
	}

	cmd.AddCommand(modelsStatusCmd())
	cmd.AddCommand(modelsResetCmd())

	return cmd
}

func modelsStatusCmd() *cobra.Command {
	var load bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show saved models",
		Long: `List the models saved in the database. With --load the models are
loaded (or trained) and their in-memory state is shown as well.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			records, err := a.models.List(ctx)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No saved models. Run 'spice bootstrap' to train them."))
			} else {
				fmt.Fprintln(out, cli.RenderModelRecords(records))
			}

			if !load {
				return nil
			}
			if err := a.ensureModels(ctx, cmd.ErrOrStderr()); err != nil {
				return err
			}
			if _, err := a.learner.Holder().Ensure(ctx); err != nil && !errors.Is(err, common.ErrInsufficientSamples) {
				return fmt.Errorf("failed to load category model: %w", err)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, cli.RenderModelStatus(a.engine.Status()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&load, "load", false, "Load the models and show their state")

	return cmd
}

func modelsResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:       "reset [model...]",
		Short:     "Delete saved models",
		Long:      `Delete saved models so they are trained again on next use. Without arguments every model is deleted. Logged samples and corrections are kept.`,
		ValidArgs: modelNames,
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = modelNames
			}
			names = slices.Compact(slices.Sorted(slices.Values(names)))

			out := cmd.OutOrStdout()
			if !force {
				fmt.Fprintf(out, "Delete saved models %v? (y/N): ", names)
				var response string
				_, _ = fmt.Fscanln(cmd.InOrStdin(), &response)
				if response != "y" && response != "Y" {
					fmt.Fprintln(out, "Reset cancelled.")
					return nil
				}
			}

			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, name := range names {
				if err := a.models.Delete(ctx, name); err != nil && !errors.Is(err, common.ErrNotFound) {
					return err
				}
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %s model", name)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}
