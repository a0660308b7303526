package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-talk/internal/amount"
	"github.com/Veraticus/spice-talk/internal/category"
	"github.com/Veraticus/spice-talk/internal/cli"
	"github.com/Veraticus/spice-talk/internal/common"
	"github.com/Veraticus/spice-talk/internal/intent"
)

func retrainCmd() *cobra.Command {
	var incremental bool

	cmd := &cobra.Command{
		Use:   "retrain",
		Short: "Retrain the category model from corrections",
		Long: `Train the category model on every logged prediction, using the
category you chose where you corrected one. With --incremental the current
model is warm-started and trained for a few epochs only.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			interruptHandler := cli.NewInterruptHandler(cmd.OutOrStdout())
			ctx := interruptHandler.HandleInterrupts(cmd.Context(), true)

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if incremental {
				// Warm starts need the saved model loaded first.
				if _, err := a.learner.Holder().Ensure(ctx); err != nil && !errors.Is(err, common.ErrInsufficientSamples) {
					return fmt.Errorf("failed to load category model: %w", err)
				}
			}

			progress := cli.NewTrainingProgress(cmd.ErrOrStderr())
			a.learner.SetProgress(func(epoch, total int, loss float64) {
				progress.Report(category.ModelName, epoch, total, loss)
			})

			result, err := a.learner.Retrain(ctx, incremental)
			progress.Finish()
			if err != nil {
				if interruptHandler.WasInterrupted() {
					return nil
				}
				return err
			}

			out := cmd.OutOrStdout()
			if result.Skipped {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf(
					"Not enough confirmed samples to train (%d, need %d)", result.Samples, a.settings.Learning.MinRetrainSamples)))
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
				"Category model retrained on %d confirmed samples (generation %d)", result.Samples, a.learner.Holder().Generation())))
			return nil
		},
	}

	cmd.Flags().BoolVar(&incremental, "incremental", false, "Warm-start from the current model")

	return cmd
}

func bootstrapCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Train the intent and amount models",
		Long: `Train the intent and amount models on generated examples and save them.
Saved models are reused, so this only trains what is missing unless --force
is given. Other commands bootstrap on first use as well.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			interruptHandler := cli.NewInterruptHandler(cmd.OutOrStdout())
			ctx := interruptHandler.HandleInterrupts(cmd.Context(), true)

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if force {
				for _, name := range []string{intent.ModelName, amount.ModelName} {
					if err := a.models.Delete(ctx, name); err != nil && !errors.Is(err, common.ErrNotFound) {
						return fmt.Errorf("failed to delete %s model: %w", name, err)
					}
				}
			}

			if err := a.ensureModels(ctx, cmd.ErrOrStderr()); err != nil {
				if interruptHandler.WasInterrupted() {
					return nil
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderModelStatus(a.engine.Status()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Retrain even when saved models exist")

	return cmd
}
