package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-talk/internal/cli"
	"github.com/Veraticus/spice-talk/internal/learning"
)

func chatCmd() *cobra.Command {
	var noSchedule bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Log transactions by chatting",
		Long: `Start an interactive session. Type what you spent or received, for
example "ăn trưa 45k" or "nhận lương 15 triệu", confirm or fix the draft,
and it is saved to history. Corrections retrain the category model while
you keep typing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			interruptHandler := cli.NewInterruptHandler(cmd.OutOrStdout())
			ctx := interruptHandler.HandleInterrupts(cmd.Context(), true)

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ensureModels(ctx, cmd.ErrOrStderr()); err != nil {
				if interruptHandler.WasInterrupted() {
					return nil
				}
				return err
			}

			if !noSchedule {
				scheduler, err := learning.NewScheduler(a.learner, a.settings.Learning.RetrainSchedule)
				if err != nil {
					return err
				}
				scheduler.Start(ctx)
				defer scheduler.Stop()
				slog.Debug("Next scheduled retrain", "at", scheduler.Next())
			}

			prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			session := cli.NewSession(prompter, a.engine, a.store, a.store)
			if err := session.Run(ctx); err != nil {
				return fmt.Errorf("chat failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "Do not run scheduled retrains during the session")

	return cmd
}
