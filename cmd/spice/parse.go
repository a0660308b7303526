package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-talk/internal/cli"
	"github.com/Veraticus/spice-talk/internal/common"
	"github.com/Veraticus/spice-talk/internal/engine"
	"github.com/Veraticus/spice-talk/internal/model"
)

func parseCmd() *cobra.Command {
	var (
		save   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Parse one message into a transaction draft",
		Long: `Parse a Vietnamese message such as "ăn trưa 45k" and show the draft:
the action, the amount, the note and the category guesses.

The draft ID can be passed to 'spice correct' to teach the category model.
With --save, drafts confident enough to act on are written to history.`,
		Example: `  spice parse "ăn trưa 45k"
  spice parse --save "nhận lương 15 triệu"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ensureModels(ctx, cmd.ErrOrStderr()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			draft, err := parseText(ctx, a, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if draft == nil {
				fmt.Fprintln(out, cli.FormatInfo("Mình chưa hiểu, bạn nói lại giúp nhé?"))
				return nil
			}

			if asJSON {
				if err := writeDraftJSON(out, draft); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, cli.RenderDraft(draft))
			}

			if !save {
				return nil
			}
			if !draft.AutoCreate() {
				fmt.Fprintln(out, cli.FormatWarning("Draft needs confirmation, not saved. Try: spice chat"))
				return nil
			}
			return saveDraft(ctx, a, out, draft)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Save the draft when it can be created without confirmation")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the draft as JSON")

	return cmd
}

func parseText(ctx context.Context, a *app, text string) (*model.Draft, error) {
	categories, err := a.store.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	draft, err := a.engine.ParseUtterance(ctx, text, categories)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", text, err)
	}
	return draft, nil
}

// saveDraft writes an auto-created draft to history and confirms its
// category as a training label.
func saveDraft(ctx context.Context, a *app, out io.Writer, d *model.Draft) error {
	cat, err := a.store.GetCategoryByID(ctx, d.CategoryID)
	if err != nil {
		return fmt.Errorf("failed to get category %d: %w", d.CategoryID, err)
	}

	if d.ID != "" {
		if _, err := a.engine.RecordCorrection(ctx, d.ID, cat.ID); err != nil {
			return fmt.Errorf("failed to confirm draft: %w", err)
		}
	}

	txn := &model.Transaction{
		ID:         uuid.NewString(),
		Date:       d.Date,
		Note:       d.Note,
		Amount:     *d.Amount,
		Direction:  cat.Type.Direction(),
		CategoryID: cat.ID,
	}
	if err := a.store.SaveTransaction(ctx, txn); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			fmt.Fprintln(out, cli.FormatWarning("Giao dịch này đã được ghi rồi."))
			return nil
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Saved %s to %s", engine.FormatAmount(*d.Amount), cat.Name)))
	return nil
}

type draftJSON struct {
	Amount       *int64              `json:"amount"`
	Primary      *model.Prediction   `json:"primary,omitempty"`
	ID           string              `json:"id,omitempty"`
	Action       model.Action        `json:"action"`
	Note         string              `json:"note"`
	IO           model.Direction     `json:"io"`
	Date         string              `json:"date"`
	Category     string              `json:"category,omitempty"`
	Decision     model.DecisionState `json:"decision"`
	Tier         string              `json:"tier"`
	Message      string              `json:"message"`
	Alternatives []model.Prediction  `json:"alternatives"`
	Confidence   float64             `json:"action_confidence"`
}

func writeDraftJSON(w io.Writer, d *model.Draft) error {
	alts := d.Alternatives
	if alts == nil {
		alts = model.Ranking{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(draftJSON{
		Amount:       d.Amount,
		Primary:      d.Primary,
		ID:           d.ID,
		Action:       d.Action,
		Note:         d.Note,
		IO:           d.IO,
		Date:         d.Date.Format("2006-01-02"),
		Category:     d.CategoryName,
		Decision:     d.Decision,
		Tier:         d.Tier,
		Message:      d.Message,
		Alternatives: alts,
		Confidence:   d.ActionConfidence,
	})
}
