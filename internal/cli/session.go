package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spice-talk/internal/common"
	"github.com/Veraticus/spice-talk/internal/engine"
	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/service"
)

var quitWords = map[string]struct{}{"/q": {}, "/quit": {}, "exit": {}, "thoát": {}}

// Session is an interactive chat: every line is parsed into a draft, the
// user fixes what the draft lacks and the transaction lands in history.
type Session struct {
	prompter   *Prompter
	parser     engine.Parser
	categories service.CategoryStore
	history    service.HistoryStore
}

// NewSession creates a chat session.
func NewSession(prompter *Prompter, parser engine.Parser, categories service.CategoryStore, history service.HistoryStore) *Session {
	return &Session{
		prompter:   prompter,
		parser:     parser,
		categories: categories,
		history:    history,
	}
}

// Run reads utterances until the input ends, the user quits or ctx is
// canceled.
func (s *Session) Run(ctx context.Context) error {
	s.prompter.Say(FormatTitle("spice chat"))
	s.prompter.Say(SubtleStyle.Render("Nhập giao dịch, ví dụ \"ăn trưa 45k\". Gõ /q để thoát."))

	for {
		line, err := s.prompter.ReadUtterance(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, ErrInputCancelled) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if _, quit := quitWords[line]; quit {
			break
		}
		if line == "" {
			continue
		}

		if err := s.Handle(ctx, line); err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrInputCancelled) {
				break
			}
			s.prompter.Say(FormatError(err.Error()))
		}
	}

	s.prompter.ShowCompletion()
	return nil
}

// Handle parses one utterance and resolves its draft with the user.
func (s *Session) Handle(ctx context.Context, line string) error {
	categories, err := s.categories.GetCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	draft, err := s.parser.ParseUtterance(ctx, line, categories)
	if err != nil {
		return fmt.Errorf("failed to parse: %w", err)
	}
	if draft == nil {
		s.prompter.Say(FormatInfo("Mình chưa hiểu, bạn nói lại giúp nhé?"))
		return nil
	}
	if draft.Action != model.ActionCreateTransaction {
		s.prompter.Say(RenderDraft(draft))
		return nil
	}

	res, err := s.prompter.ResolveDraft(ctx, draft, categories)
	if err != nil {
		return err
	}
	if res.Skipped {
		s.prompter.Say(SubtleStyle.Render("Đã bỏ qua."))
		return nil
	}

	chosen := findCategory(categories, res.CategoryID)
	if chosen == nil {
		return fmt.Errorf("%w: %d", common.ErrUnknownCategory, res.CategoryID)
	}

	if draft.ID != "" {
		if _, err := s.parser.RecordCorrection(ctx, draft.ID, chosen.ID); err != nil {
			slog.Warn("Failed to record correction", "draft_id", draft.ID, "error", err)
		}
	}

	txn := &model.Transaction{
		ID:         uuid.NewString(),
		Date:       draftDate(draft),
		Note:       draft.Note,
		Amount:     res.Amount,
		Direction:  chosen.Type.Direction(),
		CategoryID: chosen.ID,
	}
	if err := s.history.SaveTransaction(ctx, txn); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			s.prompter.Say(FormatWarning("Giao dịch này đã được ghi rồi."))
			return nil
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	s.prompter.Say(formatSaved(res.Amount, chosen.Name))
	return nil
}

func draftDate(d *model.Draft) time.Time {
	if d.Date.IsZero() {
		return time.Now()
	}
	return d.Date
}

func findCategory(categories []model.Category, id int64) *model.Category {
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i]
		}
	}
	return nil
}
