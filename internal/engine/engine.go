// Package engine turns one free-form utterance into a transaction draft.
//
// The engine runs the intent classifier and the amount tagger side by side,
// strips the amount out of the text to get the note, ranks the caller's
// categories for the note and decides whether the top guess is good enough
// to act on. Every category guess shown to the user is logged so that later
// corrections can retrain the category model.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/spice-talk/internal/amount"
	"github.com/Veraticus/spice-talk/internal/category"
	"github.com/Veraticus/spice-talk/internal/classification"
	"github.com/Veraticus/spice-talk/internal/config"
	"github.com/Veraticus/spice-talk/internal/intent"
	"github.com/Veraticus/spice-talk/internal/learning"
	"github.com/Veraticus/spice-talk/internal/lifecycle"
	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/modelstore"
	"github.com/Veraticus/spice-talk/internal/service"
	"github.com/Veraticus/spice-talk/internal/textproc"
)

// ErrNoPrediction is returned when correcting a draft that showed no
// category prediction.
var ErrNoPrediction = errors.New("draft has no logged prediction")

var (
	intentCodec = modelstore.Codec[intent.Classifier]{
		Snapshot: (*intent.Classifier).Snapshot,
		Restore:  intent.Restore,
	}
	amountCodec = modelstore.Codec[amount.Extractor]{
		Snapshot: (*amount.Extractor).Snapshot,
		Restore:  amount.Restore,
	}
)

// ProgressFunc receives training progress for the named model.
type ProgressFunc func(name string, epoch, total int, loss float64)

// Engine parses utterances into drafts.
type Engine struct {
	intents  *lifecycle.Holder[intent.Classifier]
	amounts  *lifecycle.Holder[amount.Extractor]
	learner  *learning.Learner
	detector *classification.DirectionDetector
	chain    *category.Chain
	keywords *category.KeywordRanker
	now      func() time.Time
	progress ProgressFunc
	cal      config.Calibration
	timeout  time.Duration
}

// New creates an engine. Intent and amount models are restored from store
// or bootstrapped from synthetic data on first use; the category model
// belongs to learner.
func New(store *modelstore.Store, history service.HistoryStore, learner *learning.Learner, settings config.Settings) (*Engine, error) {
	detector, err := classification.NewDirectionDetector(classification.DefaultPatterns())
	if err != nil {
		return nil, fmt.Errorf("failed to create direction detector: %w", err)
	}

	cal := settings.Calibration
	e := &Engine{
		learner:  learner,
		detector: detector,
		keywords: category.NewKeywordRanker(cal),
		cal:      cal,
		timeout:  settings.ParseTimeout,
		now:      time.Now,
	}
	e.chain = category.NewChain(
		category.NewModelRanker(learner.Holder().Current, cal.MinModelScore),
		e.keywords,
		category.NewPriorRanker(history, cal.PriorWindowDays),
	)

	e.intents = lifecycle.New(intent.ModelName, modelstore.LoadOrTrain(store, intent.ModelName, intentCodec,
		func(ctx context.Context) (*intent.Classifier, error) {
			return intent.Bootstrap(ctx, settings.Intent, e.report(intent.ModelName))
		}))
	e.amounts = lifecycle.New(amount.ModelName, modelstore.LoadOrTrain(store, amount.ModelName, amountCodec,
		func(ctx context.Context) (*amount.Extractor, error) {
			return amount.Bootstrap(ctx, settings.Amount, e.report(amount.ModelName))
		}))

	return e, nil
}

// SetProgress reports training progress of every model to fn. Call it
// before Start or Ensure.
func (e *Engine) SetProgress(fn ProgressFunc) {
	e.progress = fn
	e.learner.SetProgress(e.report(category.ModelName))
}

func (e *Engine) report(name string) func(epoch, total int, loss float64) {
	if e.progress == nil {
		return nil
	}
	return func(epoch, total int, loss float64) {
		e.progress(name, epoch, total, loss)
	}
}

// Start begins loading or training every model in the background.
func (e *Engine) Start(ctx context.Context) {
	e.intents.Start(ctx)
	e.amounts.Start(ctx)
	e.learner.Holder().Start(ctx)
}

// Ensure blocks until the intent and amount models are ready. The category
// model is only started: it cannot exist before the user has corrected
// enough predictions.
func (e *Engine) Ensure(ctx context.Context) error {
	e.learner.Holder().Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := e.intents.Ensure(gctx)
		return err
	})
	g.Go(func() error {
		_, err := e.amounts.Ensure(gctx)
		return err
	})
	return g.Wait()
}

// ModelStatus describes one model holder.
type ModelStatus struct {
	SwappedAt  time.Time
	Name       string
	State      lifecycle.State
	Generation uint64
	Retraining bool
}

// Status reports every model's lifecycle state.
func (e *Engine) Status() []ModelStatus {
	return []ModelStatus{
		status(e.intents),
		status(e.amounts),
		status(e.learner.Holder()),
	}
}

func status[T any](h *lifecycle.Holder[T]) ModelStatus {
	return ModelStatus{
		Name:       h.Name(),
		State:      h.State(),
		Generation: h.Generation(),
		SwappedAt:  h.SwappedAt(),
		Retraining: h.Retraining(),
	}
}

// ParseUtterance builds a draft for text against the caller's categories.
// It returns nil without error when text holds nothing to parse, which the
// caller should treat as a request for clarification. When parsing takes
// longer than the configured timeout the draft is built from deterministic
// fallbacks and asks the user; only cancellation of ctx itself is an error.
func (e *Engine) ParseUtterance(ctx context.Context, text string, categories []model.Category) (*model.Draft, error) {
	if len(textproc.Tokenize(text)) == 0 {
		return nil, nil
	}

	pctx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	started := time.Now()
	draft, err := e.parse(pctx, text, categories)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("Parse did not finish, using fallback draft",
			"error", err,
			"elapsed", time.Since(started))
		return e.fallbackDraft(text, categories), nil
	}

	slog.Debug("Parsed utterance",
		"action", draft.Action,
		"decision", draft.Decision,
		"tier", draft.Tier,
		"elapsed", time.Since(started))
	return draft, nil
}

// RecordCorrection records the category the user chose for a draft. It
// reports whether the choice differed from the prediction.
func (e *Engine) RecordCorrection(ctx context.Context, draftID string, categoryID int64) (bool, error) {
	if draftID == "" {
		return false, ErrNoPrediction
	}
	return e.learner.LogCorrection(ctx, draftID, categoryID)
}

func (e *Engine) parse(ctx context.Context, text string, categories []model.Category) (*model.Draft, error) {
	var (
		action     model.Action
		actionConf float64
		amt        model.AmountResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		action, actionConf, err = e.detectIntent(gctx, text)
		return err
	})
	g.Go(func() error {
		var err error
		amt, err = e.extractAmount(gctx, text)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	draft := e.newDraft(text, amt)
	draft.Action = action
	draft.ActionConfidence = actionConf
	if action != model.ActionCreateTransaction {
		draft.Amount = nil
		draft.AmountConfidence = 0
		draft.Message = draftMessage(draft)
		return draft, nil
	}

	io, _, known := e.detector.Detect(draft.Note)
	ranking, tier, err := e.chain.Rank(ctx, category.Query{
		Text:           draft.Note,
		Amount:         draft.Amount,
		Direction:      io,
		DirectionKnown: known,
		Categories:     categories,
	})
	if err != nil {
		return nil, err
	}

	decision := category.Decide(ranking, tier, e.cal.MinAutoConfidence, e.cal.MaxAlternatives)
	if !known && decision.Primary != nil {
		if c := findCategory(categories, decision.Primary.CategoryID); c != nil {
			io = c.Type.Direction()
		}
	}

	draft.IO = io
	draft.Tier = string(tier)
	draft.Decision = decision.State
	draft.Alternatives = decision.Alternatives
	draft.Primary = decision.Primary
	if p := decision.Primary; p != nil {
		draft.CategoryID = p.CategoryID
		draft.CategoryName = p.CategoryName

		id, err := e.learner.LogPrediction(ctx, draft.Note, draft.Amount, io, *p)
		if err != nil {
			slog.Warn("Failed to log prediction", "error", err)
		}
		draft.ID = id
	}
	draft.Message = draftMessage(draft)
	return draft, nil
}

// detectIntent falls back to recording a transaction when the intent model
// is unavailable or unsure.
func (e *Engine) detectIntent(ctx context.Context, text string) (model.Action, float64, error) {
	c, err := e.intents.Ensure(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", 0, ctx.Err()
		}
		slog.Warn("Intent model unavailable, assuming a new transaction", "error", err)
		return model.ActionCreateTransaction, 0, nil
	}

	action, conf := c.Predict(text)
	return intent.Decide(action, conf, e.cal.IntentMinConfidence), conf, nil
}

// extractAmount uses the deterministic parser when the tagger is
// unavailable.
func (e *Engine) extractAmount(ctx context.Context, text string) (model.AmountResult, error) {
	x, err := e.amounts.Ensure(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return model.AmountResult{}, ctx.Err()
		}
		slog.Warn("Amount model unavailable, using fallback parser", "error", err)
		return e.fallbackAmount(text), nil
	}
	return x.Extract(text), nil
}

func (e *Engine) fallbackAmount(text string) model.AmountResult {
	r := amount.ParseFallback(text)
	r.Confidence = min(r.Confidence, e.cal.FallbackConfidenceCeiling)
	return r
}

// newDraft fills the fields every action shares.
func (e *Engine) newDraft(text string, amt model.AmountResult) *model.Draft {
	words := textproc.SplitWords(text)
	tokens := amt.Tokens
	if tokens == nil {
		tokens = textproc.Tokenize(text)
	}

	day := findRelativeDay(tokens)
	skip := func(i int) bool {
		return (i >= amt.SpanStart && i < amt.SpanEnd) || day.covers(i)
	}

	return &model.Draft{
		Action:           model.ActionCreateTransaction,
		Amount:           amt.Amount,
		AmountConfidence: amt.Confidence,
		Note:             noteText(words, tokens, skip),
		IO:               model.DirectionOut,
		Date:             day.date(e.now()),
		Decision:         model.DecisionAskWithWeakGuesses,
		Tier:             string(category.TierNone),
		Alternatives:     model.Ranking{},
	}
}

// fallbackDraft needs no model and no store. Keyword guesses are offered
// as alternatives but never acted on.
func (e *Engine) fallbackDraft(text string, categories []model.Category) *model.Draft {
	draft := e.newDraft(text, e.fallbackAmount(text))
	io, _, known := e.detector.Detect(draft.Note)
	draft.IO = io

	ranking, err := e.keywords.Rank(context.Background(), category.Query{
		Text:           draft.Note,
		Direction:      io,
		DirectionKnown: known,
		Categories:     categories,
	})
	if err == nil && len(ranking) > 0 {
		draft.Alternatives = ranking.Dedupe().TopN(e.cal.MaxAlternatives)
	}
	draft.Message = draftMessage(draft)
	return draft
}

func findCategory(categories []model.Category, id int64) *model.Category {
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i]
		}
	}
	return nil
}
