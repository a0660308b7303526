package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/spice-talk/internal/amount"
	"github.com/Veraticus/spice-talk/internal/engine"
	"github.com/Veraticus/spice-talk/internal/model"
)

const maxAmountAttempts = 3

// Prompter asks the user to confirm or fix drafts.
type Prompter struct {
	startTime  time.Time
	writer     io.Writer
	reader     *NonBlockingReader
	stats      SessionStats
	statsMutex sync.RWMutex
}

// SessionStats counts what happened to the drafts of one chat session.
type SessionStats struct {
	Duration    time.Duration
	Drafts      int
	AutoCreated int
	Confirmed   int
	Corrected   int
	Skipped     int
}

// Resolution is the user's final answer for a draft.
type Resolution struct {
	Amount     int64
	CategoryID int64
	Skipped    bool
}

// NewPrompter creates a prompter with the given reader and writer.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader:    NewNonBlockingReader(reader),
		writer:    writer,
		startTime: time.Now(),
	}
}

// Say writes one line.
func (p *Prompter) Say(line string) {
	if _, err := fmt.Fprintln(p.writer, line); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}

// ReadUtterance prompts for the next utterance.
func (p *Prompter) ReadUtterance(ctx context.Context) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt("Bạn")); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	return p.reader.ReadLine(ctx)
}

// ResolveDraft shows a transaction draft and asks for whatever it lacks: an
// amount when none was found, and a category unless the draft was confident
// enough to act on.
func (p *Prompter) ResolveDraft(ctx context.Context, d *model.Draft, categories []model.Category) (Resolution, error) {
	p.Say(RenderDraft(d))
	p.count(func(s *SessionStats) { s.Drafts++ })

	var res Resolution
	if d.Amount != nil {
		res.Amount = *d.Amount
	} else {
		v, ok, err := p.promptAmount(ctx)
		if err != nil {
			return Resolution{}, err
		}
		if !ok {
			p.count(func(s *SessionStats) { s.Skipped++ })
			return Resolution{Skipped: true}, nil
		}
		res.Amount = v
	}

	if d.Decision == model.DecisionAutoAct && d.Primary != nil {
		res.CategoryID = d.CategoryID
		p.count(func(s *SessionStats) { s.AutoCreated++ })
		return res, nil
	}

	id, ok, err := p.promptCategory(ctx, d, categories)
	if err != nil {
		return Resolution{}, err
	}
	if !ok {
		p.count(func(s *SessionStats) { s.Skipped++ })
		return Resolution{Skipped: true}, nil
	}
	res.CategoryID = id
	if d.Primary != nil && id == d.CategoryID {
		p.count(func(s *SessionStats) { s.Confirmed++ })
	} else {
		p.count(func(s *SessionStats) { s.Corrected++ })
	}
	return res, nil
}

// promptAmount reads an amount like "45k" or "1 triệu 2". An empty answer
// skips the draft.
func (p *Prompter) promptAmount(ctx context.Context) (int64, bool, error) {
	for range maxAmountAttempts {
		if _, err := fmt.Fprint(p.writer, FormatPrompt("Số tiền")); err != nil {
			return 0, false, fmt.Errorf("failed to write prompt: %w", err)
		}
		line, err := p.reader.ReadLine(ctx)
		if err != nil {
			return 0, false, err
		}
		if line == "" {
			return 0, false, nil
		}
		if r := amount.ParseFallback(line); r.Amount != nil && *r.Amount > 0 {
			return *r.Amount, true, nil
		}
		p.Say(FormatWarning(fmt.Sprintf("Không đọc được số tiền %q, thử lại nhé (ví dụ 45k, 1tr2)", line)))
	}
	return 0, false, nil
}

// promptCategory offers the draft's guesses, then every category on
// request.
func (p *Prompter) promptCategory(ctx context.Context, d *model.Draft, categories []model.Category) (int64, bool, error) {
	valid := []string{"o", "s"}
	if d.Primary != nil {
		valid = append(valid, "a")
		p.Say(fmt.Sprintf("  [A] Accept %s", SuccessStyle.Render(d.CategoryName)))
	}
	for i := range d.Alternatives {
		valid = append(valid, strconv.Itoa(i+1))
	}
	p.Say("  [O] Other category")
	p.Say("  [S] Skip")

	choice, err := p.promptChoice(ctx, "Choice", valid)
	if err != nil {
		return 0, false, err
	}
	switch choice {
	case "a":
		return d.CategoryID, true, nil
	case "s":
		return 0, false, nil
	case "o":
		return p.promptAnyCategory(ctx, categories)
	}

	n, _ := strconv.Atoi(choice)
	return d.Alternatives[n-1].CategoryID, true, nil
}

func (p *Prompter) promptAnyCategory(ctx context.Context, categories []model.Category) (int64, bool, error) {
	if len(categories) == 0 {
		p.Say(FormatWarning("No categories. Add one with: spice categories add"))
		return 0, false, nil
	}

	valid := []string{"s"}
	for i, c := range categories {
		valid = append(valid, strconv.Itoa(i+1))
		p.Say(fmt.Sprintf("  [%d] %s %s", i+1, c.Icon, c.Name))
	}
	p.Say("  [S] Skip")

	choice, err := p.promptChoice(ctx, "Category", valid)
	if err != nil || choice == "s" {
		return 0, false, err
	}
	n, _ := strconv.Atoi(choice)
	return categories[n-1].ID, true, nil
}

// promptChoice reads until the answer is one of valid.
func (p *Prompter) promptChoice(ctx context.Context, prompt string, valid []string) (string, error) {
	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}
		line, err := p.reader.ReadLine(ctx)
		if err != nil {
			return "", err
		}
		choice := strings.ToLower(line)
		if slices.Contains(valid, choice) {
			return choice, nil
		}
		p.Say(FormatError(fmt.Sprintf("Invalid choice %q", line)))
	}
}

func (p *Prompter) count(fn func(*SessionStats)) {
	p.statsMutex.Lock()
	defer p.statsMutex.Unlock()
	fn(&p.stats)
}

// Stats returns the session's statistics so far.
func (p *Prompter) Stats() SessionStats {
	p.statsMutex.RLock()
	defer p.statsMutex.RUnlock()

	stats := p.stats
	stats.Duration = time.Since(p.startTime)
	return stats
}

// ShowCompletion displays the session summary.
func (p *Prompter) ShowCompletion() {
	stats := p.Stats()
	summary := fmt.Sprintf("%s Statistics:\n", ChartIcon) +
		fmt.Sprintf("  • Drafts: %d\n", stats.Drafts) +
		fmt.Sprintf("  • Auto-created: %d\n", stats.AutoCreated) +
		fmt.Sprintf("  • Confirmed: %d\n", stats.Confirmed) +
		fmt.Sprintf("  • Corrected: %d\n", stats.Corrected) +
		fmt.Sprintf("  • Skipped: %d\n", stats.Skipped) +
		fmt.Sprintf("  • Time: %s", stats.Duration.Round(time.Second))
	p.Say(RenderBox("Session Complete", summary))
}

// formatSaved describes a saved transaction.
func formatSaved(amountValue int64, categoryName string) string {
	return FormatSuccess(fmt.Sprintf("Đã lưu %s vào %s", engine.FormatAmount(amountValue), categoryName))
}
