package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// TrainingProgress draws one progress bar per model being trained. Report
// matches engine.ProgressFunc.
type TrainingProgress struct {
	writer io.Writer
	bars   map[string]*progressbar.ProgressBar
	loss   map[string]float64
	mu     sync.Mutex
}

// NewTrainingProgress creates progress bars that write to writer.
func NewTrainingProgress(writer io.Writer) *TrainingProgress {
	return &TrainingProgress{
		writer: writer,
		bars:   make(map[string]*progressbar.ProgressBar),
		loss:   make(map[string]float64),
	}
}

// Report records that the named model finished epoch of total.
func (p *TrainingProgress) Report(name string, epoch, total int, loss float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	bar, ok := p.bars[name]
	if !ok {
		bar = p.newBar(name, total)
		p.bars[name] = bar
	}
	p.loss[name] = loss

	bar.Describe(fmt.Sprintf("[cyan][bold]Training %s[reset] loss %.4f", name, loss))
	if err := bar.Set(epoch); err != nil {
		slog.Warn("Failed to update progress bar", "model", name, "error", err)
	}
}

func (p *TrainingProgress) newBar(name string, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][bold]Training %s[reset]", name)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// Finish completes every bar and returns the final loss per model, sorted
// by model name.
func (p *TrainingProgress) Finish() []ModelLoss {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]ModelLoss, 0, len(p.bars))
	for name, bar := range p.bars {
		if !bar.IsFinished() {
			if err := bar.Finish(); err != nil {
				slog.Warn("Failed to finish progress bar", "model", name, "error", err)
			}
		}
		out = append(out, ModelLoss{Name: name, Loss: p.loss[name]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ModelLoss is the last reported training loss of a model.
type ModelLoss struct {
	Name string
	Loss float64
}
