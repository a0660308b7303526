package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spice-talk/internal/engine"
	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/modelstore"
)

var stateLabels = map[model.DecisionState]string{
	model.DecisionAutoAct:            "auto",
	model.DecisionAskWithGoodGuesses: "good guesses",
	model.DecisionAskWithWeakGuesses: "weak guesses",
}

// RenderDraft renders a draft with its category guesses.
func RenderDraft(d *model.Draft) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", RobotIcon, d.Message)
	if d.Action != model.ActionCreateTransaction {
		fmt.Fprintf(&b, "  Action: %s (%.0f%%)\n", d.Action, d.ActionConfidence*100)
		return RenderBox("Draft", strings.TrimRight(b.String(), "\n"))
	}

	amount := SubtleStyle.Render("?")
	if d.Amount != nil {
		amount = BoldStyle.Render(engine.FormatAmount(*d.Amount))
	}
	fmt.Fprintf(&b, "\n  %s Amount: %s\n", MoneyIcon, amount)
	fmt.Fprintf(&b, "  Note: %s\n", d.Note)
	fmt.Fprintf(&b, "  Date: %s\n", d.Date.Format("02/01/2006"))
	fmt.Fprintf(&b, "  Direction: %s\n", d.IO)

	style := DecisionStyle(d.Decision)
	if d.Primary != nil {
		fmt.Fprintf(&b, "  Category: %s (%.0f%%)\n",
			style.Render(d.CategoryName), d.Primary.Confidence*100)
	}
	fmt.Fprintf(&b, "  Decision: %s via %s\n", style.Render(stateLabels[d.Decision]), d.Tier)

	if len(d.Alternatives) > 0 && d.Decision != model.DecisionAutoAct {
		b.WriteString("\n")
		b.WriteString(RenderAlternatives(d.Alternatives))
	}
	if d.ID != "" {
		fmt.Fprintf(&b, "\n  %s", SubtleStyle.Render("id "+d.ID))
	}

	return RenderBox("Draft", strings.TrimRight(b.String(), "\n"))
}

// RenderAlternatives lists guesses numbered from 1.
func RenderAlternatives(r model.Ranking) string {
	var b strings.Builder
	for i, p := range r {
		fmt.Fprintf(&b, "  [%d] %s %s\n", i+1, p.CategoryName,
			SubtleStyle.Render(fmt.Sprintf("%.0f%%", p.Confidence*100)))
	}
	return b.String()
}

// RenderCategories renders categories as a table.
func RenderCategories(categories []model.Category) string {
	rows := [][]string{{"ID", "Name", "Type", "Icon"}}
	for _, c := range categories {
		rows = append(rows, []string{fmt.Sprint(c.ID), c.Name, string(c.Type), c.Icon})
	}
	return renderTable(rows)
}

// RenderModelStatus renders model holder states as a table.
func RenderModelStatus(status []engine.ModelStatus) string {
	rows := [][]string{{"Model", "State", "Generation", "Updated"}}
	for _, s := range status {
		updated := "-"
		if !s.SwappedAt.IsZero() {
			updated = s.SwappedAt.Format(time.DateTime)
		}
		state := s.State.String()
		if s.Retraining {
			state += " (retraining)"
		}
		rows = append(rows, []string{s.Name, state, fmt.Sprint(s.Generation), updated})
	}
	return renderTable(rows)
}

// RenderModelRecords renders the persisted models.
func RenderModelRecords(records []modelstore.Info) string {
	rows := [][]string{{"Model", "Architecture", "Labels", "Vocabulary", "Size", "Trained"}}
	for _, r := range records {
		rows = append(rows, []string{
			r.Name,
			r.Architecture,
			fmt.Sprint(r.Labels),
			fmt.Sprint(r.Vocabulary),
			fmt.Sprintf("%.1f KiB", float64(r.Bytes)/1024),
			r.TrainedAt.Local().Format(time.DateTime),
		})
	}
	return renderTable(rows)
}

func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	lines := make([]string, len(rows))
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			style := TableCellStyle
			if r == 0 {
				style = TableHeaderStyle
			}
			cells[i] = style.Width(widths[i] + 2).Render(cell)
		}
		lines[r] = lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	return strings.Join(lines, "\n")
}
