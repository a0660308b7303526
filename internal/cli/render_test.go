package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-talk/internal/engine"
	"github.com/Veraticus/spice-talk/internal/lifecycle"
	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/modelstore"
)

var fixedDate = time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local)

func TestRenderDraft(t *testing.T) {
	t.Run("auto act hides alternatives", func(t *testing.T) {
		d := autoDraft()
		d.Date = fixedDate
		out := RenderDraft(d)

		assert.Contains(t, out, d.Message)
		assert.Contains(t, out, "ăn trưa")
		assert.Contains(t, out, "15/03/2026")
		assert.Contains(t, out, "auto")
		assert.Contains(t, out, "63%")
		assert.NotContains(t, out, "[1]")
		assert.Contains(t, out, "sample-1")
	})

	t.Run("weak guesses are numbered", func(t *testing.T) {
		out := RenderDraft(weakDraft())
		assert.Contains(t, out, "weak guesses")
		assert.Contains(t, out, "[1] Mua sắm")
		assert.Contains(t, out, "[2] Ăn uống")
		assert.Contains(t, out, "[3] Hóa đơn")
	})

	t.Run("missing amount", func(t *testing.T) {
		d := weakDraft()
		d.Amount = nil
		assert.Contains(t, RenderDraft(d), "Amount: ?")
	})

	t.Run("other actions", func(t *testing.T) {
		out := RenderDraft(&model.Draft{Action: model.ActionDeleteTransaction, ActionConfidence: 0.91, Message: "Bạn muốn xóa giao dịch nào?"})
		assert.Contains(t, out, "DELETE_TRANSACTION")
		assert.Contains(t, out, "91%")
		assert.NotContains(t, out, "Amount")
	})
}

func TestRenderCategories(t *testing.T) {
	out := RenderCategories(testCategories)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, len(testCategories)+1)
	assert.Contains(t, lines[0], "Name")
	assert.Contains(t, lines[1], "Ăn uống")
	assert.Contains(t, lines[4], "income")
}

func TestRenderModelStatus(t *testing.T) {
	out := RenderModelStatus([]engine.ModelStatus{
		{Name: "intent", State: lifecycle.Ready, Generation: 2, SwappedAt: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)},
		{Name: "category", State: lifecycle.Failed},
		{Name: "amount", State: lifecycle.Ready, Generation: 1, Retraining: true, SwappedAt: time.Now()},
	})

	assert.Contains(t, out, "2026-03-15 09:00:00")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "ready (retraining)")
}

func TestTrainingProgress(t *testing.T) {
	var out bytes.Buffer
	p := NewTrainingProgress(&out)

	for epoch := 1; epoch <= 3; epoch++ {
		p.Report("intent", epoch, 3, 1/float64(epoch))
	}
	p.Report("amount", 1, 5, 0.8)

	losses := p.Finish()
	require.Len(t, losses, 2)
	assert.Equal(t, "amount", losses[0].Name)
	assert.InDelta(t, 0.8, losses[0].Loss, 1e-9)
	assert.Equal(t, "intent", losses[1].Name)
	assert.InDelta(t, 1.0/3, losses[1].Loss, 1e-9)
	assert.Contains(t, out.String(), "Training")
}

func TestRenderModelRecords(t *testing.T) {
	out := RenderModelRecords([]modelstore.Info{
		{Name: "intent", Architecture: "bigru", Labels: 4, Vocabulary: 812, Bytes: 2048, TrainedAt: time.Now()},
	})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "intent")
	assert.Contains(t, lines[1], "2.0 KiB")
}
