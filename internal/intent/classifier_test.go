package intent

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-talk/internal/config"
	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/nn"
	"github.com/Veraticus/spice-talk/internal/textproc"
)

var (
	trainOnce sync.Once
	trained   *Classifier
	trainErr  error
)

func testClassifier(t *testing.T) *Classifier {
	t.Helper()
	trainOnce.Do(func() {
		trained, trainErr = Bootstrap(context.Background(), config.Default().Intent, nil)
	})
	require.NoError(t, trainErr)
	return trained
}

func TestGenerateSamples_Deterministic(t *testing.T) {
	a := GenerateSamples(3, 20)
	b := GenerateSamples(3, 20)
	assert.Equal(t, a, b)
	assert.Len(t, a, 80)

	counts := map[model.Action]int{}
	for _, s := range a {
		counts[s.Action]++
		assert.NotEmpty(t, textproc.Tokenize(s.Text), s.Text)
		assert.NotContains(t, s.Text, "{")
	}
	for _, action := range model.Actions {
		assert.Equal(t, 20, counts[action])
	}

	assert.NotEqual(t, a, GenerateSamples(4, 20))
}

func TestClassifier_Predict(t *testing.T) {
	c := testClassifier(t)

	tests := []struct {
		text string
		want model.Action
	}{
		{"xem thống kê tháng này", model.ActionViewStats},
		{"báo cáo tuần này", model.ActionViewStats},
		{"ăn trưa 45k", model.ActionCreateTransaction},
		{"mua cafe 45k", model.ActionCreateTransaction},
		{"nhận lương 15tr", model.ActionCreateTransaction},
		{"xóa giao dịch vừa rồi", model.ActionDeleteTransaction},
		{"sửa giao dịch vừa rồi", model.ActionEditTransaction},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			action, conf := c.Predict(tt.text)
			assert.Equal(t, tt.want, action)
			assert.GreaterOrEqual(t, conf, 0.6)
			assert.LessOrEqual(t, conf, 1.0)
		})
	}
}

func TestClassifier_PredictIsDeterministic(t *testing.T) {
	c := testClassifier(t)
	a1, c1 := c.Predict("mua đồ")
	a2, c2 := c.Predict("mua đồ")
	assert.Equal(t, a1, a2)
	assert.Equal(t, c1, c2)
}

func TestClassifier_SnapshotRestore(t *testing.T) {
	c := testClassifier(t)
	snap, err := c.Snapshot()
	require.NoError(t, err)

	restored, err := Restore(snap)
	require.NoError(t, err)
	for _, text := range []string{"xem thống kê tháng này", "ăn trưa 45k", "không biết gì"} {
		a1, c1 := c.Predict(text)
		a2, c2 := restored.Predict(text)
		assert.Equal(t, a1, a2)
		assert.Equal(t, c1, c2)
	}

	snap.Labels = []string{"A", "B", "C", "D"}
	_, err = Restore(snap)
	require.ErrorIs(t, err, nn.ErrStateMismatch)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		action     model.Action
		want       model.Action
		confidence float64
	}{
		{"trusted at threshold", model.ActionViewStats, model.ActionViewStats, 0.6},
		{"trusted above threshold", model.ActionDeleteTransaction, model.ActionDeleteTransaction, 0.93},
		{"just below threshold", model.ActionViewStats, model.ActionCreateTransaction, 0.5999},
		{"zero confidence", model.ActionEditTransaction, model.ActionCreateTransaction, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.action, tt.confidence, 0.6))
		})
	}
}
