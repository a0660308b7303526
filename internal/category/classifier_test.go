package category

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-talk/internal/common"
	"github.com/Veraticus/spice-talk/internal/config"
	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/nn"
	"github.com/Veraticus/spice-talk/internal/textproc"
)

// sample is a resolved sample: confirmed, or corrected to chosen.
func sample(text string, predicted int64, chosen ...int64) model.TrainingSample {
	label := predicted
	if len(chosen) > 0 {
		label = chosen[0]
	}
	return model.TrainingSample{Text: text, PredictedCategoryID: predicted, ChosenCategoryID: &label}
}

// guess is a sample the user never confirmed.
func guess(text string, predicted int64) model.TrainingSample {
	return model.TrainingSample{Text: text, PredictedCategoryID: predicted}
}

func trainingSamples() []model.TrainingSample {
	return []model.TrainingSample{
		sample("ăn trưa", 1),
		sample("ăn sáng phở", 1),
		sample("cơm tối", 1),
		sample("bún chả", 1),
		sample("trà sữa", 2, 1), // corrected to food
		sample("đổ xăng", 2),
		sample("grab đi làm", 2),
		sample("gửi xe", 2),
		sample("taxi về nhà", 2),
		sample("nhận lương", 5),
		sample("lương tháng", 5),
		sample("tiền lương công ty", 5),
	}
}

var (
	sharedClassifier *Classifier
	sharedErr        error
	sharedOnce       sync.Once
)

func trainedClassifier(t *testing.T) *Classifier {
	t.Helper()
	sharedOnce.Do(func() {
		ms := config.Default().Category
		ms.Epochs = 80
		sharedClassifier, sharedErr = Train(context.Background(), trainingSamples(), TrainOptions{Settings: ms})
	})
	require.NoError(t, sharedErr)
	return sharedClassifier
}

func TestTrain_InsufficientSamples(t *testing.T) {
	tests := []struct {
		name    string
		samples []model.TrainingSample
	}{
		{name: "none"},
		{name: "one category", samples: []model.TrainingSample{sample("ăn trưa", 1), sample("cơm tối", 1)}},
		{name: "only empty text", samples: []model.TrainingSample{sample("", 1), sample("!!", 2)}},
		{name: "only unconfirmed guesses", samples: []model.TrainingSample{
			guess("ăn trưa", 1), guess("cơm tối", 1), guess("đổ xăng", 2),
			guess("gửi xe", 2), guess("nhận lương", 5), guess("lương tháng", 5),
		}},
		{name: "one confirmed category among guesses", samples: []model.TrainingSample{
			sample("ăn trưa", 1), sample("cơm tối", 1), guess("đổ xăng", 2), guess("gửi xe", 2),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Train(context.Background(), tt.samples, TrainOptions{Settings: config.Default().Category})
			require.ErrorIs(t, err, common.ErrInsufficientSamples)
		})
	}
}

func TestClassifier_LearnsLabels(t *testing.T) {
	c := trainedClassifier(t)

	assert.Equal(t, []int64{1, 2, 5}, c.CategoryIDs())

	tests := []struct {
		text string
		want int64
	}{
		{text: "ăn trưa", want: 1},
		{text: "trà sữa", want: 1},
		{text: "đổ xăng", want: 2},
		{text: "nhận lương", want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			scores := c.Predict(tt.text)
			require.Len(t, scores, 3)
			assert.Equal(t, tt.want, scores[0].CategoryID)
			assert.GreaterOrEqual(t, scores[0].Probability, scores[1].Probability)

			sum := 0.0
			for _, s := range scores {
				sum += s.Probability
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		})
	}
}

func TestTrain_SkipsUnresolvedSamples(t *testing.T) {
	samples := append(trainingSamples(),
		guess("mua áo", 3), guess("mua giày", 3), guess("shopee", 3),
		guess("phở bò", 2),
	)
	ms := config.Default().Category
	ms.Epochs = 20

	c, err := Train(context.Background(), samples, TrainOptions{Settings: ms})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 5}, c.CategoryIDs(), "guessed categories are not learned")
}

func TestClassifier_SnapshotRoundTrip(t *testing.T) {
	c := trainedClassifier(t)

	snap, err := c.Snapshot()
	require.NoError(t, err)
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded nn.Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	restored, err := Restore(&decoded)
	require.NoError(t, err)

	assert.Equal(t, c.CategoryIDs(), restored.CategoryIDs())
	assert.Equal(t, c.Predict("ăn phở"), restored.Predict("ăn phở"))
}

func TestRestore_RejectsNonNumericLabels(t *testing.T) {
	vocab := textproc.BuildVocabulary([][]string{{"ăn", "trưa"}}, 0)
	net := nn.NewBagClassifier(vocab, []string{"food", "salary"}, nn.BagConfig{SeqLen: 4, EmbedDim: 2, HiddenDim: 2}, 1)
	snap, err := net.Snapshot()
	require.NoError(t, err)

	_, err = Restore(snap)
	require.ErrorIs(t, err, nn.ErrStateMismatch)
}

func TestTrain_WarmStart(t *testing.T) {
	warm := trainedClassifier(t)
	ms := config.Default().Category

	same, err := Train(context.Background(), trainingSamples(), TrainOptions{Settings: ms, Warm: warm, WarmEpochs: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), same.Predict("ăn trưa")[0].CategoryID)
	assert.NotSame(t, warm.net, same.net, "warm start trains a copy")

	// A new category changes the label set, so training starts cold.
	grown := append(trainingSamples(), sample("mua áo", 3), sample("mua giày", 3), sample("shopee", 3))
	cold, err := Train(context.Background(), grown, TrainOptions{Settings: ms, Warm: warm, WarmEpochs: 1})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 5}, cold.CategoryIDs())
}

func TestTrain_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Train(ctx, trainingSamples(), TrainOptions{Settings: config.Default().Category})
	require.ErrorIs(t, err, context.Canceled)
}

func TestModelRanker(t *testing.T) {
	c := trainedClassifier(t)
	r := NewModelRanker(func() *Classifier { return c }, 0)

	t.Run("ranks offered categories", func(t *testing.T) {
		ranking, err := r.Rank(context.Background(), Query{Text: "ăn trưa", Categories: testCategories})
		require.NoError(t, err)
		require.Len(t, ranking, 3)
		assert.Equal(t, "Ăn uống", ranking[0].CategoryName)
		require.NoError(t, ranking.Validate())
	})

	t.Run("drops categories not offered", func(t *testing.T) {
		ranking, err := r.Rank(context.Background(), Query{Text: "ăn trưa", Categories: testCategories[1:]})
		require.NoError(t, err)
		assert.Nil(t, findPrediction(ranking, 1))
	})

	t.Run("respects known direction", func(t *testing.T) {
		ranking, err := r.Rank(context.Background(), Query{
			Text:           "ăn trưa",
			Direction:      model.DirectionIn,
			DirectionKnown: true,
			Categories:     testCategories,
		})
		require.NoError(t, err)
		require.Len(t, ranking, 1)
		assert.Equal(t, int64(5), ranking[0].CategoryID)
	})

	t.Run("min score", func(t *testing.T) {
		strict := NewModelRanker(func() *Classifier { return c }, 1.01)
		ranking, err := strict.Rank(context.Background(), Query{Text: "ăn trưa", Categories: testCategories})
		require.NoError(t, err)
		assert.Empty(t, ranking)
	})

	t.Run("no model yet", func(t *testing.T) {
		empty := NewModelRanker(func() *Classifier { return nil }, 0)
		ranking, err := empty.Rank(context.Background(), Query{Text: "ăn trưa", Categories: testCategories})
		require.NoError(t, err)
		assert.Empty(t, ranking)
	})
}
