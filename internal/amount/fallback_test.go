package amount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-talk/internal/config"
	"github.com/Veraticus/spice-talk/internal/model"
)

func TestParseFallback(t *testing.T) {
	tests := []struct {
		want       *int64
		text       string
		wantSource model.AmountSource
		wantStart  int
		wantEnd    int
		wantConf   float64
	}{
		{text: "mua cafe 45k", want: ptr(45_000), wantSource: model.AmountSourceFallback, wantStart: 2, wantEnd: 4, wantConf: FallbackUnitConfidence},
		{text: "mua 2 ly cafe 45k", want: ptr(45_000), wantSource: model.AmountSourceFallback, wantStart: 4, wantEnd: 6, wantConf: FallbackUnitConfidence},
		{text: "tiền phòng 300", want: ptr(300), wantSource: model.AmountSourceFallback, wantStart: 2, wantEnd: 3, wantConf: FallbackBareConfidence},
		{text: "lương tháng này 15tr", want: ptr(15_000_000), wantSource: model.AmountSourceFallback, wantStart: 3, wantEnd: 5, wantConf: FallbackUnitConfidence},
		{text: "mua áo 1,5 triệu", want: ptr(1_500_000), wantSource: model.AmountSourceFallback, wantStart: 2, wantEnd: 5, wantConf: FallbackUnitConfidence},
		{text: "xăng 1,5tr", want: ptr(1_500_000), wantSource: model.AmountSourceFallback, wantStart: 1, wantEnd: 4, wantConf: FallbackUnitConfidence},
		{text: "siêu thị 750.000đ", want: ptr(750_000), wantSource: model.AmountSourceFallback, wantStart: 2, wantEnd: 5, wantConf: FallbackUnitConfidence},
		{text: "ngày 15 200k tiền điện", want: ptr(200_000), wantSource: model.AmountSourceFallback, wantStart: 2, wantEnd: 4, wantConf: FallbackUnitConfidence},
		{text: "mua 2 100k", want: ptr(100_000), wantSource: model.AmountSourceFallback, wantStart: 2, wantEnd: 4, wantConf: FallbackUnitConfidence},
		{text: "phòng 12 300", want: ptr(12), wantSource: model.AmountSourceFallback, wantStart: 1, wantEnd: 2, wantConf: FallbackBareConfidence},
		{text: "mua đồ", wantSource: model.AmountSourceNone},
		{text: "", wantSource: model.AmountSourceNone},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParseFallback(tt.text)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Len(t, got.Labels, len(got.Tokens))
			if tt.want == nil {
				assert.Nil(t, got.Amount)
				assert.False(t, got.HasSpan())
				assert.Zero(t, got.Confidence)
				return
			}
			require.NotNil(t, got.Amount)
			assert.Equal(t, *tt.want, *got.Amount)
			assert.Equal(t, tt.wantStart, got.SpanStart)
			assert.Equal(t, tt.wantEnd, got.SpanEnd)
			assert.Equal(t, tt.wantConf, got.Confidence)
			assert.Equal(t, model.LabelBegin, got.Labels[tt.wantStart])
		})
	}
}

func TestParseFallback_ConfidenceCeiling(t *testing.T) {
	ceiling := config.DefaultCalibration().FallbackConfidenceCeiling
	for _, text := range []string{"45k", "300", "5tr873 tiền nhà", "1 triệu 2", "abc 12"} {
		got := ParseFallback(text)
		assert.LessOrEqual(t, got.Confidence, ceiling, text)
	}
}

func TestSpanLabels(t *testing.T) {
	assert.Equal(t,
		[]model.BIOLabel{model.LabelOutside, model.LabelBegin, model.LabelInside, model.LabelOutside},
		spanLabels(4, 1, 3))
	assert.Equal(t,
		[]model.BIOLabel{model.LabelOutside, model.LabelOutside},
		spanLabels(2, 0, 0))
}

func ptr(v int64) *int64 {
	return &v
}
