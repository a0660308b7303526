package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-talk/internal/model"
)

func TestNewDirectionDetector(t *testing.T) {
	tests := []struct {
		name     string
		errMsg   string
		patterns []Pattern
		wantErr  bool
	}{
		{
			name: "valid patterns",
			patterns: []Pattern{
				{Name: "Salary", Direction: model.DirectionIn, Regex: `lương`, Priority: 100, Confidence: 0.95},
				{Name: "Purchase", Direction: model.DirectionOut, Regex: `mua`, Priority: 50, Confidence: 0.8},
			},
		},
		{
			name: "invalid regex",
			patterns: []Pattern{
				{Name: "Bad Pattern", Direction: model.DirectionIn, Regex: `[invalid regex`, Priority: 100},
			},
			wantErr: true,
			errMsg:  "failed to compile pattern",
		},
		{
			name: "invalid folded regex",
			patterns: []Pattern{
				{Name: "Bad Folded", Direction: model.DirectionIn, Regex: `lương`, Folded: `(luong`, Priority: 100},
			},
			wantErr: true,
			errMsg:  "failed to compile folded pattern",
		},
		{
			name:     "empty patterns",
			patterns: []Pattern{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector, err := NewDirectionDetector(tt.patterns)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.patterns), detector.PatternCount())
		})
	}
}

func TestDirectionDetector_PriorityOrder(t *testing.T) {
	detector, err := NewDirectionDetector([]Pattern{
		{Name: "Low", Direction: model.DirectionOut, Regex: `tiền`, Priority: 10, Confidence: 0.5},
		{Name: "High", Direction: model.DirectionIn, Regex: `tiền lãi`, Priority: 100, Confidence: 0.9},
	})
	require.NoError(t, err)

	m := detector.Classify("nhận tiền lãi")
	require.NotNil(t, m)
	assert.Equal(t, "High", m.PatternName)
}

func TestDirectionDetector_Detect(t *testing.T) {
	detector, err := NewDirectionDetector(DefaultPatterns())
	require.NoError(t, err)

	tests := []struct {
		name      string
		text      string
		want      model.Direction
		wantMatch string
		known     bool
	}{
		{name: "salary", text: "nhận lương 15tr", want: model.DirectionIn, wantMatch: "Salary", known: true},
		{name: "paying wages", text: "trả lương nhân viên 20tr", want: model.DirectionOut, wantMatch: "Payroll Paid", known: true},
		{name: "lunch", text: "ăn trưa 45k", want: model.DirectionOut, wantMatch: "Eating Out", known: true},
		{name: "purchase", text: "Mua cafe 45k", want: model.DirectionOut, wantMatch: "Purchase", known: true},
		{name: "sale", text: "bán xe máy 10tr", want: model.DirectionIn, wantMatch: "Sale", known: true},
		{name: "refund", text: "hoàn tiền đơn hàng 200k", want: model.DirectionIn, wantMatch: "Refund", known: true},
		{name: "bill payment", text: "đóng tiền điện 500k", want: model.DirectionOut, wantMatch: "Payment", known: true},
		{name: "unaccented salary", text: "nhan luong 15tr", want: model.DirectionIn, wantMatch: "Salary", known: true},
		{name: "friend is not a sale", text: "đi chơi với bạn", want: model.DirectionOut},
		{name: "letters inside words do not match", text: "chơi game", want: model.DirectionOut},
		{name: "empty", text: "", want: model.DirectionOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, conf, known := detector.Detect(tt.text)
			assert.Equal(t, tt.want, dir)
			assert.Equal(t, tt.known, known)
			if !tt.known {
				assert.Zero(t, conf)
				return
			}
			assert.Greater(t, conf, 0.5)
			assert.Equal(t, tt.wantMatch, detector.Classify(tt.text).PatternName)
		})
	}
}

func TestDirectionDetector_FoldedMatchIsWeaker(t *testing.T) {
	detector, err := NewDirectionDetector(DefaultPatterns())
	require.NoError(t, err)

	_, accented, _ := detector.Detect("nhận lương")
	_, folded, _ := detector.Detect("nhan luong")
	assert.InDelta(t, accented*0.9, folded, 1e-9)
}

func TestDirectionDetector_UpdatePatterns(t *testing.T) {
	detector, err := NewDirectionDetector(DefaultPatterns())
	require.NoError(t, err)

	err = detector.UpdatePatterns([]Pattern{
		{Name: "Gift", Direction: model.DirectionIn, Regex: `quà`, Priority: 1, Confidence: 0.7},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, detector.PatternCount())

	dir, _, known := detector.Detect("nhận quà")
	assert.True(t, known)
	assert.Equal(t, model.DirectionIn, dir)

	err = detector.UpdatePatterns([]Pattern{{Name: "Bad", Regex: `(`}})
	require.Error(t, err)
	assert.Equal(t, 1, detector.PatternCount())
}

func TestWordRegex(t *testing.T) {
	tests := []struct {
		expr    string
		text    string
		match   bool
		wantErr bool
	}{
		{expr: `lương`, text: "nhận lương tháng", match: true},
		{expr: `mua`, text: "muahang", match: false},
		{expr: `[invalid regex`, wantErr: true},
		{expr: `a)|(b`, wantErr: true},
		{expr: `(luong`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			re, err := wordRegex(tt.expr)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.match, re.MatchString(tt.text))
		})
	}
}
