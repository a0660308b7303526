package amount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/textproc"
)

func TestGenerateSamples_Deterministic(t *testing.T) {
	assert.Equal(t, GenerateSamples(5, 50), GenerateSamples(5, 50))
	assert.NotEqual(t, GenerateSamples(5, 50), GenerateSamples(6, 50))
}

func TestGenerateSamples_CoversEveryStyle(t *testing.T) {
	seen := map[Style]int{}
	for _, s := range GenerateSamples(1, 100) {
		seen[s.Style]++
	}
	for _, style := range Styles {
		assert.Equal(t, 20, seen[style], style.String())
	}
}

// Every synthetic label sequence must agree with the shared tokenizer and
// its gold span must convert to the gold amount.
func TestGenerateSamples_LabelsAreConsistent(t *testing.T) {
	for _, s := range GenerateSamples(42, 1000) {
		require.Equal(t, textproc.Tokenize(s.Text), s.Tokens, s.Text)
		require.Len(t, s.Labels, len(s.Tokens), s.Text)

		start, end := -1, -1
		for i, l := range s.Labels {
			switch l {
			case model.LabelBegin:
				require.Equal(t, -1, start, "two spans in %q", s.Text)
				start, end = i, i+1
			case model.LabelInside:
				require.Equal(t, i, end, "detached I-AMT in %q", s.Text)
				end = i + 1
			}
		}
		require.GreaterOrEqual(t, start, 0, s.Text)

		_, c, ok := convertSpan(newStream(s.Text), start, end)
		require.True(t, ok, s.Text)
		assert.Equal(t, s.Amount, c.value, s.Text)
	}
}

func TestGroupDigits(t *testing.T) {
	assert.Equal(t, "1.000", groupDigits(1000, "."))
	assert.Equal(t, "750.000", groupDigits(750000, "."))
	assert.Equal(t, "9,999,000", groupDigits(9999000, ","))
	assert.Equal(t, "999", groupDigits(999, "."))
}
