package amount

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/textproc"
)

// Style is one way of writing an amount.
type Style int

// Amount styles used for synthetic training.
const (
	StyleShorthandK Style = iota
	StyleCompoundMillion
	StyleSpelledMillion
	StyleSeparated
	StyleReceipt
)

// Styles lists every style.
var Styles = []Style{StyleShorthandK, StyleCompoundMillion, StyleSpelledMillion, StyleSeparated, StyleReceipt}

func (s Style) String() string {
	switch s {
	case StyleShorthandK:
		return "shorthand-k"
	case StyleCompoundMillion:
		return "compound-million"
	case StyleSpelledMillion:
		return "spelled-million"
	case StyleSeparated:
		return "separated"
	case StyleReceipt:
		return "receipt"
	default:
		return "style(" + strconv.Itoa(int(s)) + ")"
	}
}

// TaggedSample is a synthetic utterance with gold token labels and value.
type TaggedSample struct {
	Text   string
	Tokens []string
	Labels []model.BIOLabel
	Amount int64
	Style  Style
}

var (
	verbs    = []string{"", "", "mua", "trả", "ăn", "chi", "đóng", "nạp", "nhận", "thanh toán"}
	things   = []string{"cafe", "trà sữa", "bánh mì", "phở", "cơm", "xăng", "grab", "tiền điện", "tiền nhà", "lương", "thưởng", "quần áo", "thuốc", "sách", "vé xem phim", "đồ ăn", "tiền học"}
	tails    = []string{"", "", "", "hôm nay", "hôm qua", "sáng nay", "nhé", "tháng này"}
	counts   = []string{"1 ly", "2 ly", "3 cái", "2 hộp", "5 gói"}
	receipts = []string{"tổng", "tổng cộng", "thành tiền", "tổng tiền", "tổng thanh toán", "cộng"}
	shops    = []string{"", "hóa đơn", "siêu thị", "cửa hàng", "nhà thuốc"}
)

func pick(rng *rand.Rand, list []string) string {
	return list[rng.IntN(len(list))]
}

// groupDigits formats v with sep every three digits.
func groupDigits(v int64, sep string) string {
	s := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func shorthandK(rng *rand.Rand) (string, int64) {
	n := int64(1 + rng.IntN(999))
	unit := pick(rng, []string{"k", "k", "k", " k", " nghìn", " ngàn"})
	return fmt.Sprintf("%d%s", n, unit), n * 1_000
}

func compoundMillion(rng *rand.Rand) (string, int64) {
	a := int64(1 + rng.IntN(20))
	digits := 1 + rng.IntN(3)
	var b, scale int64
	switch digits {
	case 1:
		b, scale = int64(1+rng.IntN(9)), 100_000
	case 2:
		b, scale = int64(10+rng.IntN(90)), 10_000
	default:
		b, scale = int64(100+rng.IntN(900)), 1_000
	}
	return fmt.Sprintf("%dtr%d", a, b), a*1_000_000 + b*scale
}

func spelledMillion(rng *rand.Rand) (string, int64) {
	a := int64(1 + rng.IntN(50))
	switch rng.IntN(6) {
	case 0:
		return fmt.Sprintf("%d triệu", a), a * 1_000_000
	case 1:
		d := int64(1 + rng.IntN(9))
		return fmt.Sprintf("%d triệu %d", a, d), a*1_000_000 + d*100_000
	case 2:
		return fmt.Sprintf("%d trieu", a), a * 1_000_000
	case 3:
		return fmt.Sprintf("%d tr", a), a * 1_000_000
	case 4:
		return fmt.Sprintf("%d triệu rưỡi", a), a*1_000_000 + 500_000
	default:
		b := a%5 + 1
		return fmt.Sprintf("%d tỷ", b), b * 1_000_000_000
	}
}

func separated(rng *rand.Rand) (string, int64) {
	v := int64(1+rng.IntN(9999)) * 1_000
	sep := pick(rng, []string{".", ".", ","})
	suffix := pick(rng, []string{"đ", "đ", " đồng", " vnd", "", "d"})
	return groupDigits(v, sep) + suffix, v
}

// GenerateSamples returns n synthetic amount utterances spread evenly over
// every style. The output depends only on seed.
func GenerateSamples(seed int64, n int) []TaggedSample {
	rng := rand.New(rand.NewPCG(uint64(seed), 0x5eed))
	samples := make([]TaggedSample, 0, n)
	for i := 0; i < n; i++ {
		samples = append(samples, generate(rng, Styles[i%len(Styles)]))
	}
	return samples
}

type part struct {
	text   string
	amount bool
}

func generate(rng *rand.Rand, style Style) TaggedSample {
	var (
		text  string
		value int64
		parts []part
	)

	switch style {
	case StyleShorthandK:
		text, value = shorthandK(rng)
	case StyleCompoundMillion:
		text, value = compoundMillion(rng)
	case StyleSpelledMillion:
		text, value = spelledMillion(rng)
	case StyleSeparated:
		text, value = separated(rng)
	case StyleReceipt:
		if rng.IntN(2) == 0 {
			text, value = separated(rng)
		} else {
			text, value = shorthandK(rng)
		}
		parts = []part{{text: pick(rng, shops)}, {text: pick(rng, receipts)}, {text: text, amount: true}, {text: pick(rng, tails)}}
	}

	if parts == nil {
		thing := part{text: strings.TrimSpace(pick(rng, verbs) + " " + pick(rng, things))}
		amt := part{text: text, amount: true}
		switch rng.IntN(4) {
		case 0:
			parts = []part{amt, thing, {text: pick(rng, tails)}}
		case 1:
			parts = []part{{text: pick(rng, counts)}, thing, amt, {text: pick(rng, tails)}}
		default:
			parts = []part{thing, amt, {text: pick(rng, tails)}}
		}
	}

	sample := TaggedSample{Amount: value, Style: style}
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.text == "" {
			continue
		}
		words = append(words, p.text)
		for i, tok := range textproc.Tokenize(p.text) {
			sample.Tokens = append(sample.Tokens, tok)
			switch {
			case !p.amount:
				sample.Labels = append(sample.Labels, model.LabelOutside)
			case i == 0:
				sample.Labels = append(sample.Labels, model.LabelBegin)
			default:
				sample.Labels = append(sample.Labels, model.LabelInside)
			}
		}
	}
	sample.Text = strings.Join(words, " ")
	return sample
}
