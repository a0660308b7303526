package classification

import "github.com/Veraticus/spice-talk/internal/model"

// DefaultPatterns returns the built-in Vietnamese direction cues.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// Paying someone's wages is spending, and must beat "lương" below.
		{
			Name:       "Payroll Paid",
			Direction:  model.DirectionOut,
			Regex:      `(trả|phát|chi) lương`,
			Folded:     `(tra|phat|chi) luong`,
			Priority:   110,
			Confidence: 0.9,
		},
		{
			Name:       "Salary",
			Direction:  model.DirectionIn,
			Regex:      `lương|lãnh lương|nhận lương`,
			Folded:     `luong`,
			Priority:   100,
			Confidence: 0.95,
		},
		{
			Name:       "Bonus",
			Direction:  model.DirectionIn,
			Regex:      `thưởng|tiền thưởng|lì xì|lương tháng 13`,
			Folded:     `thuong|li xi`,
			Priority:   95,
			Confidence: 0.9,
		},
		{
			Name:       "Refund",
			Direction:  model.DirectionIn,
			Regex:      `hoàn tiền|hoàn lại|được hoàn|cashback`,
			Folded:     `hoan tien|hoan lai|cashback`,
			Priority:   90,
			Confidence: 0.9,
		},
		{
			Name:       "Interest",
			Direction:  model.DirectionIn,
			Regex:      `tiền lãi|lãi suất|lãi tiết kiệm|cổ tức`,
			Folded:     `lai suat|lai tiet kiem|co tuc`,
			Priority:   90,
			Confidence: 0.85,
		},
		{
			Name:       "Sale",
			Direction:  model.DirectionIn,
			Regex:      `bán|bán được|thanh lý`,
			Folded:     `thanh ly`,
			Priority:   85,
			Confidence: 0.8,
		},
		{
			Name:       "Received",
			Direction:  model.DirectionIn,
			Regex:      `nhận|thu nhập|thu tiền|được cho|được tặng|được trả|được chuyển`,
			Folded:     `thu nhap|thu tien|duoc tang|duoc cho|duoc chuyen`,
			Priority:   80,
			Confidence: 0.8,
		},
		{
			Name:       "Purchase",
			Direction:  model.DirectionOut,
			Regex:      `mua|mua sắm|đặt hàng|order`,
			Folded:     `mua|dat hang|order`,
			Priority:   70,
			Confidence: 0.85,
		},
		{
			Name:       "Payment",
			Direction:  model.DirectionOut,
			Regex:      `trả|thanh toán|đóng|nộp|chuyển khoản cho`,
			Folded:     `thanh toan|tra tien|nop`,
			Priority:   70,
			Confidence: 0.8,
		},
		{
			Name:       "Top Up",
			Direction:  model.DirectionOut,
			Regex:      `nạp|nạp tiền|nạp thẻ`,
			Folded:     `nap tien|nap the`,
			Priority:   65,
			Confidence: 0.8,
		},
		{
			Name:       "Spending",
			Direction:  model.DirectionOut,
			Regex:      `chi|tiêu|tốn|hết`,
			Folded:     `tieu|ton`,
			Priority:   60,
			Confidence: 0.7,
		},
		{
			Name:       "Bills",
			Direction:  model.DirectionOut,
			Regex:      `tiền điện|tiền nước|tiền nhà|tiền mạng|học phí|tiền phòng`,
			Folded:     `tien dien|tien nuoc|tien nha|hoc phi|tien phong`,
			Priority:   55,
			Confidence: 0.75,
		},
		{
			Name:       "Eating Out",
			Direction:  model.DirectionOut,
			Regex:      `ăn|uống|cafe|cà phê|trà sữa`,
			Folded:     `cafe|ca phe|tra sua`,
			Priority:   40,
			Confidence: 0.65,
		},
	}
}
