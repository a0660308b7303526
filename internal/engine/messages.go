package engine

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Veraticus/spice-talk/internal/model"
)

var printer = message.NewPrinter(language.Vietnamese)

// FormatAmount renders a base-unit amount the way Vietnamese users write it,
// with dot-grouped thousands and a trailing đ.
func FormatAmount(v int64) string {
	return printer.Sprintf("%d", v) + "đ"
}

// draftMessage is the reply shown with a draft.
func draftMessage(d *model.Draft) string {
	switch d.Action {
	case model.ActionViewStats:
		return "Đang mở thống kê chi tiêu cho bạn."
	case model.ActionEditTransaction:
		return "Bạn muốn sửa giao dịch nào?"
	case model.ActionDeleteTransaction:
		return "Bạn muốn xóa giao dịch nào?"
	}

	if d.Amount == nil {
		if d.IO == model.DirectionIn {
			return "Bạn nhận được bao nhiêu tiền?"
		}
		if d.Note != "" {
			return fmt.Sprintf("Bạn đã chi bao nhiêu cho %q?", d.Note)
		}
		return "Bạn đã chi bao nhiêu?"
	}

	amount := FormatAmount(*d.Amount)
	switch d.Decision {
	case model.DecisionAutoAct:
		if d.IO == model.DirectionIn {
			return fmt.Sprintf("Đã ghi khoản thu %s vào %s.", amount, d.CategoryName)
		}
		return fmt.Sprintf("Đã ghi khoản chi %s vào %s.", amount, d.CategoryName)
	case model.DecisionAskWithGoodGuesses:
		msg := fmt.Sprintf("%s: có phải là %s không?", amount, d.CategoryName)
		if others := names(d.Alternatives.Without(d.CategoryID)); others != "" {
			msg += " Hoặc: " + others + "."
		}
		return msg
	default:
		if all := names(d.Alternatives); all != "" {
			return fmt.Sprintf("%s: mình chưa chắc danh mục. Bạn chọn giúp nhé: %s.", amount, all)
		}
		return fmt.Sprintf("%s: bạn muốn ghi vào danh mục nào?", amount)
	}
}

func names(r model.Ranking) string {
	out := make([]string, len(r))
	for i, p := range r {
		out[i] = p.CategoryName
	}
	return strings.Join(out, ", ")
}
