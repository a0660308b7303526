package intent

import (
	"math/rand/v2"
	"strings"

	"github.com/Veraticus/spice-talk/internal/model"
)

// Sample is one labelled utterance.
type Sample struct {
	Text   string
	Action model.Action
}

var (
	items = []string{
		"cafe", "cà phê", "trà sữa", "bánh mì", "phở", "cơm trưa", "ăn trưa", "ăn sáng", "ăn tối",
		"xăng", "grab", "taxi", "vé xe", "quần áo", "giày", "đồ dùng", "đồ ăn", "sách", "thuốc",
		"tiền điện", "tiền nước", "internet", "tiền nhà", "thức ăn cho mèo", "học phí", "xem phim",
		"siêu thị", "rau", "trái cây", "điện thoại",
	}
	incomeItems = []string{"lương", "thưởng", "tiền lãi", "bán đồ cũ", "hoàn tiền"}
	amounts     = []string{
		"45k", "20k", "120k", "350k", "1tr", "2tr", "4tr8", "15tr", "1 triệu 2", "2 triệu",
		"50.000đ", "750.000đ", "300 nghìn", "200 ngàn", "30000", "99k", "5tr873",
	}
	periods = []string{"hôm nay", "hôm qua", "tuần này", "tuần trước", "tháng này", "tháng trước", "năm nay"}
	prefix  = []string{"", "", "", "cho mình", "giúp tôi", "làm ơn", "ơi", "bạn ơi"}
	suffix  = []string{"", "", "", "nhé", "đi", "với", "giùm", "nha"}

	createTemplates = []string{
		"{item} {amount}",
		"mua {item} {amount}",
		"{amount} {item}",
		"trả tiền {item} {amount}",
		"{item} hết {amount}",
		"chi {amount} cho {item}",
		"{period} {item} {amount}",
		"mua {item}",
		"nhận {income} {amount}",
		"{income} {period} {amount}",
		"được {income} {amount}",
		"ghi {item} {amount}",
	}
	statsTemplates = []string{
		"xem thống kê",
		"xem thống kê {period}",
		"thống kê chi tiêu {period}",
		"báo cáo {period}",
		"xem báo cáo chi tiêu",
		"tổng chi tiêu {period}",
		"{period} tiêu bao nhiêu",
		"tôi đã tiêu bao nhiêu {period}",
		"chi tiêu {period} thế nào",
		"xem tổng thu nhập {period}",
		"tiền {item} {period} hết bao nhiêu",
		"cho xem biểu đồ chi tiêu",
	}
	editTemplates = []string{
		"sửa giao dịch",
		"sửa giao dịch vừa rồi",
		"sửa khoản {item}",
		"chỉnh lại khoản {item}",
		"đổi số tiền thành {amount}",
		"sửa số tiền {item} thành {amount}",
		"cập nhật giao dịch {period}",
		"sửa lại danh mục",
		"đổi danh mục khoản vừa nhập",
		"chỉnh sửa giao dịch {item}",
		"nhập sai rồi sửa lại",
	}
	deleteTemplates = []string{
		"xóa giao dịch",
		"xoá giao dịch vừa rồi",
		"xóa khoản {item}",
		"xoá khoản {item} {period}",
		"hủy giao dịch",
		"huỷ khoản vừa nhập",
		"bỏ khoản {item} đi",
		"xóa cái vừa nhập",
		"xoá giao dịch {amount}",
		"xóa hết giao dịch {period}",
		"hủy khoản chi {item}",
	}
)

func pick(rng *rand.Rand, list []string) string {
	return list[rng.IntN(len(list))]
}

func fill(rng *rand.Rand, template string) string {
	r := strings.NewReplacer(
		"{item}", pick(rng, items),
		"{income}", pick(rng, incomeItems),
		"{amount}", pick(rng, amounts),
		"{period}", pick(rng, periods),
	)
	text := strings.Join([]string{pick(rng, prefix), r.Replace(template), pick(rng, suffix)}, " ")
	return strings.Join(strings.Fields(text), " ")
}

// GenerateSamples returns perClass synthetic utterances for each action. The
// output depends only on seed.
func GenerateSamples(seed int64, perClass int) []Sample {
	rng := rand.New(rand.NewPCG(uint64(seed), 0x1f2e3d4c))
	banks := map[model.Action][]string{
		model.ActionCreateTransaction: createTemplates,
		model.ActionViewStats:         statsTemplates,
		model.ActionEditTransaction:   editTemplates,
		model.ActionDeleteTransaction: deleteTemplates,
	}

	samples := make([]Sample, 0, perClass*len(model.Actions))
	for _, action := range model.Actions {
		templates := banks[action]
		for i := 0; i < perClass; i++ {
			// cycle through every template before sampling so each appears
			template := templates[i%len(templates)]
			if i >= len(templates) {
				template = pick(rng, templates)
			}
			samples = append(samples, Sample{Text: fill(rng, template), Action: action})
		}
	}
	return samples
}
