package category

import (
	"strings"

	"github.com/Veraticus/spice-talk/internal/textproc"
)

// theme is a curated family of categories. Cues recognise a category as
// belonging to the theme by its name; keywords recognise an utterance.
type theme struct {
	name     string
	cues     []string
	keywords []string
}

var defaultThemes = []theme{
	{
		name:     "food",
		cues:     []string{"ăn uống", "ăn", "đồ ăn", "thực phẩm", "ẩm thực", "cà phê", "cafe", "đi chợ"},
		keywords: []string{"ăn", "ăn sáng", "ăn trưa", "ăn tối", "ăn vặt", "trưa", "cơm", "phở", "bún", "bánh mì", "cafe", "cà phê", "trà sữa", "nhậu", "đồ ăn", "uống", "bia", "lẩu", "buffet", "đi chợ", "rau", "thịt"},
	},
	{
		name:     "transport",
		cues:     []string{"di chuyển", "đi lại", "giao thông", "xăng xe", "xe cộ"},
		keywords: []string{"xăng", "đổ xăng", "grab", "taxi", "xe ôm", "gửi xe", "vé xe", "xe buýt", "bus", "gojek", "sửa xe", "rửa xe", "vé máy bay", "tàu", "phí cầu đường"},
	},
	{
		name:     "shopping",
		cues:     []string{"mua sắm", "shopping", "quần áo"},
		keywords: []string{"mua", "quần", "áo", "quần áo", "giày", "dép", "túi", "shopee", "lazada", "tiki", "mỹ phẩm", "đồ dùng", "siêu thị"},
	},
	{
		name:     "bills",
		cues:     []string{"hóa đơn", "hoá đơn", "tiện ích", "điện nước"},
		keywords: []string{"tiền điện", "tiền nước", "điện", "nước", "internet", "wifi", "mạng", "cước", "điện thoại", "truyền hình", "gas"},
	},
	{
		name:     "housing",
		cues:     []string{"nhà ở", "nhà cửa", "thuê nhà", "tiền nhà"},
		keywords: []string{"tiền nhà", "thuê nhà", "tiền phòng", "nhà trọ", "chung cư", "phí quản lý", "sửa nhà"},
	},
	{
		name:     "pets",
		cues:     []string{"thú cưng", "chó mèo"},
		keywords: []string{"mèo", "chó", "pate", "thú y", "cát mèo", "thức ăn cho mèo", "thức ăn cho chó"},
	},
	{
		name:     "health",
		cues:     []string{"sức khỏe", "sức khoẻ", "y tế"},
		keywords: []string{"thuốc", "bệnh viện", "khám", "bác sĩ", "nha khoa", "vitamin", "gym", "bảo hiểm y tế"},
	},
	{
		name:     "education",
		cues:     []string{"giáo dục", "học tập", "học"},
		keywords: []string{"học phí", "sách", "khóa học", "khoá học", "học thêm", "vở", "bút", "lớp"},
	},
	{
		name:     "entertainment",
		cues:     []string{"giải trí", "vui chơi"},
		keywords: []string{"xem phim", "phim", "rạp", "game", "karaoke", "du lịch", "netflix", "spotify", "concert", "đi chơi"},
	},
	{
		name:     "income",
		cues:     []string{"lương", "thu nhập", "thưởng", "tiền lãi"},
		keywords: []string{"lương", "thưởng", "thu nhập", "nhận", "hoàn tiền", "tiền về", "lãi", "bán"},
	},
}

// foldedTheme is a theme with every phrase folded once up front.
type foldedTheme struct {
	name     string
	cues     []string
	keywords []string
}

func foldAll(phrases []string) []string {
	out := make([]string, len(phrases))
	for i, p := range phrases {
		out[i] = strings.Join(textproc.FoldTokens(textproc.Tokenize(p)), " ")
	}
	return out
}

func foldThemes(themes []theme) []foldedTheme {
	out := make([]foldedTheme, len(themes))
	for i, t := range themes {
		out[i] = foldedTheme{name: t.name, cues: foldAll(t.cues), keywords: foldAll(t.keywords)}
	}
	return out
}

// containsPhrase reports whether phrase occurs in text on token boundaries.
// Both are space-joined token strings.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}
