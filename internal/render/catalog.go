package render

import (
	"strconv"
	"strings"
)

// PriceTier selects which configured price applies to a template.
type PriceTier int

const (
	TierFree PriceTier = iota
	Tier1
	Tier2
	Tier3
)

// ConfigKey is the config entry holding the tier price, e.g. PRICE_2 or PRICE_2_USD.
func (t PriceTier) ConfigKey(currency string) string {
	if t == TierFree {
		return ""
	}
	key := "PRICE_" + strconv.Itoa(int(t))
	if strings.EqualFold(currency, "USD") {
		key += "_USD"
	}
	return key
}

type RGB struct{ R, G, B int }

func hex(s string) RGB {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return RGB{}
	}
	return RGB{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}
}

type Layout int

const (
	LayoutDefault Layout = iota
	LayoutCenter
)

type ImageVariant string

const (
	ImageDefault    ImageVariant = "default"
	ImageFrontRound ImageVariant = "front-round"
	ImageSideRound  ImageVariant = "side-round"
)

// Margins are in points: top, right, bottom, left.
type Margins struct{ Top, Right, Bottom, Left float64 }

// Style is the declarative look of a template.
type Style struct {
	Layout      Layout
	Margins     Margins
	Font        string
	Page        RGB
	Border      RGB
	BorderWidth float64
	// InnerBorder draws a second frame inside the first.
	InnerBorder bool

	Heading      RGB
	HeadingFill  *RGB
	Label        RGB
	Value        RGB
	Uppercase    bool
	LabelWidth   float64
	ImageVariant ImageVariant
	// NameHighlight prints the "Name" field as a title above the sections.
	NameHighlight bool
}

type Template struct {
	ID        string
	ImageURL  string
	Tier      PriceTier
	ImageOnly bool
	Style     Style
}

const cdn = "https://res.cloudinary.com/drmmw7mn8/image/upload/"

func ptr(c RGB) *RGB { return &c }

var baseStyle = Style{
	Layout:       LayoutDefault,
	Margins:      Margins{100, 60, 100, 60},
	Font:         "Helvetica",
	Page:         hex("#FFFFFF"),
	Border:       hex("#B4A363"),
	BorderWidth:  4,
	Heading:      hex("#B4A363"),
	Label:        hex("#100D0A"),
	Value:        hex("#100D0A"),
	Uppercase:    true,
	LabelWidth:   140,
	ImageVariant: ImageDefault,
}

func styled(mod func(s *Style)) Style {
	s := baseStyle
	mod(&s)
	return s
}

func framed(page, border, heading string) Style {
	return styled(func(s *Style) {
		s.Page, s.Border, s.Heading = hex(page), hex(border), hex(heading)
	})
}

func centered(page, text, bannerFill, bannerText string) Style {
	return styled(func(s *Style) {
		s.Layout = LayoutCenter
		s.Margins = Margins{52, 32, 48, 32}
		s.Page = hex(page)
		s.Border = hex(bannerFill)
		s.BorderWidth = 0
		s.Heading = hex(bannerText)
		s.HeadingFill = ptr(hex(bannerFill))
		s.Label = hex(text)
		s.Value = hex(text)
		s.ImageVariant = ImageFrontRound
		s.NameHighlight = true
	})
}

// catalog is listed in storefront order.
var catalog = []Template{
	{ID: "eg0", ImageURL: cdn + "v1753823902/light-green-marriage-biodata-format_jvoczv.webp", Tier: TierFree,
		Style: styled(func(s *Style) {
			s.Page, s.Border, s.Heading = hex("#F3F8EE"), hex("#8DB596"), hex("#100D0A")
			s.Uppercase = false
		})},
	{ID: "eg23", ImageURL: cdn + "v1753823903/white-brown-theme-marriage-biodata-sample-format-girl_tkjfkq.png", Tier: Tier3,
		Style: centered("#FFFFFF", "#36454F", "#994B03", "#FFFFFF")},
	{ID: "eg24", ImageURL: cdn + "v1753823903/red-background-marriage-biodata-template-example-girl_ailbsm.png", Tier: Tier3,
		Style: centered("#FBEAEA", "#3B0A0A", "#B71C1C", "#FFFFFF")},
	{ID: "eg25", ImageURL: cdn + "v1753823899/blue-background-marriage-biodata-template-example-boy_hcuhgi.png", Tier: Tier3,
		Style: centered("#E8F0FB", "#0B2545", "#0D47A1", "#FFFFFF")},
	{ID: "eg26", ImageURL: cdn + "v1753823902/pink-theme-marriage-biodata-template-example-girl_k8mxcx.png", Tier: Tier3,
		Style: styled(func(s *Style) {
			s.Layout = LayoutCenter
			s.Margins = Margins{20, 32, 20, 32}
			s.Page, s.Border, s.BorderWidth = hex("#FFFFFF"), hex("#E6CED6"), 0
			s.Heading, s.HeadingFill = hex("#202021"), ptr(hex("#E6CED6"))
			s.Label, s.Value = hex("#202021"), hex("#202021")
			s.NameHighlight = true
		})},
	{ID: "eg20", ImageURL: cdn + "v1753823902/elegant-marriage-biodata-sample-boy_sh4jra.png", Tier: Tier3, ImageOnly: true,
		Style: styled(func(s *Style) {
			s.Layout = LayoutCenter
			s.Font = "Times"
			s.Page, s.Border, s.Heading = hex("#F5F7FF"), hex("#1A237E"), hex("#1A237E")
			s.InnerBorder = true
			s.ImageVariant = ImageFrontRound
			s.NameHighlight = true
		})},
	{ID: "eg21", ImageURL: cdn + "v1753823902/elegant-marriage-biodata-sample-girl_yuhov2.webp", Tier: Tier3, ImageOnly: true,
		Style: styled(func(s *Style) {
			s.Layout = LayoutCenter
			s.Font = "Times"
			s.Margins = Margins{50, 115, 50, 95}
			s.Page, s.Border, s.Heading = hex("#FFF8F0"), hex("#994B04"), hex("#994B04")
			s.Label, s.Value = hex("#994B04"), hex("#994B04")
			s.InnerBorder = true
			s.ImageVariant = ImageFrontRound
			s.NameHighlight = true
		})},
	{ID: "eg12", ImageURL: cdn + "v1753823903/popular-hindu-marriage-biodata-format_k6dt5z.png", Tier: Tier2,
		Style: framed("#FFF8E1", "#F9A825", "#B71C1C")},
	{ID: "eg14", ImageURL: cdn + "v1753823901/clean-hindu-marriage-biodata-format_gjg2o5.png", Tier: Tier2,
		Style: framed("#FFFFFF", "#D7CCC8", "#8D6E63")},
	{ID: "eg6", ImageURL: cdn + "v1753823901/beautiful-marriage-biodata-format_ivtltv.png", Tier: Tier2,
		Style: styled(func(s *Style) {
			s.Margins = Margins{160, 48, 108, 54}
			s.Border, s.Heading, s.HeadingFill = hex("#A8422A"), hex("#FFFFFF"), ptr(hex("#A8422A"))
			s.Label, s.Value = hex("#36454F"), hex("#36454F")
		})},
	{ID: "eg7", ImageURL: cdn + "v1753823904/white-background-marriage-biodata-format_o6nosy.png", Tier: Tier2,
		Style: framed("#FFFFFF", "#CCCCCC", "#333333")},
	{ID: "eg30", ImageURL: cdn + "v1753823900/gautam-buddha-marriage-biodata-format_kkqu61.webp", Tier: Tier2,
		Style: styled(func(s *Style) {
			s.Font = "Times"
			s.Page, s.Border, s.Heading = hex("#FFF3E0"), hex("#8D5524"), hex("#8D5524")
			s.InnerBorder = true
		})},
	{ID: "eg15", ImageURL: cdn + "v1753823901/flowers-marriage-biodata-format_qnxr2e.webp", Tier: Tier2,
		Style: styled(func(s *Style) {
			s.Margins = Margins{160, 130, 140, 120}
			s.Page, s.Border, s.Heading = hex("#FDF6F0"), hex("#62450E"), hex("#62450E")
			s.Label, s.Value = hex("#452B22"), hex("#452B22")
			s.LabelWidth = 110
			s.ImageVariant = ImageSideRound
		})},
	{ID: "eg11", ImageURL: cdn + "v1753823903/red-bordered-marriage-biodata-format_dcixfy.png", Tier: Tier2,
		Style: styled(func(s *Style) {
			s.Border, s.BorderWidth, s.Heading = hex("#C62828"), 10, hex("#C62828")
		})},
	{ID: "eg13", ImageURL: cdn + "v1753823903/yellow-bordered-marriage-biodata-format_xvojfk.png", Tier: Tier2,
		Style: styled(func(s *Style) {
			s.Border, s.BorderWidth, s.Heading = hex("#F9A825"), 10, hex("#A66F00")
		})},
	{ID: "eg1", ImageURL: cdn + "v1753823903/traditional-theme-marriage-biodata-format_pztrv6.webp", Tier: Tier1,
		Style: framed("#FFFDF5", "#B4A363", "#B4A363")},
	{ID: "eg2", ImageURL: cdn + "v1753823901/blue-background-marriage-biodata-format_s9i3ge.webp", Tier: Tier1,
		Style: framed("#E8F0FB", "#2B4C7E", "#2B4C7E")},
	{ID: "eg3", ImageURL: cdn + "v1753823901/green-background-marriage-biodata-format_xe5sxm.webp", Tier: Tier1,
		Style: framed("#EAF5EA", "#2E7D32", "#2E7D32")},
	{ID: "eg10", ImageURL: cdn + "v1753823903/simple-minimalist-marriage-biodata-format_bqdw6t.png", Tier: Tier1,
		Style: styled(func(s *Style) {
			s.Margins = Margins{140, 36, 78, 36}
			s.BorderWidth, s.Heading = 0, hex("#BE632B")
		})},
	{ID: "eg4", ImageURL: cdn + "v1753823901/brown-background-marriage-biodata-format_waybyz.webp", Tier: Tier1,
		Style: framed("#F4ECE1", "#6D4C41", "#6D4C41")},
	{ID: "eg5", ImageURL: cdn + "v1753823902/orange-bordered-marriage-biodata-format_jijcua.webp", Tier: Tier1,
		Style: styled(func(s *Style) {
			s.Border, s.BorderWidth, s.Heading = hex("#E67E22"), 8, hex("#E67E22")
		})},
	{ID: "eg8", ImageURL: cdn + "v1753823900/brown-theme-marriage-biodata-format_grywax.webp", Tier: Tier1,
		Style: styled(func(s *Style) {
			s.Margins = Margins{100, 46, 100, 44}
			s.Page, s.Border = hex("#5D4037"), hex("#D7B98E")
			s.Heading, s.Label, s.Value = hex("#FFFFFF"), hex("#FFFFFF"), hex("#FFFFFF")
		})},
	{ID: "eg9", ImageURL: cdn + "v1753823904/classic-marriage-biodata-format_jg2cfy.png", Tier: Tier1,
		Style: styled(func(s *Style) {
			s.Font = "Times"
			s.Border, s.Heading = hex("#7B1F1F"), hex("#7B1F1F")
			s.InnerBorder = true
		})},
}

var catalogIndex = func() map[string]Template {
	m := make(map[string]Template, len(catalog))
	for _, t := range catalog {
		m[t.ID] = t
	}
	return m
}()

// Catalog returns the templates in storefront order.
func Catalog() []Template {
	out := make([]Template, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(id string) (Template, bool) {
	t, ok := catalogIndex[id]
	return t, ok
}
