package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy labels emitted by the screener in its Traditional Chinese reports.
const (
	LabelStrongStock     = "強勢股"
	LabelOversoldRebound = "超跌反彈"
	LabelVolumePriceRise = "量價齊升"
	LabelUnclassified    = "未分類"
)

// Pictographs used in report lines.
const (
	GlyphTrendUp   = "📈"
	GlyphTrendDown = "📉"
	GlyphStrong    = "💪"
	GlyphRebound   = "🔥"
	GlyphVolume    = "📈"
)

// Supported report locales.
const (
	LocaleTraditionalChinese = "zh-TW"
	LocaleEnglish            = "en"
)

// ErrUnknownLocale is returned for a locale without a built-in vocabulary.
var ErrUnknownLocale = errors.New("unknown report locale")

// StrategyGlyph decodes one strategy pictograph into its label. Bonus is the
// score adjustment applied when a label contains Label.
type StrategyGlyph struct {
	Glyph string
	Label string
	Bonus int
}

// Vocabulary holds the locale-specific tokens of the report format: column
// header markers, section footer markers and the strategy glyph table.
type Vocabulary struct {
	// HeaderTokens must all appear on the column header line.
	HeaderTokens []string
	// FooterTokens end the data section when any one appears.
	FooterTokens []string
	Strategies   []StrategyGlyph
	Unclassified string
}

// TraditionalChineseVocabulary is the format the screener writes today.
func TraditionalChineseVocabulary() Vocabulary {
	return Vocabulary{
		HeaderTokens: []string{"代碼", "名稱"},
		FooterTokens: []string{"策略分佈:", "市場洞察:"},
		Strategies: []StrategyGlyph{
			{Glyph: GlyphStrong, Label: LabelStrongStock, Bonus: 20},
			{Glyph: GlyphRebound, Label: LabelOversoldRebound, Bonus: 15},
			{Glyph: GlyphVolume, Label: LabelVolumePriceRise, Bonus: 10},
		},
		Unclassified: LabelUnclassified,
	}
}

// EnglishVocabulary is the English rendition of the same report.
func EnglishVocabulary() Vocabulary {
	return Vocabulary{
		HeaderTokens: []string{"Code", "Name"},
		FooterTokens: []string{"Strategy distribution:", "Market insight:"},
		Strategies: []StrategyGlyph{
			{Glyph: GlyphStrong, Label: "Strong Stock", Bonus: 20},
			{Glyph: GlyphRebound, Label: "Oversold Rebound", Bonus: 15},
			{Glyph: GlyphVolume, Label: "Volume-Price Rise", Bonus: 10},
		},
		Unclassified: "Unclassified",
	}
}

// VocabularyFor returns the built-in vocabulary for locale.
func VocabularyFor(locale string) (Vocabulary, error) {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "", "zh", "zh-tw", "zh_tw":
		return TraditionalChineseVocabulary(), nil
	case "en", "en-us", "en_us":
		return EnglishVocabulary(), nil
	default:
		return Vocabulary{}, fmt.Errorf("%w: %q", ErrUnknownLocale, locale)
	}
}

// WithMarkers returns a copy of v with non-empty overrides applied.
func (v Vocabulary) WithMarkers(header, footer []string) Vocabulary {
	if len(header) > 0 {
		v.HeaderTokens = append([]string(nil), header...)
	}
	if len(footer) > 0 {
		v.FooterTokens = append([]string(nil), footer...)
	}
	return v
}

// Validate checks that the vocabulary can drive a parse.
func (v Vocabulary) Validate() error {
	if len(v.HeaderTokens) == 0 {
		return errors.New("vocabulary: at least one header token is required")
	}
	if len(v.FooterTokens) == 0 {
		return errors.New("vocabulary: at least one footer token is required")
	}
	if len(v.Strategies) == 0 {
		return errors.New("vocabulary: strategy glyph table is empty")
	}
	seen := make(map[string]bool, len(v.Strategies))
	for _, s := range v.Strategies {
		if s.Glyph == "" || s.Label == "" {
			return fmt.Errorf("vocabulary: incomplete strategy entry %+v", s)
		}
		if seen[s.Glyph] {
			return fmt.Errorf("vocabulary: glyph %q mapped twice", s.Glyph)
		}
		seen[s.Glyph] = true
	}
	if v.Unclassified == "" {
		return errors.New("vocabulary: unclassified label is required")
	}
	return nil
}
