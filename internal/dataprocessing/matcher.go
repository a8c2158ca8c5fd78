package dataprocessing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"myxpicks/pkg/contracts/domain"
)

// Matcher names, used for parse statistics.
const (
	MatcherPrimary  = "primary"
	MatcherFallback = "fallback"
)

// TimestampLayout is the ISO-8601 form written into StockPick.Timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// MaxCodeLength is the longest ticker code a report line may carry.
const MaxCodeLength = 8

// MatchFunc extracts a pick from one sanitized line. ok is false when the
// line does not fit the layout the matcher understands.
type MatchFunc func(line string, now time.Time) (pick domain.StockPick, ok bool)

// Matcher is a named line layout. The parser tries matchers in order and
// keeps the first success.
type Matcher struct {
	Name  string
	Match MatchFunc
}

const (
	numberPattern = `\d+(?:\.\d+)?`
	signedPattern = `[+\-]?\d+(?:\.\d+)?`
	trendPattern  = `[` + GlyphTrendUp + GlyphTrendDown + `]`
)

var (
	fallbackPrice  = regexp.MustCompile(`RM(` + numberPattern + `)`)
	fallbackChange = regexp.MustCompile(trendPattern + `(` + signedPattern + `)%`)
)

// glyphAlternation builds a regexp alternation of the strategy glyphs.
func (v Vocabulary) glyphAlternation() string {
	quoted := make([]string, 0, len(v.Strategies))
	for _, s := range v.Strategies {
		quoted = append(quoted, regexp.QuoteMeta(s.Glyph))
	}
	return `(?:` + strings.Join(quoted, "|") + `)`
}

// PrimaryMatcher reads the full column layout:
//
//	<code> <name> RM<price> <trend><signed>% <volume> <rsi> <glyph><strategy>
func PrimaryMatcher(v Vocabulary, scorer *ScoreEngine) Matcher {
	pattern := regexp.MustCompile(
		`(?:^|\s)(\d+[A-Z]*)\s+([A-Z\-]+)\s+RM(` + numberPattern + `)\s+` +
			trendPattern + `(` + signedPattern + `)%\s+` +
			`(\d[\d,]*)\s+(` + numberPattern + `)\s+` +
			`(` + v.glyphAlternation() + `.*)`)

	match := func(line string, now time.Time) (domain.StockPick, bool) {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			return domain.StockPick{}, false
		}
		code, name, rawPrice, rawChange, rawVolume, rawRSI, rawStrategy := m[1], m[2], m[3], m[4], m[5], m[6], m[7]
		if !validCode(code) {
			return domain.StockPick{}, false
		}

		price, err := strconv.ParseFloat(rawPrice, 64)
		if err != nil {
			return domain.StockPick{}, false
		}
		changePercent, err := strconv.ParseFloat(rawChange, 64)
		if err != nil {
			return domain.StockPick{}, false
		}
		volume, err := strconv.ParseInt(strings.ReplaceAll(rawVolume, ",", ""), 10, 64)
		if err != nil {
			return domain.StockPick{}, false
		}
		rsi, err := strconv.ParseFloat(rawRSI, 64)
		if err != nil {
			return domain.StockPick{}, false
		}
		strategy, ok := v.DecodeStrategy(rawStrategy)
		if !ok {
			return domain.StockPick{}, false
		}

		return domain.StockPick{
			Code:          strings.TrimSpace(code),
			Name:          strings.TrimSpace(name),
			Price:         strconv.FormatFloat(price, 'f', 3, 64),
			Change:        FormatChange(changePercent),
			ChangePercent: changePercent,
			Volume:        &volume,
			RSI:           &rsi,
			Strategy:      strategy,
			AIScore:       scorer.Score(rsi, strategy),
			Timestamp:     now.UTC().Format(TimestampLayout),
		}, true
	}

	return Matcher{Name: MatcherPrimary, Match: match}
}

// FallbackMatcher reads the short whitespace layout used when the screener
// omits the indicator columns:
//
//	<code> <name> ...RM<price>... ...<trend><signed>%... [<glyph><strategy>]
//
// Only the third and fourth tokens are searched for price and change. The
// strategy is the first glyph anywhere in the line once the trend glyph of
// the change has been cut out, since the up trend shares its glyph with the
// volume-price strategy.
func FallbackMatcher(v Vocabulary) Matcher {
	match := func(line string, now time.Time) (domain.StockPick, bool) {
		parts := strings.Fields(line)
		if len(parts) < 4 {
			return domain.StockPick{}, false
		}

		if !validCode(parts[0]) {
			return domain.StockPick{}, false
		}
		priceMatch := fallbackPrice.FindStringSubmatch(parts[2])
		changeMatch := fallbackChange.FindStringSubmatchIndex(parts[3])
		if priceMatch == nil || changeMatch == nil {
			return domain.StockPick{}, false
		}
		rawChange := parts[3][changeMatch[2]:changeMatch[3]]

		trendAt := fieldOffset(line, parts, 3) + changeMatch[0]
		_, trendSize := utf8.DecodeRuneInString(line[trendAt:])
		strategyText := line[:trendAt] + line[trendAt+trendSize:]

		changePercent, err := strconv.ParseFloat(rawChange, 64)
		if err != nil {
			return domain.StockPick{}, false
		}

		change := rawChange
		if !strings.HasPrefix(change, "+") && !strings.HasPrefix(change, "-") {
			change = "+" + change
		}

		return domain.StockPick{
			Code:          parts[0],
			Name:          parts[1],
			Price:         priceMatch[1],
			Change:        change + "%",
			ChangePercent: changePercent,
			Strategy:      v.FindStrategy(strategyText),
			AIScore:       FallbackScore,
			Timestamp:     now.UTC().Format(TimestampLayout),
		}, true
	}

	return Matcher{Name: MatcherFallback, Match: match}
}

// validCode reports whether code is a 1 to 8 character ASCII alphanumeric
// ticker.
func validCode(code string) bool {
	if code == "" || len(code) > MaxCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

// fieldOffset returns the byte offset in line of fields[n], where fields is
// strings.Fields(line).
func fieldOffset(line string, fields []string, n int) int {
	pos := 0
	for i := 0; i < n; i++ {
		pos += strings.Index(line[pos:], fields[i]) + len(fields[i])
	}
	return pos + strings.Index(line[pos:], fields[n])
}

// FormatChange renders a change percentage with two decimals and an explicit
// sign, "+" for zero and above.
func FormatChange(changePercent float64) string {
	if changePercent == 0 {
		changePercent = 0 // drop the sign of -0
	}
	if changePercent >= 0 {
		return fmt.Sprintf("+%.2f%%", changePercent)
	}
	return fmt.Sprintf("%.2f%%", changePercent)
}
