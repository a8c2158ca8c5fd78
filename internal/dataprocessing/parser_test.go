package dataprocessing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myxpicks/pkg/contracts/domain"
)

const sampleReport = `🤖 AI 智能選股報告 2025-12-22
═══════════════════════════════════════
代碼    名稱    價格    漲跌    成交量    RSI    策略
───────────────────────────────────────
0652NP HSI-PWNP RM0.572 📈+2.69% 1,234,567 65.20 💪強勢股

1295 PUBLICBANK RM4.208 📉-2.82% 890,000 25.50 🔥超跌反彈
═══════════════════════════════════════
5099 CAPITALA RM0.39 📉-1.27% extra
not a stock line

策略分佈:
💪強勢股 1
RM9.99 📈+9.99% noise 5.5 💪強勢股
市場洞察: 市場偏多
`

func newTestParser(opts ...Option) *Parser {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewParser(TraditionalChineseVocabulary(), opts...)
}

func TestParser_Parse(t *testing.T) {
	result := newTestParser().Parse(sampleReport)

	require.NoError(t, result.Warning())
	require.Len(t, result.Picks, 3)

	assert.Equal(t, "0652NP", result.Picks[0].Code)
	assert.Equal(t, "+2.69%", result.Picks[0].Change)
	assert.Equal(t, 70, result.Picks[0].AIScore)

	assert.Equal(t, "1295", result.Picks[1].Code)
	assert.Equal(t, "-2.82%", result.Picks[1].Change)
	assert.Equal(t, 80, result.Picks[1].AIScore)

	assert.Equal(t, "5099", result.Picks[2].Code)
	assert.Equal(t, FallbackScore, result.Picks[2].AIScore)
	assert.Nil(t, result.Picks[2].Volume)

	for _, pick := range result.Picks {
		assert.Equal(t, "2025-12-22T10:30:00.000Z", pick.Timestamp)
	}

	assert.Equal(t, 4, result.Stats.DataLines)
	assert.Equal(t, 1, result.Stats.Skipped)
	assert.Equal(t, 2, result.Stats.Matched[MatcherPrimary])
	assert.Equal(t, 1, result.Stats.Matched[MatcherFallback])
}

func TestParser_Parse_Sections(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		codes []string
	}{
		{
			name:  "lines before the header are ignored",
			text:  "5099 CAPITALA RM0.39 📉-1.27%\n代碼 名稱\n1295 PUBLICBANK RM4.208 📉-2.82% 890,000 25.50 🔥超跌反彈",
			codes: []string{"1295"},
		},
		{
			name:  "footer closes the section",
			text:  "代碼 名稱\n1295 PUBLICBANK RM4.208 📉-2.82% 890,000 25.50 🔥超跌反彈\n市場洞察:\n5099 CAPITALA RM0.39 📉-1.27%",
			codes: []string{"1295"},
		},
		{
			name:  "a second header reopens the section",
			text:  "代碼 名稱\n1295 PUBLICBANK RM4.208 📉-2.82% 890,000 25.50 🔥超跌反彈\n策略分佈:\n代碼 名稱\n5099 CAPITALA RM0.39 📉-1.27%",
			codes: []string{"1295", "5099"},
		},
		{
			name:  "header needs every token",
			text:  "代碼 only\n1295 PUBLICBANK RM4.208 📉-2.82% 890,000 25.50 🔥超跌反彈",
			codes: nil,
		},
		{
			name:  "separator-only lines carry no data",
			text:  "代碼 名稱\n══════\n ──── \n━━━\n1295 PUBLICBANK RM4.208 📉-2.82% 890,000 25.50 🔥超跌反彈",
			codes: []string{"1295"},
		},
		{
			name:  "carriage returns are tolerated",
			text:  "代碼 名稱\r\n1295 PUBLICBANK RM4.208 📉-2.82% 890,000 25.50 🔥超跌反彈\r\n",
			codes: []string{"1295"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newTestParser().Parse(tt.text)

			var codes []string
			for _, pick := range result.Picks {
				codes = append(codes, pick.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestParser_Parse_SeparatorLinesAreNotCounted(t *testing.T) {
	result := newTestParser().Parse("代碼 名稱\n═══\n\n───")

	assert.Empty(t, result.Picks)
	assert.Zero(t, result.Stats.DataLines)
	assert.Zero(t, result.Stats.Skipped)
}

func TestParser_Parse_Warnings(t *testing.T) {
	t.Run("blank report", func(t *testing.T) {
		result := newTestParser().Parse("  \n\t\n")
		assert.ErrorIs(t, result.Warning(), ErrEmptyReport)
		assert.NotNil(t, result.Picks)
		assert.Empty(t, result.Picks)
	})

	t.Run("no header", func(t *testing.T) {
		result := newTestParser().Parse("1295 PUBLICBANK RM4.208 📉-2.82% 890,000 25.50 🔥超跌反彈")
		assert.ErrorIs(t, result.Warning(), ErrNoPicks)
	})

	t.Run("nothing matches", func(t *testing.T) {
		result := newTestParser().Parse("代碼 名稱\nhello world\n策略分佈:")
		assert.ErrorIs(t, result.Warning(), ErrNoPicks)
		assert.Equal(t, 1, result.Stats.Skipped)
	})
}

func TestParser_WithMatchers(t *testing.T) {
	vocab := TraditionalChineseVocabulary()
	p := NewParser(vocab,
		WithClock(func() time.Time { return fixedNow }),
		WithMatchers(PrimaryMatcher(vocab, NewScoreEngine(vocab))),
	)

	result := p.Parse(sampleReport)

	require.Len(t, result.Picks, 2)
	assert.Equal(t, 2, result.Stats.Skipped)
	assert.Zero(t, result.Stats.Matched[MatcherFallback])
}

func TestParser_Parse_RejectsInvalidPicks(t *testing.T) {
	p := newTestParser()

	result := p.Parse("代碼 名稱\n" +
		"123456789012 ABC RM1.00 📈+1.00% 100 50 💪強勢股\n" +
		"12345678901 LONGCODE RM0.39 📉-1.27%\n" +
		"══ 1155 MAYBANK RM9.286 📈+1.09% 12,000 50.00 📈量價齊升 ══\n")

	require.Len(t, result.Picks, 1)
	assert.Equal(t, "1155", result.Picks[0].Code)
	assert.Equal(t, 65, result.Picks[0].AIScore)
	assert.Equal(t, 2, result.Stats.Skipped)
}

func TestParser_EnglishVocabulary(t *testing.T) {
	vocab := EnglishVocabulary()
	p := NewParser(vocab, WithClock(func() time.Time { return fixedNow }))

	report := "Code  Name  Price  Change\n" +
		"1295 PUBLICBANK RM4.208 📉-2.82% 890,000 25.50 🔥Oversold Rebound\n" +
		"5326 99SMART RM3.167 📉-1.71% 💪\n" +
		"Strategy distribution:\n"

	result := p.Parse(report)
	require.Len(t, result.Picks, 2)

	assert.Equal(t, "Oversold Rebound", result.Picks[0].Strategy)
	assert.Equal(t, 80, result.Picks[0].AIScore)
	assert.Equal(t, "Strong Stock", result.Picks[1].Strategy)
	assert.Equal(t, FallbackScore, result.Picks[1].AIScore)
}

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	result := newTestParser().Parse(sampleReport)
	snapshot := domain.NewSnapshot("2025-12-22 18:30:00", "2025-12-22", result.Picks)

	data, err := json.Marshal(snapshot)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.EqualValues(t, 3, fields["totalStocks"])

	stocks := fields["stocks"].([]any)
	first := stocks[0].(map[string]any)
	assert.Equal(t, "0.572", first["price"])
	assert.EqualValues(t, 70, first["aiScore"])
	last := stocks[2].(map[string]any)
	assert.NotContains(t, last, "volume")
	assert.NotContains(t, last, "rsi")

	var decoded domain.Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, snapshot, decoded)
}
