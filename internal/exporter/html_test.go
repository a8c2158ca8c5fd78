package exporter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myxpicks/pkg/contracts/domain"
)

func sampleSummary() domain.WeeklySummary {
	return domain.WeeklySummary{
		WeekStart:   "20251218",
		WeekEnd:     "20251222",
		TotalDays:   3,
		TotalStocks: 8,
		StrategyBreakdown: map[string]int{
			"強勢股":  5,
			"超跌反彈": 2,
			"量價齊升": 1,
		},
		BestPerformers: []domain.BestPerformer{
			{Date: "20251222", Code: "0652NP", Name: "HSI-PWNP", Return: "+2.69%"},
			{Date: "20251219", Code: "1295", Name: "A|B <Bank>", Return: "-0.50%"},
		},
	}
}

func TestDigestMarkdown(t *testing.T) {
	md := DigestMarkdown(sampleSummary())

	assert.Contains(t, md, "| 強勢股 | 5 | 62.5% |")
	assert.Contains(t, md, "| 超跌反彈 | 2 | 25.0% |")
	assert.Contains(t, md, "| 量價齊升 | 1 | 12.5% |")
	assert.Less(t, strings.Index(md, "強勢股"), strings.Index(md, "超跌反彈"), "ordered by count")

	assert.Contains(t, md, `| 20251222 | **0652NP** | HSI-PWNP | <span class="up">+2.69%</span> |`)
	assert.Contains(t, md, `A\|B &lt;Bank&gt;`)
	assert.Contains(t, md, `<span class="down">-0.50%</span>`)
}

func TestDigestRenderer_Render(t *testing.T) {
	generated := time.Date(2025, 12, 22, 12, 0, 0, 0, time.UTC)

	page, err := NewDigestRenderer(time.FixedZone("MYT", 8*3600)).RenderBytes(sampleSummary(), generated)
	require.NoError(t, err)
	html := string(page)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>AI選股週報 20251218 - 20251222</title>")
	assert.Contains(t, html, "20251218 至 20251222 | 3 個交易日")
	assert.Contains(t, html, "<h3>平均每日</h3><p>3</p>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>強勢股</td>")
	assert.Contains(t, html, "62.5%")
	assert.Contains(t, html, `<span class="up">+2.69%</span>`)
	assert.Contains(t, html, "<strong>0652NP</strong>")
	assert.Contains(t, html, "A|B &lt;Bank&gt;")
	assert.NotContains(t, html, "<Bank>")
	assert.Contains(t, html, "2025-12-22 20:00:00")
	assert.Contains(t, html, "免責聲明")
}

func TestDigestRenderer_EmptyWeek(t *testing.T) {
	page, err := NewDigestRenderer(nil).RenderBytes(domain.WeeklySummary{StrategyBreakdown: map[string]int{}}, time.Unix(0, 0))
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h3>平均每日</h3><p>0</p>")
	assert.Contains(t, string(page), "1970-01-01 00:00:00")
}
