package exporter

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"myxpicks/pkg/contracts/domain"
)

// DigestRenderer renders the weekly summary as a standalone HTML page. The
// tables are written as GitHub flavoured markdown and converted by goldmark;
// the page shell is an html/template.
type DigestRenderer struct {
	md       goldmark.Markdown
	page     *template.Template
	location *time.Location
}

// NewDigestRenderer creates a renderer that prints generation times in loc.
// A nil loc means UTC.
func NewDigestRenderer(loc *time.Location) *DigestRenderer {
	if loc == nil {
		loc = time.UTC
	}
	return &DigestRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			// Return cells carry a coloured span.
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		page:     template.Must(template.New("weekly").Parse(digestPage)),
		location: loc,
	}
}

type digestView struct {
	Summary     domain.WeeklySummary
	Average     int
	Body        template.HTML
	GeneratedAt string
}

// Render writes the digest page for summary to w.
func (r *DigestRenderer) Render(w io.Writer, summary domain.WeeklySummary, generatedAt time.Time) error {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(DigestMarkdown(summary)), &body); err != nil {
		return fmt.Errorf("failed to render digest markdown: %w", err)
	}

	view := digestView{
		Summary:     summary,
		Average:     summary.AveragePerDay(),
		Body:        template.HTML(body.String()),
		GeneratedAt: generatedAt.In(r.location).Format("2006-01-02 15:04:05"),
	}
	if err := r.page.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render digest page: %w", err)
	}
	return nil
}

// RenderBytes is Render into a byte slice.
func (r *DigestRenderer) RenderBytes(summary domain.WeeklySummary, generatedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, summary, generatedAt); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DigestMarkdown builds the strategy and best performer tables. Strategies
// are ordered by count, then by label.
func DigestMarkdown(summary domain.WeeklySummary) string {
	var b strings.Builder

	strategies := make([]string, 0, len(summary.StrategyBreakdown))
	for s := range summary.StrategyBreakdown {
		strategies = append(strategies, s)
	}
	sort.Slice(strategies, func(i, j int) bool {
		ci, cj := summary.StrategyBreakdown[strategies[i]], summary.StrategyBreakdown[strategies[j]]
		if ci != cj {
			return ci > cj
		}
		return strategies[i] < strategies[j]
	})

	b.WriteString("## 📊 策略分佈\n\n")
	b.WriteString("| 策略 | 數量 | 比例 |\n|---|---:|---:|\n")
	for _, s := range strategies {
		fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n",
			cell(s), summary.StrategyBreakdown[s], summary.StrategyShare(s))
	}

	b.WriteString("\n## 🏆 每日最佳表現\n\n")
	b.WriteString("| 日期 | 股票代碼 | 名稱 | 漲幅 |\n|---|---|---|---:|\n")
	for _, p := range summary.BestPerformers {
		class := "down"
		if strings.Contains(p.Return, "+") {
			class = "up"
		}
		fmt.Fprintf(&b, "| %s | **%s** | %s | <span class=\"%s\">%s</span> |\n",
			cell(p.Date), cell(p.Code), cell(p.Name), class, cell(p.Return))
	}
	return b.String()
}

// cell escapes text for a markdown table cell that allows raw HTML.
func cell(s string) string {
	s = html.EscapeString(s)
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

const digestPage = `<!DOCTYPE html>
<html lang="zh">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>AI選股週報 {{.Summary.WeekStart}} - {{.Summary.WeekEnd}}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; max-width: 1000px; margin: 0 auto; padding: 2rem; background: #f8fafc; color: #1e293b; }
    .header { background: linear-gradient(135deg, #667eea, #764ba2); color: white; padding: 2rem; border-radius: 10px; }
    .stats { display: grid; grid-template-columns: repeat(3, 1fr); gap: 1rem; margin: 2rem 0; }
    .stat-card { background: white; padding: 1.5rem; border-radius: 10px; box-shadow: 0 2px 8px rgba(0,0,0,0.08); text-align: center; }
    .stat-card p { font-size: 2rem; font-weight: bold; margin: 0.5rem 0 0; }
    table { width: 100%; border-collapse: collapse; background: white; border-radius: 10px; overflow: hidden; margin-bottom: 2rem; }
    th, td { padding: 0.75rem 1rem; border-bottom: 1px solid #e2e8f0; }
    th { background: #eef2ff; text-align: left; }
    .up { color: green; }
    .down { color: red; }
    .footer { margin-top: 3rem; padding: 1rem; background: #f0f4f8; border-radius: 8px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>🤖 AI選股週報</h1>
    <p>{{.Summary.WeekStart}} 至 {{.Summary.WeekEnd}} | {{.Summary.TotalDays}} 個交易日</p>
  </div>

  <div class="stats">
    <div class="stat-card"><h3>總選股數</h3><p>{{.Summary.TotalStocks}}</p></div>
    <div class="stat-card"><h3>交易日</h3><p>{{.Summary.TotalDays}}</p></div>
    <div class="stat-card"><h3>平均每日</h3><p>{{.Average}}</p></div>
  </div>

{{.Body}}
  <div class="footer">
    <p>📅 <strong>報告生成時間：</strong>{{.GeneratedAt}}</p>
    <p>⚠️ <strong>免責聲明：</strong>本報告僅供參考，不構成投資建議。</p>
  </div>
</body>
</html>
`
