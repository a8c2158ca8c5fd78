package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"myxpicks/pkg/contracts/domain"
)

// SampleReport is a screener report with two full rows, one short row and
// one unparseable row inside the data section.
const SampleReport = `🤖 AI 智能選股報告 2025-12-22
═══════════════════════════════════════
代碼    名稱    價格    漲跌    成交量    RSI    策略
───────────────────────────────────────
0652NP HSI-PWNP RM0.572 📈+2.69% 1,234,567 65.20 💪強勢股

1295 PUBLICBANK RM4.208 📉-2.82% 890,000 25.50 🔥超跌反彈
5099 CAPITALA RM0.39 📉-1.27% extra
not a stock line

策略分佈:
💪強勢股 1
市場洞察: 市場偏多
`

// Pick builds a pick with the given code, strategy and change percentage.
func Pick(code, strategy string, changePercent float64) domain.StockPick {
	return domain.StockPick{
		Code:          code,
		Name:          "NAME" + code,
		Price:         "1.000",
		Change:        "",
		ChangePercent: changePercent,
		Strategy:      strategy,
		AIScore:       75,
		Timestamp:     "2025-12-22T10:30:00.000Z",
	}
}

// SamplePicks returns three picks covering each strategy label.
func SamplePicks() []domain.StockPick {
	return []domain.StockPick{
		Pick("0652NP", "強勢股", 2.69),
		Pick("1295", "超跌反彈", -2.82),
		Pick("1155", "量價齊升", 1.09),
	}
}

// SnapshotFor builds a snapshot dated dateCode (YYYYMMDD).
func SnapshotFor(dateCode string, picks ...domain.StockPick) domain.Snapshot {
	return domain.NewSnapshot(dateCode[:4]+"-"+dateCode[4:6]+"-"+dateCode[6:]+" 18:30:00", dateCode, picks)
}

// WriteJSON marshals v into path, creating parent directories.
func WriteJSON(t *testing.T, path string, v any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// WriteHistory writes each snapshot to ai_stocks_<date>.json in a fresh
// temporary directory and returns the directory.
func WriteHistory(t *testing.T, snapshots ...domain.Snapshot) string {
	t.Helper()
	dir := t.TempDir()
	for _, s := range snapshots {
		WriteJSON(t, filepath.Join(dir, "ai_stocks_"+s.Date+".json"), s)
	}
	return dir
}
