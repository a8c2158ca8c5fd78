package dataprocessing

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"myxpicks/pkg/contracts/domain"
)

// ErrUnrecognizedSnapshot means a JSON document carried no pick array.
var ErrUnrecognizedSnapshot = errors.New("snapshot: no pick array found")

// pickArrayKeys are the object keys that may hold the pick array, in lookup order.
var pickArrayKeys = []string{"stocks", "picks", "data", "items", "recommendations"}

// ReadSnapshot loads a snapshot file written by this tool or by older
// front-end builds.
func ReadSnapshot(path string) (domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	snapshot, err := DecodeSnapshot(data)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return snapshot, nil
}

// DecodeSnapshot reads either a bare array of picks or an object holding the
// array under one of the known keys. Numbers and numeric strings are accepted
// interchangeably, and totalStocks is recomputed from the picks found.
func DecodeSnapshot(data []byte) (domain.Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return domain.Snapshot{}, fmt.Errorf("%w: invalid JSON", ErrUnrecognizedSnapshot)
	}
	root := gjson.ParseBytes(data)

	var (
		array      gjson.Result
		updateTime string
		date       string
	)
	switch {
	case root.IsArray():
		array = root
	case root.IsObject():
		for _, key := range pickArrayKeys {
			if r := root.Get(key); r.IsArray() {
				array = r
				break
			}
		}
		updateTime = root.Get("updateTime").String()
		date = root.Get("date").String()
	}
	if !array.Exists() {
		return domain.Snapshot{}, ErrUnrecognizedSnapshot
	}

	picks := make([]domain.StockPick, 0, len(array.Array()))
	array.ForEach(func(_, item gjson.Result) bool {
		if pick, ok := decodePick(item); ok {
			picks = append(picks, pick)
		}
		return true
	})

	return domain.NewSnapshot(updateTime, date, picks), nil
}

func decodePick(item gjson.Result) (domain.StockPick, bool) {
	if !item.IsObject() {
		return domain.StockPick{}, false
	}
	code := strings.TrimSpace(item.Get("code").String())
	if code == "" {
		return domain.StockPick{}, false
	}

	pick := domain.StockPick{
		Code:      code,
		Name:      strings.TrimSpace(item.Get("name").String()),
		Price:     item.Get("price").String(),
		Change:    item.Get("change").String(),
		Strategy:  item.Get("strategy").String(),
		AIScore:   int(item.Get("aiScore").Int()),
		Timestamp: item.Get("timestamp").String(),
	}

	if cp := item.Get("changePercent"); cp.Exists() {
		pick.ChangePercent = cp.Float()
	} else if pct, ok := percentFromChange(pick.Change); ok {
		pick.ChangePercent = pct
	}
	if v := item.Get("volume"); v.Exists() && v.Type != gjson.Null {
		volume := v.Int()
		pick.Volume = &volume
	}
	if v := item.Get("rsi"); v.Exists() && v.Type != gjson.Null {
		rsi := v.Float()
		pick.RSI = &rsi
	}
	return pick, true
}

// percentFromChange reads "+2.69%" style text.
func percentFromChange(change string) (float64, bool) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(change), "%")
	if trimmed == "" {
		return 0, false
	}
	pct, err := strconv.ParseFloat(trimmed, 64)
	return pct, err == nil
}
