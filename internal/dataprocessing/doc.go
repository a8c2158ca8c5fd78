// Package dataprocessing turns the screener's plain-text picks report into
// structured stock picks and folds stored snapshots into weekly summaries.
//
// # Parsing
//
// A report is scanned line by line through a two-state Section machine.
// Lines between a column header and a section footer are sanitized and
// handed to an ordered chain of Matchers; the first matcher that accepts a
// line produces the pick. The default chain is the full column layout
// (PrimaryMatcher) followed by the short layout (FallbackMatcher).
//
//	vocab, _ := dataprocessing.VocabularyFor("zh-TW")
//	result := dataprocessing.NewParser(vocab).Parse(text)
//	if err := result.Warning(); err != nil {
//	    logger.Warn("report produced no picks", slog.String("error", err.Error()))
//	}
//
// Header and footer tokens, the strategy glyph table and the score bonuses
// all come from the Vocabulary, so a report in another language only needs
// a different Vocabulary value.
//
// # Scoring
//
// Picks from the full layout are scored from 50 by one RSI bucket plus every
// strategy bonus whose label the strategy text contains, clamped to 0..100.
// Picks from the short layout carry no RSI and get FallbackScore.
//
// # Snapshots and weekly summaries
//
// DecodeSnapshot reads stored snapshots tolerantly. WeeklySummarizer loads
// the last seven days of history snapshots concurrently and aggregates
// totals, the strategy breakdown and each day's best performer.
package dataprocessing
