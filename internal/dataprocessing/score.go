package dataprocessing

import "strings"

const (
	baseScore = 50

	// FallbackScore is assigned to picks read from the short line layout,
	// which carries no RSI to score from.
	FallbackScore = 75

	minScore = 0
	maxScore = 100
)

// ScoreEngine derives the 0-100 AI score from RSI and strategy label.
type ScoreEngine struct {
	bonuses []StrategyGlyph
}

// NewScoreEngine scores labels against the strategy table of v.
func NewScoreEngine(v Vocabulary) *ScoreEngine {
	return &ScoreEngine{bonuses: append([]StrategyGlyph(nil), v.Strategies...)}
}

var defaultScoreEngine = NewScoreEngine(TraditionalChineseVocabulary())

// Score scores with the Traditional Chinese strategy labels.
func Score(rsi float64, label string) int {
	return defaultScoreEngine.Score(rsi, label)
}

// Score applies one RSI bucket (first match wins) and every strategy bonus
// whose label appears in label, then clamps to [0, 100].
func (e *ScoreEngine) Score(rsi float64, label string) int {
	score := baseScore

	switch {
	case rsi > 70:
		score -= 10
	case rsi < 30:
		score += 15
	case rsi > 40 && rsi < 60:
		score += 5
	}

	for _, b := range e.bonuses {
		if b.Label != "" && strings.Contains(label, b.Label) {
			score += b.Bonus
		}
	}

	return clampScore(score)
}

func clampScore(score int) int {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
