package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		rsi      float64
		label    string
		expected int
	}{
		{"overbought strong stock", 75, LabelStrongStock, 60},
		{"oversold rebound", 25, LabelOversoldRebound, 80},
		{"neutral volume price rise", 50, LabelVolumePriceRise, 65},
		{"rsi exactly 70 gets no adjustment", 70, LabelStrongStock, 70},
		{"rsi exactly 30 gets no adjustment", 30, LabelOversoldRebound, 65},
		{"rsi exactly 40 gets no adjustment", 40, LabelVolumePriceRise, 60},
		{"rsi exactly 60 gets no adjustment", 60, LabelVolumePriceRise, 60},
		{"upper neutral band", 59.9, LabelUnclassified, 55},
		{"unknown label only gets rsi", 20, "something else", 65},
		{"labels are additive", 50, LabelStrongStock + LabelOversoldRebound + LabelVolumePriceRise, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(tt.rsi, tt.label))
		})
	}
}

func TestScoreEngine_Clamps(t *testing.T) {
	vocab := TraditionalChineseVocabulary()
	vocab.Strategies = []StrategyGlyph{
		{Glyph: GlyphStrong, Label: "boost", Bonus: 500},
		{Glyph: GlyphRebound, Label: "sink", Bonus: -500},
	}
	engine := NewScoreEngine(vocab)

	assert.Equal(t, 100, engine.Score(25, "boost"))
	assert.Equal(t, 0, engine.Score(80, "sink"))
}

func TestScore_AlwaysInRange(t *testing.T) {
	labels := []string{"", LabelStrongStock, LabelOversoldRebound, LabelVolumePriceRise, LabelUnclassified}
	for rsi := -50.0; rsi <= 150; rsi += 0.5 {
		for _, label := range labels {
			score := Score(rsi, label)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		}
	}
}

func TestScoreEngine_EnglishLabels(t *testing.T) {
	engine := NewScoreEngine(EnglishVocabulary())

	assert.Equal(t, 60, engine.Score(75, "Strong Stock"))
	assert.Equal(t, 80, engine.Score(25, "Oversold Rebound"))
	assert.Equal(t, 65, engine.Score(50, "Volume-Price Rise"))
	assert.Equal(t, 70, engine.Score(70, "Strong Stock"))
}
