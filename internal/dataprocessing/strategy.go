package dataprocessing

import (
	"strings"
	"unicode"
)

// DecodeStrategy turns "<glyph><text>" into a strategy label. The leading glyph
// is looked up in the strategy table; any other pictograph is dropped from the
// remaining text. Text that merely repeats the label adds nothing, anything
// else is kept after the label. ok is false when raw does not start with a
// known glyph.
func (v Vocabulary) DecodeStrategy(raw string) (label string, ok bool) {
	raw = strings.TrimSpace(raw)
	for _, s := range v.Strategies {
		if !strings.HasPrefix(raw, s.Glyph) {
			continue
		}
		residual := strings.TrimSpace(stripPictographs(raw[len(s.Glyph):]))
		switch {
		case residual == "", residual == s.Label:
			return s.Label, true
		case strings.HasPrefix(residual, s.Label):
			return residual, true
		default:
			return s.Label + " " + residual, true
		}
	}
	return "", false
}

// FindStrategy decodes the first strategy glyph found in text, reading the
// glyph together with the non-blank run that follows it. Text without a
// glyph yields the unclassified label.
func (v Vocabulary) FindStrategy(text string) string {
	start := -1
	for _, s := range v.Strategies {
		if i := strings.Index(text, s.Glyph); i >= 0 && (start < 0 || i < start) {
			start = i
		}
	}
	if start < 0 {
		return v.Unclassified
	}
	run := text[start:]
	if end := strings.IndexFunc(run, unicode.IsSpace); end >= 0 {
		run = run[:end]
	}
	if label, ok := v.DecodeStrategy(run); ok {
		return label
	}
	return v.Unclassified
}

// stripPictographs removes emoji and other symbol runes, including the
// joiners and variation selectors that ride along with them.
func stripPictographs(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.Is(unicode.So, r):
			return -1
		case r == '\u200d', r >= '\ufe00' && r <= '\ufe0f':
			return -1
		}
		return r
	}, s)
}
