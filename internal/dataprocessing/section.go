package dataprocessing

import "strings"

// separators are the rule characters the screener draws between blocks.
var separators = strings.NewReplacer("═", "", "─", "", "━", "", "┅", "")

// SanitizeLine strips separator glyphs and surrounding whitespace. An empty
// result means the line carried no data.
func SanitizeLine(line string) string {
	return strings.TrimSpace(separators.Replace(line))
}

// Section is the parser's position relative to the data rows of a report.
type Section int

const (
	// SectionOutside ignores lines until a column header appears.
	SectionOutside Section = iota
	// SectionInside parses every non-blank line until a footer appears.
	SectionInside
)

func (s Section) String() string {
	switch s {
	case SectionOutside:
		return "outside"
	case SectionInside:
		return "inside"
	default:
		return "unknown"
	}
}

// Transition returns the section after reading line. marker is true when the
// line was a header or footer and must not be parsed as data.
func (v Vocabulary) Transition(current Section, line string) (next Section, marker bool) {
	if v.IsHeader(line) {
		return SectionInside, true
	}
	if v.IsFooter(line) {
		return SectionOutside, true
	}
	return current, false
}

// IsHeader reports whether line contains every header token.
func (v Vocabulary) IsHeader(line string) bool {
	if len(v.HeaderTokens) == 0 {
		return false
	}
	for _, token := range v.HeaderTokens {
		if !strings.Contains(line, token) {
			return false
		}
	}
	return true
}

// IsFooter reports whether line contains any footer token.
func (v Vocabulary) IsFooter(line string) bool {
	for _, token := range v.FooterTokens {
		if token != "" && strings.Contains(line, token) {
			return true
		}
	}
	return false
}
