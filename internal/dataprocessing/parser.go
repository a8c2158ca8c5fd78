package dataprocessing

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"myxpicks/pkg/contracts/domain"
)

// pickValidate checks every matched pick against the StockPick tags.
var pickValidate = validator.New()

var (
	// ErrNoPicks means a report had content but no line produced a pick.
	ErrNoPicks = errors.New("no stock picks parsed from report")
	// ErrEmptyReport means the report text was blank.
	ErrEmptyReport = errors.New("report is empty")
)

// Stats counts what a parse run saw.
type Stats struct {
	Lines     int            `json:"lines"`
	DataLines int            `json:"dataLines"`
	Skipped   int            `json:"skipped"`
	Matched   map[string]int `json:"matched"`
}

// Result is the outcome of parsing one report.
type Result struct {
	Picks []domain.StockPick
	Stats Stats
	blank bool
}

// Warning reports a parse that produced nothing. It is advisory: callers
// decide whether an empty run aborts.
func (r Result) Warning() error {
	switch {
	case r.blank:
		return ErrEmptyReport
	case len(r.Picks) == 0:
		return ErrNoPicks
	default:
		return nil
	}
}

// Parser turns report text into stock picks. A Parser holds no state between
// calls and may be shared across goroutines.
type Parser struct {
	vocab    Vocabulary
	matchers []Matcher
	clock    func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock sets the time source used to stamp picks.
func WithClock(clock func() time.Time) Option {
	return func(p *Parser) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithMatchers replaces the matcher chain.
func WithMatchers(matchers ...Matcher) Option {
	return func(p *Parser) {
		p.matchers = append([]Matcher(nil), matchers...)
	}
}

// NewParser builds a parser for vocab with the primary and fallback layouts.
func NewParser(vocab Vocabulary, opts ...Option) *Parser {
	p := &Parser{
		vocab: vocab,
		matchers: []Matcher{
			PrimaryMatcher(vocab, NewScoreEngine(vocab)),
			FallbackMatcher(vocab),
		},
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Vocabulary returns the vocabulary the parser was built with.
func (p *Parser) Vocabulary() Vocabulary {
	return p.vocab
}

// Parse scans text line by line. Lines between a column header and a section
// footer are handed to the matcher chain; lines no matcher accepts are
// skipped. Picks keep file order and share one timestamp.
func (p *Parser) Parse(text string) Result {
	now := p.clock()
	result := Result{
		Picks: []domain.StockPick{},
		Stats: Stats{Matched: make(map[string]int, len(p.matchers))},
		blank: strings.TrimSpace(text) == "",
	}

	section := SectionOutside
	for _, line := range strings.Split(text, "\n") {
		result.Stats.Lines++

		var marker bool
		section, marker = p.vocab.Transition(section, line)
		if marker || section != SectionInside {
			continue
		}

		clean := SanitizeLine(line)
		if clean == "" {
			continue
		}
		result.Stats.DataLines++

		pick, name, ok := p.match(clean, now)
		if !ok {
			result.Stats.Skipped++
			continue
		}
		result.Stats.Matched[name]++
		result.Picks = append(result.Picks, pick)
	}

	return result
}

func (p *Parser) match(line string, now time.Time) (domain.StockPick, string, bool) {
	for _, m := range p.matchers {
		pick, ok := m.Match(line, now)
		if !ok {
			continue
		}
		if err := pickValidate.Struct(pick); err != nil {
			continue
		}
		return pick, m.Name, true
	}
	return domain.StockPick{}, "", false
}
