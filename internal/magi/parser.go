package magi

import (
	"regexp"
	"strings"

	"github.com/yourusername/boat-oracle/internal/models"
)

// Strategy extracts one value from an agent's free text
type Strategy struct {
	Name    string
	pattern *regexp.Regexp
}

// Extract returns the first capture group of the strategy's pattern
func (s Strategy) Extract(text string) (string, bool) {
	m := s.pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// English labels must stand alone so "follows" or "highly" do not match;
// the CJK labels have no word boundaries to check.
const confidenceLabels = `(\bhigh\b|\bmedium\b|\blow\b|高|中|低)`

var (
	pickStrategies = []Strategy{
		{Name: "section", pattern: regexp.MustCompile(`(?i)■\s*(?:PICK|予想買い目)[^\n]*\n\s*(\d-\d-\d)`)},
		{Name: "inline", pattern: regexp.MustCompile(`(?i)(?:pick|買い目)\s*[:：]\s*(\d-\d-\d)`)},
		{Name: "bare", pattern: regexp.MustCompile(`(\d-\d-\d)`)},
	}

	confidenceStrategies = []Strategy{
		{Name: "section", pattern: regexp.MustCompile(`(?i)■\s*(?:CONFIDENCE|自信度)[^\n]*\n\s*` + confidenceLabels)},
		{Name: "inline", pattern: regexp.MustCompile(`(?i)(?:confidence|自信度?)\s*[:：]\s*` + confidenceLabels)},
		{Name: "keyword", pattern: regexp.MustCompile(`(?is)(?:confidence|自信).{0,60}?` + confidenceLabels)},
	}

	confidenceAliases = map[string]string{
		"high":   models.ConfidenceHigh,
		"medium": models.ConfidenceMedium,
		"low":    models.ConfidenceLow,
		"高":      models.ConfidenceHigh,
		"中":      models.ConfidenceMedium,
		"低":      models.ConfidenceLow,
	}
)

// Parser turns an agent's free-text answer into a structured pick and
// confidence label. Strategies are tried in order and the first match wins.
// It holds no state and is safe for concurrent use.
type Parser struct {
	picks       []Strategy
	confidences []Strategy
}

// NewParser returns a parser with the stock strategies
func NewParser() *Parser {
	return &Parser{
		picks:       pickStrategies,
		confidences: confidenceStrategies,
	}
}

// Parse extracts both pick and confidence. Either may be nil.
func (p *Parser) Parse(text string) (pick, confidence *string) {
	return p.Pick(text), p.Confidence(text)
}

// Pick returns the trifecta pick in N-N-N form, or nil if none is found
func (p *Parser) Pick(text string) *string {
	for _, s := range p.picks {
		if v, ok := s.Extract(text); ok {
			return &v
		}
	}
	return nil
}

// Confidence returns the normalized confidence label, or nil if none is found
func (p *Parser) Confidence(text string) *string {
	for _, s := range p.confidences {
		if v, ok := s.Extract(text); ok {
			if label, known := confidenceAliases[strings.ToLower(v)]; known {
				return &label
			}
		}
	}
	return nil
}
