// Package analysis computes offline lexical metrics over opinion text.
//
// The metrics track judicial certainty versus hedging: frequencies (per
// 1000 words) of fixed marker-term lists. Multi-word markers such as
// "we hold" are matched as phrases with word boundaries.
package analysis

import (
	"math"
	"regexp"
	"strings"
)

// Marker term lists.
var (
	// CertaintyTerms mark assertive judicial language.
	CertaintyTerms = []string{"must", "clearly", "requires", "therefore", "we hold"}

	// HedgingTerms mark tentative judicial language.
	HedgingTerms = []string{"may", "might", "arguably", "suggests", "could"}
)

var wordRE = regexp.MustCompile(`\w+`)

// Metrics holds the lexical measures for one text.
type Metrics struct {
	TotalWords            int     `json:"total_words"`
	CertaintyPer1000      float64 `json:"certainty_per_1000"`
	HedgingPer1000        float64 `json:"hedging_per_1000"`
	CertaintyMinusHedging float64 `json:"certainty_minus_hedging"`
}

// Analyze computes the certainty/hedging metrics for text. A text with no
// words yields all-zero metrics.
func Analyze(text string) Metrics {
	lowered := strings.ToLower(text)
	words := wordRE.FindAllString(lowered, -1)
	total := len(words)
	if total == 0 {
		return Metrics{}
	}

	counts := make(map[string]int, total)
	for _, w := range words {
		counts[w]++
	}

	certainty := countTerms(lowered, counts, CertaintyTerms)
	hedging := countTerms(lowered, counts, HedgingTerms)

	certaintyPer1000 := round2(float64(certainty) / float64(total) * 1000)
	hedgingPer1000 := round2(float64(hedging) / float64(total) * 1000)

	return Metrics{
		TotalWords:            total,
		CertaintyPer1000:      certaintyPer1000,
		HedgingPer1000:        hedgingPer1000,
		CertaintyMinusHedging: round2(certaintyPer1000 - hedgingPer1000),
	}
}

// countTerms sums occurrences of the marker terms. Single words use the
// word counter; phrases are matched with boundary-anchored regexps over
// the lowered text.
func countTerms(lowered string, counts map[string]int, terms []string) int {
	total := 0
	for _, term := range terms {
		if strings.Contains(term, " ") {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
			total += len(re.FindAllStringIndex(lowered, -1))
			continue
		}
		total += counts[term]
	}
	return total
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
