// Package search scores a question against every template in the corpus and
// renders the best candidates.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/scout-dashboard/suqi/internal/nlp"
	"github.com/scout-dashboard/suqi/internal/templates"
)

const (
	patternWeight = 0.4
	keywordWeight = 0.3
	exampleWeight = 0.2
	entityBonus   = 0.05

	// PatternThreshold is the per-pattern similarity a pattern must beat to count.
	PatternThreshold = 0.3
	// ScoreThreshold is the final score a template must beat to be returned.
	ScoreThreshold = 0.3
	MaxResults     = 3
	MaxSuggestions = 5

	regionalCategory = "regional"
)

type Result struct {
	Template    templates.QueryTemplate `json:"template"`
	Score       float64                 `json:"score"`
	SQL         string                  `json:"sql"`
	Entities    nlp.Entities            `json:"entities"`
	Explanation string                  `json:"explanation"`
}

type Searcher struct {
	registry  *templates.Registry
	extractor *nlp.Extractor
}

func NewSearcher(registry *templates.Registry, extractor *nlp.Extractor) *Searcher {
	if extractor == nil {
		extractor = nlp.NewExtractor()
	}
	return &Searcher{registry: registry, extractor: extractor}
}

// Search returns at most MaxResults templates scoring above ScoreThreshold,
// best first. Equal scores keep corpus order.
func (s *Searcher) Search(question string) []Result {
	tokens := nlp.Tokenize(question)
	entities := s.extractor.Extract(question)
	binding := templates.Binding{
		Period: entities.Period,
		Limit:  entities.Limit,
		Region: entities.Region,
	}

	var results []Result
	for _, tpl := range s.registry.All() {
		score, matchedPatterns, matchedKeywords := scoreTemplate(tpl, tokens, entities)
		if score <= ScoreThreshold {
			continue
		}
		results = append(results, Result{
			Template:    tpl,
			Score:       score,
			SQL:         tpl.Render(binding),
			Entities:    entities,
			Explanation: explain(matchedPatterns, matchedKeywords),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

func scoreTemplate(tpl templates.QueryTemplate, tokens []string, entities nlp.Entities) (float64, []string, []string) {
	var score float64

	var matchedPatterns []string
	for _, pattern := range tpl.Patterns {
		sim := nlp.Jaccard(tokens, nlp.Tokenize(pattern))
		if sim > PatternThreshold {
			score += sim * patternWeight
			matchedPatterns = append(matchedPatterns, pattern)
		}
	}

	var matchedKeywords []string
	for _, kw := range tpl.Keywords {
		if nlp.Contains(tokens, strings.ToLower(kw)) {
			matchedKeywords = append(matchedKeywords, kw)
		}
	}
	if len(tpl.Keywords) > 0 {
		score += float64(len(matchedKeywords)) / float64(len(tpl.Keywords)) * keywordWeight
	}

	var bestExample float64
	for _, example := range tpl.Examples {
		if sim := nlp.Jaccard(tokens, nlp.Tokenize(example)); sim > bestExample {
			bestExample = sim
		}
	}
	score += bestExample * exampleWeight

	if entities.Region != "" && tpl.Category == regionalCategory {
		score += entityBonus
	}
	if entities.Period != "" && tpl.HasParam(templates.ParamPeriod) {
		score += entityBonus
	}

	return score * tpl.Confidence, matchedPatterns, matchedKeywords
}

func explain(patterns, keywords []string) string {
	return fmt.Sprintf("Matched patterns: %s. Keywords found: %s.",
		strings.Join(patterns, ", "), strings.Join(keywords, ", "))
}
