package search

import (
	"strings"

	"github.com/scout-dashboard/suqi/internal/nlp"
)

// Suggest returns corpus examples where every token of partial prefixes some
// token of the example. Results are deduplicated and kept in corpus order.
func (s *Searcher) Suggest(partial string) []string {
	tokens := nlp.Tokenize(partial)
	if len(tokens) == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	suggestions := make([]string, 0, MaxSuggestions)
	for _, example := range s.registry.Examples() {
		if seen[example] || !prefixesAll(tokens, nlp.Tokenize(example)) {
			continue
		}
		seen[example] = true
		suggestions = append(suggestions, example)
		if len(suggestions) == MaxSuggestions {
			break
		}
	}
	return suggestions
}

func prefixesAll(partial, example []string) bool {
	for _, p := range partial {
		found := false
		for _, e := range example {
			if strings.HasPrefix(e, p) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
