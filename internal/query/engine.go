// Package query turns a business question into a parameterized query plan.
// Engine is the pure resolver; Service wraps it with caching, history and
// metrics.
package query

import (
	"strings"

	"github.com/scout-dashboard/suqi/internal/nlp"
	"github.com/scout-dashboard/suqi/internal/rag"
	"github.com/scout-dashboard/suqi/internal/search"
	"github.com/scout-dashboard/suqi/internal/templates"
)

type Method string

const (
	MethodSemantic Method = "semantic"
	MethodRAG      Method = "rag"
	MethodFallback Method = "fallback"
)

const (
	// SemanticThreshold is the top search score that must be beaten to answer
	// directly from a template.
	SemanticThreshold = 0.7
	// RAGThreshold is the augmenter confidence that must be beaten to use the
	// context-derived plan.
	RAGThreshold = 0.5
)

type RAGQueryResult struct {
	SQL         string        `json:"sql"`
	Confidence  float64       `json:"confidence"`
	Method      Method        `json:"method"`
	Contexts    []rag.Context `json:"contexts"`
	Entities    nlp.Entities  `json:"entities"`
	Explanation string        `json:"explanation"`
	Suggestions []string      `json:"suggestions,omitempty"`
	TemplateID  string        `json:"template_id,omitempty"`
}

// Engine resolves questions against an injected template registry. It does no
// I/O and keeps no mutable state, so one Engine can serve concurrent callers.
type Engine struct {
	registry  *templates.Registry
	extractor *nlp.Extractor
	searcher  *search.Searcher
	retriever *rag.Retriever
	augmenter *rag.Augmenter
}

func NewEngine(registry *templates.Registry) *Engine {
	extractor := nlp.NewExtractor()
	searcher := search.NewSearcher(registry, extractor)

	return &Engine{
		registry:  registry,
		extractor: extractor,
		searcher:  searcher,
		retriever: rag.NewRetriever(),
		augmenter: rag.NewAugmenter(searcher, extractor),
	}
}

func (e *Engine) Registry() *templates.Registry {
	return e.registry
}

// Suggest exposes prefix autocomplete over the corpus examples.
func (e *Engine) Suggest(partial string) []string {
	return e.searcher.Suggest(partial)
}

// Process never fails: the fallback plan is always available.
func (e *Engine) Process(question string) RAGQueryResult {
	contexts := e.retriever.Retrieve(question)

	if strings.TrimSpace(question) == "" {
		return e.fallback(question, contexts)
	}

	results := e.searcher.Search(question)
	if len(results) > 0 && results[0].Score > SemanticThreshold {
		top := results[0]
		return RAGQueryResult{
			SQL:         top.SQL,
			Confidence:  clamp(top.Score),
			Method:      MethodSemantic,
			Contexts:    contexts,
			Entities:    top.Entities,
			Explanation: top.Explanation,
			Suggestions: alternativeExamples(results[1:]),
			TemplateID:  top.Template.ID,
		}
	}

	outcome := e.augmenter.Augment(question, contexts)
	if outcome.Confidence > RAGThreshold {
		return RAGQueryResult{
			SQL:         outcome.SQL,
			Confidence:  clamp(outcome.Confidence),
			Method:      MethodRAG,
			Contexts:    contexts,
			Entities:    outcome.Entities,
			Explanation: outcome.Explanation,
			TemplateID:  outcome.TemplateID,
		}
	}

	return e.fallback(question, contexts)
}

func alternativeExamples(results []search.Result) []string {
	var out []string
	for _, r := range results {
		if len(r.Template.Examples) > 0 {
			out = append(out, r.Template.Examples[0])
		}
	}
	return out
}

func clamp(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}
