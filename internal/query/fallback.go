package query

import (
	"github.com/scout-dashboard/suqi/internal/nlp"
	"github.com/scout-dashboard/suqi/internal/rag"
	"github.com/scout-dashboard/suqi/internal/templates"
)

const (
	FallbackConfidence  = 0.3
	FallbackExplanation = "Using fallback query. Try being more specific or use suggested queries."
	FallbackTemplateID  = "fallback_summary"

	maxFallbackSuggestions = 3
)

var fallbackTemplate = templates.QueryTemplate{
	ID: FallbackTemplateID,
	SQL: `
		SELECT 'Summary' AS metric,
			COUNT(DISTINCT transaction_id) AS transactions,
			SUM(revenue) AS total_revenue,
			AVG(revenue) AS avg_transaction,
			COUNT(DISTINCT customer_id) AS unique_customers
		FROM transactions
		WHERE created_at >= CURRENT_DATE - INTERVAL '{{period}}'
		{{region_filter}}`,
	Parameters: []templates.Param{templates.ParamPeriod, templates.ParamRegionFilter},
	Category:   "summary",
	Confidence: FallbackConfidence,
}

func (e *Engine) fallback(question string, contexts []rag.Context) RAGQueryResult {
	entities := e.extractor.ExtractExplicit(question)

	return RAGQueryResult{
		SQL: fallbackTemplate.Render(templates.Binding{
			Period: entities.Period,
			Region: entities.Region,
		}),
		Confidence:  FallbackConfidence,
		Method:      MethodFallback,
		Contexts:    contexts,
		Entities:    entities,
		Explanation: FallbackExplanation,
		Suggestions: e.overlappingExamples(question),
		TemplateID:  FallbackTemplateID,
	}
}

// overlappingExamples picks corpus examples sharing at least one token with
// the question, in corpus order.
func (e *Engine) overlappingExamples(question string) []string {
	tokens := nlp.TokenSet(nlp.Tokenize(question))
	if len(tokens) == 0 {
		return nil
	}

	var out []string
	for _, example := range e.registry.Examples() {
		for _, tok := range nlp.Tokenize(example) {
			if _, ok := tokens[tok]; ok {
				out = append(out, example)
				break
			}
		}
		if len(out) == maxFallbackSuggestions {
			break
		}
	}
	return out
}
