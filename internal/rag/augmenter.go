package rag

import (
	"strings"

	"github.com/scout-dashboard/suqi/internal/nlp"
	"github.com/scout-dashboard/suqi/internal/search"
	"github.com/scout-dashboard/suqi/internal/templates"
)

const (
	// ContextRelevanceThreshold is the relevance a snippet must beat to be
	// folded into the augmented question.
	ContextRelevanceThreshold = 0.5
	searchDiscount            = 0.8
)

var builders = map[string]templates.QueryTemplate{
	SourceRevenue: {
		ID: "rag_revenue_totals",
		SQL: `
			SELECT SUM(revenue) AS total_revenue,
				COUNT(*) AS transaction_count,
				AVG(revenue) AS avg_order_value
			FROM transactions
			WHERE created_at >= CURRENT_DATE - INTERVAL '{{period}}'`,
		Parameters: []templates.Param{templates.ParamPeriod},
		Category:   "revenue",
		Confidence: 0.70,
	},
	SourceRegional: {
		ID: "rag_regional_share",
		SQL: `
			SELECT region,
				SUM(revenue) AS revenue,
				COUNT(*) AS transactions,
				ROUND(SUM(revenue) * 100.0 / SUM(SUM(revenue)) OVER (), 2) AS market_share
			FROM transactions
			WHERE created_at >= CURRENT_DATE - INTERVAL '{{period}}'
			GROUP BY region
			ORDER BY revenue DESC`,
		Parameters: []templates.Param{templates.ParamPeriod},
		Category:   "regional",
		Confidence: 0.75,
	},
	SourceBrand: {
		ID: "rag_brand_breakdown",
		SQL: `
			SELECT brand_name,
				SUM(revenue) AS revenue,
				AVG(customer_satisfaction) AS satisfaction,
				COUNT(DISTINCT customer_id) AS customers
			FROM transactions
			WHERE created_at >= CURRENT_DATE - INTERVAL '{{period}}'
			GROUP BY brand_name
			ORDER BY revenue DESC`,
		Parameters: []templates.Param{templates.ParamPeriod},
		Category:   "brands",
		Confidence: 0.72,
	},
}

// Outcome is the augmenter's best plan. A zero Confidence means nothing usable
// was found.
type Outcome struct {
	SQL         string
	Confidence  float64
	TemplateID  string
	Entities    nlp.Entities
	Explanation string
}

type Augmenter struct {
	searcher  *search.Searcher
	extractor *nlp.Extractor
}

func NewAugmenter(searcher *search.Searcher, extractor *nlp.Extractor) *Augmenter {
	if extractor == nil {
		extractor = nlp.NewExtractor()
	}
	return &Augmenter{searcher: searcher, extractor: extractor}
}

// AugmentQuery appends the text of every context above the relevance threshold.
func AugmentQuery(question string, contexts []Context) string {
	parts := []string{question}
	for _, c := range contexts {
		if c.Relevance > ContextRelevanceThreshold {
			parts = append(parts, c.Context)
		}
	}
	return strings.Join(parts, " ")
}

// Augment builds a plan from the dominant context. contexts must be sorted
// best first, as returned by Retriever.Retrieve.
func (a *Augmenter) Augment(question string, contexts []Context) Outcome {
	augmented := AugmentQuery(question, contexts)
	entities := a.extractor.ExtractExplicit(augmented)

	if len(contexts) == 0 || contexts[0].Relevance <= 0 {
		return Outcome{Entities: entities}
	}

	top := contexts[0]
	out := Outcome{
		Entities:    entities,
		Explanation: "Query understood through context: " + top.Source,
	}

	if builder, ok := builders[top.Source]; ok {
		out.SQL = builder.Render(templates.Binding{Period: entities.Period, Region: entities.Region})
		out.Confidence = builder.Confidence
		out.TemplateID = builder.ID
		return out
	}

	results := a.searcher.Search(augmented)
	if len(results) == 0 {
		return out
	}
	out.SQL = results[0].SQL
	out.Confidence = results[0].Score * searchDiscount
	out.TemplateID = results[0].Template.ID
	return out
}
