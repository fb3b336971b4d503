// Package rag routes low-confidence questions through a fixed business topic
// space and builds a query from the dominant topic.
package rag

import (
	"math"
	"sort"

	"github.com/scout-dashboard/suqi/internal/nlp"
)

// Dimensions of the topic space: revenue, regional, performance, brand, customer.
const Dimensions = 5

type Vector [Dimensions]float64

const (
	SourceRevenue  = "revenue_definitions"
	SourceRegional = "regional_metrics"
	SourceBrand    = "brand_analysis"
	SourceCustomer = "customer_analytics"
	SourceCampaign = "campaign_metrics"

	TopContexts = 3
)

type Context struct {
	Context   string  `json:"context"`
	Relevance float64 `json:"relevance"`
	Source    string  `json:"source"`
}

type snippet struct {
	text   string
	source string
	topic  Vector
}

var businessTerms = map[string]Vector{
	"revenue":  {0.9, 0.1, 0.2, 0.1, 0.1},
	"sales":    {0.85, 0.15, 0.2, 0.1, 0.1},
	"income":   {0.8, 0.1, 0.15, 0.1, 0.1},
	"earnings": {0.82, 0.12, 0.18, 0.1, 0.1},

	"region":     {0.1, 0.9, 0.1, 0.1, 0.2},
	"location":   {0.1, 0.85, 0.15, 0.1, 0.2},
	"area":       {0.1, 0.8, 0.1, 0.1, 0.15},
	"geographic": {0.1, 0.88, 0.1, 0.1, 0.25},

	"performance":   {0.2, 0.1, 0.9, 0.2, 0.1},
	"effectiveness": {0.15, 0.1, 0.85, 0.25, 0.1},
	"efficiency":    {0.1, 0.1, 0.8, 0.2, 0.1},

	"brand":      {0.1, 0.1, 0.2, 0.9, 0.1},
	"tbwa":       {0.1, 0.1, 0.15, 0.95, 0.1},
	"competitor": {0.1, 0.1, 0.2, 0.85, 0.15},

	"customer": {0.1, 0.2, 0.1, 0.1, 0.9},
	"client":   {0.1, 0.15, 0.1, 0.15, 0.85},
	"consumer": {0.1, 0.2, 0.1, 0.1, 0.88},
}

var knowledgeBase = []snippet{
	{
		text:   "Revenue metrics include total sales, transaction counts, and average order values.",
		source: SourceRevenue,
		topic:  Vector{0.8, 0.1, 0.1, 0.1, 0.1},
	},
	{
		text:   "Regional performance is measured by revenue, transaction volume, and market share per location.",
		source: SourceRegional,
		topic:  Vector{0.1, 0.8, 0.2, 0.1, 0.1},
	},
	{
		text:   "TBWA brand performance is compared against competitors using market share and customer satisfaction.",
		source: SourceBrand,
		topic:  Vector{0.1, 0.1, 0.2, 0.8, 0.1},
	},
	{
		text:   "Customer segments are analyzed by purchase behavior, frequency, and lifetime value.",
		source: SourceCustomer,
		topic:  Vector{0.1, 0.1, 0.1, 0.1, 0.8},
	},
	{
		text:   "Campaign effectiveness is measured by influenced transactions and attributed revenue.",
		source: SourceCampaign,
		topic:  Vector{0.2, 0.1, 0.7, 0.2, 0.1},
	},
}

// Retriever scores the knowledge base snippets against a question. It holds
// only read-only tables.
type Retriever struct {
	terms    map[string]Vector
	snippets []snippet
}

func NewRetriever() *Retriever {
	return &Retriever{terms: businessTerms, snippets: knowledgeBase}
}

// Embed averages the vectors of every recognized token occurrence. A question
// with no recognized terms embeds to the zero vector.
func (r *Retriever) Embed(question string) Vector {
	var sum Vector
	count := 0
	for _, token := range nlp.Tokenize(question) {
		v, ok := r.terms[token]
		if !ok {
			continue
		}
		for i := range sum {
			sum[i] += v[i]
		}
		count++
	}

	if count == 0 {
		return sum
	}
	for i := range sum {
		sum[i] /= float64(count)
	}
	return sum
}

// Retrieve returns the TopContexts most relevant snippets, best first.
func (r *Retriever) Retrieve(question string) []Context {
	q := r.Embed(question)

	contexts := make([]Context, len(r.snippets))
	for i, s := range r.snippets {
		contexts[i] = Context{
			Context:   s.text,
			Relevance: Cosine(q, s.topic),
			Source:    s.source,
		}
	}

	sort.SliceStable(contexts, func(i, j int) bool {
		return contexts[i].Relevance > contexts[j].Relevance
	})

	if len(contexts) > TopContexts {
		contexts = contexts[:TopContexts]
	}
	return contexts
}

// Cosine returns 0 when either vector has zero norm.
func Cosine(a, b Vector) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
