package evaluation

import (
	"fmt"
	"io"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/scout-dashboard/suqi/internal/query"
)

type DatasetItem struct {
	Question         string       `json:"question" yaml:"question"`
	ExpectedMethod   query.Method `json:"expected_method" yaml:"expected_method"`
	ExpectedTemplate string       `json:"expected_template,omitempty" yaml:"expected_template,omitempty"`
}

type EvaluationDataset struct {
	Items []DatasetItem `json:"items" yaml:"items"`
}

var datasetSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"items"},
	"properties": map[string]interface{}{
		"items": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"question", "expected_method"},
				"properties": map[string]interface{}{
					"question":          map[string]interface{}{"type": "string"},
					"expected_method":   map[string]interface{}{"enum": []interface{}{"semantic", "rag", "fallback"}},
					"expected_template": map[string]interface{}{"type": "string"},
				},
				"additionalProperties": false,
			},
		},
	},
}

// LoadDataset reads a YAML (or JSON) dataset and validates its shape before
// decoding it.
func LoadDataset(r io.Reader) (*EvaluationDataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(datasetSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate dataset: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("invalid dataset: %s", result.Errors()[0].String())
	}

	var dataset EvaluationDataset
	if err := yaml.Unmarshal(raw, &dataset); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return &dataset, nil
}

// DefaultDataset is the built-in regression set served by GET /evaluation.
func DefaultDataset() *EvaluationDataset {
	return &EvaluationDataset{Items: []DatasetItem{
		{Question: "what is the total revenue", ExpectedMethod: query.MethodSemantic, ExpectedTemplate: "total_revenue"},
		{Question: "Show me top 10 stores", ExpectedMethod: query.MethodSemantic, ExpectedTemplate: "top_stores"},
		{Question: "What is TBWA market share?", ExpectedMethod: query.MethodSemantic, ExpectedTemplate: "market_share"},
		{Question: "Show monthly revenue trend", ExpectedMethod: query.MethodSemantic, ExpectedTemplate: "monthly_trend"},
		{Question: "which area makes the most money", ExpectedMethod: query.MethodRAG, ExpectedTemplate: "rag_regional_share"},
		{Question: "Show revenue by region", ExpectedMethod: query.MethodRAG, ExpectedTemplate: "rag_regional_share"},
		{Question: "show revenue last 6 months", ExpectedMethod: query.MethodRAG, ExpectedTemplate: "rag_revenue_totals"},
		{Question: "income last 2 weeks", ExpectedMethod: query.MethodRAG, ExpectedTemplate: "rag_revenue_totals"},
		{Question: "what about the competitor", ExpectedMethod: query.MethodRAG, ExpectedTemplate: "rag_brand_breakdown"},
		{Question: "xyzzy plugh", ExpectedMethod: query.MethodFallback, ExpectedTemplate: query.FallbackTemplateID},
	}}
}
