// Package evaluation replays a labelled question set through the resolver and
// reports how often it picks the expected method and template.
package evaluation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scout-dashboard/suqi/internal/metrics"
	"github.com/scout-dashboard/suqi/internal/query"
	"github.com/scout-dashboard/suqi/internal/storage/models"
	"github.com/scout-dashboard/suqi/pkg/logger"
)

type Classification string

const (
	ClassExact      Classification = "exact"
	ClassMethodOnly Classification = "method_only"
	ClassMiss       Classification = "miss"
)

type Resolver interface {
	Process(question string) query.RAGQueryResult
}

type RunStore interface {
	InsertEvaluationRun(ctx context.Context, run *models.EvaluationRun) error
}

type Evaluator struct {
	resolver Resolver
	store    RunStore
}

type CaseResult struct {
	Question         string         `json:"question"`
	ExpectedMethod   query.Method   `json:"expected_method"`
	ExpectedTemplate string         `json:"expected_template,omitempty"`
	Method           query.Method   `json:"method"`
	TemplateID       string         `json:"template_id,omitempty"`
	Confidence       float64        `json:"confidence"`
	Classification   Classification `json:"classification"`
}

type EvaluationReport struct {
	TotalQueries    int                  `json:"total_queries"`
	ExactCount      int                  `json:"exact_count"`
	MethodOnlyCount int                  `json:"method_only_count"`
	MissCount       int                  `json:"miss_count"`
	Accuracy        float64              `json:"accuracy"`
	MeanConfidence  float64              `json:"mean_confidence"`
	MethodCounts    map[query.Method]int `json:"method_counts"`
	Cases           []CaseResult         `json:"cases"`
}

// NewEvaluator takes an optional store; a nil store skips persistence.
func NewEvaluator(resolver Resolver, store RunStore) *Evaluator {
	return &Evaluator{resolver: resolver, store: store}
}

func (e *Evaluator) EvaluateCase(item DatasetItem) CaseResult {
	res := e.resolver.Process(item.Question)

	result := CaseResult{
		Question:         item.Question,
		ExpectedMethod:   item.ExpectedMethod,
		ExpectedTemplate: item.ExpectedTemplate,
		Method:           res.Method,
		TemplateID:       res.TemplateID,
		Confidence:       res.Confidence,
	}

	switch {
	case res.Method != item.ExpectedMethod:
		result.Classification = ClassMiss
	case item.ExpectedTemplate == "" || item.ExpectedTemplate == res.TemplateID:
		result.Classification = ClassExact
	default:
		result.Classification = ClassMethodOnly
	}
	return result
}

func (e *Evaluator) RunDatasetEvaluation(ctx context.Context, dataset *EvaluationDataset) (*EvaluationReport, error) {
	logger.Info("Running dataset evaluation", zap.Int("items", len(dataset.Items)))

	report := &EvaluationReport{
		TotalQueries: len(dataset.Items),
		MethodCounts: make(map[query.Method]int),
		Cases:        make([]CaseResult, 0, len(dataset.Items)),
	}

	var totalConfidence float64
	for _, item := range dataset.Items {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evaluation interrupted: %w", err)
		}

		result := e.EvaluateCase(item)
		report.Cases = append(report.Cases, result)
		report.MethodCounts[result.Method]++
		totalConfidence += result.Confidence

		switch result.Classification {
		case ClassExact:
			report.ExactCount++
		case ClassMethodOnly:
			report.MethodOnlyCount++
		default:
			report.MissCount++
			logger.Debug("Evaluation miss",
				zap.String("question", item.Question),
				zap.String("expected", string(item.ExpectedMethod)),
				zap.String("got", string(result.Method)),
			)
		}
	}

	if report.TotalQueries > 0 {
		report.Accuracy = float64(report.ExactCount) / float64(report.TotalQueries)
		report.MeanConfidence = totalConfidence / float64(report.TotalQueries)
	}
	metrics.EvaluationAccuracy.Set(report.Accuracy)

	if e.store != nil {
		run := &models.EvaluationRun{
			TotalCases:     report.TotalQueries,
			Passed:         report.ExactCount,
			Accuracy:       report.Accuracy,
			MeanConfidence: report.MeanConfidence,
			CreatedAt:      time.Now(),
		}
		if err := e.store.InsertEvaluationRun(ctx, run); err != nil {
			logger.Warn("Failed to persist evaluation run", zap.Error(err))
		}
	}

	logger.Info("Dataset evaluation completed",
		zap.Int("total", report.TotalQueries),
		zap.Int("exact", report.ExactCount),
		zap.Int("method_only", report.MethodOnlyCount),
		zap.Int("miss", report.MissCount),
		zap.Float64("accuracy", report.Accuracy),
	)

	return report, nil
}
