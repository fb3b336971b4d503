package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scout-dashboard/suqi/internal/metrics"
	"github.com/scout-dashboard/suqi/internal/query"
	"github.com/scout-dashboard/suqi/internal/storage/models"
	"github.com/scout-dashboard/suqi/internal/templates"
)

type recordingStore struct {
	runs []*models.EvaluationRun
	err  error
}

func (s *recordingStore) InsertEvaluationRun(_ context.Context, run *models.EvaluationRun) error {
	if s.err != nil {
		return s.err
	}
	run.ID = len(s.runs) + 1
	s.runs = append(s.runs, run)
	return nil
}

type fixedResolver map[string]query.RAGQueryResult

func (f fixedResolver) Process(question string) query.RAGQueryResult {
	return f[question]
}

func newEngine(t *testing.T) *query.Engine {
	t.Helper()
	reg, err := templates.Default()
	require.NoError(t, err)
	return query.NewEngine(reg)
}

func TestDefaultDataset_AllExact(t *testing.T) {
	metrics.Init()
	store := &recordingStore{}
	ev := NewEvaluator(newEngine(t), store)

	report, err := ev.RunDatasetEvaluation(context.Background(), DefaultDataset())
	require.NoError(t, err)

	for _, c := range report.Cases {
		assert.Equal(t, ClassExact, c.Classification, "question %q resolved via %s/%s", c.Question, c.Method, c.TemplateID)
	}
	assert.Equal(t, 10, report.TotalQueries)
	assert.Equal(t, 10, report.ExactCount)
	assert.InDelta(t, 1.0, report.Accuracy, 1e-9)
	assert.Equal(t, 4, report.MethodCounts[query.MethodSemantic])
	assert.Equal(t, 5, report.MethodCounts[query.MethodRAG])
	assert.Equal(t, 1, report.MethodCounts[query.MethodFallback])
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.EvaluationAccuracy), 1e-9)

	require.Len(t, store.runs, 1)
	assert.Equal(t, 10, store.runs[0].Passed)
	assert.InDelta(t, report.MeanConfidence, store.runs[0].MeanConfidence, 1e-9)
}

func TestRunDatasetEvaluation_Classification(t *testing.T) {
	resolver := fixedResolver{
		"exact":  {Method: query.MethodSemantic, TemplateID: "total_revenue", Confidence: 0.8},
		"method": {Method: query.MethodSemantic, TemplateID: "top_stores", Confidence: 0.75},
		"miss":   {Method: query.MethodFallback, TemplateID: query.FallbackTemplateID, Confidence: 0.3},
		"any":    {Method: query.MethodRAG, TemplateID: "rag_revenue_totals", Confidence: 0.7},
	}
	dataset := &EvaluationDataset{Items: []DatasetItem{
		{Question: "exact", ExpectedMethod: query.MethodSemantic, ExpectedTemplate: "total_revenue"},
		{Question: "method", ExpectedMethod: query.MethodSemantic, ExpectedTemplate: "total_revenue"},
		{Question: "miss", ExpectedMethod: query.MethodRAG},
		{Question: "any", ExpectedMethod: query.MethodRAG},
	}}

	report, err := NewEvaluator(resolver, nil).RunDatasetEvaluation(context.Background(), dataset)
	require.NoError(t, err)

	got := make([]Classification, 0, len(report.Cases))
	for _, c := range report.Cases {
		got = append(got, c.Classification)
	}
	assert.Equal(t, []Classification{ClassExact, ClassMethodOnly, ClassMiss, ClassExact}, got)
	assert.Equal(t, 2, report.ExactCount)
	assert.Equal(t, 1, report.MethodOnlyCount)
	assert.Equal(t, 1, report.MissCount)
	assert.InDelta(t, 0.5, report.Accuracy, 1e-9)
	assert.InDelta(t, (0.8+0.75+0.3+0.7)/4, report.MeanConfidence, 1e-9)
}

func TestRunDatasetEvaluation_WrongExpectationIsMiss(t *testing.T) {
	dataset := &EvaluationDataset{Items: []DatasetItem{
		{Question: "executive summary", ExpectedMethod: query.MethodSemantic, ExpectedTemplate: "executive_kpis"},
	}}

	report, err := NewEvaluator(newEngine(t), nil).RunDatasetEvaluation(context.Background(), dataset)
	require.NoError(t, err)

	assert.Equal(t, 1, report.MissCount)
	assert.Equal(t, query.MethodFallback, report.Cases[0].Method)
}

func TestRunDatasetEvaluation_EmptyAndStoreFailure(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}
	report, err := NewEvaluator(fixedResolver{}, store).RunDatasetEvaluation(context.Background(), &EvaluationDataset{})

	require.NoError(t, err)
	assert.Zero(t, report.TotalQueries)
	assert.Zero(t, report.Accuracy)
	assert.Empty(t, report.Cases)
}

func TestRunDatasetEvaluation_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEvaluator(fixedResolver{}, nil).RunDatasetEvaluation(ctx, DefaultDataset())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadDataset(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
		want    int
	}{
		{
			name: "yaml",
			input: `
items:
  - question: what is the total revenue
    expected_method: semantic
    expected_template: total_revenue
  - question: xyzzy
    expected_method: fallback
`,
			want: 2,
		},
		{
			name:  "json",
			input: `{"items":[{"question":"income last 2 weeks","expected_method":"rag"}]}`,
			want:  1,
		},
		{name: "unknown method", input: `{"items":[{"question":"q","expected_method":"llm"}]}`, wantErr: "invalid dataset"},
		{name: "missing question", input: `{"items":[{"expected_method":"rag"}]}`, wantErr: "invalid dataset"},
		{name: "empty items", input: `{"items":[]}`, wantErr: "invalid dataset"},
		{name: "extra field", input: `{"items":[{"question":"q","expected_method":"rag","weight":2}]}`, wantErr: "invalid dataset"},
		{name: "malformed", input: `items: [`, wantErr: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := LoadDataset(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, ds.Items, tt.want)
		})
	}
}
