package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scout-dashboard/suqi/internal/templates"
)

func newDefaultSearcher(t *testing.T) *Searcher {
	t.Helper()
	reg, err := templates.Default()
	require.NoError(t, err)
	return NewSearcher(reg, nil)
}

func TestSearch_TotalRevenue(t *testing.T) {
	s := newDefaultSearcher(t)

	results := s.Search("what is the total revenue")
	require.NotEmpty(t, results)

	top := results[0]
	assert.Equal(t, "total_revenue", top.Template.ID)
	assert.InDelta(t, 0.837, top.Score, 1e-9)
	assert.Contains(t, top.SQL, "SUM(revenue)")
	assert.Contains(t, top.SQL, "INTERVAL '30 days'")
	assert.Empty(t, templates.Unresolved(top.SQL))
	assert.Equal(t, "Matched patterns: total revenue, what is the total revenue. Keywords found: revenue, total.", top.Explanation)
}

func TestSearch_TopStoresBindsLimitAndRegion(t *testing.T) {
	s := newDefaultSearcher(t)

	results := s.Search("top 5 stores in Cebu")
	require.NotEmpty(t, results)

	top := results[0]
	assert.Equal(t, "top_stores", top.Template.ID)
	assert.Contains(t, top.SQL, "AND region = 'Cebu'")
	assert.Contains(t, top.SQL, "LIMIT 5")
	assert.Equal(t, "Cebu", top.Entities.Region)
	assert.Equal(t, 5, top.Entities.Limit)
}

func TestSearch_DefaultLimit(t *testing.T) {
	s := newDefaultSearcher(t)

	results := s.Search("Show me top 10 stores")
	require.NotEmpty(t, results)
	assert.Equal(t, "top_stores", results[0].Template.ID)
	assert.Greater(t, results[0].Score, 0.7)
	assert.Contains(t, results[0].SQL, "LIMIT 10")

	results = s.Search("show revenue by region")
	require.NotEmpty(t, results)
	assert.Equal(t, "revenue_by_region", results[0].Template.ID)
	assert.Contains(t, results[0].SQL, "LIMIT 10")
}

func TestSearch_NoMatch(t *testing.T) {
	s := newDefaultSearcher(t)
	assert.Empty(t, s.Search("xyzzy plugh"))
	assert.Empty(t, s.Search(""))
}

func TestSearch_OrderedAndCapped(t *testing.T) {
	s := newDefaultSearcher(t)

	results := s.Search("compare brand market share revenue by region performance")
	assert.LessOrEqual(t, len(results), MaxResults)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearch_ThresholdIsStrict(t *testing.T) {
	// one keyword hit scores exactly 0.3 with nothing else contributing
	exact, err := templates.NewRegistry([]templates.QueryTemplate{
		{ID: "alpha", Keywords: []string{"alpha"}, SQL: "SELECT 1", Confidence: 1},
	})
	require.NoError(t, err)
	assert.Empty(t, NewSearcher(exact, nil).Search("alpha"))

	// keyword plus period bonus is 0.35, scaled down to 0.31
	above, err := templates.NewRegistry([]templates.QueryTemplate{
		{
			ID:         "alpha",
			Keywords:   []string{"alpha"},
			SQL:        "SELECT 1 WHERE d >= '{{period}}'",
			Parameters: []templates.Param{templates.ParamPeriod},
			Confidence: 0.31 / 0.35,
		},
	})
	require.NoError(t, err)

	results := NewSearcher(above, nil).Search("alpha")
	require.Len(t, results, 1)
	assert.InDelta(t, 0.31, results[0].Score, 1e-9)
	assert.Equal(t, "SELECT 1 WHERE d >= '30 days'", results[0].SQL)
}

func TestSearch_RegionalBonus(t *testing.T) {
	reg, err := templates.NewRegistry([]templates.QueryTemplate{
		{ID: "r", Keywords: []string{"alpha"}, SQL: "SELECT 1", Category: "regional", Confidence: 1},
	})
	require.NoError(t, err)

	results := NewSearcher(reg, nil).Search("alpha in Cebu")
	require.Len(t, results, 1)
	assert.InDelta(t, 0.35, results[0].Score, 1e-9)
}

func TestSuggest(t *testing.T) {
	s := newDefaultSearcher(t)

	got := s.Suggest("rev")
	require.Len(t, got, MaxSuggestions)
	assert.Equal(t, "What is the total revenue?", got[0])
	assert.Equal(t, "Show revenue by region", got[1])

	assert.Equal(t, []string{"How are sari-sari stores doing?", "Top sari-sari stores in Cebu"}, s.Suggest("sari st"))
	assert.Empty(t, s.Suggest(""))
	assert.Empty(t, s.Suggest("xyzzy"))
}
