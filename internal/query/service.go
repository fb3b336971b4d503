package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scout-dashboard/suqi/internal/metrics"
	"github.com/scout-dashboard/suqi/internal/storage/models"
	"github.com/scout-dashboard/suqi/pkg/circuitbreaker"
	"github.com/scout-dashboard/suqi/pkg/logger"
	"github.com/scout-dashboard/suqi/pkg/retry"
	"github.com/scout-dashboard/suqi/pkg/utils"
)

const (
	DefaultCacheTTL = 15 * time.Minute
	cacheType       = "query"
)

// Cache stores resolved plans keyed by a hash of the exact question.
type Cache interface {
	GetQuery(ctx context.Context, queryHash string, response interface{}) (bool, error)
	SetQuery(ctx context.Context, queryHash string, response interface{}, ttl time.Duration) error
}

type HistoryStore interface {
	InsertQueryRecord(ctx context.Context, record *models.QueryRecord) error
}

type QueryRequest struct {
	Question string
	UserID   string
}

type QueryResponse struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	RAGQueryResult
	ExecutionTimeMS int64 `json:"execution_time_ms"`
	Cached          bool  `json:"cached"`
}

type Service struct {
	engine   *Engine
	cache    Cache
	cacheTTL time.Duration
	breaker  *circuitbreaker.CircuitBreaker
	history  HistoryStore
	retry    retry.Config
}

type Option func(*Service)

func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(s *Service) {
		s.breaker = cb
	}
}

func WithHistory(store HistoryStore) Option {
	return func(s *Service) {
		s.history = store
	}
}

func WithRetry(cfg retry.Config) Option {
	return func(s *Service) {
		s.retry = cfg
	}
}

func NewService(engine *Engine, opts ...Option) *Service {
	s := &Service{
		engine:   engine,
		cacheTTL: DefaultCacheTTL,
		retry:    retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.breaker == nil {
		s.breaker = circuitbreaker.New("query-cache", circuitbreaker.Config{})
	}
	return s
}

func (s *Service) Engine() *Engine {
	return s.engine
}

// ProcessQuery resolves the question, consulting the cache first. Cache and
// history failures are logged and never fail the query.
func (s *Service) ProcessQuery(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("query aborted: %w", err)
	}

	startTime := time.Now()
	queryID := uuid.New().String()
	queryHash := utils.HashString(req.Question)

	logger.Info("Processing query",
		zap.String("query_id", queryID),
		zap.String("question", utils.Truncate(req.Question, 200)),
	)

	result, cached := s.lookup(ctx, queryHash)
	if !cached {
		result = s.engine.Process(req.Question)
		s.store(ctx, queryHash, result)
	}

	elapsed := time.Since(startTime)
	latency := elapsed.Milliseconds()

	metrics.QueryDuration.WithLabelValues(string(result.Method)).Observe(elapsed.Seconds())
	metrics.QueryTotal.WithLabelValues(string(result.Method)).Inc()
	metrics.ConfidenceScore.WithLabelValues(string(result.Method)).Observe(result.Confidence)
	if result.TemplateID != "" {
		metrics.TemplateMatches.WithLabelValues(result.TemplateID).Inc()
	}

	s.recordHistory(ctx, &models.QueryRecord{
		ID:         queryID,
		UserID:     req.UserID,
		Question:   req.Question,
		Method:     string(result.Method),
		Confidence: result.Confidence,
		SQL:        result.SQL,
		TemplateID: result.TemplateID,
		Cached:     cached,
		LatencyMS:  int(latency),
		CreatedAt:  time.Now(),
	})

	logger.Info("Query processed",
		zap.String("query_id", queryID),
		zap.String("method", string(result.Method)),
		zap.Float64("confidence", result.Confidence),
		zap.Bool("cached", cached),
		zap.Int64("latency_ms", latency),
	)

	return &QueryResponse{
		ID:              queryID,
		Question:        req.Question,
		RAGQueryResult:  result,
		ExecutionTimeMS: latency,
		Cached:          cached,
	}, nil
}

func (s *Service) lookup(ctx context.Context, queryHash string) (RAGQueryResult, bool) {
	var result RAGQueryResult
	if s.cache == nil {
		return result, false
	}

	var hit bool
	err := s.breaker.Execute(ctx, func() error {
		var err error
		hit, err = s.cache.GetQuery(ctx, queryHash, &result)
		return err
	})
	if err != nil {
		if !errors.Is(err, circuitbreaker.ErrOpen) {
			logger.Warn("Cache lookup failed", zap.String("query_hash", queryHash), zap.Error(err))
		}
		metrics.CacheMisses.WithLabelValues(cacheType).Inc()
		return RAGQueryResult{}, false
	}

	if !hit {
		metrics.CacheMisses.WithLabelValues(cacheType).Inc()
		return RAGQueryResult{}, false
	}

	metrics.CacheHits.WithLabelValues(cacheType).Inc()
	return result, true
}

func (s *Service) store(ctx context.Context, queryHash string, result RAGQueryResult) {
	if s.cache == nil {
		return
	}

	err := s.breaker.Execute(ctx, func() error {
		return s.cache.SetQuery(ctx, queryHash, result, s.cacheTTL)
	})
	if err != nil && !errors.Is(err, circuitbreaker.ErrOpen) {
		logger.Warn("Cache store failed", zap.String("query_hash", queryHash), zap.Error(err))
	}
}

func (s *Service) recordHistory(ctx context.Context, record *models.QueryRecord) {
	if s.history == nil {
		return
	}

	err := retry.Do(ctx, s.retry, func() error {
		return s.history.InsertQueryRecord(ctx, record)
	})
	if err != nil {
		logger.Error("Failed to record query history",
			zap.String("query_id", record.ID),
			zap.Error(err),
		)
	}
}
