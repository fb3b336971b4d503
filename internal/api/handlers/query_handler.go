package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/scout-dashboard/suqi/internal/evaluation"
	"github.com/scout-dashboard/suqi/internal/metrics"
	"github.com/scout-dashboard/suqi/internal/middleware/validation"
	"github.com/scout-dashboard/suqi/internal/query"
	"github.com/scout-dashboard/suqi/internal/storage/models"
	"github.com/scout-dashboard/suqi/internal/storage/sqlite"
	"github.com/scout-dashboard/suqi/pkg/logger"
)

const maxHistoryLimit = 100

// HistoryStore is the read side of the query log plus feedback writes.
type HistoryStore interface {
	GetQueryHistory(ctx context.Context, userID string, limit int) ([]models.QueryRecord, error)
	GetQueryRecord(ctx context.Context, id string) (*models.QueryRecord, error)
	StoreFeedback(ctx context.Context, feedback *models.Feedback) error
}

type QueryHandler struct {
	service   *query.Service
	history   HistoryStore
	evaluator *evaluation.Evaluator
}

// NewQueryHandler accepts a nil history store; history then reads empty and
// feedback is unavailable.
func NewQueryHandler(service *query.Service, history HistoryStore, evaluator *evaluation.Evaluator) *QueryHandler {
	return &QueryHandler{
		service:   service,
		history:   history,
		evaluator: evaluator,
	}
}

type queryRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
}

type queryResponse struct {
	*query.QueryResponse
	Data        []Row  `json:"data"`
	QueryMethod string `json:"query_method"`
	LLMFree     bool   `json:"llm_free"`
}

func (h *QueryHandler) HandleQuery(c *fiber.Ctx) error {
	var req queryRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// the validation middleware stores the sanitized form
	if q, ok := c.Locals(validation.LocalQuestion).(string); ok && q != "" {
		req.Question = q
	}
	req.Question = strings.TrimSpace(req.Question)

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question is required",
		})
	}

	response, err := h.service.ProcessQuery(c.UserContext(), query.QueryRequest{
		Question: req.Question,
		UserID:   req.UserID,
	})
	if err != nil {
		logger.Error("Failed to process query", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":        "Failed to process query",
			"query_method": "Error",
		})
	}

	return c.JSON(queryResponse{
		QueryResponse: response,
		Data:          PreviewRows(response.SQL),
		QueryMethod:   "SUQI Semantic (" + string(response.Method) + ")",
		LLMFree:       true,
	})
}

func (h *QueryHandler) GetQueryHistory(c *fiber.Ctx) error {
	if h.history == nil {
		return c.JSON(fiber.Map{"history": []models.QueryRecord{}})
	}

	limit := sqlite.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be a positive integer",
			})
		}
		if n > maxHistoryLimit {
			n = maxHistoryLimit
		}
		limit = n
	}

	records, err := h.history.GetQueryHistory(c.UserContext(), c.Query("user_id"), limit)
	if err != nil {
		logger.Error("Failed to get query history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get query history",
		})
	}

	return c.JSON(fiber.Map{
		"history": records,
	})
}

func (h *QueryHandler) SubmitFeedback(c *fiber.Ctx) error {
	if h.history == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Feedback storage is disabled",
		})
	}

	var req struct {
		Helpful       *bool  `json:"helpful"`
		IssueCategory string `json:"issue_category"`
		Comment       string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil || req.Helpful == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "helpful is required",
		})
	}

	queryID := c.Params("id")
	if _, err := h.history.GetQueryRecord(c.UserContext(), queryID); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Query not found",
			})
		}
		logger.Error("Failed to look up query", zap.String("query_id", queryID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store feedback",
		})
	}

	feedback := &models.Feedback{
		QueryID:       queryID,
		Helpful:       *req.Helpful,
		IssueCategory: req.IssueCategory,
		Comment:       req.Comment,
	}
	if err := h.history.StoreFeedback(c.UserContext(), feedback); err != nil {
		logger.Error("Failed to store feedback", zap.String("query_id", queryID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store feedback",
		})
	}

	metrics.UserSatisfaction.WithLabelValues(strconv.FormatBool(*req.Helpful)).Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":   "recorded",
		"query_id": queryID,
	})
}

func (h *QueryHandler) GetSuggestions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"suggestions": h.service.Engine().Suggest(c.Query("q")),
	})
}

type templateSummary struct {
	ID         string   `json:"id"`
	Category   string   `json:"category"`
	Examples   []string `json:"examples"`
	Parameters []string `json:"parameters"`
}

func (h *QueryHandler) ListTemplates(c *fiber.Ctx) error {
	all := h.service.Engine().Registry().All()

	out := make([]templateSummary, 0, len(all))
	for _, t := range all {
		params := make([]string, 0, len(t.Parameters))
		for _, p := range t.Parameters {
			params = append(params, string(p))
		}
		out = append(out, templateSummary{
			ID:         t.ID,
			Category:   t.Category,
			Examples:   t.Examples,
			Parameters: params,
		})
	}

	return c.JSON(fiber.Map{
		"templates": out,
		"count":     len(out),
	})
}

func (h *QueryHandler) RunEvaluation(c *fiber.Ctx) error {
	report, err := h.evaluator.RunDatasetEvaluation(c.UserContext(), evaluation.DefaultDataset())
	if err != nil {
		logger.Error("Evaluation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Evaluation failed",
		})
	}
	return c.JSON(report)
}
