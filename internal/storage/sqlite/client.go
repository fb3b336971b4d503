package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/scout-dashboard/suqi/internal/storage/models"
	"github.com/scout-dashboard/suqi/pkg/logger"
)

var ErrNotFound = errors.New("record not found")

const DefaultHistoryLimit = 20

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

// NewClientFromDB wraps an already opened handle.
func NewClientFromDB(db *sql.DB) *Client {
	return &Client{db: db}
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS query_history (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		question TEXT NOT NULL,
		method TEXT NOT NULL,
		confidence REAL,
		sql_text TEXT,
		template_id TEXT,
		cached INTEGER DEFAULT 0,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_query_user ON query_history(user_id);
	CREATE INDEX IF NOT EXISTS idx_query_created ON query_history(created_at);
	CREATE INDEX IF NOT EXISTS idx_query_method ON query_history(method);

	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_id TEXT NOT NULL,
		helpful INTEGER NOT NULL,
		issue_category TEXT,
		comment TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (query_id) REFERENCES query_history(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_query ON feedback(query_id);

	CREATE TABLE IF NOT EXISTS evaluation_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		total_cases INTEGER NOT NULL,
		passed INTEGER NOT NULL,
		accuracy REAL NOT NULL,
		mean_confidence REAL NOT NULL,
		created_at INTEGER NOT NULL
	);
	`

	_, err := c.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertQueryRecord(ctx context.Context, record *models.QueryRecord) error {
	query := `
		INSERT INTO query_history (id, user_id, question, method, confidence, sql_text,
			template_id, cached, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.ExecContext(ctx,
		query,
		record.ID,
		record.UserID,
		record.Question,
		record.Method,
		record.Confidence,
		record.SQL,
		record.TemplateID,
		boolToInt(record.Cached),
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}

	logger.Debug("Query recorded",
		zap.String("query_id", record.ID),
		zap.String("method", record.Method),
		zap.Float64("confidence", record.Confidence),
	)

	return nil
}

const selectQueryRecord = `
	SELECT id, user_id, question, method, confidence, sql_text, template_id, cached, latency_ms, created_at
	FROM query_history
`

func (c *Client) GetQueryRecord(ctx context.Context, id string) (*models.QueryRecord, error) {
	row := c.db.QueryRowContext(ctx, selectQueryRecord+` WHERE id = ?`, id)

	r, err := scanQueryRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get query record: %w", err)
	}
	return r, nil
}

// GetQueryHistory returns the newest records first. An empty userID lists
// every user.
func (c *Client) GetQueryHistory(ctx context.Context, userID string, limit int) ([]models.QueryRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var (
		rows *sql.Rows
		err  error
	)
	if userID == "" {
		rows, err = c.db.QueryContext(ctx, selectQueryRecord+` ORDER BY created_at DESC LIMIT ?`, limit)
	} else {
		rows, err = c.db.QueryContext(ctx, selectQueryRecord+` WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get query history: %w", err)
	}
	defer rows.Close()

	records := make([]models.QueryRecord, 0)
	for rows.Next() {
		r, err := scanQueryRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate query history: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanQueryRecord(s scanner) (*models.QueryRecord, error) {
	var (
		r          models.QueryRecord
		userID     sql.NullString
		sqlText    sql.NullString
		templateID sql.NullString
		cached     int
		createdAt  int64
	)

	err := s.Scan(&r.ID, &userID, &r.Question, &r.Method, &r.Confidence, &sqlText, &templateID, &cached, &r.LatencyMS, &createdAt)
	if err != nil {
		return nil, err
	}

	r.UserID = userID.String
	r.SQL = sqlText.String
	r.TemplateID = templateID.String
	r.Cached = cached == 1
	r.CreatedAt = time.Unix(createdAt, 0)
	return &r, nil
}

func (c *Client) StoreFeedback(ctx context.Context, feedback *models.Feedback) error {
	query := `INSERT INTO feedback (query_id, helpful, issue_category, comment, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := c.db.ExecContext(ctx,
		query,
		feedback.QueryID,
		boolToInt(feedback.Helpful),
		feedback.IssueCategory,
		feedback.Comment,
		time.Now().Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	logger.Info("Feedback stored",
		zap.String("query_id", feedback.QueryID),
		zap.Bool("helpful", feedback.Helpful),
	)

	return nil
}

func (c *Client) InsertEvaluationRun(ctx context.Context, run *models.EvaluationRun) error {
	query := `INSERT INTO evaluation_runs (total_cases, passed, accuracy, mean_confidence, created_at) VALUES (?, ?, ?, ?, ?)`

	res, err := c.db.ExecContext(ctx,
		query,
		run.TotalCases,
		run.Passed,
		run.Accuracy,
		run.MeanConfidence,
		run.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert evaluation run: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		run.ID = int(id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
