// Package audit persists validation attempts and LLM usage metrics to the
// append-only audit log. Every failure in this package is caught, logged,
// and swallowed: audit logging must never fail a validation that already
// succeeded.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/radvalidate/internal/metrics"
	"github.com/radvalidate/pkg/models"
)

// undefinedTable is the Postgres SQLSTATE for a missing relation.
const undefinedTable = "42P01"

// AttemptParams carries everything the logger records for one attempt. The
// input text is the original, pre-sanitization dictation: the audit trail
// deliberately favors traceability over data minimization.
type AttemptParams struct {
	OrderID   *int64
	InputText string
	Result    *models.ValidationResult
	Response  *models.ProviderResponse
	UserID    int64
}

// execQuerier is the slice of the pool surface the logger writes through.
type execQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Logger writes audit rows through a pgx pool.
type Logger struct {
	db  execQuerier
	log zerolog.Logger
}

// NewLogger wraps an open pool. A nil pool yields a no-op logger.
func NewLogger(pool *pgxpool.Pool, logger zerolog.Logger) *Logger {
	l := &Logger{log: logger}
	if pool != nil {
		l.db = pool
	}
	return l
}

func newLoggerWithDB(db execQuerier, logger zerolog.Logger) *Logger {
	return &Logger{db: db, log: logger}
}

// LogAttempt writes one validation_attempts row and one llm_usage_logs row.
// It never returns an error; callers in test mode simply skip the call.
func (l *Logger) LogAttempt(ctx context.Context, p AttemptParams) {
	if l == nil || l.db == nil {
		return
	}

	if err := l.writeAttempt(ctx, p); err != nil {
		metrics.RecordAuditFailure()
		l.log.Warn().Err(err).
			Interface("order_id", p.OrderID).
			Int64("user_id", p.UserID).
			Msg("failed to write validation attempt, continuing")
	} else {
		metrics.RecordAuditEntry()
	}

	if p.Response != nil {
		if err := l.writeUsage(ctx, p.Response); err != nil {
			metrics.RecordAuditFailure()
			l.log.Warn().Err(err).
				Str("provider", p.Response.Provider).
				Msg("failed to write LLM usage log, continuing")
		}
	}
}

func (l *Logger) writeAttempt(ctx context.Context, p AttemptParams) error {
	attemptNumber, err := l.nextAttemptNumber(ctx, p.OrderID)
	if err != nil {
		return err
	}

	icd10, err := json.Marshal(p.Result.SuggestedICD10Codes)
	if err != nil {
		return err
	}
	cpt, err := json.Marshal(p.Result.SuggestedCPTCodes)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO validation_attempts (
	order_id, attempt_number, validation_input_text, validation_outcome,
	generated_icd10_codes, generated_cpt_codes, generated_feedback_text,
	generated_compliance_score, user_id, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = l.db.Exec(ctx, q,
		p.OrderID, attemptNumber, p.InputText, p.Result.ValidationStatus,
		string(icd10), string(cpt), p.Result.Feedback,
		p.Result.ComplianceScore, p.UserID, time.Now().UTC(),
	)
	return err
}

// nextAttemptNumber is read-then-write without cross-request locking.
// Concurrent validations for the same order can race and produce duplicate
// numbers; attempt numbers are informative, not a correctness-critical
// sequence.
func (l *Logger) nextAttemptNumber(ctx context.Context, orderID *int64) (int, error) {
	if orderID == nil {
		return 1, nil
	}

	const q = `SELECT COALESCE(MAX(attempt_number), 0) + 1 FROM validation_attempts WHERE order_id = $1`
	var next int
	if err := l.db.QueryRow(ctx, q, *orderID).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

// writeUsage records provider usage metrics, provisioning the usage table and
// retrying once when it does not exist yet.
func (l *Logger) writeUsage(ctx context.Context, resp *models.ProviderResponse) error {
	err := l.insertUsage(ctx, resp)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != undefinedTable {
		return err
	}

	l.log.Info().Msg("llm_usage_logs missing, provisioning and retrying once")
	if err := l.provisionUsageTable(ctx); err != nil {
		return err
	}
	return l.insertUsage(ctx, resp)
}

func (l *Logger) insertUsage(ctx context.Context, resp *models.ProviderResponse) error {
	const q = `
INSERT INTO llm_usage_logs (
	provider, model, prompt_tokens, completion_tokens, total_tokens,
	latency_ms, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := l.db.Exec(ctx, q,
		resp.Provider, resp.Model, resp.PromptTokens, resp.CompletionTokens,
		resp.TotalTokens, resp.LatencyMs, time.Now().UTC(),
	)
	return err
}

func (l *Logger) provisionUsageTable(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS llm_usage_logs (
	id BIGSERIAL PRIMARY KEY,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	prompt_tokens INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens INTEGER NOT NULL DEFAULT 0,
	latency_ms BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	_, err := l.db.Exec(ctx, q)
	return err
}
