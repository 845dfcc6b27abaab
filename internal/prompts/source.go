// Package prompts reads the active prompt template and constructs the final
// prompt string sent to a provider. Construction is pure template
// substitution; no external calls happen here.
package prompts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/radvalidate/pkg/models"
)

// ErrTemplateUnavailable is returned when no active prompt template exists.
// This aborts the pipeline before any provider call.
var ErrTemplateUnavailable = errors.New("prompts: no active prompt template")

// Source yields the single currently-active template. The pipeline treats the
// returned template as read-only.
type Source interface {
	Active(ctx context.Context) (*models.PromptTemplate, error)
}

// SQLSource reads the active template from the prompt_templates table.
type SQLSource struct {
	db *sql.DB
}

func NewSQLSource(db *sql.DB) *SQLSource { return &SQLSource{db: db} }

// Active implements Source.
func (s *SQLSource) Active(ctx context.Context) (*models.PromptTemplate, error) {
	const q = `
SELECT name, content_template, word_limit
FROM prompt_templates
WHERE active = TRUE
ORDER BY updated_at DESC
LIMIT 1`

	var tpl models.PromptTemplate
	err := s.db.QueryRowContext(ctx, q).Scan(&tpl.Name, &tpl.ContentTemplate, &tpl.WordLimit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTemplateUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("prompts: read active template: %w", err)
	}
	tpl.Active = true
	return &tpl, nil
}

// StaticSource serves a fixed template. Used by the CLI when no database is
// configured and by tests.
type StaticSource struct {
	Template *models.PromptTemplate
}

// Active implements Source.
func (s StaticSource) Active(ctx context.Context) (*models.PromptTemplate, error) {
	if s.Template == nil {
		return nil, ErrTemplateUnavailable
	}
	return s.Template, nil
}
