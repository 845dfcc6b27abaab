// Package pipeline wires the seven validation stages into the single
// operation exposed to callers: sanitize, extract keywords, build reference
// context, construct the prompt, call providers with fallback, normalize and
// validate the response, then best-effort audit logging.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/radvalidate/internal/audit"
	"github.com/radvalidate/internal/keywords"
	"github.com/radvalidate/internal/llm"
	"github.com/radvalidate/internal/metrics"
	"github.com/radvalidate/internal/prompts"
	"github.com/radvalidate/internal/refdata"
	"github.com/radvalidate/internal/sanitize"
	"github.com/radvalidate/pkg/models"
)

// Caller is the provider fallback boundary.
type Caller interface {
	CallWithFallback(ctx context.Context, prompt string) (*models.ProviderResponse, error)
}

// AttemptLogger is the best-effort audit boundary. Implementations never
// return an error.
type AttemptLogger interface {
	LogAttempt(ctx context.Context, p audit.AttemptParams)
}

// RunContext carries the caller-resolved request context.
type RunContext struct {
	UserID               int64
	OrgID                int64
	OrderID              *int64
	PatientInfo          map[string]any
	IsOverrideValidation bool
}

// Options configures a Validator. All collaborators are injected so tests can
// substitute deterministic templates, providers, and stores.
type Options struct {
	Sanitizer       *sanitize.Sanitizer
	RefStore        refdata.Store
	Templates       prompts.Source
	LLM             Caller
	Audit           AttemptLogger
	ContextMaxBytes int
	// WordLimit overrides the active template's feedback word limit when
	// positive.
	WordLimit int
	Logger    zerolog.Logger
}

// Validator executes validation requests. Each request is an independent
// single-threaded sequence; the only shared state between concurrent requests
// is the underlying persistent stores.
type Validator struct {
	sanitizer       *sanitize.Sanitizer
	refstore        refdata.Store
	templates       prompts.Source
	llm             Caller
	audit           AttemptLogger
	contextMaxBytes int
	wordLimit       int
	log             zerolog.Logger
}

// New builds a Validator from injected collaborators.
func New(opts Options) *Validator {
	s := opts.Sanitizer
	if s == nil {
		s = sanitize.New(sanitize.DefaultConfig())
	}
	return &Validator{
		sanitizer:       s,
		refstore:        opts.RefStore,
		templates:       opts.Templates,
		llm:             opts.LLM,
		audit:           opts.Audit,
		contextMaxBytes: opts.ContextMaxBytes,
		wordLimit:       opts.WordLimit,
		log:             opts.Logger,
	}
}

// Run executes one validation. Errors from the sanitize-through-validate
// stages abort and propagate as typed failures; audit failures never do.
// testMode suppresses the attempt logger entirely and changes nothing else.
func (v *Validator) Run(ctx context.Context, text string, rc RunContext, testMode bool) (*models.ValidationResult, error) {
	requestID := uuid.NewString()
	logger := v.log.With().
		Str("request_id", requestID).
		Int64("user_id", rc.UserID).
		Int64("org_id", rc.OrgID).
		Logger()

	tpl, err := v.templates.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active template: %w", err)
	}

	sanitized := v.sanitizer.Sanitize(text)
	kws := keywords.Extract(sanitized)
	logger.Debug().Int("keywords", len(kws)).Msg("extracted keywords from sanitized dictation")

	contextBlob := refdata.BuildContext(ctx, v.refstore, keywords.Terms(kws), v.contextMaxBytes)

	prompt := prompts.Construct(tpl, sanitized, contextBlob, v.wordLimit, rc.IsOverrideValidation)

	resp, err := v.llm.CallWithFallback(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, err := llm.NormalizeAndValidate(resp.Content)
	if err != nil {
		return nil, err
	}

	metrics.RecordValidation(result.ValidationStatus)
	logger.Info().
		Str("provider", resp.Provider).
		Str("status", result.ValidationStatus).
		Float64("score", result.ComplianceScore).
		Bool("override", rc.IsOverrideValidation).
		Bool("test_mode", testMode).
		Msg("validation completed")

	if !testMode && v.audit != nil {
		v.audit.LogAttempt(ctx, audit.AttemptParams{
			OrderID:   rc.OrderID,
			InputText: text,
			Result:    result,
			Response:  resp,
			UserID:    rc.UserID,
		})
	}

	return result, nil
}
