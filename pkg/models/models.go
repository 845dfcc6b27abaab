package models

import (
	"time"
)

// Validation statuses form a closed set. A ValidationResult is never returned
// to a caller with a status outside these four values.
const (
	StatusAppropriate        = "appropriate"
	StatusInappropriate      = "inappropriate"
	StatusNeedsClarification = "needs_clarification"
	StatusOverride           = "override"
)

// ValidStatuses lists the closed status set in a stable order.
var ValidStatuses = []string{
	StatusAppropriate,
	StatusInappropriate,
	StatusNeedsClarification,
	StatusOverride,
}

// Keyword categories.
const (
	CategoryAnatomy      = "anatomy"
	CategoryModality     = "modality"
	CategorySymptom      = "symptom"
	CategoryCode         = "code"
	CategoryAbbreviation = "abbreviation"
)

// Keyword is a single categorized medical term extracted from sanitized
// dictation text. Terms are lower-cased and deduplicated; ordering of a
// keyword set is not meaningful.
type Keyword struct {
	Term     string `json:"term"`
	Category string `json:"category"`
}

// Code is a normalized diagnosis (ICD-10) or procedure (CPT) code. Description
// may be empty when the provider returned bare code strings.
type Code struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ValidationResult is the canonical result contract of the pipeline. All five
// required fields are populated before a result is returned to any caller.
type ValidationResult struct {
	ValidationStatus    string  `json:"validationStatus"`
	ComplianceScore     float64 `json:"complianceScore"`
	Feedback            string  `json:"feedback"`
	SuggestedICD10Codes []Code  `json:"suggestedICD10Codes"`
	SuggestedCPTCodes   []Code  `json:"suggestedCPTCodes"`
	InternalReasoning   string  `json:"internalReasoning,omitempty"`
}

// ProviderResponse captures one successful LLM provider call, including the
// usage metrics recorded by the attempt logger.
type ProviderResponse struct {
	Provider         string `json:"provider"`
	Model            string `json:"model"`
	Content          string `json:"content"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	LatencyMs        int64  `json:"latency_ms"`
}

// PromptTemplate is the currently-active prompt template as read from the
// configuration store. The pipeline treats it as read-only.
type PromptTemplate struct {
	Name            string `json:"name" db:"name"`
	ContentTemplate string `json:"content_template" db:"content_template"`
	WordLimit       int    `json:"word_limit" db:"word_limit"`
	Active          bool   `json:"active" db:"active"`
}

// ValidationAttempt is one append-only audit row. AttemptNumber starts at 1
// per order and is informative, not a correctness-critical sequence.
type ValidationAttempt struct {
	OrderID       *int64    `json:"order_id,omitempty" db:"order_id"`
	AttemptNumber int       `json:"attempt_number" db:"attempt_number"`
	InputText     string    `json:"validation_input_text" db:"validation_input_text"`
	Outcome       string    `json:"validation_outcome" db:"validation_outcome"`
	ICD10Codes    string    `json:"generated_icd10_codes" db:"generated_icd10_codes"`
	CPTCodes      string    `json:"generated_cpt_codes" db:"generated_cpt_codes"`
	Feedback      string    `json:"generated_feedback_text" db:"generated_feedback_text"`
	Score         float64   `json:"generated_compliance_score" db:"generated_compliance_score"`
	UserID        int64     `json:"user_id" db:"user_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
