package prompts

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/radvalidate/pkg/models"
)

// Template placeholders.
const (
	varDictation = "{{DICTATION_TEXT}}"
	varContext   = "{{DATABASE_CONTEXT}}"
	varWordLimit = "{{WORD_LIMIT}}"
)

// Branch markers: the standard block renders for ordinary validations, the
// override block renders when a clinician is overriding a prior
// non-appropriate determination.
var (
	standardBlock = regexp.MustCompile(`(?s)\{\{#STANDARD\}\}(.*?)\{\{/STANDARD\}\}`)
	overrideBlock = regexp.MustCompile(`(?s)\{\{#OVERRIDE\}\}(.*?)\{\{/OVERRIDE\}\}`)
)

// Construct merges the template, sanitized dictation, context blob, word
// limit, and override flag into one prompt string. The word limit only
// constrains the instruction text embedded in the prompt; nothing enforces it
// mechanically on the model's output.
func Construct(tpl *models.PromptTemplate, sanitized, contextBlob string, wordLimit int, isOverride bool) string {
	body := tpl.ContentTemplate

	if isOverride {
		body = standardBlock.ReplaceAllString(body, "")
		body = overrideBlock.ReplaceAllString(body, "$1")
	} else {
		body = overrideBlock.ReplaceAllString(body, "")
		body = standardBlock.ReplaceAllString(body, "$1")
	}

	if wordLimit <= 0 {
		wordLimit = tpl.WordLimit
	}

	body = strings.ReplaceAll(body, varDictation, sanitized)
	body = strings.ReplaceAll(body, varContext, contextBlob)
	body = strings.ReplaceAll(body, varWordLimit, strconv.Itoa(wordLimit))

	return strings.TrimSpace(body)
}

// DefaultTemplate mirrors the production prompt shape so the pipeline can run
// standalone when no template store is configured.
func DefaultTemplate() *models.PromptTemplate {
	return &models.PromptTemplate{
		Name:      "default_validation",
		WordLimit: 200,
		Active:    true,
		ContentTemplate: `You are a radiology clinical decision support assistant. Evaluate whether the
requested imaging study is appropriate for the clinical indication described.

{{#STANDARD}}
Assess the dictation against accepted appropriateness guidelines and assign a
compliance score from 1 (clearly inappropriate) to 9 (clearly appropriate).
{{/STANDARD}}
{{#OVERRIDE}}
The ordering clinician is explicitly overriding a prior non-appropriate
determination. Evaluate the stated override justification and assign a
compliance score reflecting the strength of that justification.
{{/OVERRIDE}}

Reference data:
{{DATABASE_CONTEXT}}

Dictation:
{{DICTATION_TEXT}}

Respond with JSON only, no surrounding prose, in this shape:
{
  "validationStatus": "appropriate | inappropriate | needs_clarification | override",
  "complianceScore": 1-9,
  "feedback": "guidance for the ordering clinician, at most {{WORD_LIMIT}} words",
  "suggestedICD10Codes": [{"code": "...", "description": "..."}],
  "suggestedCPTCodes": [{"code": "...", "description": "..."}],
  "internalReasoning": "brief rationale"
}`,
	}
}
