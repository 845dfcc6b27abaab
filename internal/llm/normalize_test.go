package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radvalidate/pkg/models"
)

func TestNormalizeAndValidate_CanonicalFields(t *testing.T) {
	raw := `{
		"validationStatus": "appropriate",
		"complianceScore": 8,
		"feedback": "Study matches guidelines.",
		"suggestedICD10Codes": [{"code": "R10.31", "description": "RLQ pain"}],
		"suggestedCPTCodes": [{"code": "74177", "description": "CT abd/pelvis w contrast"}],
		"internalReasoning": "classic presentation"
	}`

	result, err := NormalizeAndValidate(raw)
	require.NoError(t, err)

	assert.Equal(t, models.StatusAppropriate, result.ValidationStatus)
	assert.Equal(t, 8.0, result.ComplianceScore)
	assert.Equal(t, "Study matches guidelines.", result.Feedback)
	assert.Equal(t, []models.Code{{Code: "R10.31", Description: "RLQ pain"}}, result.SuggestedICD10Codes)
	assert.Equal(t, []models.Code{{Code: "74177", Description: "CT abd/pelvis w contrast"}}, result.SuggestedCPTCodes)
	assert.Equal(t, "classic presentation", result.InternalReasoning)
}

func TestNormalizeAndValidate_SynonymFields(t *testing.T) {
	raw := `{
		"validation_status": "APPROPRIATE",
		"score": "7.5",
		"comments": "ok",
		"icd10_codes": "R10.31",
		"cpt_codes": ["74177"],
		"rationale": "r"
	}`

	result, err := NormalizeAndValidate(raw)
	require.NoError(t, err)

	assert.Equal(t, models.StatusAppropriate, result.ValidationStatus)
	assert.Equal(t, 7.5, result.ComplianceScore)
	assert.Equal(t, "ok", result.Feedback)
	assert.Equal(t, []models.Code{{Code: "R10.31"}}, result.SuggestedICD10Codes)
	assert.Equal(t, []models.Code{{Code: "74177"}}, result.SuggestedCPTCodes)
	assert.Equal(t, "r", result.InternalReasoning)
}

func TestNormalizeAndValidate_MarkdownFence(t *testing.T) {
	raw := "Here is my assessment:\n```json\n" +
		`{"status": "inappropriate", "score": 2, "feedback": "wrong modality",
		  "icd10_codes": [], "cpt_codes": []}` + "\n```\nLet me know if you need more."

	result, err := NormalizeAndValidate(raw)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInappropriate, result.ValidationStatus)
	assert.Empty(t, result.SuggestedICD10Codes)
}

func TestNormalizeAndValidate_RepairsMalformedJSON(t *testing.T) {
	// Trailing comma, a provider habit.
	raw := `{"status": "appropriate", "score": 8, "feedback": "fine",
		"icd10_codes": ["R10.31"], "cpt_codes": ["74177"],}`

	result, err := NormalizeAndValidate(raw)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAppropriate, result.ValidationStatus)
}

func TestNormalizeAndValidate_MissingFeedbackNamed(t *testing.T) {
	raw := `{"status": "appropriate", "score": 8,
		"icd10_codes": ["R10.31"], "cpt_codes": ["74177"]}`

	_, err := NormalizeAndValidate(raw)
	var missing *MissingRequiredFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"feedback"}, missing.Fields)
}

func TestNormalizeAndValidate_ParseFailureListsAllFields(t *testing.T) {
	_, err := NormalizeAndValidate("complete nonsense with no braces")
	var missing *MissingRequiredFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Len(t, missing.Fields, 5)
}

func TestNormalizeAndValidate_StatusSynonymClosure(t *testing.T) {
	cases := map[string]string{
		"appropriate":          models.StatusAppropriate,
		"APPROPRIATE":          models.StatusAppropriate,
		"inappropriate":        models.StatusInappropriate,
		"not appropriate":      models.StatusInappropriate,
		"needs clarification":  models.StatusNeedsClarification,
		"NEEDS_CLARIFICATION":  models.StatusNeedsClarification,
		"needs-clarification":  models.StatusNeedsClarification,
		"clarification needed": models.StatusNeedsClarification,
		"override":             models.StatusOverride,
		"overridden":           models.StatusOverride,
	}

	for in, want := range cases {
		raw := `{"status": "` + in + `", "score": 5, "feedback": "f",
			"icd10_codes": [], "cpt_codes": []}`
		result, err := NormalizeAndValidate(raw)
		require.NoError(t, err, "status %q", in)
		assert.Equal(t, want, result.ValidationStatus, "status %q", in)
	}
}

func TestNormalizeAndValidate_UnknownStatusRejected(t *testing.T) {
	raw := `{"status": "maybe", "score": 5, "feedback": "f",
		"icd10_codes": [], "cpt_codes": []}`

	_, err := NormalizeAndValidate(raw)
	var invalid *InvalidStatusError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "maybe", invalid.Value)
}

func TestNormalizeCodeArray_RoundTrip(t *testing.T) {
	want := []models.Code{{Code: "R10.31"}, {Code: "K35.80"}}

	objects := NormalizeCodeArray([]any{
		map[string]any{"code": "R10.31", "description": ""},
		map[string]any{"code": "K35.80"},
	})
	strs := NormalizeCodeArray([]any{"R10.31", "K35.80"})
	csv := NormalizeCodeArray("R10.31, K35.80")

	// Descriptions default empty, so all three shapes converge.
	assert.Equal(t, want, objects)
	assert.Equal(t, want, strs)
	assert.Equal(t, want, csv)
}

func TestNormalizeCodeArray_EmptyNeverErrors(t *testing.T) {
	assert.Empty(t, NormalizeCodeArray(nil))
	assert.Empty(t, NormalizeCodeArray([]any{}))
	assert.Empty(t, NormalizeCodeArray(""))
	assert.Empty(t, NormalizeCodeArray("  ,  , "))
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, ExtractJSON(`{"a": 1}`))
	assert.Equal(t, `{"a": 1}`, ExtractJSON("prose before {\"a\": 1} prose after"))
	assert.Empty(t, ExtractJSON("no json here"))
}
