package llm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/radvalidate/pkg/models"
)

// Canonical result field names.
const (
	fieldStatus    = "validationStatus"
	fieldScore     = "complianceScore"
	fieldFeedback  = "feedback"
	fieldICD10     = "suggestedICD10Codes"
	fieldCPT       = "suggestedCPTCodes"
	fieldReasoning = "internalReasoning"
)

var requiredFields = []string{fieldStatus, fieldScore, fieldFeedback, fieldICD10, fieldCPT}

// fieldSynonyms maps squashed variants (lower-cased, underscores/spaces/dashes
// removed) onto canonical field names. Applied before any validation runs.
var fieldSynonyms = map[string]string{
	"validationstatus": fieldStatus,
	"status":           fieldStatus,
	"determination":    fieldStatus,
	"outcome":          fieldStatus,

	"compliancescore": fieldScore,
	"score":           fieldScore,

	"feedback":     fieldFeedback,
	"feedbacktext": fieldFeedback,
	"comments":     fieldFeedback,
	"explanation":  fieldFeedback,

	"suggestedicd10codes": fieldICD10,
	"icd10codes":          fieldICD10,
	"icdcodes":            fieldICD10,
	"diagnosiscodes":      fieldICD10,

	"suggestedcptcodes": fieldCPT,
	"cptcodes":          fieldCPT,
	"procedurecodes":    fieldCPT,

	"internalreasoning": fieldReasoning,
	"reasoning":         fieldReasoning,
	"rationale":         fieldReasoning,
	"analysis":          fieldReasoning,
}

// statusSynonyms maps lower-cased status variants onto the closed canonical
// set. Anything outside this table is rejected.
var statusSynonyms = map[string]string{
	"appropriate": models.StatusAppropriate,
	"valid":       models.StatusAppropriate,

	"inappropriate":   models.StatusInappropriate,
	"not appropriate": models.StatusInappropriate,
	"not_appropriate": models.StatusInappropriate,

	"needs_clarification":  models.StatusNeedsClarification,
	"needs clarification":  models.StatusNeedsClarification,
	"needs-clarification":  models.StatusNeedsClarification,
	"clarification needed": models.StatusNeedsClarification,

	"override":   models.StatusOverride,
	"overridden": models.StatusOverride,
}

// MissingRequiredFieldsError names every canonical field that is absent or
// empty after normalization. A parse failure of the raw content is reported
// through the same type, with all required fields listed.
type MissingRequiredFieldsError struct {
	Fields []string
	cause  error
}

func (e *MissingRequiredFieldsError) Error() string {
	msg := fmt.Sprintf("response missing required fields: %s", strings.Join(e.Fields, ", "))
	if e.cause != nil {
		msg += fmt.Sprintf(" (parse error: %v)", e.cause)
	}
	return msg
}

func (e *MissingRequiredFieldsError) Unwrap() error { return e.cause }

// InvalidStatusError reports a status outside the closed set.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid validation status %q, expected one of: %s",
		e.Value, strings.Join(models.ValidStatuses, ", "))
}

// NormalizeAndValidate coerces raw provider content into the canonical
// ValidationResult, rejecting output that does not satisfy the contract.
func NormalizeAndValidate(raw string) (*models.ValidationResult, error) {
	obj, err := parseObject(raw)
	if err != nil {
		return nil, &MissingRequiredFieldsError{Fields: append([]string(nil), requiredFields...), cause: err}
	}

	canonical := remapFields(obj)

	missing := missingFields(canonical)
	if len(missing) > 0 {
		return nil, &MissingRequiredFieldsError{Fields: missing}
	}

	status, err := normalizeStatus(canonical[fieldStatus])
	if err != nil {
		return nil, err
	}

	score, ok := toFloat(canonical[fieldScore])
	if !ok {
		return nil, &MissingRequiredFieldsError{Fields: []string{fieldScore}}
	}

	result := &models.ValidationResult{
		ValidationStatus:    status,
		ComplianceScore:     score,
		Feedback:            strings.TrimSpace(fmt.Sprintf("%v", canonical[fieldFeedback])),
		SuggestedICD10Codes: NormalizeCodeArray(canonical[fieldICD10]),
		SuggestedCPTCodes:   NormalizeCodeArray(canonical[fieldCPT]),
	}
	if reasoning, ok := canonical[fieldReasoning].(string); ok {
		result.InternalReasoning = strings.TrimSpace(reasoning)
	}
	return result, nil
}

// remapFields renames every recognized key variant onto its canonical name.
// Canonical spellings win over synonyms when both are present.
func remapFields(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for key, value := range obj {
		canonical, ok := fieldSynonyms[squashKey(key)]
		if !ok {
			continue
		}
		if _, exists := out[canonical]; exists && squashKey(key) != strings.ToLower(canonical) {
			continue
		}
		out[canonical] = value
	}
	return out
}

func squashKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.NewReplacer("_", "", "-", "", " ", "").Replace(k)
	return k
}

func missingFields(canonical map[string]any) []string {
	var missing []string
	for _, field := range requiredFields {
		value, ok := canonical[field]
		if !ok || value == nil || isEmpty(value) {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)
	return missing
}

// isEmpty treats blank strings as absent. Empty code arrays are allowed: the
// key being present is what matters, and step five normalizes them to an
// empty slice.
func isEmpty(value any) bool {
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}

func normalizeStatus(value any) (string, error) {
	raw := strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	status, ok := statusSynonyms[raw]
	if !ok {
		return "", &InvalidStatusError{Value: fmt.Sprintf("%v", value)}
	}
	return status, nil
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

// NormalizeCodeArray coerces any of the accepted source shapes into []Code:
// an array of {code, description} objects, an array of bare code strings, or
// a single comma-separated string. Empty or null input yields an empty slice,
// never an error.
func NormalizeCodeArray(value any) []models.Code {
	out := []models.Code{}

	switch v := value.(type) {
	case nil:
		return out
	case []any:
		for _, item := range v {
			switch entry := item.(type) {
			case map[string]any:
				code := models.Code{}
				for key, field := range entry {
					switch squashKey(key) {
					case "code":
						code.Code = strings.TrimSpace(fmt.Sprintf("%v", field))
					case "description", "desc":
						code.Description = strings.TrimSpace(fmt.Sprintf("%v", field))
					}
				}
				if code.Code != "" {
					out = append(out, code)
				}
			case string:
				if trimmed := strings.TrimSpace(entry); trimmed != "" {
					out = append(out, models.Code{Code: trimmed})
				}
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, models.Code{Code: trimmed})
			}
		}
	}
	return out
}
