// Package keywords extracts categorized medical terms from sanitized
// dictation text. Matching is whole-word and case-insensitive against static
// term lists, plus a separate pattern scan for diagnosis/procedure code
// tokens. The result is a deduplicated, lower-cased set; ordering carries no
// meaning.
package keywords

import (
	"regexp"
	"sort"
	"strings"

	"github.com/radvalidate/pkg/models"
)

var anatomyTerms = []string{
	"head", "brain", "skull", "sinus", "orbit", "neck", "cervical", "thoracic",
	"lumbar", "spine", "chest", "lung", "heart", "mediastinum", "abdomen",
	"pelvis", "liver", "gallbladder", "pancreas", "spleen", "kidney", "bladder",
	"prostate", "uterus", "ovary", "appendix", "colon", "shoulder", "elbow",
	"wrist", "hand", "hip", "femur", "knee", "tibia", "ankle", "foot",
	"extremity", "aorta", "carotid",
}

var modalityTerms = []string{
	"ct", "mri", "mr", "x-ray", "xray", "radiograph", "ultrasound", "sonogram",
	"doppler", "mammogram", "mammography", "pet", "fluoroscopy", "angiography",
	"angiogram", "arthrogram", "myelogram", "dexa", "nuclear", "contrast",
}

var symptomTerms = []string{
	"pain", "fever", "nausea", "vomiting", "headache", "dizziness", "syncope",
	"weakness", "numbness", "tingling", "swelling", "edema", "cough",
	"dyspnea", "hemoptysis", "hematuria", "bleeding", "trauma", "injury",
	"fracture", "mass", "lesion", "nodule", "tumor", "seizure", "vertigo",
	"palpitations", "fatigue", "appendicitis", "diverticulitis", "cholecystitis",
	"pancreatitis", "pneumonia", "obstruction", "stenosis", "radiculopathy",
}

var abbreviationTerms = []string{
	"rlq", "llq", "ruq", "luq", "r/o", "s/p", "hx", "fx", "sob", "cp", "htn",
	"dm", "ca", "mets", "wnl", "prn", "yo", "f/u", "w/", "w/o",
}

// Diagnosis/procedure code tokens: ICD-10 (letter, digit, alphanumeric, with
// optional dotted extension) and five-digit CPT codes.
var (
	icd10Pattern = regexp.MustCompile(`\b[A-TV-Za-tv-z][0-9][0-9A-Za-z](?:\.[0-9A-Za-z]{1,4})?\b`)
	cptPattern   = regexp.MustCompile(`\b\d{5}\b`)
)

// termPatterns maps each known term to its compiled whole-word matcher.
var termPatterns = buildTermPatterns()

func buildTermPatterns() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp)
	for _, list := range [][]string{anatomyTerms, modalityTerms, symptomTerms, abbreviationTerms} {
		for _, term := range list {
			expr := `(?i)\b` + regexp.QuoteMeta(term)
			// A \b after a trailing slash would demand a following word
			// character, so "w/" would match inside "w/o" and never
			// standalone. Slash-terminated terms close on any
			// non-alphanumeric or end of text instead.
			if endsWithWordChar(term) {
				expr += `\b`
			} else {
				expr += `(?:[^0-9A-Za-z]|$)`
			}
			out[term] = regexp.MustCompile(expr)
		}
	}
	return out
}

func endsWithWordChar(term string) bool {
	if term == "" {
		return false
	}
	c := term[len(term)-1]
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// Extract scans sanitized text and returns the deduplicated keyword set.
func Extract(text string) []models.Keyword {
	seen := make(map[string]struct{})

	for term, pattern := range termPatterns {
		if pattern.MatchString(text) {
			seen[term] = struct{}{}
		}
	}
	for _, match := range icd10Pattern.FindAllString(text, -1) {
		seen[strings.ToLower(match)] = struct{}{}
	}
	for _, match := range cptPattern.FindAllString(text, -1) {
		seen[match] = struct{}{}
	}

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	// Sorted only so output is stable for logging; the set itself is unordered.
	sort.Strings(terms)

	out := make([]models.Keyword, 0, len(terms))
	for _, term := range terms {
		out = append(out, models.Keyword{Term: term, Category: Categorize(term)})
	}
	return out
}

// Categorize classifies a single term: code pattern first, then term-list
// membership, defaulting to symptom when nothing matches. The symptom default
// is a weak fallback inherited from the source behavior, not a guarantee that
// the term is in fact a symptom.
func Categorize(term string) string {
	t := strings.ToLower(strings.TrimSpace(term))

	if cptPattern.MatchString(t) || icd10Pattern.MatchString(t) {
		return models.CategoryCode
	}
	if containsTerm(anatomyTerms, t) {
		return models.CategoryAnatomy
	}
	if containsTerm(modalityTerms, t) {
		return models.CategoryModality
	}
	if containsTerm(abbreviationTerms, t) {
		return models.CategoryAbbreviation
	}
	return models.CategorySymptom
}

func containsTerm(list []string, term string) bool {
	for _, t := range list {
		if t == term {
			return true
		}
	}
	return false
}

// Terms returns just the term strings of a keyword set, for collaborators
// that take a plain keyword list.
func Terms(keywords []models.Keyword) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, k.Term)
	}
	return out
}
