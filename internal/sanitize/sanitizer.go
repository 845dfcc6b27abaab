// Package sanitize removes direct identifiers from raw dictation text before
// it is sent to any external provider. Sanitization is deterministic and
// idempotent: placeholders produced by one pass do not match any pattern on a
// second pass.
package sanitize

import (
	"regexp"
)

// Config toggles individual pattern categories. The zero value disables
// everything; use DefaultConfig for the production configuration.
type Config struct {
	RecordNumbers bool `koanf:"record_numbers"`
	NationalIDs   bool `koanf:"national_ids"`
	Phones        bool `koanf:"phones"`
	Dates         bool `koanf:"dates"`
	Names         bool `koanf:"names"`
	Emails        bool `koanf:"emails"`
	URLs          bool `koanf:"urls"`
	Addresses     bool `koanf:"addresses"`
	PostalCodes   bool `koanf:"postal_codes"`
}

// DefaultConfig enables every category.
func DefaultConfig() Config {
	return Config{
		RecordNumbers: true,
		NationalIDs:   true,
		Phones:        true,
		Dates:         true,
		Names:         true,
		Emails:        true,
		URLs:          true,
		Addresses:     true,
		PostalCodes:   true,
	}
}

// rule binds one pattern category to its replacement placeholder. Rules run in
// a fixed order; numeric-identifier rules precede the name rule so a digit
// sequence is never captured as part of a name token.
type rule struct {
	enabled func(Config) bool
	pattern *regexp.Regexp
	repl    string
}

var rules = []rule{
	{
		enabled: func(c Config) bool { return c.RecordNumbers },
		pattern: regexp.MustCompile(`(?i)\b(?:MRN|medical record(?: number)?|record number|account(?: number)?|acct)[#:\s]*\d{5,12}\b`),
		repl:    "[MRN]",
	},
	{
		enabled: func(c Config) bool { return c.NationalIDs },
		pattern: regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		repl:    "[SSN]",
	},
	{
		enabled: func(c Config) bool { return c.Phones },
		pattern: regexp.MustCompile(`(?:\+1[\s.-]?)?\(?\d{3}\)?[\s.-]\d{3}[\s.-]\d{4}\b`),
		repl:    "[PHONE]",
	},
	{
		enabled: func(c Config) bool { return c.Dates },
		pattern: regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
		repl:    "[DATE]",
	},
	{
		enabled: func(c Config) bool { return c.Dates },
		pattern: regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`),
		repl:    "[DATE]",
	},
	{
		enabled: func(c Config) bool { return c.Names },
		pattern: regexp.MustCompile(`\b(?:Dr|Mr|Mrs|Ms|Mx)\.?\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?`),
		repl:    "[NAME]",
	},
	{
		enabled: func(c Config) bool { return c.Names },
		pattern: regexp.MustCompile(`(?i)\b(?:patient(?:'s)? name(?: is)?|name of patient)[:\s]+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?`),
		repl:    "patient [NAME]",
	},
	{
		enabled: func(c Config) bool { return c.Emails },
		pattern: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		repl:    "[EMAIL]",
	},
	{
		enabled: func(c Config) bool { return c.URLs },
		pattern: regexp.MustCompile(`\bhttps?://[^\s<>"]+|\bwww\.[^\s<>"]+`),
		repl:    "[URL]",
	},
	{
		enabled: func(c Config) bool { return c.Addresses },
		pattern: regexp.MustCompile(`\b\d{1,5}\s+(?:[A-Z][a-z]+\s+){1,3}(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Court|Ct|Way|Place|Pl)\b\.?`),
		repl:    "[ADDRESS]",
	},
	{
		// Anchored to a preceding state abbreviation so bare five-digit
		// tokens (CPT codes in dictation) survive.
		enabled: func(c Config) bool { return c.PostalCodes },
		pattern: regexp.MustCompile(`\b([A-Z]{2})\s+\d{5}(?:-\d{4})?\b`),
		repl:    "$1 [ZIP]",
	},
}

// Sanitizer applies the configured pattern categories in order.
type Sanitizer struct {
	cfg Config
}

// New returns a Sanitizer for the given configuration.
func New(cfg Config) *Sanitizer {
	return &Sanitizer{cfg: cfg}
}

// Sanitize replaces every enabled identifier category with its placeholder.
// Unmatched text passes through unchanged and no error path exists.
func (s *Sanitizer) Sanitize(text string) string {
	out := text
	for _, r := range rules {
		if !r.enabled(s.cfg) {
			continue
		}
		out = r.pattern.ReplaceAllString(out, r.repl)
	}
	return out
}

// Sanitize applies the default configuration.
func Sanitize(text string) string {
	return New(DefaultConfig()).Sanitize(text)
}
