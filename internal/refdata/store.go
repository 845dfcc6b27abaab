// Package refdata resolves extracted keywords against the medical reference
// store and assembles the bounded context blob embedded in prompts. The
// reference store is an external collaborator: partial or empty results are
// normal, and a lookup failure degrades to an empty blob instead of failing
// the pipeline.
package refdata

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// DefaultContextMaxBytes bounds the assembled context blob.
const DefaultContextMaxBytes = 4000

// Snippet is one reference entry matched by term.
type Snippet struct {
	Term    string
	Content string
}

// Store is the reference-data collaborator boundary.
type Store interface {
	// Lookup returns reference snippets for the given terms. Missing terms
	// are simply absent from the result.
	Lookup(ctx context.Context, terms []string) ([]Snippet, error)
}

// SQLStore reads reference snippets from the medical_reference table.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// Lookup implements Store.
func (s *SQLStore) Lookup(ctx context.Context, terms []string) ([]Snippet, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		lowered = append(lowered, strings.ToLower(t))
	}

	const q = `
SELECT term, snippet
FROM medical_reference
WHERE lower(term) = ANY($1)
ORDER BY term`

	rows, err := s.db.QueryContext(ctx, q, pq.Array(lowered))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snippet
	for rows.Next() {
		var sn Snippet
		if err := rows.Scan(&sn.Term, &sn.Content); err != nil {
			return nil, err
		}
		out = append(out, sn)
	}
	return out, rows.Err()
}

// BuildContext concatenates matched reference snippets into one bounded text
// blob. An empty blob is a valid result; lookup errors are logged and
// swallowed so the pipeline degrades to "no context available".
func BuildContext(ctx context.Context, store Store, terms []string, maxBytes int) string {
	if store == nil || len(terms) == 0 {
		return ""
	}
	if maxBytes <= 0 {
		maxBytes = DefaultContextMaxBytes
	}

	snippets, err := store.Lookup(ctx, terms)
	if err != nil {
		log.Warn().Err(err).Int("terms", len(terms)).
			Msg("reference lookup failed, continuing with empty context")
		return ""
	}

	var b strings.Builder
	for _, sn := range snippets {
		line := sn.Term + ": " + sn.Content + "\n"
		if b.Len()+len(line) > maxBytes {
			break
		}
		b.WriteString(line)
	}
	return strings.TrimRight(b.String(), "\n")
}
