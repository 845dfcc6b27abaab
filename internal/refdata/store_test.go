package refdata

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubStore struct {
	snippets []Snippet
	err      error
	calls    int
}

func (s *stubStore) Lookup(ctx context.Context, terms []string) ([]Snippet, error) {
	s.calls++
	return s.snippets, s.err
}

func TestBuildContext_ConcatenatesSnippets(t *testing.T) {
	store := &stubStore{snippets: []Snippet{
		{Term: "appendicitis", Content: "CT abdomen/pelvis with contrast is first-line."},
		{Term: "rlq", Content: "Right lower quadrant."},
	}}

	blob := BuildContext(context.Background(), store, []string{"appendicitis", "rlq"}, 0)
	assert.Contains(t, blob, "appendicitis: CT abdomen/pelvis with contrast is first-line.")
	assert.Contains(t, blob, "rlq: Right lower quadrant.")
	assert.Equal(t, 1, store.calls)
}

func TestBuildContext_LookupErrorDegradesToEmpty(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	blob := BuildContext(context.Background(), store, []string{"pain"}, 0)
	assert.Empty(t, blob)
}

func TestBuildContext_EmptyResultIsValid(t *testing.T) {
	store := &stubStore{}
	assert.Empty(t, BuildContext(context.Background(), store, []string{"pain"}, 0))
}

func TestBuildContext_NoTermsSkipsLookup(t *testing.T) {
	store := &stubStore{}
	assert.Empty(t, BuildContext(context.Background(), store, nil, 0))
	assert.Zero(t, store.calls)
}

func TestBuildContext_Bounded(t *testing.T) {
	long := strings.Repeat("x", 100)
	var snippets []Snippet
	for i := 0; i < 100; i++ {
		snippets = append(snippets, Snippet{Term: "t", Content: long})
	}
	store := &stubStore{snippets: snippets}

	blob := BuildContext(context.Background(), store, []string{"t"}, 500)
	assert.LessOrEqual(t, len(blob), 500)
	assert.NotEmpty(t, blob)
}
