package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radvalidate/pkg/models"
)

func TestCallWithFallback_FirstSuccessWins(t *testing.T) {
	a := &StubProvider{ProviderName: "openai", ModelName: "gpt-4o", Content: "ok"}
	b := &StubProvider{ProviderName: "claude", ModelName: "claude-3"}

	o := NewOrchestrator([]Provider{a, b}, time.Second, zerolog.Nop())
	resp, err := o.CallWithFallback(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "openai", resp.Provider)
	assert.Equal(t, 1, a.Calls)
	assert.Zero(t, b.Calls, "later providers must not be called after a success")
}

func TestCallWithFallback_Ordering(t *testing.T) {
	a := &StubProvider{ProviderName: "a", Err: errors.New("boom")}
	b := &StubProvider{ProviderName: "b", Err: errors.New("boom")}
	c := &StubProvider{ProviderName: "c", ModelName: "m3", Content: "ok"}

	o := NewOrchestrator([]Provider{a, b, c}, time.Second, zerolog.Nop())
	resp, err := o.CallWithFallback(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "c", resp.Provider)
	assert.Equal(t, "m3", resp.Model)
	assert.Equal(t, 1, a.Calls)
	assert.Equal(t, 1, b.Calls)
	assert.Equal(t, 1, c.Calls)
}

func TestCallWithFallback_Exhaustion(t *testing.T) {
	last := errors.New("rate limited")
	a := &StubProvider{ProviderName: "a", Err: errors.New("unavailable")}
	b := &StubProvider{ProviderName: "b", Err: last}

	o := NewOrchestrator([]Provider{a, b}, time.Second, zerolog.Nop())
	_, err := o.CallWithFallback(context.Background(), "prompt")

	var allFailed *AllProvidersFailedError
	require.ErrorAs(t, err, &allFailed)
	assert.Equal(t, 2, allFailed.Attempts)
	assert.ErrorIs(t, err, last, "the last underlying error must be preserved")
	assert.Equal(t, 1, a.Calls, "no provider may be retried")
	assert.Equal(t, 1, b.Calls)
}

func TestCallWithFallback_TimeoutAdvances(t *testing.T) {
	slow := &slowProvider{delay: 200 * time.Millisecond}
	fast := &StubProvider{ProviderName: "fast", Content: "ok"}

	o := NewOrchestrator([]Provider{slow, fast}, 20*time.Millisecond, zerolog.Nop())
	resp, err := o.CallWithFallback(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "fast", resp.Provider)
}

func TestCallWithFallback_NoProviders(t *testing.T) {
	o := NewOrchestrator(nil, time.Second, zerolog.Nop())
	_, err := o.CallWithFallback(context.Background(), "prompt")

	var allFailed *AllProvidersFailedError
	require.ErrorAs(t, err, &allFailed)
	assert.Zero(t, allFailed.Attempts)
}

// slowProvider blocks until its delay elapses or the call context is
// cancelled, mimicking a hung upstream.
type slowProvider struct {
	delay time.Duration
}

func (s *slowProvider) Name() string  { return "slow" }
func (s *slowProvider) Model() string { return "slow-model" }

func (s *slowProvider) Call(ctx context.Context, prompt string) (*models.ProviderResponse, error) {
	select {
	case <-time.After(s.delay):
		return &models.ProviderResponse{Provider: "slow", Content: "late"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestUsageFromGenerationInfo(t *testing.T) {
	p, c, total := usageFromGenerationInfo(map[string]any{
		"PromptTokens":     120,
		"CompletionTokens": 30,
		"TotalTokens":      150,
	})
	assert.Equal(t, 120, p)
	assert.Equal(t, 30, c)
	assert.Equal(t, 150, total)

	// Anthropic-style keys and a missing total.
	p, c, total = usageFromGenerationInfo(map[string]any{
		"InputTokens":  float64(80),
		"OutputTokens": float64(20),
	})
	assert.Equal(t, 80, p)
	assert.Equal(t, 20, c)
	assert.Equal(t, 100, total)

	p, c, total = usageFromGenerationInfo(nil)
	assert.Zero(t, p)
	assert.Zero(t, c)
	assert.Zero(t, total)
}
