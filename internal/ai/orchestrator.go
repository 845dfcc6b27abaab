package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/radvalidate/internal/metrics"
	"github.com/radvalidate/pkg/models"
)

// DefaultCallTimeout bounds each individual provider call.
const DefaultCallTimeout = 30 * time.Second

// AllProvidersFailedError is the terminal failure of the fallback chain. It
// carries the last underlying error for context.
type AllProvidersFailedError struct {
	Attempts int
	Last     error
}

func (e *AllProvidersFailedError) Error() string {
	return fmt.Sprintf("all %d providers failed, last error: %v", e.Attempts, e.Last)
}

func (e *AllProvidersFailedError) Unwrap() error { return e.Last }

// Orchestrator issues a prompt to the configured providers in fixed priority
// order, returning the first successful response. Providers are tried
// strictly sequentially; worst-case cost is bounded by n x timeout and no
// redundant paid calls are made.
type Orchestrator struct {
	providers []Provider
	timeout   time.Duration
	log       zerolog.Logger
}

// NewOrchestrator builds an orchestrator over providers in priority order.
func NewOrchestrator(providers []Provider, timeout time.Duration, logger zerolog.Logger) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Orchestrator{providers: providers, timeout: timeout, log: logger}
}

// CallWithFallback tries each provider exactly once. A timeout is treated
// identically to a transport or HTTP failure: log, advance to the next
// provider. Only when every provider has failed does it return
// AllProvidersFailedError.
func (o *Orchestrator) CallWithFallback(ctx context.Context, prompt string) (*models.ProviderResponse, error) {
	if len(o.providers) == 0 {
		return nil, &AllProvidersFailedError{Attempts: 0, Last: fmt.Errorf("no providers configured")}
	}

	var lastErr error
	for i, p := range o.providers {
		callCtx, cancel := context.WithTimeout(ctx, o.timeout)
		start := time.Now()
		resp, err := p.Call(callCtx, prompt)
		cancel()
		elapsed := time.Since(start)

		if err == nil {
			metrics.RecordProviderCall(p.Name(), "ok", elapsed)
			o.log.Info().
				Str("provider", p.Name()).
				Str("model", p.Model()).
				Int("position", i+1).
				Dur("latency", elapsed).
				Msg("provider call succeeded")
			return resp, nil
		}

		metrics.RecordProviderCall(p.Name(), "error", elapsed)
		o.log.Warn().
			Err(err).
			Str("provider", p.Name()).
			Int("position", i+1).
			Int("remaining", len(o.providers)-i-1).
			Msg("provider call failed, advancing to next provider")
		lastErr = err
	}

	metrics.RecordFallbackExhausted()
	return nil, &AllProvidersFailedError{Attempts: len(o.providers), Last: lastErr}
}
