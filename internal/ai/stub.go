package ai

import (
	"context"

	"github.com/radvalidate/pkg/models"
)

// StubProvider is a fixed-response Provider for tests and dry runs.
type StubProvider struct {
	ProviderName string
	ModelName    string
	Content      string
	Err          error

	// Calls counts how many times Call was invoked.
	Calls int
}

func (s *StubProvider) Name() string  { return s.ProviderName }
func (s *StubProvider) Model() string { return s.ModelName }

func (s *StubProvider) Call(ctx context.Context, prompt string) (*models.ProviderResponse, error) {
	s.Calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return &models.ProviderResponse{
		Provider: s.ProviderName,
		Model:    s.ModelName,
		Content:  s.Content,
	}, nil
}
