package service

import (
	"context"
	"errors"
)

// ErrServiceUnavailable marks a request that could not be triaged at all
// because the embedding provider is unreachable. It is the only per-request
// failure surfaced to the caller; everything else degrades to a fallback.
var ErrServiceUnavailable = errors.New("embedding service unavailable")

// Embedder maps a text string to a fixed-dimensionality vector. Used by the
// classifier and the knowledge index, at startup and per request.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces free text from a prompt. Its output is treated as an
// opaque string; failures are recovered locally by the responder.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
