package service

import (
	"context"
	"errors"
	"fmt"
)

// stubEmbedder returns canned vectors keyed by exact text. Unknown texts
// fail loudly so fixtures stay honest.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	failOn  map[string]bool
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.failOn[text] {
		return nil, errors.New("embed failed")
	}
	v, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no stub vector for %q", text)
	}
	return v, nil
}

// stubGenerator counts calls and either delegates to fn or returns the
// fixed response/err pair.
type stubGenerator struct {
	response string
	err      error
	calls    int
	fn       func(ctx context.Context, prompt string) (string, error)

	lastPrompt string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.fn != nil {
		return s.fn(ctx, prompt)
	}
	return s.response, s.err
}

// axis returns a unit vector along the given axis of a dim-dimensional
// space. Orthogonal axes give cosine similarity 0, identical axes 1.
func axis(dim, i int) []float32 {
	v := make([]float32, dim)
	v[i] = 1
	return v
}

// blend mixes two axis-aligned unit vectors; weights need not normalize,
// cosine similarity ignores magnitude.
func blend(dim, i, j int, wi, wj float32) []float32 {
	v := make([]float32, dim)
	v[i] = wi
	v[j] = wj
	return v
}
