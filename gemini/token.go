package gemini

import (
	"context"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/penalty"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ penalty.TokenCounter = (*TokenCounter)(nil)

// TokenCounter measures document text against the prompt budget with the
// local Gemini tokenizer. A settlement document usually backs several
// actions, so counts are kept per text hash for the life of the counter.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer

	mu     sync.Mutex
	counts map[uint64]int
}

// NewTokenCounter loads the local tokenizer for model, or for DefaultModel
// when model is empty. Loading fetches the vocabulary on first use.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer for %s: %w", model, err)
	}
	return &TokenCounter{tok: tok, counts: make(map[uint64]int)}, nil
}

// CountTokens returns the number of tokens text occupies as a user turn.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	key := xxhash.Sum64String(text)
	tc.mu.Lock()
	n, ok := tc.counts[key]
	tc.mu.Unlock()
	if ok {
		return n, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	if err != nil {
		return 0, err
	}
	n = int(result.TotalTokens)

	tc.mu.Lock()
	tc.counts[key] = n
	tc.mu.Unlock()
	return n, nil
}
