package mock

import (
	"context"

	"github.com/fwojciec/penalty"
)

var _ penalty.Asker = (*Asker)(nil)

// Asker is a mock implementation of penalty.Asker.
type Asker struct {
	AskFn func(ctx context.Context, query penalty.SearchQuery, question string) (string, error)
}

func (a *Asker) Ask(ctx context.Context, query penalty.SearchQuery, question string) (string, error) {
	return a.AskFn(ctx, query, question)
}
