package penalty

import "context"

// Asker provides natural language question answering over enforcement documents.
type Asker interface {
	// Ask answers question using the documents of the records selected by query.
	// Returns ENOTFOUND if the query selects no document with text.
	Ask(ctx context.Context, query SearchQuery, question string) (string, error)
}

// TokenCounter counts model tokens in text.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
