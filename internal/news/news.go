package news

import "context"

// MaxHeadlines caps a digest.
const MaxHeadlines = 5

// Headline is one ranked news entry.
type Headline struct {
	Title       string
	Source      string
	URL         string
	Description string
}

// Digest holds headlines in the provider's ranking order.
type Digest struct {
	Headlines []Headline
}

// Provider fetches top headlines for a category.
type Provider interface {
	TopHeadlines(ctx context.Context, category string, limit int) (*Digest, error)
}
