// Package media talks to the media-management service that owns the catalog
// and the acquisition queue.
package media

import "context"

// Kind is the catalog media type.
type Kind string

const (
	Movie  Kind = "movie"
	Series Kind = "tv"
)

// ParseKind maps a button payload to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case Movie, Series:
		return Kind(s), true
	}
	return "", false
}

// Candidate is one catalog search hit. PosterPath is empty when the catalog
// has no poster for it.
type Candidate struct {
	ID         int64
	Title      string
	Kind       Kind
	PosterPath string
}

// Client is what the conversation needs from the catalog service. Failures
// never surface as errors: implementations log them and return an empty
// result, false or zero.
type Client interface {
	// Search returns the hits for query whose kind equals kind, in catalog order.
	Search(ctx context.Context, query string, kind Kind) []Candidate
	// SubmitRequest asks for c to be acquired, scoped to seasons for series.
	SubmitRequest(ctx context.Context, c Candidate, seasons []int) bool
	// SeasonCount returns how many seasons the series has.
	SeasonCount(ctx context.Context, seriesID int64) int
}
