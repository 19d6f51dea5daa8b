package scraper

import (
	"context"

	"jiraminer/pkg/jira"
)

// SearchClient is the transport dependency of the scraper. *jira.Client
// satisfies it; tests substitute scripted fakes.
type SearchClient interface {
	SearchIssues(ctx context.Context, projectKey string, startAt int) (*jira.SearchResult, error)
	PageSize() int
}
