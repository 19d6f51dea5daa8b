// Package retry provides an explicit retry policy for transport calls:
// a bounded attempt budget, pluggable backoff between attempts, and a
// predicate deciding which error categories are worth retrying.
//
// The policy is deliberately decoupled from the HTTP client. Callers wrap
// individual requests:
//
//	resp, err := retry.DoWithResult(func() (*jira.SearchResult, error) {
//		return client.SearchIssues(ctx, "KAFKA", 0)
//	}, policy)
//
// Rate limiting (HTTP 429) is intentionally not handled here; the scraper
// treats it as an expected condition with its own fixed cooldown.
package retry
