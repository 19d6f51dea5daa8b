package jira

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// SearchPath is the search endpoint of the Jira REST API
	SearchPath = "/search"

	// MaxPageSize is the largest page the public API will serve
	MaxPageSize = 1000
)

// SearchURL constructs the URL for one page of a project search: a JQL
// filter on the project key, the field selection list, a zero-based start
// offset, the page size and an expansion flag for nested comment data.
func SearchURL(baseURL, projectKey string, fields []string, startAt, maxResults int, expand string) string {
	if maxResults > MaxPageSize {
		maxResults = MaxPageSize
	}

	params := url.Values{}
	params.Set("jql", fmt.Sprintf("project=%s", projectKey))
	params.Set("fields", strings.Join(fields, ","))
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(maxResults))
	if expand != "" {
		params.Set("expand", expand)
	}

	return fmt.Sprintf("%s%s?%s", strings.TrimRight(baseURL, "/"), SearchPath, params.Encode())
}

// IsValidProjectKey checks a project key against Jira naming rules: upper
// case letters and digits, starting with a letter.
func IsValidProjectKey(key string) bool {
	if key == "" || len(key) > 10 {
		return false
	}
	if key[0] < 'A' || key[0] > 'Z' {
		return false
	}
	for _, char := range key {
		if !((char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9')) {
			return false
		}
	}
	return true
}

// SanitizeProjectKey normalizes operator input into a project key.
func SanitizeProjectKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
