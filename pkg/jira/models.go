package jira

import "encoding/json"

// searchPayload is the wire shape of a search response. Pointer fields let
// the client distinguish a missing field from a zero value.
type searchPayload struct {
	Total  *int              `json:"total"`
	Issues []json.RawMessage `json:"issues"`
}

// SearchResult is one page of a search. Issues are kept as raw JSON so batch
// files preserve the records exactly as the server sent them.
type SearchResult struct {
	// Total is the collection size as reported with this page. It can grow
	// between pages while a scrape is running.
	Total int

	// Issues holds the raw record objects for this page.
	Issues []json.RawMessage
}

// Issue is the parsed shape of a record, used by the transformation stage.
// Only the fields the pipeline consumes are declared.
type Issue struct {
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

// IssueFields is the nested field map of an issue.
type IssueFields struct {
	Summary        string       `json:"summary"`
	Description    string       `json:"description"`
	Status         *NamedField  `json:"status"`
	Priority       *NamedField  `json:"priority"`
	Assignee       *UserField   `json:"assignee"`
	Reporter       *UserField   `json:"reporter"`
	Created        string       `json:"created"`
	Updated        string       `json:"updated"`
	ResolutionDate string       `json:"resolutiondate"`
	Labels         []string     `json:"labels"`
	Comment        *CommentList `json:"comment"`
}

// NamedField is a nested object whose only consumed attribute is its name
// (status, priority).
type NamedField struct {
	Name string `json:"name"`
}

// UserField is a nested user object (assignee, reporter, comment author).
type UserField struct {
	DisplayName string `json:"displayName"`
}

// CommentList is the nested comment container on an issue.
type CommentList struct {
	Comments []Comment `json:"comments"`
}

// Comment is a single comment on an issue.
type Comment struct {
	Body   string    `json:"body"`
	Author UserField `json:"author"`
}
