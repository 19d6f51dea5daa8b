// Package jira is a minimal client for the Jira REST search API. It fetches
// pages of issues for a project and keeps the records as raw JSON so the
// storage layer can persist them byte-for-byte. Errors are categorized with
// the pkg/errors taxonomy so callers can tell transient transport failures
// from rate limiting and fatal response errors.
package jira
