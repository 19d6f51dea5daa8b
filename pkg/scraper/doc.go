// Package scraper drives exhaustive retrieval of a project's issues from the
// remote search API, one page at a time and strictly in offset order.
//
// Progress is checkpointed after every page: the page's raw records are
// persisted as a numbered batch file first, then the checkpoint is advanced,
// so an interrupted run can always resume from a checkpoint that corresponds
// to a real, flushed batch.
//
// Failure handling distinguishes three cases. Transient transport errors are
// retried with exponential backoff up to a configured budget. A 429 response
// triggers a fixed cooldown and a re-issue of the same page request, outside
// the retry budget. Any other non-2xx status or malformed response aborts
// the run for that project, leaving the last-good checkpoint intact.
package scraper
