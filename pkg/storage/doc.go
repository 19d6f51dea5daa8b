// Package storage handles the on-disk artifacts of the pipeline: immutable,
// numbered per-project batch files of raw records, and the JSONL training
// data produced from them. All writes go through a temporary file and rename
// so readers never see a partial file.
package storage
