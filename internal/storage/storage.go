// Package storage persists poll-run history.
package storage

import (
	"context"
	"time"
)

// PollRun records one background poll execution.
type PollRun struct {
	// ID is a generated UUID.
	ID string `json:"id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"startedAt"`

	// DurationMs is the wall-clock run time in milliseconds.
	DurationMs int64 `json:"durationMs"`

	// PrivateOK counts private images that resolved to a tag.
	PrivateOK int `json:"privateOk"`

	// PrivateErr counts private images that recorded an error string.
	PrivateErr int `json:"privateErr"`

	// MirrorRepos counts mirrors queried.
	MirrorRepos int `json:"mirrorRepos"`

	// MirrorReleases counts dated releases found across all mirrors.
	MirrorReleases int `json:"mirrorReleases"`
}

// Storage persists poll runs.
type Storage interface {
	// RecordPollRun saves one completed run.
	RecordPollRun(ctx context.Context, run PollRun) error

	// ListPollRuns returns the most recent runs, newest first,
	// capped at limit.
	ListPollRuns(ctx context.Context, limit int) ([]PollRun, error)

	// Close releases the underlying database.
	Close() error
}
