// Package workers runs the server's background jobs.
//
// A [Worker] blocks in Run until its context is cancelled. [Workers] runs
// several of them side by side and waits for all to return.
package workers

import "context"

// Worker is a long-running background job.
type Worker interface {
	Run(ctx context.Context)
}

// SharePurger deletes share records that can no longer be opened.
type SharePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}
