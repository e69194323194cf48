package framequery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/framequery/framequery-go/retry"
)

// ProgressObserver receives each job snapshot observed while polling. It is
// invoked synchronously between the fetch and the terminal-state checks; a
// non-nil error aborts the poll and is returned to the caller unchanged.
type ProgressObserver interface {
	OnProgress(job *Job) error
}

// ProgressFunc adapts a function to ProgressObserver.
type ProgressFunc func(job *Job) error

func (f ProgressFunc) OnProgress(job *Job) error { return f(job) }

// PollJob polls a job until it reaches a terminal state and maps the final
// snapshot to a ProcessingResult. Use it to resume waiting on a job created
// by an earlier Upload.
func (c *Client) PollJob(ctx context.Context, jobID string, opts *ProcessOptions) (*ProcessingResult, error) {
	return c.poll(ctx, jobID, opts)
}

func (c *Client) poll(ctx context.Context, jobID string, opts *ProcessOptions) (*ProcessingResult, error) {
	interval := DefaultPollInterval
	timeout := DefaultPollTimeout
	var observer ProgressObserver
	if opts != nil {
		if opts.PollInterval > 0 {
			interval = opts.PollInterval
		}
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		observer = opts.Observer
	}

	// Wall-clock budget, fixed once at entry.
	deadline := time.Now().Add(timeout)

	for {
		job, err := c.GetJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		c.metrics.observePoll()
		c.logger.Debug("job polled",
			zap.String("job_id", jobID),
			zap.String("status", job.Status),
			zap.Float64("eta_seconds", job.ETASeconds))

		if observer != nil {
			if err := observer.OnProgress(job); err != nil {
				return nil, err
			}
		}

		if job.IsFailed() {
			return nil, &Error{
				Code:    ErrJobFailed,
				Message: jobFailedMessage(jobID, stringField(job.Raw, "errorMessage")),
				JobID:   jobID,
			}
		}
		if job.IsComplete() {
			return parseResult(job.Raw), nil
		}

		// Terminal checks come first: a job observed done exactly at the
		// deadline still succeeds.
		if time.Now().After(deadline) {
			return nil, &Error{
				Code:    ErrTimeout,
				Message: fmt.Sprintf("timed out after %s waiting for job %s", timeout, jobID),
				JobID:   jobID,
			}
		}

		wait := retry.NextPollInterval(interval, job.ETASeconds)
		if err := sleepCtx(ctx, wait); err != nil {
			code := ErrTransport
			if errors.Is(err, context.DeadlineExceeded) {
				code = ErrTimeout
			}
			return nil, &Error{
				Code:    code,
				Message: fmt.Sprintf("waiting for job %s", jobID),
				JobID:   jobID,
				Cause:   err,
			}
		}
	}
}

func jobFailedMessage(jobID, serverMsg string) string {
	if serverMsg == "" {
		return fmt.Sprintf("job %s failed", jobID)
	}
	return fmt.Sprintf("job %s failed: %s", jobID, serverMsg)
}
