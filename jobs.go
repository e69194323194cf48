package framequery

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// GetJob fetches the current snapshot of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*Job, error) {
	data, err := c.request(ctx, http.MethodGet, "/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, err
	}
	return parseJob(toMap(data)), nil
}

// ListJobsOptions filters and paginates ListJobs.
type ListJobsOptions struct {
	Limit  int
	Cursor string
	Status string
}

// ListJobs lists jobs newest-first. Pass the page's NextCursor back as
// Cursor to fetch the next page.
func (c *Client) ListJobs(ctx context.Context, opts *ListJobsOptions) (*JobPage, error) {
	path := "/jobs"
	params := url.Values{}
	if opts != nil {
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Cursor != "" {
			params.Set("cursor", opts.Cursor)
		}
		if opts.Status != "" {
			params.Set("status", opts.Status)
		}
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	raw, err := c.requestRaw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	page := &JobPage{NextCursor: stringField(raw, "nextCursor")}
	if items, ok := raw["data"].([]any); ok {
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				page.Jobs = append(page.Jobs, *parseJob(m))
			}
		}
	}
	return page, nil
}

// GetQuota returns the account's plan and remaining credit.
func (c *Client) GetQuota(ctx context.Context) (*Quota, error) {
	data, err := c.request(ctx, http.MethodGet, "/quota", nil)
	if err != nil {
		return nil, err
	}
	return parseQuota(toMap(data)), nil
}
