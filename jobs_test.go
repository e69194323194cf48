package framequery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/job%20one", r.URL.EscapedPath(), "job id is path-escaped")
		w.Write([]byte(`{"data":{"jobId":"job one","status":"PROCESSING","estimatedCompletionTimeSeconds":45}}`))
	}))
	defer srv.Close()
	client := newTestClient(t, srv.URL)

	job, err := client.GetJob(context.Background(), "job one")
	require.NoError(t, err)
	assert.Equal(t, "job one", job.ID)
	assert.Equal(t, 45.0, job.ETASeconds)
}

func TestListJobs(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(`{
			"data": [
				{"jobId":"a","status":"COMPLETED","originalFilename":"a.mp4"},
				{"jobId":"b","status":"FAILED"}
			],
			"nextCursor": "cursor-2"
		}`))
	}))
	defer srv.Close()
	client := newTestClient(t, srv.URL)

	page, err := client.ListJobs(context.Background(), &ListJobsOptions{Limit: 2, Status: "COMPLETED", Cursor: "cursor-1"})
	require.NoError(t, err)

	assert.Equal(t, "cursor=cursor-1&limit=2&status=COMPLETED", query)
	require.Len(t, page.Jobs, 2)
	assert.Equal(t, "a", page.Jobs[0].ID)
	assert.Equal(t, "a.mp4", page.Jobs[0].Filename)
	assert.True(t, page.Jobs[1].IsFailed())
	assert.Equal(t, "cursor-2", page.NextCursor)
	assert.True(t, page.HasMore())
}

func TestListJobs_NoOptionsNoQuery(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()
	client := newTestClient(t, srv.URL)

	page, err := client.ListJobs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rawQuery)
	assert.Empty(t, page.Jobs)
	assert.False(t, page.HasMore())
}

func TestGetQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quota", r.URL.Path)
		w.Write([]byte(`{"data":{"plan":"pro","includedHours":10,"creditsBalanceHours":3.5,"resetDate":"2026-09-01"}}`))
	}))
	defer srv.Close()
	client := newTestClient(t, srv.URL)

	quota, err := client.GetQuota(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pro", quota.Plan)
	assert.Equal(t, 10.0, quota.IncludedHours)
	assert.Equal(t, 3.5, quota.CreditsBalanceHours)
	assert.Equal(t, "2026-09-01", quota.ResetDate)
}
