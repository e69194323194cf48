// Package framequery is the Go client for the FrameQuery video analysis API.
//
// Upload a video (or point the service at a URL), wait for processing, and
// get back scenes, a transcript, and the video duration:
//
//	client, err := framequery.New("fq_your_api_key")
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := client.Process(ctx, framequery.LocalPath("video.mp4"), nil)
//	fmt.Println(result.Scenes)
package framequery

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/framequery/framequery-go/retry"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.framequery.com/v1/api"
	// DefaultPollInterval is the base wait between job status polls.
	DefaultPollInterval = 5 * time.Second
	// DefaultPollTimeout bounds how long Process waits for completion.
	DefaultPollTimeout = 24 * time.Hour
	// DefaultHTTPTimeout bounds a single HTTP exchange, uploads included.
	DefaultHTTPTimeout = 5 * time.Minute

	// Version is the SDK release, reported in the User-Agent.
	Version = "0.1.0"

	apiKeyEnv = "FRAMEQUERY_API_KEY"
)

// Client talks to the FrameQuery API. Safe for concurrent use: each call
// owns its retry and poll loop state, and the underlying http.Client pools
// connections across in-flight calls.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	policy     retry.Policy
	limiter    *rate.Limiter
	logger     *zap.Logger
	metrics    *Metrics
}

// New creates a Client. An empty apiKey falls back to the FRAMEQUERY_API_KEY
// environment variable; if neither is set, construction fails immediately
// rather than deferring to the first request.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnv)
	}
	if apiKey == "" {
		return nil, &Error{
			Code:    ErrAuthentication,
			Message: "api key is required: pass it explicitly or set " + apiKeyEnv,
		}
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		userAgent:  "framequery-go/" + Version,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		policy:     retry.DefaultPolicy(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	return c, nil
}

// ProcessOptions tunes the polling phase of Process, ProcessURL, and PollJob.
// Zero values mean the defaults: 5s interval, 24h timeout, no observer.
type ProcessOptions struct {
	PollInterval time.Duration
	Timeout      time.Duration
	Observer     ProgressObserver
}

// Process uploads a video and waits until processing finishes.
func (c *Client) Process(ctx context.Context, source FileSource, opts *ProcessOptions) (*ProcessingResult, error) {
	job, err := c.Upload(ctx, source, nil)
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, job.ID, opts)
}

// ProcessURL submits a remote video URL and waits until processing finishes.
func (c *Client) ProcessURL(ctx context.Context, videoURL string, opts *ProcessOptions) (*ProcessingResult, error) {
	job, err := c.CreateFromURL(ctx, videoURL, "")
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, job.ID, opts)
}
