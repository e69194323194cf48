package framequery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// fallbackFilename names byte-source uploads that carry no name of their own.
const fallbackFilename = "video.mp4"

// FileSource selects where upload bytes come from: a path on disk or an
// in-memory reader. The two variants are dispatched explicitly in Upload.
type FileSource interface {
	fileSource()
}

// LocalPath uploads the file at this path. The path must resolve to a
// regular file before any network call is made.
type LocalPath string

func (LocalPath) fileSource() {}

// ByteSource uploads the reader's full content. Name is the object name
// hint; when empty, a fallback literal is used.
type ByteSource struct {
	Name   string
	Reader io.Reader
}

func (ByteSource) fileSource() {}

// UploadOptions overrides the object name derived from the source.
type UploadOptions struct {
	Filename string
}

// Upload creates a job, pushes the video bytes to the job's signed URL, and
// returns the Job without waiting for processing. Poll it with PollJob or
// GetJob.
func (c *Client) Upload(ctx context.Context, source FileSource, opts *UploadOptions) (*Job, error) {
	override := ""
	if opts != nil {
		override = opts.Filename
	}

	// Resolve the display name and check local sources before any network
	// call; the bytes themselves are read only after the job exists.
	var name string
	switch src := source.(type) {
	case LocalPath:
		info, err := os.Stat(string(src))
		if err != nil || !info.Mode().IsRegular() {
			return nil, &Error{
				Code:    ErrTransport,
				Message: fmt.Sprintf("file not found: %s", src),
				Cause:   err,
			}
		}
		name = override
		if name == "" {
			name = filepath.Base(string(src))
		}
	case ByteSource:
		name = override
		if name == "" {
			name = src.Name
		}
		if name == "" {
			name = fallbackFilename
		}
	default:
		return nil, &Error{Code: ErrTransport, Message: fmt.Sprintf("unsupported file source %T", source)}
	}

	data, err := c.request(ctx, http.MethodPost, "/jobs", map[string]string{"fileName": name})
	if err != nil {
		return nil, err
	}
	record := toMap(data)
	uploadURL := stringField(record, "uploadUrl")
	if uploadURL == "" {
		return nil, &Error{Code: ErrAPI, Message: "job creation response missing uploadUrl", Body: record}
	}

	var content []byte
	switch src := source.(type) {
	case LocalPath:
		content, err = os.ReadFile(string(src))
		if err != nil {
			return nil, &Error{
				Code:    ErrTransport,
				Message: fmt.Sprintf("read file: %s", src),
				Cause:   err,
			}
		}
	case ByteSource:
		content, err = io.ReadAll(src.Reader)
		if err != nil {
			return nil, &Error{Code: ErrTransport, Message: "read byte source", Cause: err}
		}
	}

	if err := c.uploadToSignedURL(ctx, uploadURL, content); err != nil {
		return nil, err
	}

	c.logger.Debug("upload complete",
		zap.String("job_id", stringField(record, "jobId")),
		zap.String("filename", name),
		zap.Int("bytes", len(content)))
	return parseJob(record), nil
}

// CreateFromURL submits a remote video URL for processing and returns the
// Job. No bytes transit through the client. filename is an optional hint.
func (c *Client) CreateFromURL(ctx context.Context, videoURL, filename string) (*Job, error) {
	body := map[string]string{"url": videoURL}
	if filename != "" {
		body["fileName"] = filename
	}
	data, err := c.request(ctx, http.MethodPost, "/jobs/from-url", body)
	if err != nil {
		return nil, err
	}
	return parseJob(toMap(data)), nil
}

// uploadToSignedURL PUTs the bytes to the one-time upload URL. The URL is
// its own credential and may be single-use: the request carries no API
// headers and is never retried. A non-2xx status is terminal for the upload.
func (c *Client) uploadToSignedURL(ctx context.Context, url string, content []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(content))
	if err != nil {
		return &Error{Code: ErrUploadFailed, Message: "create upload request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = int64(len(content))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Code: ErrUploadFailed, Message: "upload to signed URL", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &Error{
			Code:       ErrUploadFailed,
			Message:    fmt.Sprintf("upload to signed URL failed with status %d: %s", resp.StatusCode, b),
			HTTPStatus: resp.StatusCode,
		}
	}
	return nil
}
