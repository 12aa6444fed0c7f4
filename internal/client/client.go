package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/jobs"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	userAgent      = "spigell/resume-matcher"

	jobsPath    = "/jobs"
	extractPath = "/resumes/extract"
)

// ErrEmptyDocument is returned when the service answers an upload without a document.
var ErrEmptyDocument = errors.New("service returned no document")

// Client talks to the resume-matcher HTTP service.
type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	BaseURL    string
}

// New returns a client for baseURL. The match call waits for the model, so
// the timeout should be above the server's ai.timeout.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// ListJobs returns every job title known to the service.
func (c *Client) ListJobs(ctx context.Context) ([]jobs.Title, error) {
	var titles []jobs.Title
	if err := c.getJSON(ctx, jobsPath, &titles); err != nil {
		return nil, err
	}

	if titles == nil {
		titles = []jobs.Title{}
	}

	return titles, nil
}

// Match asks the service for the job titles that fit resumeText.
func (c *Client) Match(ctx context.Context, resumeText string) ([]jobs.Title, error) {
	var matched []jobs.Title
	body := map[string]string{"resumeText": resumeText}

	if err := c.postJSON(ctx, jobsPath, body, &matched); err != nil {
		return nil, err
	}

	if matched == nil {
		matched = []jobs.Title{}
	}

	c.logger.Debug("got matches from service", zap.Int("count", len(matched)))

	return matched, nil
}

// Extract uploads a resume file and returns the text the service read from it.
func (c *Client) Extract(ctx context.Context, name string, data []byte) (*extract.Document, error) {
	var doc *extract.Document
	if err := c.postFile(ctx, extractPath, "file", name, data, &doc); err != nil {
		return nil, err
	}

	if doc == nil {
		return nil, ErrEmptyDocument
	}

	return doc, nil
}
