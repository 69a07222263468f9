package moodle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
	"github.com/pascalhuerten/moodle-rag/internal/normalisers"
)

// Ensure Client implements MoodleClient
var _ driven.MoodleClient = (*Client)(nil)

// Web service functions used by the scraper
const (
	FunctionGetCourses        = "core_course_get_courses"
	FunctionGetCourseContents = "core_course_get_contents"
)

const restPath = "/webservice/rest/server.php"

// Client calls the Moodle web service REST API with a fixed token.
// It holds no state between calls beyond the rate limiter.
type Client struct {
	baseURL     string
	token       string
	client      *http.Client
	limiter     *rate.Limiter
	normalisers driven.NormaliserRegistry
	logger      *slog.Logger
}

// Config holds configuration for the Moodle client.
type Config struct {
	BaseURL     string
	Token       string
	RateLimit   float64 // requests per second, 0 disables limiting
	HTTPClient  *http.Client
	Normalisers driven.NormaliserRegistry // Optional: defaults to normalisers.DefaultRegistry
	Logger      *slog.Logger
}

// NewClient creates a new Moodle client
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: Moodle URL is required", domain.ErrConfiguration)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: Moodle API token is required", domain.ErrConfiguration)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid Moodle URL: %v", domain.ErrConfiguration, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.Normalisers
	if registry == nil {
		registry = normalisers.DefaultRegistry()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := max(1, int(cfg.RateLimit))
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		token:       cfg.Token,
		client:      httpClient,
		limiter:     limiter,
		normalisers: registry,
		logger:      logger,
	}, nil
}

// moodleException is the payload Moodle returns with HTTP 200 when a web service call fails
type moodleException struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

// SiteURL returns the base URL of the Moodle site
func (c *Client) SiteURL() string {
	return c.baseURL
}

// Call invokes a web service function and decodes the JSON result into out.
// Non-2xx responses and Moodle exception payloads are reported as domain.ErrUpstream.
func (c *Client) Call(ctx context.Context, function string, params url.Values, out any) error {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("wstoken", c.token)
	q.Set("moodlewsrestformat", "json")
	q.Set("wsfunction", function)

	body, _, err := c.get(ctx, c.baseURL+restPath+"?"+q.Encode())
	if err != nil {
		return fmt.Errorf("%s: %w", function, err)
	}

	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
		var exc moodleException
		if err := json.Unmarshal(trimmed, &exc); err == nil && exc.Exception != "" {
			return fmt.Errorf("%w: %s: %s (%s)", domain.ErrUpstream, function, exc.Message, exc.ErrorCode)
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: failed to parse response: %v", domain.ErrUpstream, function, err)
	}
	return nil
}

// ListCourses returns all course records, the site record first
func (c *Client) ListCourses(ctx context.Context) ([]driven.MoodleCourseRecord, error) {
	var records []driven.MoodleCourseRecord
	if err := c.Call(ctx, FunctionGetCourses, nil, &records); err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Summary = normalisers.HTMLToText(records[i].Summary)
	}
	return records, nil
}

// GetCourseContents returns the ordered section records of a course
func (c *Client) GetCourseContents(ctx context.Context, courseID int) ([]driven.MoodleSectionRecord, error) {
	params := url.Values{}
	params.Set("courseid", strconv.Itoa(courseID))

	var sections []driven.MoodleSectionRecord
	if err := c.Call(ctx, FunctionGetCourseContents, params, &sections); err != nil {
		return nil, err
	}
	for i := range sections {
		sections[i].Summary = normalisers.HTMLToText(sections[i].Summary)
		for j := range sections[i].Modules {
			sections[i].Modules[j].Description = normalisers.HTMLToText(sections[i].Modules[j].Description)
		}
	}
	return sections, nil
}

// FetchContent downloads a file attachment with the web service token and
// returns its readable text, extracted by the normaliser registered for the
// detected media type.
func (c *Client) FetchContent(ctx context.Context, fileURL string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("invalid file URL %q: %w", fileURL, err)
	}
	q := u.Query()
	q.Set("token", c.token)   // webservice/pluginfile.php
	q.Set("wstoken", c.token) // legacy pluginfile endpoints
	u.RawQuery = q.Encode()

	body, contentType, err := c.get(ctx, u.String())
	if err != nil {
		return "", fmt.Errorf("fetch file: %w", err)
	}

	mediaType := normalisers.DetectType(contentType, u.Path, body)
	normaliser := c.normalisers.Get(mediaType)
	if normaliser == nil {
		return "", fmt.Errorf("%w: no normaliser for %s", domain.ErrUpstream, mediaType)
	}
	text, err := normaliser.Normalise(body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrUpstream, mediaType, err)
	}
	return text, nil
}

// get performs a rate-limited GET and returns the body and content type of a 2xx response.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/html;q=0.9, application/pdf;q=0.8")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: request failed: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read response: %v", domain.ErrUpstream, err)
	}

	c.logger.Debug("moodle request",
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("%w: %s returned status %d", domain.ErrUpstream, req.URL.Path, resp.StatusCode)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
