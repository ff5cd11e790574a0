package scoring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/OFFIS-RIT/claimnet/internal/metrics"
	"github.com/OFFIS-RIT/claimnet/internal/util"
	"github.com/OFFIS-RIT/claimnet/pkg/logger"
)

// Backend endpoints.
const (
	EndpointScoreSingle    = "/score_single"
	EndpointBatchScore     = "/batch_score"
	EndpointInferenceGraph = "/inference_graph"
)

const (
	defaultTimeout = 120 * time.Second
	maxErrorBody   = 4 << 10
)

// ErrBadResponse is returned when the backend answers 200 with a body that
// cannot be used.
var ErrBadResponse = errors.New("scoring: malformed backend response")

// BackendError is a non-200 answer from the scoring backend.
type BackendError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *BackendError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("scoring backend %s returned %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("scoring backend %s returned %d: %s", e.Endpoint, e.Status, e.Body)
}

// Client talks to the fraud scoring backend.
type Client struct {
	baseURL string
	http    *http.Client
	retries int
	backoff util.Backoff
}

type NewClientParams struct {
	BaseURL string
	// Timeout applies per request when HTTPClient is nil. Defaults to 120s.
	Timeout time.Duration
	// Retries is the number of attempts per request, at least 1.
	Retries    int
	HTTPClient *http.Client
	// Backoff defaults to 200ms doubling up to 5s.
	Backoff util.Backoff
}

func NewClient(params NewClientParams) *Client {
	httpClient := params.HTTPClient
	if httpClient == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	backoff := params.Backoff
	if backoff == nil {
		backoff = util.ExponentialBackoff(200*time.Millisecond, 5*time.Second)
	}
	retries := params.Retries
	if retries <= 0 {
		retries = 1
	}

	return &Client{
		baseURL: strings.TrimSuffix(params.BaseURL, "/"),
		http:    httpClient,
		retries: retries,
		backoff: backoff,
	}
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// resolve joins a backend-relative path onto the base URL. Absolute URLs are
// returned unchanged.
func (c *Client) resolve(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.baseURL + ref
}

type request struct {
	endpoint    string
	method      string
	url         string
	contentType string
	body        []byte
}

func retryable(err error) bool {
	if errors.Is(err, ErrBadResponse) {
		return false
	}
	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Status >= http.StatusInternalServerError
	}
	return true
}

// do sends r, retrying transport errors and 5xx answers, and returns the body
// of the first 200 response.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	attempt := 0
	return util.RetryWithBackoff(ctx, c.retries, c.backoff, retryable, func(ctx context.Context) ([]byte, error) {
		attempt++
		started := time.Now()
		body, err := c.send(ctx, r)
		metrics.ObserveBackendRequest(r.endpoint, started, err)
		if err != nil && retryable(err) && attempt < c.retries {
			logger.Warn("[Scoring] Backend request failed, retrying", "endpoint", r.endpoint, "attempt", attempt, "err", err)
		}
		return body, err
	})
}

func (c *Client) send(ctx context.Context, r request) ([]byte, error) {
	var reader io.Reader
	if r.body != nil {
		reader = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoring backend %s unreachable: %w", r.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &BackendError{
			Endpoint: r.endpoint,
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(msg)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", r.endpoint, err)
	}
	return body, nil
}

// multipartFile encodes content as the "file" field of a multipart form.
func multipartFile(filename, contentType string, content []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
