package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"recipepipe/internal/config"
	"recipepipe/internal/models"
	"recipepipe/pkg/utils"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// HTTPSource fetches <base>/<collection>.json with config-driven retry logic.
type HTTPSource struct {
	client       *http.Client
	retryPolicy  *config.RetryPolicy
	headers      map[string]string
	baseURL      string
	bufferSizeKb int
}

// NewHTTPSource creates an HTTP source with a custom retry policy.
func NewHTTPSource(baseURL string, retryPolicy *config.RetryPolicy, bufferSizeKb int, headers map[string]string) *HTTPSource {
	return &HTTPSource{
		client: &http.Client{
			Timeout: retryPolicy.GetTimeout(),
		},
		retryPolicy:  retryPolicy,
		headers:      headers,
		baseURL:      strings.TrimRight(baseURL, "/"),
		bufferSizeKb: bufferSizeKb,
	}
}

// Load fetches and decodes one collection.
func (s *HTTPSource) Load(ctx context.Context, collection string) ([]*models.Document, error) {
	url := s.baseURL + "/" + collection + ".json"

	body, status, _, err := s.FetchWithMetrics(ctx, url)
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrCollectionMissing, url)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	docs, err := Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", url, err)
	}

	return docs, nil
}

// FetchWithMetrics returns (body, statusCode, duration, error).
func (s *HTTPSource) FetchWithMetrics(ctx context.Context, url string) ([]byte, int, time.Duration, error) {
	var lastErr error

	var lastStatusCode int

	totalDuration := time.Duration(0)

	for attempt := 1; attempt <= s.retryPolicy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := s.wait(ctx, attempt); err != nil {
				return nil, lastStatusCode, totalDuration, err
			}
		}

		startTime := time.Now()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return nil, 0, totalDuration, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header = utils.BuildHeaders(s.headers)

		resp, err := s.client.Do(req)
		totalDuration += time.Since(startTime)

		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, s.retryPolicy.MaxAttempts, err)

			if ctx.Err() != nil {
				return nil, 0, totalDuration, lastErr
			}

			continue
		}

		lastStatusCode = resp.StatusCode

		if resp.StatusCode != http.StatusOK {
			drain(resp.Body)

			lastErr = fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)

			// Only retry on specific status codes
			if !isRetryableStatus(resp.StatusCode) {
				return nil, lastStatusCode, totalDuration, lastErr
			}

			continue
		}

		// bufferSizeKb is in KB, convert to bytes
		limit := int64(s.bufferSizeKb) * 1024
		body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
		drain(resp.Body)

		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)

			continue
		}

		return body, resp.StatusCode, totalDuration, nil
	}

	return nil, lastStatusCode, totalDuration, lastErr
}

// wait sleeps for the backoff delay before the given attempt.
func (s *HTTPSource) wait(ctx context.Context, attempt int) error {
	delay := s.retryPolicy.GetRetryDelay(attempt)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	// Retry on temporary failures
	switch statusCode {
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	case http.StatusTooManyRequests: // 429
		return true
	case http.StatusRequestTimeout: // 408
		return true
	}

	return false
}
