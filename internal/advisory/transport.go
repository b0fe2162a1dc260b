package advisory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/raseed-app/raseed/internal/common"
	"github.com/raseed-app/raseed/internal/service"
)

// newAPIClient returns the HTTP client shared by all generator providers.
func newAPIClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// retryOptions governs transient failure handling for provider calls.
// Package-level so tests can shorten the delays.
var retryOptions = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Second,
	MaxDelay:     15 * time.Second,
}

// postJSON posts the body to url and returns the response body, retrying
// transient failures. Rate limits and server errors are retried with
// backoff; other client errors fail immediately.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body []byte) ([]byte, error) {
	var responseBody []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return &common.RetryableError{Err: fmt.Errorf("failed to create request: %w", err), Retryable: false}
		}

		req.Header.Set("Content-Type", "application/json")
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		resp, err := client.Do(req)
		if err != nil {
			return &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &common.RetryableError{Err: fmt.Errorf("failed to read response: %w", err), Retryable: true}
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", common.ErrAdvisoryRateLimit, provider)
		case resp.StatusCode >= http.StatusInternalServerError:
			return &common.RetryableError{
				Err:       fmt.Errorf("%s API error (status %d): %s", provider, resp.StatusCode, data),
				Retryable: true,
			}
		case resp.StatusCode != http.StatusOK:
			return &common.RetryableError{
				Err:       fmt.Errorf("%s API error (status %d): %s", provider, resp.StatusCode, data),
				Retryable: false,
			}
		}

		responseBody = data
		return nil
	}

	if err := common.WithRetry(ctx, operation, retryOptions); err != nil {
		return nil, err
	}

	return responseBody, nil
}
