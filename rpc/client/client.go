// Package client provides HTTP request helpers with explicit timeouts.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var httpClient = &http.Client{}

// Request wraps one outgoing call.
type Request struct {
	Params  interface{}
	ID      int
	Timeout int // seconds
}

// HTTPGetWithContext http get with context and timeout
func HTTPGetWithContext(ctx context.Context, url string, headers map[string]string, timeout int) (*http.Response, error) {
	return doRequestWithContext(ctx, http.MethodGet, url, nil, headers, timeout)
}

// HTTPPostWithContext http post with context and timeout
func HTTPPostWithContext(ctx context.Context, url string, body interface{}, headers map[string]string, timeout int) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("json marshal err %w", err)
	}
	return doRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData), headers, timeout)
}

// HTTPRawPostWithContext posts a pre-encoded payload.
func HTTPRawPostWithContext(ctx context.Context, url string, payload []byte, headers map[string]string, timeout int) (*http.Response, error) {
	return doRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload), headers, timeout)
}

func doRequestWithContext(ctx context.Context, method, url string, body io.Reader, headers map[string]string, timeout int) (*http.Response, error) {
	// the client timeout also covers reading the response body, which
	// outlives this call
	cli := httpClient
	if timeout > 0 {
		cli = &http.Client{Timeout: time.Duration(timeout) * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, val := range headers {
		req.Header.Set(key, val)
	}
	return cli.Do(req) //nolint:bodyclose // closed by callers
}

// GetResultFromJSONResponse reads a bounded response body and decodes
// it into result.
func GetResultFromJSONResponse(result interface{}, resp *http.Response) error {
	defer func() {
		_ = resp.Body.Close()
	}()
	const maxReadContentLength int64 = 1024 * 1024 * 10 // 10M
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReadContentLength))
	if err != nil {
		return fmt.Errorf("read body error: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("wrong response status %v. message: %v", resp.StatusCode, string(body))
	}
	if len(body) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("unmarshal body error, body is \"%v\" err=\"%w\"", string(body), err)
	}
	return nil
}
