// Package network provides generic HTTP fetching with typed decode results.
package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Request describes one HTTP fetch and how to turn its body into a T.
type Request[T any] struct {
	URL    string
	Header http.Header
	Parse  func(data []byte) (T, error)
}

// Client executes requests. The zero value is not usable; use NewClient.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client around the given HTTP client.
// A nil argument uses http.DefaultClient.
func NewClient(hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{httpClient: hc}
}

// Load fetches and decodes a request. Transport and non-200 failures come
// back as *FetchError; body decode failures as *DecodeError.
func Load[T any](ctx context.Context, c *Client, req Request[T]) (T, error) {
	var zero T

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return zero, &FetchError{URL: req.URL, Err: err}
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Keep context errors visible to errors.Is through the wrapper.
		return zero, &FetchError{URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return zero, &FetchError{
			URL:    req.URL,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &FetchError{URL: req.URL, Err: fmt.Errorf("read body: %w", err)}
	}

	if req.Parse == nil {
		return zero, &DecodeError{Expected: "a parse function", Actual: "nil"}
	}
	out, err := req.Parse(data)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return zero, err
		}
		return zero, &DecodeError{Expected: "a decodable body", Actual: "undecodable data", Err: err}
	}
	return out, nil
}

// FetchError reports a transport-level or HTTP-status failure.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError reports a response body that did not have the expected shape.
type DecodeError struct {
	Expected string
	Actual   string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: expected %s, got %s: %v", e.Expected, e.Actual, e.Err)
	}
	return fmt.Sprintf("decode: expected %s, got %s", e.Expected, e.Actual)
}

func (e *DecodeError) Unwrap() error { return e.Err }
