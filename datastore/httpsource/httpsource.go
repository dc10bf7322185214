/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package httpsource provides a read-only flag source that fetches a JSON
// object of flag values over HTTP:
//
//	{"dark_mode": true, "theme": "dark", "banner": null}
//
// Requests go through a retrying client, so transient server errors are
// retried before a fetch fails.
package httpsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/suparena/flagstore/errors"
	"github.com/suparena/flagstore/storagemodels"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

// Source fetches flag values from a URL.
type Source struct {
	name   string
	url    string
	client *retryablehttp.Client
	header http.Header

	mu   sync.RWMutex
	last map[string]storagemodels.Value
}

// Option configures a Source
type Option func(*Source)

// WithRetryMax sets how many times a failed request is retried
func WithRetryMax(n int) Option {
	return func(s *Source) {
		s.client.RetryMax = n
	}
}

// WithRetryWait sets the bounds of the wait between retries
func WithRetryWait(min, max time.Duration) Option {
	return func(s *Source) {
		s.client.RetryWaitMin = min
		s.client.RetryWaitMax = max
	}
}

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) {
		s.client.HTTPClient = c
	}
}

// WithLogger routes the client's request logging to logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.client.Logger = logger
		}
	}
}

// WithHeader adds a header to every request, e.g. an API token
func WithHeader(key, value string) Option {
	return func(s *Source) {
		s.header.Add(key, value)
	}
}

// New creates a source named name fetching from url.
func New(name, url string, opts ...Option) *Source {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	s := &Source{
		name:   name,
		url:    url,
		client: client,
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Name() string { return s.name }

// Get answers from the last successful fetch, fetching once if nothing has
// been fetched yet.
func (s *Source) Get(ctx context.Context, key string) (storagemodels.Value, error) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	if last == nil {
		all, err := s.All(ctx)
		if err != nil {
			return storagemodels.Null(), err
		}
		return all[key], nil
	}
	return last[key], nil
}

// All fetches the current flag values.
func (s *Source) All(ctx context.Context) (map[string]storagemodels.Value, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, vs := range s.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NewNotFoundError("flag document", s.url)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s: unexpected status %s", s.url, resp.Status)
	}

	var values map[string]storagemodels.Value
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.url, err)
	}
	if values == nil {
		values = make(map[string]storagemodels.Value)
	}

	s.mu.Lock()
	s.last = values
	s.mu.Unlock()

	result := make(map[string]storagemodels.Value, len(values))
	for k, v := range values {
		result[k] = v
	}
	return result, nil
}
