// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianBigO/services/complexity"
	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"github.com/AleutianAI/AleutianBigO/services/complexity/config"
)

// errServerRequired is returned by commands that only work against a server.
var errServerRequired = errors.New("this command needs a server; pass --server or set BIGO_SERVER")

// backend answers CLI commands either in-process or over HTTP.
type backend interface {
	Analyze(ctx context.Context, req complexity.AnalyzeRequest) (*complexity.AnalyzeResponse, error)
	Dialects(ctx context.Context) (*complexity.DialectsResponse, error)
	Example(ctx context.Context, dialect string) (*complexity.ExampleResponse, error)
	Rules(ctx context.Context) (*complexity.RulesResponse, error)
	History(ctx context.Context, limit int) (*complexity.HistoryListResponse, error)
}

// newBackend picks the HTTP backend when a server is configured.
func newBackend(ctx context.Context, opts cliOptions) (backend, error) {
	if opts.server != "" {
		return newHTTPBackend(opts.server, opts.timeout)
	}
	return newLocalBackend(ctx)
}

// =============================================================================
// Local backend
// =============================================================================

// localBackend runs the analysis service in-process without a cache or
// history store.
type localBackend struct {
	svc *complexity.Service
}

func newLocalBackend(ctx context.Context) (*localBackend, error) {
	cat, err := catalog.GetCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	svc, err := complexity.NewService(config.DefaultServiceConfig(), cat)
	if err != nil {
		return nil, err
	}
	return &localBackend{svc: svc}, nil
}

func (b *localBackend) Analyze(ctx context.Context, req complexity.AnalyzeRequest) (*complexity.AnalyzeResponse, error) {
	return b.svc.Analyze(ctx, req)
}

func (b *localBackend) Dialects(context.Context) (*complexity.DialectsResponse, error) {
	resp := b.svc.Dialects()
	return &resp, nil
}

func (b *localBackend) Example(_ context.Context, dialect string) (*complexity.ExampleResponse, error) {
	d, err := catalog.ParseDialect(dialect)
	if err != nil {
		return nil, err
	}
	snippet, _ := complexity.Example(d)
	return &complexity.ExampleResponse{Dialect: d, Snippet: snippet}, nil
}

func (b *localBackend) Rules(context.Context) (*complexity.RulesResponse, error) {
	resp := b.svc.Rules()
	return &resp, nil
}

func (b *localBackend) History(context.Context, int) (*complexity.HistoryListResponse, error) {
	return nil, errServerRequired
}

// =============================================================================
// HTTP backend
// =============================================================================

// httpBackend talks to a complexity server's /v1/complexity API.
type httpBackend struct {
	baseURL string
	client  *http.Client
}

// apiError is a non-2xx response from the server.
type apiError struct {
	Status int
	Body   complexity.ErrorResponse
}

func (e *apiError) Error() string {
	if e.Body.Code != "" {
		return fmt.Sprintf("server returned %d %s: %s", e.Status, e.Body.Code, e.Body.Error)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

func newHTTPBackend(server string, timeout time.Duration) (*httpBackend, error) {
	u, err := url.Parse(server)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", server)
	}
	return &httpBackend{
		baseURL: strings.TrimRight(server, "/") + "/v1/complexity",
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (b *httpBackend) Analyze(ctx context.Context, req complexity.AnalyzeRequest) (*complexity.AnalyzeResponse, error) {
	var resp complexity.AnalyzeResponse
	if err := b.do(ctx, http.MethodPost, "/analyze", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *httpBackend) Dialects(ctx context.Context) (*complexity.DialectsResponse, error) {
	var resp complexity.DialectsResponse
	if err := b.do(ctx, http.MethodGet, "/dialects", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *httpBackend) Example(ctx context.Context, dialect string) (*complexity.ExampleResponse, error) {
	var resp complexity.ExampleResponse
	if err := b.do(ctx, http.MethodGet, "/dialects/"+url.PathEscape(dialect)+"/example", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *httpBackend) Rules(ctx context.Context) (*complexity.RulesResponse, error) {
	var resp complexity.RulesResponse
	if err := b.do(ctx, http.MethodGet, "/rules", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *httpBackend) History(ctx context.Context, limit int) (*complexity.HistoryListResponse, error) {
	path := "/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp complexity.HistoryListResponse
	if err := b.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *httpBackend) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling server: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.Unmarshal(raw, &apiErr.Body)
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
