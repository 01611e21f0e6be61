// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pepperlabs/pepperbot/internal/cache"
	"github.com/pepperlabs/pepperbot/internal/classify"
	"github.com/pepperlabs/pepperbot/internal/dedup"
	"github.com/pepperlabs/pepperbot/internal/generate"
	"github.com/pepperlabs/pepperbot/internal/llm"
	"github.com/pepperlabs/pepperbot/internal/pipeline"
	"github.com/pepperlabs/pepperbot/internal/plan"
	"github.com/pepperlabs/pepperbot/internal/ratelimit"
	"github.com/pepperlabs/pepperbot/internal/safety"
	"github.com/pepperlabs/pepperbot/internal/sanitize"
	"github.com/pepperlabs/pepperbot/internal/validate"
)

type noKnowledge struct{}

func (noKnowledge) IsAvailable() bool       { return false }
func (noKnowledge) Content([]string) string { return "" }

func newTestServer() *Server {
	responseCache := cache.New(10, time.Minute)
	guard := dedup.NewGuard(30*time.Second, 10)
	limiter := ratelimit.NewLimiter(time.Minute, 5)

	generator := generate.New(
		&llm.MockClient{},
		responseCache,
		generate.NewFactStore(),
		noKnowledge{},
		generate.Models{Fast: "fast", Quality: "quality"},
		time.Minute,
		nil,
	)
	p := pipeline.New(
		safety.NewDetector(nil),
		guard,
		limiter,
		classify.New(),
		plan.New(nil),
		generator,
		validate.New(),
		sanitize.NewFormatter(sanitize.NewLinkRegistry()),
		responseCache,
	)
	return NewServer(p, responseCache, guard, limiter)
}

func TestServer_Healthz(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "dev", body["version"])
}

func TestServer_Stats(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v0/stats", nil)

	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "pipeline")
	assert.Contains(t, body, "cache")
	assert.Contains(t, body, "dedup")
	assert.Contains(t, body, "rate_limit")
}

func TestServer_CacheClear(t *testing.T) {
	srv := newTestServer()
	srv.cache.Set("what is staking", "Staking locks tokens for rewards.", time.Minute)
	require.Equal(t, 1, srv.cache.GetStats().Size)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v0/cache/clear", nil)
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["cleared"])
	assert.Equal(t, 0, srv.cache.GetStats().Size)
}

func TestServer_CacheClearRequiresPost(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v0/cache/clear", nil)

	srv.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
