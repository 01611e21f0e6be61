// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package llm wraps the remote generative model behind a small interface.
// The generator never sees provider errors: every completion returns a
// structured Result with Success=false on any failure (timeout, non-success
// status, empty content) so the pipeline can fall back uniformly.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// Message is one chat turn sent upstream.
type Message struct {
	Role    string
	Content string
}

// Role constants for Message.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Options control one completion request.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// Result is the structured outcome of a completion.
type Result struct {
	Success    bool
	Content    string
	TokensUsed int
	Err        string
}

// Client is the remote-model capability the generator consumes.
type Client interface {
	Complete(ctx context.Context, messages []Message, opts Options) Result
}

// defaultTimeout bounds the single upstream call; there are no retries.
const defaultTimeout = 30 * time.Second

// OpenAIClient talks to an OpenAI-compatible chat completion API.
type OpenAIClient struct {
	client  *openai.Client
	timeout time.Duration
}

// NewOpenAIClient creates a client for the given API key. baseURL overrides
// the endpoint for compatible providers; pass "" for the OpenAI default.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		timeout: timeout,
	}
}

// Complete issues one chat completion request. Never returns an error; all
// failures are folded into the Result.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, opts Options) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       opts.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.WithError(err).WithField("model", opts.Model).Warn("Upstream completion failed")
		return Result{Err: err.Error()}
	}
	if len(resp.Choices) == 0 {
		return Result{Err: "upstream returned no choices"}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return Result{Err: "upstream returned empty content"}
	}

	log.WithFields(log.Fields{
		"model":      opts.Model,
		"tokens":     resp.Usage.TotalTokens,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("Completion succeeded")

	return Result{
		Success:    true,
		Content:    content,
		TokensUsed: resp.Usage.TotalTokens,
	}
}
