// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package generate executes the planned strategy: canned template, static
// fact or cache hit, or one constrained call to the remote model. Generate
// never returns an error — every failure mode folds into a GeneratedResponse
// carrying fixed fallback text, so the orchestrator treats all strategies
// uniformly.
package generate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tiktoken-go/tokenizer"

	"github.com/pepperlabs/pepperbot/internal/cache"
	"github.com/pepperlabs/pepperbot/internal/classify"
	"github.com/pepperlabs/pepperbot/internal/llm"
	"github.com/pepperlabs/pepperbot/internal/plan"
)

// GeneratedResponse is the generator's uniform output.
type GeneratedResponse struct {
	Text             string
	TokensUsed       int
	FromCache        bool
	FromTemplate     bool
	GenerationTimeMs int64
}

// Token budget bounds. The character budget divided by four approximates
// tokens; the clamp avoids both truncation and runaway cost.
const (
	minCompletionTokens = 120
	maxCompletionTokens = 900
	maxPromptTokens     = 3000
)

// KnowledgeSource is what the generator needs from the knowledge provider.
type KnowledgeSource interface {
	IsAvailable() bool
	Content(sections []string) string
}

// Models maps planner tiers to concrete model identifiers.
type Models struct {
	Fast    string
	Quality string
}

// Generator executes response plans. Safe for concurrent use.
type Generator struct {
	client    llm.Client
	cache     *cache.ResponseCache
	facts     *FactStore
	knowledge KnowledgeSource
	models    Models
	cacheTTL  time.Duration
	codec     tokenizer.Codec
	pick      func(n int) int
}

// New creates a Generator. pick selects from template pools; pass nil for
// uniform random selection.
func New(client llm.Client, responseCache *cache.ResponseCache, facts *FactStore, knowledgeSource KnowledgeSource, models Models, cacheTTL time.Duration, pick func(n int) int) *Generator {
	if pick == nil {
		pick = func(n int) int { return rand.IntN(n) }
	}
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		// Fallback estimation still works; only prompt-size guarding
		// degrades to a character heuristic.
		log.WithError(err).Warn("Tokenizer unavailable, using character-based estimates")
		codec = nil
	}
	return &Generator{
		client:    client,
		cache:     responseCache,
		facts:     facts,
		knowledge: knowledgeSource,
		models:    models,
		cacheTTL:  cacheTTL,
		codec:     codec,
		pick:      pick,
	}
}

// Generate executes the plan for rawQuery. Always returns a response.
func (g *Generator) Generate(ctx context.Context, rp plan.ResponsePlan, rawQuery string, c classify.Classification) GeneratedResponse {
	start := time.Now()

	switch rp.Strategy {
	case plan.StrategyTemplate:
		return g.fromTemplate(rp, c, start)
	case plan.StrategyCache:
		if resp, ok := g.facts.Lookup(rawQuery); ok {
			return GeneratedResponse{Text: resp, FromTemplate: true, GenerationTimeMs: ms(start)}
		}
		if resp, ok := g.cache.Get(rawQuery); ok {
			return GeneratedResponse{Text: resp, FromCache: true, GenerationTimeMs: ms(start)}
		}
		return g.fromModel(ctx, rp, rawQuery, start)
	default:
		return g.fromModel(ctx, rp, rawQuery, start)
	}
}

// fromTemplate serves the zero-cost pools.
func (g *Generator) fromTemplate(rp plan.ResponsePlan, c classify.Classification, start time.Time) GeneratedResponse {
	var pool []string
	switch rp.ResponseClass {
	case classify.ClassGreeting:
		pool = greetingPool
	case classify.ClassClosing:
		pool = closingPool
	default:
		pool = refusalPoolFor(c.Intent)
	}
	return GeneratedResponse{
		Text:             pool[g.pick(len(pool))],
		FromTemplate:     true,
		GenerationTimeMs: ms(start),
	}
}

// fromModel makes the single bounded upstream call. Failures return the
// fixed apology; successes are written back to the cache.
func (g *Generator) fromModel(ctx context.Context, rp plan.ResponsePlan, rawQuery string, start time.Time) GeneratedResponse {
	if !g.knowledge.IsAvailable() {
		return GeneratedResponse{Text: KnowledgeUnavailableText, FromTemplate: true, GenerationTimeMs: ms(start)}
	}

	messages := g.buildMessages(rp, rawQuery)
	result := g.client.Complete(ctx, messages, llm.Options{
		Model:       g.modelFor(rp.Tier),
		MaxTokens:   completionBudget(rp.CharBudget),
		Temperature: 0.7,
	})
	if !result.Success {
		log.WithField("error", result.Err).Warn("Generation failed, serving apology")
		return GeneratedResponse{Text: ApologyText, GenerationTimeMs: ms(start)}
	}

	if cacheable(result.Content) {
		g.cache.Set(rawQuery, result.Content, g.cacheTTL)
	}

	return GeneratedResponse{
		Text:             result.Content,
		TokensUsed:       result.TokensUsed,
		GenerationTimeMs: ms(start),
	}
}

// buildMessages assembles the constrained system instruction plus the user
// query. The system prompt pins the output length, forbids markdown, and
// forbids URLs — links are injected downstream from the verified registry.
func (g *Generator) buildMessages(rp plan.ResponsePlan, rawQuery string) []llm.Message {
	grounding := g.knowledge.Content(rp.KnowledgeSections)
	grounding = g.trimToTokens(grounding, maxPromptTokens)

	system := fmt.Sprintf(
		"You are the PEPPER community helper: upbeat, concise, factual.\n"+
			"Answer in plain text only. Never use markdown formatting.\n"+
			"Never include URLs or links of any kind; official links are appended for you.\n"+
			"Never give investment advice or price predictions.\n"+
			"Keep the answer under %d characters.\n\n"+
			"Reference material:\n%s",
		rp.CharBudget, grounding,
	)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: rawQuery},
	}
}

func (g *Generator) modelFor(tier plan.ModelTier) string {
	if tier == plan.TierQuality {
		return g.models.Quality
	}
	return g.models.Fast
}

// completionBudget converts a character budget to a clamped token budget.
func completionBudget(charBudget int) int {
	tokens := charBudget / 4
	if tokens < minCompletionTokens {
		tokens = minCompletionTokens
	}
	if tokens > maxCompletionTokens {
		tokens = maxCompletionTokens
	}
	return tokens
}

// trimToTokens cuts text so its token count stays under limit. With no
// codec available it falls back to the four-characters-per-token heuristic.
func (g *Generator) trimToTokens(text string, limit int) string {
	if g.codec == nil {
		if len(text) > limit*4 {
			return text[:limit*4]
		}
		return text
	}
	ids, _, err := g.codec.Encode(text)
	if err != nil || len(ids) <= limit {
		return text
	}
	truncated, err := g.codec.Decode(ids[:limit])
	if err != nil {
		return text[:min(len(text), limit*4)]
	}
	return truncated
}

// cacheable rejects output that should not be reused: empty text and
// apology/error markers.
func cacheable(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	lowered := strings.ToLower(text)
	for _, marker := range []string{"error", "something went wrong", "try again", "ask again"} {
		if strings.Contains(lowered, marker) {
			return false
		}
	}
	return true
}

func ms(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
