// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pipeline sequences the full response flow: entry gates (duplicate
// guard, rate limiter), forbidden-intent pre-filter, classification,
// planning, generation, validation, and final formatting. Every stage
// returns a structured result instead of an error; the only exception
// boundary is a recover around the whole run that degrades to a fixed
// fallback message.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/pepperlabs/pepperbot/internal/cache"
	"github.com/pepperlabs/pepperbot/internal/classify"
	"github.com/pepperlabs/pepperbot/internal/dedup"
	"github.com/pepperlabs/pepperbot/internal/generate"
	"github.com/pepperlabs/pepperbot/internal/plan"
	"github.com/pepperlabs/pepperbot/internal/ratelimit"
	"github.com/pepperlabs/pepperbot/internal/safety"
	"github.com/pepperlabs/pepperbot/internal/sanitize"
	"github.com/pepperlabs/pepperbot/internal/validate"
)

// FallbackText replaces anything the pipeline could not produce safely.
const FallbackText = "Something went sideways on my end. Try again in a moment! 🌶️"

// Message is one inbound chat message.
type Message struct {
	UserID         string
	ConversationID string
	Text           string
}

// DeliveryPlan is the pipeline's output, ready for the transport layer.
// The transport is responsible for splitting Message across platform
// limits and physically sending it.
type DeliveryPlan struct {
	// Message is the final sanitized text.
	Message string
	// ParseMode is the platform formatting mode; empty means plain text.
	ParseMode string
	// ShouldSplit advises the transport that the text may exceed single
	// message limits.
	ShouldSplit bool
	// ProcessingTimeMs is the wall time of the whole pipeline run.
	ProcessingTimeMs int64
}

// Stats are the pipeline's diagnostic counters.
type Stats struct {
	Processed  int64 `json:"processed"`
	Suppressed int64 `json:"suppressed"`
	Refused    int64 `json:"refused"`
	Fallbacks  int64 `json:"fallbacks"`
}

// Pipeline owns the stage sequence. Safe for concurrent use: all stages are
// either stateless or internally locked.
type Pipeline struct {
	detector   *safety.Detector
	guard      *dedup.Guard
	limiter    *ratelimit.Limiter
	classifier *classify.Classifier
	planner    *plan.Planner
	generator  *generate.Generator
	validator  *validate.Validator
	formatter  *sanitize.Formatter
	cache      *cache.ResponseCache

	processed  atomic.Int64
	suppressed atomic.Int64
	refused    atomic.Int64
	fallbacks  atomic.Int64
}

// New wires a Pipeline from its stages.
func New(
	detector *safety.Detector,
	guard *dedup.Guard,
	limiter *ratelimit.Limiter,
	classifier *classify.Classifier,
	planner *plan.Planner,
	generator *generate.Generator,
	validator *validate.Validator,
	formatter *sanitize.Formatter,
	responseCache *cache.ResponseCache,
) *Pipeline {
	return &Pipeline{
		detector:   detector,
		guard:      guard,
		limiter:    limiter,
		classifier: classifier,
		planner:    planner,
		generator:  generator,
		validator:  validator,
		formatter:  formatter,
		cache:      responseCache,
	}
}

// Process runs the full pipeline for one message. A nil DeliveryPlan means
// intentional silence: a duplicate submission or a post-warning rate-limit
// overage. Process never returns an error and never panics outward.
func (p *Pipeline) Process(ctx context.Context, msg Message) (result *DeliveryPlan) {
	start := time.Now()
	logger := log.WithFields(log.Fields{
		"request_id":   uuid.NewString()[:8],
		"user":         msg.UserID,
		"conversation": msg.ConversationID,
	})

	defer func() {
		if r := recover(); r != nil {
			p.fallbacks.Add(1)
			logger.WithField("panic", r).Error("Pipeline panic recovered, serving fallback")
			result = &DeliveryPlan{
				Message:          FallbackText,
				ProcessingTimeMs: time.Since(start).Milliseconds(),
			}
		}
	}()

	// Entry gates. Both suppress silently.
	verdict := p.limiter.Check(msg.UserID)
	if !verdict.Allow {
		p.suppressed.Add(1)
		if verdict.Notice != "" {
			return p.deliver(verdict.Notice, false, start)
		}
		return nil
	}
	if p.guard.IsDuplicate(msg.UserID, msg.ConversationID, msg.Text) {
		p.suppressed.Add(1)
		return nil
	}

	p.processed.Add(1)

	// Pre-filter: forbidden intents never reach classification, let alone
	// the generative stage.
	if hit := p.detector.Check(msg.Text); hit.Forbidden {
		p.refused.Add(1)
		logger.WithField("intent", string(hit.Intent)).Info("Request redirected by pre-filter")
		return p.deliver(p.formatter.Format(hit.Redirect, msg.Text), false, start)
	}

	classification := p.classifier.Classify(msg.Text)
	responsePlan := p.planner.Plan(classification)

	logger.WithFields(log.Fields{
		"intent":     string(classification.Intent),
		"complexity": classification.Complexity,
		"strategy":   string(responsePlan.Strategy),
		"tier":       string(responsePlan.Tier),
	}).Debug("Message classified and planned")

	generated := p.generator.Generate(ctx, responsePlan, msg.Text, classification)

	validated := p.validator.Validate(generated, responsePlan.CharBudget)
	if !validated.Valid {
		p.fallbacks.Add(1)
		// The generator caches optimistically; rejected content must not
		// survive to be served to the next asker.
		p.cache.Delete(msg.Text)
		logger.WithField("reason", validated.Error).Warn("Validation failed, serving fallback")
		return p.deliver(FallbackText, false, start)
	}

	final := p.formatter.Format(validated.Text, msg.Text)
	logger.WithFields(log.Fields{
		"from_cache":    generated.FromCache,
		"from_template": generated.FromTemplate,
		"tokens":        generated.TokensUsed,
		"latency_ms":    time.Since(start).Milliseconds(),
	}).Info("Response ready")

	return p.deliver(final, responsePlan.ShouldSplit, start)
}

func (p *Pipeline) deliver(text string, shouldSplit bool, start time.Time) *DeliveryPlan {
	return &DeliveryPlan{
		Message:          text,
		ShouldSplit:      shouldSplit,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
}

// GetStats returns a snapshot of the pipeline counters.
func (p *Pipeline) GetStats() Stats {
	return Stats{
		Processed:  p.processed.Load(),
		Suppressed: p.suppressed.Load(),
		Refused:    p.refused.Load(),
		Fallbacks:  p.fallbacks.Load(),
	}
}
