// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package plan maps a classification to a response plan: the generation
// strategy, the adjusted character budget, the knowledge sections handed to
// the generator, and the model tier. Strategy selection is a fixed rule
// table; operators can layer expression-based override rules on top for
// tier forcing without a redeploy.
package plan

import (
	log "github.com/sirupsen/logrus"

	"github.com/pepperlabs/pepperbot/internal/classify"
)

// Strategy is the generation method chosen for a request.
type Strategy string

const (
	// StrategyTemplate serves from a fixed response pool, zero cost.
	StrategyTemplate Strategy = "template"
	// StrategyCache tries static facts and the response cache before
	// falling through to generation.
	StrategyCache Strategy = "cache"
	// StrategyGenerate calls the remote model.
	StrategyGenerate Strategy = "generate"
)

// ModelTier selects the upstream model quality/cost point.
type ModelTier string

const (
	TierFast    ModelTier = "fast"
	TierQuality ModelTier = "quality"
)

// Complexity thresholds for strategy and tier decisions. Tunable.
const (
	simpleThreshold = 3 // below this, FACTUAL goes through the cache path
	mediumThreshold = 5 // at or above: quality tier, advisory split
)

// splitAdvisoryBudget is the single-message practical threshold; budgets
// above it set ShouldSplit for the delivery layer.
const splitAdvisoryBudget = 1000

// ResponsePlan is derived from one Classification and consumed by the
// generator. Immutable.
type ResponsePlan struct {
	Strategy          Strategy
	CharBudget        int
	ResponseClass     classify.ResponseClass
	ShouldSplit       bool
	KnowledgeSections []string
	Tier              ModelTier
}

// sectionTriggers maps query keywords to knowledge section tags. Order
// within a section's trigger list is irrelevant; the planner collects up to
// three distinct sections in keyword order.
var sectionTriggers = map[string]string{
	"contract": "token-basics", "address": "token-basics", "supply": "token-basics",
	"token": "token-basics", "tokenomics": "token-basics", "burn": "token-basics",
	"stake": "staking", "staking": "staking", "rewards": "staking",
	"unstake": "staking", "apy": "staking", "epoch": "staking",
	"bridge": "bridging", "bridging": "bridging", "chain": "bridging",
	"network": "bridging", "swap": "trading-basics", "buy": "trading-basics",
	"dex": "trading-basics", "wallet": "wallets", "metamask": "wallets",
	"ledger": "wallets", "seed": "wallets", "roadmap": "project",
	"team": "project", "whitepaper": "project", "community": "project",
	"nft": "ecosystem", "game": "ecosystem", "dao": "ecosystem",
	"governance": "ecosystem",
}

// defaultSections is used when no keyword maps to a section; the generator
// must never receive an empty section list.
var defaultSections = []string{"overview", "token-basics"}

const maxSections = 3

// Planner converts classifications into response plans. Safe for concurrent
// use once constructed.
type Planner struct {
	rules []overrideRule
}

// New creates a Planner. Override rules are optional; invalid rules are
// logged and skipped so one bad expression can't take planning down.
func New(ruleSpecs []RuleSpec) *Planner {
	p := &Planner{}
	for _, spec := range ruleSpecs {
		rule, err := compileRule(spec)
		if err != nil {
			log.WithError(err).WithField("rule", spec.Name).Warn("Skipping invalid planner rule")
			continue
		}
		p.rules = append(p.rules, rule)
	}
	return p
}

// Plan derives the response plan for one classification.
func (p *Planner) Plan(c classify.Classification) ResponsePlan {
	rp := ResponsePlan{
		Strategy:          strategyFor(c),
		CharBudget:        c.CharBudget,
		ResponseClass:     c.ResponseClass,
		KnowledgeSections: selectSections(c.Keywords),
		Tier:              tierFor(c.Complexity),
	}
	rp.ShouldSplit = rp.CharBudget > splitAdvisoryBudget || c.Complexity >= mediumThreshold

	// Override rules may adjust tier or escalate cache->generate, never the
	// template strategies: refusals, greetings, and closings stay canned.
	if rp.Strategy != StrategyTemplate {
		p.applyRules(c, &rp)
	}
	return rp
}

// SelectModel is the pure complexity-to-tier function.
func (p *Planner) SelectModel(complexity int) ModelTier {
	return tierFor(complexity)
}

func strategyFor(c classify.Classification) Strategy {
	switch c.ResponseClass {
	case classify.ClassGreeting, classify.ClassClosing, classify.ClassRefusal:
		return StrategyTemplate
	case classify.ClassFactual:
		if c.Complexity < simpleThreshold {
			return StrategyCache
		}
		return StrategyGenerate
	default:
		return StrategyGenerate
	}
}

func tierFor(complexity int) ModelTier {
	if complexity < mediumThreshold {
		return TierFast
	}
	return TierQuality
}

// selectSections collects up to maxSections distinct section tags in
// keyword order, defaulting to the overview set on no match.
func selectSections(keywords []string) []string {
	var sections []string
	seen := make(map[string]struct{})
	for _, kw := range keywords {
		section, ok := sectionTriggers[kw]
		if !ok {
			continue
		}
		if _, dup := seen[section]; dup {
			continue
		}
		seen[section] = struct{}{}
		sections = append(sections, section)
		if len(sections) == maxSections {
			break
		}
	}
	if len(sections) == 0 {
		return append([]string(nil), defaultSections...)
	}
	return sections
}
