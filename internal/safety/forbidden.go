// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package safety provides the forbidden-intent pre-filter. It runs a fixed,
// ordered set of regex pattern families against incoming text and flags
// queries that must never reach the generative stage: investment advice,
// price speculation, market-sentiment bait, and prompt-injection attempts.
package safety

import (
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ForbiddenIntent identifies which pattern family matched.
type ForbiddenIntent string

const (
	// IntentInvestmentAdvice covers buy/sell/invest solicitations.
	IntentInvestmentAdvice ForbiddenIntent = "investment_advice"
	// IntentPriceSpeculation covers price targets and prediction bait.
	IntentPriceSpeculation ForbiddenIntent = "price_speculation"
	// IntentMarketSentiment covers pump/moon style sentiment bait.
	IntentMarketSentiment ForbiddenIntent = "market_sentiment"
	// IntentAdversarial covers prompt-injection and persona-bypass attempts.
	IntentAdversarial ForbiddenIntent = "adversarial"
)

// Result is the outcome of a pre-filter check.
type Result struct {
	// Forbidden is true when any pattern family matched.
	Forbidden bool
	// Intent is the family that matched (first match wins).
	Intent ForbiddenIntent
	// Redirect is a ready-to-send refusal drawn from the family's pool.
	Redirect string
}

// patternFamily pairs an intent with its compiled patterns. Families are
// evaluated in slice order and the first match wins.
type patternFamily struct {
	intent   ForbiddenIntent
	patterns []*regexp.Regexp
}

// Detector is a pure pre-filter; Check has no side effects beyond an audit
// log line. Safe for concurrent use.
type Detector struct {
	families []patternFamily
	pick     func(n int) int
}

// NewDetector creates a Detector with the default pattern set. The selector
// chooses a redirect from the matched family's pool; pass nil for uniform
// random selection.
func NewDetector(pick func(n int) int) *Detector {
	if pick == nil {
		pick = defaultPick
	}
	return &Detector{
		pick: pick,
		families: []patternFamily{
			{
				intent: IntentInvestmentAdvice,
				patterns: []*regexp.Regexp{
					regexp.MustCompile(`should\s+i\s+(buy|sell|invest|ape|hold)`),
					regexp.MustCompile(`(good|bad|smart|safe)\s+investment`),
					regexp.MustCompile(`worth\s+(buying|investing|holding|aping)`),
					regexp.MustCompile(`(buy|sell)\s+(now|signal|recommendation)`),
					regexp.MustCompile(`financial\s+advice`),
					regexp.MustCompile(`how\s+much\s+should\s+i\s+(buy|put|invest)`),
				},
			},
			{
				intent: IntentPriceSpeculation,
				patterns: []*regexp.Regexp{
					regexp.MustCompile(`price\s+(target|prediction|forecast)`),
					regexp.MustCompile(`(will|when|gonna).{0,30}(hit|reach|pass)\s+\$?\d`),
					regexp.MustCompile(`wen\s+(moon|lambo|pump|\$)`),
					regexp.MustCompile(`\$?\d[\d.,]*\s*(eoy|eom|by\s+(end|next|20\d\d))`),
					regexp.MustCompile(`how\s+high\s+(can|will)\s+.{0,20}go`),
					regexp.MustCompile(`next\s+(bull|bear)\s*(run|market)`),
				},
			},
			{
				intent: IntentMarketSentiment,
				patterns: []*regexp.Regexp{
					// Word boundaries keep "pump" from matching "pumpkin".
					regexp.MustCompile(`\b(bullish|bearish)\b`),
					regexp.MustCompile(`\b(pump|dump|pamp)\b`),
					regexp.MustCompile(`\b(moon|mooning|lambo)\b`),
					regexp.MustCompile(`\b(ath|dip|rekt|fomo)\b`),
				},
			},
			{
				intent: IntentAdversarial,
				patterns: []*regexp.Regexp{
					regexp.MustCompile(`ignore\s+(all\s+|previous\s+|prior\s+|above\s+)*(instructions|prompts|rules)`),
					regexp.MustCompile(`(jailbreak|jail\s*break)`),
					regexp.MustCompile(`dan\s+mode`),
					regexp.MustCompile(`developer\s+mode`),
					regexp.MustCompile(`(pretend|act|roleplay)\s+(you('re|\s+are)|as\s+if|to\s+be).{0,40}(not|without|no)\s+(an?\s+)?(ai|bot|assistant|restrictions|rules|filter)`),
					regexp.MustCompile(`(reveal|show|print|repeat).{0,30}(system\s+prompt|instructions|initial\s+prompt)`),
					regexp.MustCompile(`you\s+are\s+now\s+(free|unrestricted|unfiltered)`),
				},
			},
		},
	}
}

// Check runs the ordered pattern families against text. Evaluation order is
// investment -> price -> sentiment -> adversarial; the first family with any
// matching pattern decides the result.
func (d *Detector) Check(text string) Result {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return Result{}
	}

	for _, fam := range d.families {
		for _, p := range fam.patterns {
			if p.MatchString(lowered) {
				log.WithFields(log.Fields{
					"intent":  string(fam.intent),
					"pattern": p.String(),
				}).Debug("Forbidden intent matched, short-circuiting pipeline")
				return Result{
					Forbidden: true,
					Intent:    fam.intent,
					Redirect:  d.redirect(fam.intent),
				}
			}
		}
	}
	return Result{}
}

// redirect picks a refusal from the pool for the given intent.
func (d *Detector) redirect(intent ForbiddenIntent) string {
	pool, ok := redirectPools[intent]
	if !ok || len(pool) == 0 {
		pool = redirectPools[IntentInvestmentAdvice]
	}
	return pool[d.pick(len(pool))]
}
