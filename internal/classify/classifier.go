// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package classify implements the deterministic rule classifier. It maps raw
// message text to an intent, a complexity score, a response class, a length
// bucket, a character budget, and an extracted keyword set. Classification
// never fails: empty or garbage input produces a low-complexity factual
// result instead of an error.
package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pepperlabs/pepperbot/internal/textutil"
)

// Intent is the classifier's categorical judgment of a message.
type Intent string

const (
	IntentGreeting    Intent = "greeting"
	IntentFactual     Intent = "factual"
	IntentProcedural  Intent = "procedural"
	IntentForbidden   Intent = "forbidden"
	IntentAdversarial Intent = "adversarial"
	IntentClosing     Intent = "closing"
)

// ResponseClass is the coarse grouping used for budgeting and strategy.
type ResponseClass string

const (
	ClassGreeting   ResponseClass = "GREETING"
	ClassFactual    ResponseClass = "FACTUAL"
	ClassProcedural ResponseClass = "PROCEDURAL"
	ClassRefusal    ResponseClass = "REFUSAL"
	ClassClosing    ResponseClass = "CLOSING"
)

// LengthBucket groups inputs by character count.
type LengthBucket string

const (
	BucketMicro  LengthBucket = "micro"
	BucketShort  LengthBucket = "short"
	BucketMedium LengthBucket = "medium"
	BucketLong   LengthBucket = "long"
)

// Length bucket cutoffs in characters. Tunable, not a structural contract.
const (
	microMax  = 12
	shortMax  = 60
	mediumMax = 200
)

// charBudgets maps a response class to its target output length. Budgets
// stay under the 4096-char platform ceiling with room for injected links.
var charBudgets = map[ResponseClass]int{
	ClassGreeting:   160,
	ClassClosing:    160,
	ClassRefusal:    280,
	ClassFactual:    700,
	ClassProcedural: 1400,
}

// Classification is the immutable result of analyzing one message.
type Classification struct {
	Intent        Intent
	Complexity    int // 0..10
	LengthBucket  LengthBucket
	ResponseClass ResponseClass
	CharBudget    int
	Keywords      []string
}

var (
	greetingPattern = regexp.MustCompile(`^(hi|hiya|hey|hello|yo|sup|gm|good\s+(morning|afternoon|evening)|howdy|wassup|what'?s\s+up)\b`)
	closingPattern  = regexp.MustCompile(`^(bye|goodbye|cya|see\s+ya|later|thanks|thank\s+you|thx|ty|gn|good\s+night|cheers)\b`)

	forbiddenKeywords = []string{
		"should i buy", "should i sell", "should i invest", "price target",
		"price prediction", "good investment", "worth buying", "financial advice",
		"wen moon", "wen lambo",
	}
	adversarialKeywords = []string{
		"ignore previous", "ignore all instructions", "system prompt",
		"jailbreak", "dan mode", "developer mode", "pretend you are not",
	}
	proceduralKeywords = []string{
		"how to", "how do i", "how can i", "step by step", "guide",
		"walk me through", "instructions for", "tutorial", "set up", "setup",
	}
	complexityKeywords = []string{
		"explain", "compare", "difference", "everything", "detail", "details",
		"breakdown", "analysis", "versus", "why",
	}
)

// Classifier is stateless and safe for concurrent use.
type Classifier struct{}

// New creates a Classifier.
func New() *Classifier {
	return &Classifier{}
}

// Classify analyzes raw text. Deterministic, no I/O, never fails.
func (c *Classifier) Classify(raw string) Classification {
	text := strings.ToLower(strings.TrimSpace(raw))
	// Buckets count characters, not bytes: emoji and CJK input must not
	// jump buckets early.
	bucket := lengthBucket(utf8.RuneCountInString(text))
	intent := detectIntent(text, bucket)

	class := responseClassFor(intent)
	return Classification{
		Intent:        intent,
		Complexity:    complexityScore(text, intent),
		LengthBucket:  bucket,
		ResponseClass: class,
		CharBudget:    charBudgets[class],
		Keywords:      textutil.Keywords(text),
	}
}

func lengthBucket(n int) LengthBucket {
	switch {
	case n <= microMax:
		return BucketMicro
	case n <= shortMax:
		return BucketShort
	case n <= mediumMax:
		return BucketMedium
	default:
		return BucketLong
	}
}

// detectIntent runs the ordered intent checks. Greeting and closing only
// fire on short inputs so a long question that happens to start with "hey"
// still classifies by content.
func detectIntent(text string, bucket LengthBucket) Intent {
	if text == "" {
		return IntentFactual
	}

	shortish := bucket == BucketMicro || bucket == BucketShort
	if shortish && greetingPattern.MatchString(text) {
		return IntentGreeting
	}
	if shortish && closingPattern.MatchString(text) {
		return IntentClosing
	}
	for _, kw := range forbiddenKeywords {
		if strings.Contains(text, kw) {
			return IntentForbidden
		}
	}
	for _, kw := range adversarialKeywords {
		if strings.Contains(text, kw) {
			return IntentAdversarial
		}
	}
	for _, kw := range proceduralKeywords {
		if strings.Contains(text, kw) {
			return IntentProcedural
		}
	}
	return IntentFactual
}

// complexityScore computes the 0..10 score. Greetings and closings are
// always 0 regardless of other signals.
func complexityScore(text string, intent Intent) int {
	if intent == IntentGreeting || intent == IntentClosing {
		return 0
	}

	score := 0
	n := utf8.RuneCountInString(text)
	for _, threshold := range []int{microMax, shortMax, mediumMax} {
		if n > threshold {
			score++
		}
	}

	questions := strings.Count(text, "?")
	if questions > 2 {
		questions = 2
	}
	score += questions

	for _, kw := range complexityKeywords {
		if strings.Contains(text, kw) {
			score += 2
			break
		}
	}
	if intent == IntentProcedural {
		score += 2
	}

	if score > 10 {
		score = 10
	}
	if score < 0 {
		score = 0
	}
	return score
}

// responseClassFor is the pure intent-to-class mapping.
func responseClassFor(intent Intent) ResponseClass {
	switch intent {
	case IntentGreeting:
		return ClassGreeting
	case IntentClosing:
		return ClassClosing
	case IntentForbidden, IntentAdversarial:
		return ClassRefusal
	case IntentProcedural:
		return ClassProcedural
	default:
		return ClassFactual
	}
}

// CharBudgetFor exposes the class budget table for components that need a
// budget without a full classification (e.g. template sizing checks).
func CharBudgetFor(class ResponseClass) int {
	return charBudgets[class]
}
