// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package validate enforces output policy on generated responses. Check
// order is load-bearing: length correction runs before the forbidden-pattern
// scan so the scan sees the content that will actually be delivered, then
// whitespace normalization, then truncation repair, then a final non-empty
// check.
package validate

import (
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/pepperlabs/pepperbot/internal/generate"
)

// Reason codes for rejected responses.
const (
	ReasonTooShort  = "too_short"
	ReasonForbidden = "forbidden_output"
	ReasonEmpty     = "empty_after_transforms"
)

// ValidatedResponse is the validator's verdict. When Valid is false the
// orchestrator discards the text and substitutes the fixed fallback; the
// rejected content is never delivered and never cached.
type ValidatedResponse struct {
	Valid         bool
	Text          string
	WasCompressed bool
	Error         string
}

// absoluteMinLength rejects responses too short to be useful; anything this
// short is almost certainly an upstream error.
const absoluteMinLength = 12

// platformCeiling is the hard single-message limit of the chat platform.
const platformCeiling = 4096

// TruncationNotice is appended when an incomplete generation is repaired.
const TruncationNotice = "(that got cut off — ask me something more specific and I'll keep it short!)"

// forbiddenOutput groups the post-generation content patterns. Any match
// rejects the response outright.
var forbiddenOutput = []struct {
	reason  string
	pattern *regexp.Regexp
}{
	// Persona breaks.
	{"ai self-reference", regexp.MustCompile(`(?i)\b(as an ai|i'?m an ai|i am an ai|as a language model|i'?m a language model|i am a language model|as an assistant trained)\b`)},
	// Internal system leakage.
	{"system leakage", regexp.MustCompile(`(?i)(system prompt|my instructions say|api[ _-]?key|\.env\b|config\.ya?ml|internal use only)`)},
	// Trading advice that slipped past the generation constraints.
	{"trading advice", regexp.MustCompile(`(?i)(you should (buy|sell|invest)|i (recommend|suggest) (buying|selling|investing)|guaranteed (returns|profits?)|price will (rise|drop|moon|double))`)},
}

// Validator applies the ordered checks. Stateless, safe for concurrent use.
type Validator struct{}

// New creates a Validator.
func New() *Validator {
	return &Validator{}
}

// Validate runs the full check sequence against a generated response.
// charBudget is the plan's target length; the compression trigger allows
// generous slack over it but never past the platform ceiling.
func (v *Validator) Validate(resp generate.GeneratedResponse, charBudget int) ValidatedResponse {
	text := strings.TrimSpace(resp.Text)

	// 1. Too short to be useful.
	if len(text) < absoluteMinLength {
		return ValidatedResponse{Error: ReasonTooShort}
	}

	// 2. Length correction before anything content-sensitive.
	ceiling := compressionCeiling(charBudget)
	compressed := false
	if len(text) > ceiling {
		text = compress(text, ceiling)
		compressed = true
	}

	// 3. Forbidden-pattern scan on the deliverable-sized content.
	for _, fo := range forbiddenOutput {
		if fo.pattern.MatchString(text) {
			log.WithField("category", fo.reason).Warn("Generated response rejected by output policy")
			return ValidatedResponse{Error: ReasonForbidden}
		}
	}

	// 4. Whitespace normalization.
	text = normalizeWhitespace(text)

	// 5. Truncation repair.
	if looksTruncated(text) {
		text = repairTruncation(text)
	}

	// 6. Final non-empty check.
	if strings.TrimSpace(text) == "" {
		return ValidatedResponse{Error: ReasonEmpty}
	}

	return ValidatedResponse{Valid: true, Text: text, WasCompressed: compressed}
}

// compressionCeiling allows twice the budget before compressing, capped at
// the platform limit.
func compressionCeiling(charBudget int) int {
	if charBudget <= 0 {
		return platformCeiling
	}
	ceiling := charBudget * 2
	if ceiling > platformCeiling {
		ceiling = platformCeiling
	}
	return ceiling
}
