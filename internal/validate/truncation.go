// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package validate

import (
	"regexp"
	"strings"
)

// The truncation heuristic is pattern-based and deliberately tunable. It
// can false-positive on unusual but legitimate endings; the cost is only an
// appended notice, never a rejection.

// danglingWords are conjunctions, prepositions, and articles that no
// complete sentence ends with.
var danglingWords = map[string]struct{}{
	"and": {}, "or": {}, "but": {}, "so": {}, "then": {}, "because": {},
	"the": {}, "a": {}, "an": {}, "this": {}, "that": {},
	"to": {}, "for": {}, "with": {}, "from": {}, "in": {}, "of": {},
	"at": {}, "by": {}, "as": {}, "is": {}, "are": {}, "was": {},
}

// danglingListItem matches a bare list numeral at the end ("3." or "2)").
var danglingListItem = regexp.MustCompile(`(?m)^\s*\d+[.)]\s*$`)

// looksTruncated reports whether text appears to end mid-thought.
func looksTruncated(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	if openBrackets(trimmed) {
		return true
	}
	if danglingListItem.MatchString(lastLine(trimmed)) {
		return true
	}

	if endsCleanly(trimmed) {
		return false
	}

	words := strings.Fields(trimmed)
	last := strings.ToLower(strings.Trim(words[len(words)-1], `"'`))
	if _, dangling := danglingWords[last]; dangling {
		return true
	}

	// No terminal punctuation and no allow-listed emoji: treat as cut off.
	return true
}

// repairTruncation trims the dangling fragment back to the last complete
// sentence and appends the fixed notice.
func repairTruncation(text string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(text), " \n\t")

	if idx := strings.LastIndexAny(trimmed, ".!?…"); idx > 0 {
		trimmed = strings.TrimSpace(trimmed[:idx+1])
	}
	return trimmed + "\n\n" + TruncationNotice
}

// endsCleanly accepts terminal punctuation, closing quotes/brackets after
// punctuation, and common emoji.
func endsCleanly(text string) bool {
	runes := []rune(text)
	last := runes[len(runes)-1]

	switch last {
	case '.', '!', '?', '…':
		return true
	case ')', ']', '"', '\'':
		if len(runes) >= 2 {
			prev := runes[len(runes)-2]
			return prev == '.' || prev == '!' || prev == '?' || prev == '…'
		}
		return false
	}
	return isEmoji(last)
}

// isEmoji covers the emoji blocks the bot actually uses plus the variation
// selector that follows composed emoji like 🌶️.
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r == 0xFE0F:
		return true
	}
	return false
}

// openBrackets reports unbalanced ( or [ pairs.
func openBrackets(text string) bool {
	round, square := 0, 0
	for _, r := range text {
		switch r {
		case '(':
			round++
		case ')':
			if round > 0 {
				round--
			}
		case '[':
			square++
		case ']':
			if square > 0 {
				square--
			}
		}
	}
	return round > 0 || square > 0
}

func lastLine(text string) string {
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return text[idx+1:]
	}
	return text
}
