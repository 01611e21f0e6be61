// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package validate

import (
	"regexp"
	"strings"
)

var (
	paragraphSplit  = regexp.MustCompile(`\n{2,}`)
	sentenceBoundary = regexp.MustCompile(`([.!?…])\s+`)
	keyFactPattern  = regexp.MustCompile(`(?i)(\d|0x[0-9a-f]|pepper)`)
)

// compress shrinks text under limit in escalating stages: drop trailing
// paragraphs, then keep the lead sentence plus key-fact sentences, then hard
// truncate at a sentence or word boundary.
func compress(text string, limit int) string {
	if out := collapseParagraphs(text, limit); len(out) <= limit {
		return out
	}
	if out := extractKeyContent(text, limit); len(out) <= limit && out != "" {
		return out
	}
	return hardTruncate(text, limit)
}

// collapseParagraphs keeps whole leading paragraphs while they fit.
func collapseParagraphs(text string, limit int) string {
	paragraphs := paragraphSplit.Split(text, -1)
	var b strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		added := len(p)
		if b.Len() > 0 {
			added += 2
		}
		if b.Len()+added > limit {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p)
	}
	if b.Len() == 0 {
		return text
	}
	return b.String()
}

// extractKeyContent keeps the first sentence and any sentence carrying key
// facts (numbers, addresses, the token name) until the limit.
func extractKeyContent(text string, limit int) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}

	var b strings.Builder
	appendSentence := func(s string) bool {
		added := len(s)
		if b.Len() > 0 {
			added++
		}
		if b.Len()+added > limit {
			return false
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		return true
	}

	if !appendSentence(sentences[0]) {
		return ""
	}
	for _, s := range sentences[1:] {
		if !keyFactPattern.MatchString(s) {
			continue
		}
		if !appendSentence(s) {
			break
		}
	}
	return b.String()
}

// hardTruncate cuts at the last sentence boundary under the limit, falling
// back to the last word boundary.
func hardTruncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]

	if idx := strings.LastIndexAny(cut, ".!?…"); idx > limit/2 {
		return strings.TrimSpace(cut[:idx+1])
	}
	if idx := strings.LastIndexAny(cut, " \n\t"); idx > 0 {
		return strings.TrimSpace(cut[:idx])
	}
	return strings.TrimSpace(cut)
}

// splitSentences breaks text on terminal punctuation, keeping the
// punctuation with its sentence.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	marked := sentenceBoundary.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
