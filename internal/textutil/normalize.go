// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package textutil provides the shared text normalization used for cache
// keys, duplicate hashing, and keyword extraction. Every store that keys on
// user text goes through Normalize so that reads and writes always agree.
package textutil

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// stopwords are excluded from keyword extraction. Tokens of length <= 2 are
// dropped regardless, so short fillers ("a", "is", "to") need no entry.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "have": {}, "what": {},
	"when": {}, "where": {}, "who": {}, "why": {}, "how": {}, "this": {},
	"that": {}, "with": {}, "from": {}, "they": {}, "will": {}, "would": {},
	"there": {}, "their": {}, "about": {}, "which": {}, "does": {},
	"please": {}, "tell": {}, "give": {}, "much": {}, "many": {},
}

// Normalize lowercases, trims, strips punctuation, and collapses internal
// whitespace runs to single spaces. It is idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			// dropped entirely; "what is PEPPER?" and "what is pepper"
			// must normalize identically
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Hash returns a fast non-cryptographic FNV-1a hash of the normalized form
// of s. Used by the duplicate guard; collisions only cause a suppressed
// reply inside a short window, so a 64-bit hash is plenty.
func Hash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(Normalize(s)))
	return h.Sum64()
}

// Keywords tokenizes s, strips punctuation, drops stopwords and tokens of
// length <= 2, and deduplicates while preserving first-seen order.
func Keywords(s string) []string {
	fields := strings.Fields(Normalize(s))
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
