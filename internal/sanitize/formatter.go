// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sanitize is the last line of defense before delivery. It strips
// markdown syntax, removes every URL-shaped substring regardless of origin,
// injects verified links relevant to the original query, and cleans up the
// artifacts stripping leaves behind. Format is idempotent: running it on
// its own output changes nothing.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	markdownLink   = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	boldItalic     = regexp.MustCompile(`(\*{1,3}|_{1,3})([^*_]+)(\*{1,3}|_{1,3})`)
	codeFence      = regexp.MustCompile("```[a-zA-Z]*\\n?")
	inlineCode     = regexp.MustCompile("`([^`]*)`")
	heading        = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	strikethrough  = regexp.MustCompile(`~~([^~]+)~~`)
	blockquote     = regexp.MustCompile(`(?m)^>\s?`)
	listMarker     = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
	urlPattern     = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"')\]]+`)
	bareDomain     = regexp.MustCompile(`(?i)\b[a-z0-9][a-z0-9-]*(?:\.[a-z0-9-]+)*\.(?:com|org|io|net|xyz|finance|app|community)(?:/[^\s<>"')\]]*)?`)
	emptyBrackets  = regexp.MustCompile(`\(\s*\)|\[\s*\]`)
	orphanProtocol = regexp.MustCompile(`(?i)\b(?:https?|ftp):(?://)?(?:\s|$)`)
	danglingColon  = regexp.MustCompile(`(?m):\s*$`)
	spaceBeforeEnd = regexp.MustCompile(`[ \t]+([.,!?])`)
	multiSpace     = regexp.MustCompile(`[ \t]{2,}`)
	tripleNewline  = regexp.MustCompile(`\n{3,}`)
)

// linksHeader precedes the injected verified-link block. It doubles as the
// idempotency marker: a block already present is stripped and rebuilt
// identically.
const linksHeader = "Official links:"

// Formatter produces delivery-ready text. Stateless apart from the
// immutable registry; safe for concurrent use.
type Formatter struct {
	registry *LinkRegistry
}

// NewFormatter creates a Formatter backed by the given registry.
func NewFormatter(registry *LinkRegistry) *Formatter {
	return &Formatter{registry: registry}
}

// Format sanitizes text and appends the verified links relevant to the
// original user query.
func (f *Formatter) Format(text, originalQuery string) string {
	// A previously injected link block is removed first so repeated runs
	// rebuild the same output instead of stacking blocks.
	if idx := strings.LastIndex(text, "\n\n"+linksHeader); idx >= 0 {
		text = text[:idx]
	}

	text = stripMarkdown(text)
	text = stripURLs(text)
	text = cleanResidue(text)

	links := f.registry.DetectRelevantLinks(originalQuery)
	if len(links) > 0 {
		var b strings.Builder
		b.WriteString(text)
		b.WriteString("\n\n")
		b.WriteString(linksHeader)
		for _, link := range links {
			b.WriteString("\n• ")
			b.WriteString(link.Label)
			b.WriteString(": ")
			b.WriteString(link.URL)
		}
		return b.String()
	}
	return text
}

// stripMarkdown removes formatting syntax, keeping the readable text. Link
// text survives; the URL half is discarded (stripURLs would eat it anyway).
func stripMarkdown(text string) string {
	text = markdownLink.ReplaceAllString(text, "$1")
	text = codeFence.ReplaceAllString(text, "")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = boldItalic.ReplaceAllString(text, "$2")
	text = strikethrough.ReplaceAllString(text, "$1")
	text = heading.ReplaceAllString(text, "")
	text = blockquote.ReplaceAllString(text, "")
	text = listMarker.ReplaceAllString(text, "${1}• ")
	return text
}

// stripURLs removes every URL-shaped substring unconditionally.
// Model-produced URLs are never trusted; any previously injected verified
// block was already removed by Format, so nothing here needs an exemption.
func stripURLs(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	return bareDomain.ReplaceAllString(text, "")
}

// cleanResidue removes the artifacts stripping leaves: empty brackets,
// orphaned protocol fragments, dangling colons, doubled spaces.
func cleanResidue(text string) string {
	text = emptyBrackets.ReplaceAllString(text, "")
	text = orphanProtocol.ReplaceAllString(text, "")
	text = danglingColon.ReplaceAllString(text, ".")
	text = spaceBeforeEnd.ReplaceAllString(text, "$1")
	text = multiSpace.ReplaceAllString(text, " ")
	text = tripleNewline.ReplaceAllString(text, "\n\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
