// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package validate

import (
	"regexp"
	"strings"
)

var (
	excessBlankLines = regexp.MustCompile(`\n{3,}`)
	horizontalRuns   = regexp.MustCompile(`[ \t]{2,}`)
	trailingSpace    = regexp.MustCompile(`[ \t]+\n`)
)

// normalizeWhitespace converts CRLF to LF, collapses three or more blank
// lines to two, and collapses runs of horizontal whitespace.
func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = trailingSpace.ReplaceAllString(text, "\n")
	text = excessBlankLines.ReplaceAllString(text, "\n\n")
	text = horizontalRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
