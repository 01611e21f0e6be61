// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sanitize

import (
	"os"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFormatter() *Formatter {
	return NewFormatter(NewLinkRegistry())
}

func TestFormatter_StripsUntrustedURLs(t *testing.T) {
	f := newTestFormatter()

	got := f.Format("Visit https://evil.example/x for info", "what is the website")

	assert.NotContains(t, got, "evil.example")
	assert.Contains(t, got, "https://pepper.community", "official link must be injected for a website query")
}

func TestFormatter_StripsBareDomains(t *testing.T) {
	f := newTestFormatter()

	got := f.Format("Check super-legit-pepper.xyz for airdrops today.", "hello")
	assert.NotContains(t, got, "super-legit-pepper.xyz")
}

func TestFormatter_StripsMarkdown(t *testing.T) {
	f := newTestFormatter()

	in := "# Heading\n\n**Bold claim** and *emphasis* plus `code`.\n\n- first point\n- second point\n\n> quoted wisdom\n\n[the docs](https://fake.docs.example/page) explain ~~old info~~ more."
	got := f.Format(in, "unrelated query")

	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "`")
	assert.NotContains(t, got, "~~")
	assert.NotContains(t, got, ">")
	assert.NotContains(t, got, "fake.docs.example")
	assert.Contains(t, got, "Bold claim")
	assert.Contains(t, got, "• first point")
	assert.Contains(t, got, "the docs", "markdown link text must survive")
}

func TestFormatter_InjectsRelevantLinksDeduplicated(t *testing.T) {
	f := newTestFormatter()

	got := f.Format("Staking is live.", "how do I stake and where is the staking dashboard")

	require.Contains(t, got, "Official links:")
	assert.Equal(t, 1, strings.Count(got, "https://stake.pepper.community"), "one link per registry entry regardless of trigger count")
}

func TestFormatter_NoLinksForUnrelatedQuery(t *testing.T) {
	f := newTestFormatter()

	got := f.Format("PEPPER is a community token.", "zzz qqq")
	assert.NotContains(t, got, "Official links:")
}

func TestFormatter_CleansResidue(t *testing.T) {
	f := newTestFormatter()

	got := f.Format("See () and [] here: https://gone.example\nMore:  \ntext .", "hello")
	assert.NotContains(t, got, "()")
	assert.NotContains(t, got, "[]")
	assert.NotContains(t, got, "  ")
	assert.NotContains(t, got, " .")
}

func TestFormatter_Idempotent(t *testing.T) {
	f := newTestFormatter()

	inputs := []string{
		"Visit https://evil.example for **great** info",
		"# Staking\n\n- step one\n- step two\n\nDone!",
		"Plain text already.",
	}
	queries := []string{"what is the website", "how to stake", "hello"}

	for i, in := range inputs {
		once := f.Format(in, queries[i])
		twice := f.Format(once, queries[i])
		assert.Equal(t, once, twice, "Format must be idempotent for %q", in)
	}
}

func TestProperty_FormatIdempotent(t *testing.T) {
	f := newTestFormatter()
	properties := gopter.NewProperties(nil)

	properties.Property("format(format(x)) == format(x)", prop.ForAll(
		func(text string, query string) bool {
			once := f.Format(text, query)
			return f.Format(once, query) == once
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestLinkRegistry_Detect(t *testing.T) {
	r := NewLinkRegistry()

	links := r.DetectRelevantLinks("how do I bridge to base")
	require.NotEmpty(t, links)
	assert.Equal(t, "Bridge", links[0].Label)

	assert.Empty(t, r.DetectRelevantLinks("unrelated question entirely"))
}

func TestLinkRegistry_LoadFile(t *testing.T) {
	path := t.TempDir() + "/links.json"
	content := `{"links":[{"label":"Forum","url":"https://forum.pepper.community","triggers":["forum","discuss"]}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := LoadRegistryFile(path)
	require.NoError(t, err)
	links := r.DetectRelevantLinks("where is the forum")
	require.Len(t, links, 1)
	assert.Equal(t, "Forum", links[0].Label)
}
