// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sanitize

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// VerifiedLink is one entry in the trusted link registry. Only these URLs
// ever appear in delivered messages; anything the model produces is
// stripped.
type VerifiedLink struct {
	Label    string
	URL      string
	Triggers []string
}

// defaultLinks ship built in; a registry file can replace them.
var defaultLinks = []VerifiedLink{
	{
		Label:    "Official site",
		URL:      "https://pepper.community",
		Triggers: []string{"website", "site", "official", "link", "homepage"},
	},
	{
		Label:    "Docs",
		URL:      "https://docs.pepper.community",
		Triggers: []string{"docs", "documentation", "whitepaper", "guide", "tutorial"},
	},
	{
		Label:    "Staking dashboard",
		URL:      "https://stake.pepper.community",
		Triggers: []string{"stake", "staking", "rewards", "apy"},
	},
	{
		Label:    "Bridge",
		URL:      "https://bridge.pepper.community",
		Triggers: []string{"bridge", "bridging", "arbitrum", "base", "chain"},
	},
	{
		Label:    "Contract on Etherscan",
		URL:      "https://etherscan.io/token/0x6982508145454ce325ddbe47a25d4ec3d2311933",
		Triggers: []string{"contract", "address", "etherscan", "verify"},
	},
}

// LinkRegistry detects which verified links are relevant to a query.
// Immutable after construction.
type LinkRegistry struct {
	links []VerifiedLink
}

// NewLinkRegistry creates a registry with the built-in links.
func NewLinkRegistry() *LinkRegistry {
	return &LinkRegistry{links: defaultLinks}
}

// LoadRegistryFile replaces the registry from a JSON file of the form
// {"links": [{"label": "...", "url": "...", "triggers": ["..."]}]}.
func LoadRegistryFile(path string) (*LinkRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading link registry: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("link registry %s is not valid JSON", path)
	}

	var links []VerifiedLink
	gjson.GetBytes(data, "links").ForEach(func(_, entry gjson.Result) bool {
		link := VerifiedLink{
			Label: entry.Get("label").String(),
			URL:   entry.Get("url").String(),
		}
		entry.Get("triggers").ForEach(func(_, trig gjson.Result) bool {
			link.Triggers = append(link.Triggers, strings.ToLower(trig.String()))
			return true
		})
		if link.Label != "" && link.URL != "" {
			links = append(links, link)
		}
		return true
	})
	if len(links) == 0 {
		return nil, fmt.Errorf("link registry %s contained no usable entries", path)
	}
	return &LinkRegistry{links: links}, nil
}

// DetectRelevantLinks returns the verified links whose triggers appear in
// the query, in registry order, deduplicated by URL.
func (r *LinkRegistry) DetectRelevantLinks(query string) []VerifiedLink {
	lowered := strings.ToLower(query)
	var out []VerifiedLink
	seen := make(map[string]struct{})
	for _, link := range r.links {
		if _, dup := seen[link.URL]; dup {
			continue
		}
		for _, trigger := range link.Triggers {
			if strings.Contains(lowered, trigger) {
				seen[link.URL] = struct{}{}
				out = append(out, link)
				break
			}
		}
	}
	return out
}
