// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package generate

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/pepperlabs/pepperbot/internal/textutil"
)

// Static facts answer common single-fact queries with zero variance and
// zero upstream cost. Keys are normalized query forms; multiple phrasings
// map to the same response.

// defaultFacts ship built in; a facts file can extend or override them.
var defaultFacts = map[string]string{
	"what is the contract address":    "The official PEPPER contract address is 0x6982508145454ce325ddbe47a25d4ec3d2311933. Always verify on the official site before interacting!",
	"contract address":                "The official PEPPER contract address is 0x6982508145454ce325ddbe47a25d4ec3d2311933. Always verify on the official site before interacting!",
	"what is the total supply":        "PEPPER has a fixed total supply of 420.69 trillion tokens. No minting function exists, so supply can only go down through burns.",
	"total supply":                    "PEPPER has a fixed total supply of 420.69 trillion tokens. No minting function exists, so supply can only go down through burns.",
	"what chain is pepper on":         "PEPPER lives on Ethereum mainnet, with official bridges to Arbitrum and Base.",
	"is there a tax":                  "PEPPER has zero buy tax and zero sell tax. Any contract claiming otherwise is not the official token.",
	"where can i see the audit":       "The contract was audited; the report is linked from the official site's security page.",
}

// FactStore resolves exact-match static facts. Immutable after load.
type FactStore struct {
	facts map[string]string
}

// NewFactStore builds a store from the built-in defaults.
func NewFactStore() *FactStore {
	facts := make(map[string]string, len(defaultFacts))
	for q, r := range defaultFacts {
		facts[textutil.Normalize(q)] = r
	}
	return &FactStore{facts: facts}
}

// LoadFactsFile merges facts from a JSON file of the form
// {"facts": [{"queries": ["..."], "response": "..."}]}. Entries in the file
// win over built-ins on key collision.
func (s *FactStore) LoadFactsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading facts file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("facts file %s is not valid JSON", path)
	}

	loaded := 0
	gjson.GetBytes(data, "facts").ForEach(func(_, fact gjson.Result) bool {
		response := fact.Get("response").String()
		if response == "" {
			return true
		}
		fact.Get("queries").ForEach(func(_, q gjson.Result) bool {
			key := textutil.Normalize(q.String())
			if key != "" {
				s.facts[key] = response
				loaded++
			}
			return true
		})
		return true
	})
	if loaded == 0 {
		return fmt.Errorf("facts file %s contained no usable entries", path)
	}
	return nil
}

// Lookup returns the static response for query, if any. Matching is exact
// on the normalized form.
func (s *FactStore) Lookup(query string) (string, bool) {
	response, ok := s.facts[textutil.Normalize(query)]
	return response, ok
}
