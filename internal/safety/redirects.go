// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package safety

import "math/rand/v2"

// defaultPick is the production redirect selector.
func defaultPick(n int) int {
	return rand.IntN(n)
}

// redirectPools holds the fixed refusal responses per forbidden intent.
// These never go through the generative stage; they are delivered as-is
// after the formatter pass.
var redirectPools = map[ForbiddenIntent][]string{
	IntentInvestmentAdvice: {
		"I can't give investment advice. I can tell you how PEPPER works, how to use the ecosystem, or where to find official docs though!",
		"That's a decision only you can make — I don't do financial advice. Happy to explain the tech, tokenomics, or roadmap instead.",
		"No investment advice from me, ever. Ask me anything about how PEPPER actually works and I'm all yours.",
	},
	IntentPriceSpeculation: {
		"I don't do price predictions. What I can do is explain the project fundamentals — want a rundown?",
		"Nobody knows where the price goes, least of all me. Ask about utility, staking, or the roadmap instead!",
		"Crystal ball's in the shop. I can cover what PEPPER does and how to use it, though.",
	},
	IntentMarketSentiment: {
		"I stay out of market talk. If you want facts about the project itself, fire away!",
		"Sentiment isn't my department — facts are. Ask me about the tech or the ecosystem.",
	},
	IntentAdversarial: {
		"Nice try! I only answer questions about PEPPER and its ecosystem.",
		"I'm going to stick to my job: answering PEPPER questions. What would you like to know?",
	},
}

// RedirectPool exposes a copy of the pool for an intent so tests and the
// pipeline can verify membership without reaching into package state.
func RedirectPool(intent ForbiddenIntent) []string {
	pool := redirectPools[intent]
	out := make([]string, len(pool))
	copy(out, pool)
	return out
}
