// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package generate

import (
	"github.com/pepperlabs/pepperbot/internal/classify"
	"github.com/pepperlabs/pepperbot/internal/safety"
)

// Fixed fallback texts. These are the only strings the bot sends when a
// stage fails; they must themselves pass validation (long enough, clean).
const (
	// ApologyText is returned when the remote model call fails.
	ApologyText = "Hmm, I'm having trouble thinking right now. Give me a moment and ask again! 🌶️"
	// KnowledgeUnavailableText is returned when the knowledge base is not loaded.
	KnowledgeUnavailableText = "My knowledge base is taking a little nap. Try again in a bit! 🌶️"
)

// greetingPool and closingPool are the fixed template responses for the
// zero-cost strategies. Selection is uniform for perceived variety.
var greetingPool = []string{
	"Hey hey! 🌶️ What can I help you with today?",
	"GM! Ask me anything about PEPPER — tech, staking, ecosystem, you name it.",
	"Hello! I'm the PEPPER helper. What do you want to know?",
	"Yo! Ready to talk PEPPER whenever you are.",
}

var closingPool = []string{
	"Anytime! Come back whenever you have more questions. 🌶️",
	"Glad I could help! See you around.",
	"You're welcome! The spice must flow. 🌶️",
	"Later! Ping me whenever you need PEPPER facts.",
}

// refusalPoolFor maps a classifier intent to its refusal pool. Refusals for
// messages the pre-filter already caught never reach the generator; this
// covers classifier-detected forbidden and adversarial intents.
func refusalPoolFor(intent classify.Intent) []string {
	if intent == classify.IntentAdversarial {
		return safety.RedirectPool(safety.IntentAdversarial)
	}
	return safety.RedirectPool(safety.IntentInvestmentAdvice)
}
