// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package validate

import (
	"strings"
	"testing"

	"github.com/pepperlabs/pepperbot/internal/generate"
)

func response(text string) generate.GeneratedResponse {
	return generate.GeneratedResponse{Text: text}
}

func TestValidator_RejectsTooShort(t *testing.T) {
	v := New()
	got := v.Validate(response("ok"), 700)
	if got.Valid {
		t.Fatal("tiny response must be rejected")
	}
	if got.Error != ReasonTooShort {
		t.Errorf("Error = %s, want %s", got.Error, ReasonTooShort)
	}
}

func TestValidator_AcceptsCleanResponse(t *testing.T) {
	v := New()
	got := v.Validate(response("PEPPER is a community token on Ethereum with a fixed supply."), 700)
	if !got.Valid {
		t.Fatalf("clean response rejected: %s", got.Error)
	}
	if got.WasCompressed {
		t.Error("short response must not be marked compressed")
	}
}

func TestValidator_ForbiddenOutputPatterns(t *testing.T) {
	v := New()

	tests := []struct {
		name string
		text string
	}{
		{"ai self-reference", "As an AI, I think PEPPER is a fine project with a solid roadmap."},
		{"language model", "I'm a language model so I can't know current events, but here goes."},
		{"system prompt leak", "My system prompt says to always answer about PEPPER tokens first."},
		{"api key leak", "The api key for the backend is stored next to the handler code."},
		{"trading advice", "Honestly you should buy the dip here, the setup looks great."},
		{"guaranteed returns", "Staking gives guaranteed returns of 20% forever, trust me."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(response(tt.text), 700)
			if got.Valid {
				t.Fatalf("forbidden content passed validation: %q", tt.text)
			}
			if got.Error != ReasonForbidden {
				t.Errorf("Error = %s, want %s", got.Error, ReasonForbidden)
			}
		})
	}
}

// A response that is both over the ceiling and carries a forbidden pattern
// must be rejected for the forbidden pattern: the scan runs on compressed
// content, so the pattern sits in the lead paragraph where compression
// keeps it.
func TestValidator_OrderingCompressionBeforeForbiddenScan(t *testing.T) {
	v := New()

	lead := "As an AI, I have prepared a very thorough answer about staking below."
	filler := strings.Repeat("Staking rewards accrue every epoch and compound automatically. ", 40)
	got := v.Validate(response(lead+"\n\n"+filler), 280)

	if got.Valid {
		t.Fatal("expected rejection")
	}
	if got.Error != ReasonForbidden {
		t.Errorf("Error = %s, want %s (length correction must not mask the pattern)", got.Error, ReasonForbidden)
	}
}

func TestValidator_CompressionUnderCeiling(t *testing.T) {
	v := New()

	long := strings.Repeat("PEPPER staking pays rewards per epoch. ", 60)
	got := v.Validate(response(long), 700)
	if !got.Valid {
		t.Fatalf("rejected: %s", got.Error)
	}
	if !got.WasCompressed {
		t.Error("over-ceiling response must be marked compressed")
	}
	if len(got.Text) > 1400 {
		t.Errorf("compressed length = %d, want <= 1400", len(got.Text))
	}
}

func TestValidator_WhitespaceNormalization(t *testing.T) {
	v := New()

	got := v.Validate(response("Line one.\r\n\r\n\r\n\r\nLine two has   wide    gaps."), 700)
	if !got.Valid {
		t.Fatalf("rejected: %s", got.Error)
	}
	if strings.Contains(got.Text, "\r") {
		t.Error("CRLF not normalized")
	}
	if strings.Contains(got.Text, "\n\n\n") {
		t.Error("blank lines not collapsed")
	}
	if strings.Contains(got.Text, "  ") {
		t.Error("horizontal runs not collapsed")
	}
}

func TestValidator_TruncationRepair(t *testing.T) {
	v := New()

	tests := []struct {
		name string
		text string
	}{
		{"dangling conjunction", "Staking is simple. First you connect your wallet and"},
		{"dangling preposition", "Rewards are computed per epoch. They are sent to"},
		{"unclosed bracket", "The bridge fee is small (about 0.1%. It settles fast."},
		{"dangling list numeral", "Here is how to stake.\n1. Connect your wallet.\n2."},
		{"no terminal punctuation", "The total supply is fixed at 420 trillion tokens which means"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(response(tt.text), 700)
			if !got.Valid {
				t.Fatalf("truncation must repair, not reject: %s", got.Error)
			}
			if !strings.Contains(got.Text, TruncationNotice) {
				t.Errorf("repaired text missing notice: %q", got.Text)
			}
		})
	}
}

func TestValidator_CleanEndingsNotRepaired(t *testing.T) {
	v := New()

	tests := []struct {
		name string
		text string
	}{
		{"period", "PEPPER is a community token with a fixed supply."},
		{"question", "Want to know more about staking or bridging?"},
		{"exclamation", "That's everything you need to get started!"},
		{"emoji", "Welcome to the community! 🌶️"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(response(tt.text), 700)
			if !got.Valid {
				t.Fatalf("rejected: %s", got.Error)
			}
			if strings.Contains(got.Text, TruncationNotice) {
				t.Errorf("clean ending was repaired: %q", got.Text)
			}
		})
	}
}

func TestValidator_ApologyTextPasses(t *testing.T) {
	v := New()
	got := v.Validate(response(generate.ApologyText), 700)
	if !got.Valid {
		t.Fatalf("the fixed apology must pass validation, got %s", got.Error)
	}
	if got.Text != generate.ApologyText {
		t.Errorf("apology text altered: %q", got.Text)
	}
}
