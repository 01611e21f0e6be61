// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plan

import (
	"testing"

	"github.com/pepperlabs/pepperbot/internal/classify"
)

func classification(class classify.ResponseClass, intent classify.Intent, complexity int, keywords ...string) classify.Classification {
	return classify.Classification{
		Intent:        intent,
		Complexity:    complexity,
		LengthBucket:  classify.BucketShort,
		ResponseClass: class,
		CharBudget:    classify.CharBudgetFor(class),
		Keywords:      keywords,
	}
}

func TestPlanner_StrategyMapping(t *testing.T) {
	p := New(nil)

	tests := []struct {
		name string
		c    classify.Classification
		want Strategy
	}{
		{"greeting is template", classification(classify.ClassGreeting, classify.IntentGreeting, 0), StrategyTemplate},
		{"closing is template", classification(classify.ClassClosing, classify.IntentClosing, 0), StrategyTemplate},
		{"refusal is template", classification(classify.ClassRefusal, classify.IntentForbidden, 4), StrategyTemplate},
		{"simple factual is cache", classification(classify.ClassFactual, classify.IntentFactual, 2), StrategyCache},
		{"complex factual is generate", classification(classify.ClassFactual, classify.IntentFactual, 6), StrategyGenerate},
		{"procedural is generate", classification(classify.ClassProcedural, classify.IntentProcedural, 4), StrategyGenerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Plan(tt.c).Strategy; got != tt.want {
				t.Errorf("Plan().Strategy = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPlanner_TierSelection(t *testing.T) {
	p := New(nil)
	if got := p.SelectModel(2); got != TierFast {
		t.Errorf("SelectModel(2) = %s, want fast", got)
	}
	if got := p.SelectModel(5); got != TierQuality {
		t.Errorf("SelectModel(5) = %s, want quality", got)
	}
}

func TestPlanner_KnowledgeSections(t *testing.T) {
	p := New(nil)

	rp := p.Plan(classification(classify.ClassFactual, classify.IntentFactual, 2, "staking", "rewards", "bridge", "wallet", "roadmap"))
	if len(rp.KnowledgeSections) != 3 {
		t.Fatalf("sections = %v, want exactly 3", rp.KnowledgeSections)
	}
	if rp.KnowledgeSections[0] != "staking" || rp.KnowledgeSections[1] != "bridging" || rp.KnowledgeSections[2] != "wallets" {
		t.Errorf("sections = %v, want [staking bridging wallets]", rp.KnowledgeSections)
	}

	// No keyword match falls back to the overview set, never empty.
	rp = p.Plan(classification(classify.ClassFactual, classify.IntentFactual, 2, "zzz"))
	if len(rp.KnowledgeSections) == 0 {
		t.Fatal("planner must never produce zero knowledge sections")
	}
	if rp.KnowledgeSections[0] != "overview" {
		t.Errorf("sections = %v, want overview fallback", rp.KnowledgeSections)
	}
}

func TestPlanner_ShouldSplit(t *testing.T) {
	p := New(nil)

	if p.Plan(classification(classify.ClassFactual, classify.IntentFactual, 2)).ShouldSplit {
		t.Error("simple factual plan should not advise splitting")
	}
	if !p.Plan(classification(classify.ClassProcedural, classify.IntentProcedural, 3)).ShouldSplit {
		t.Error("procedural budget above the advisory threshold should advise splitting")
	}
	if !p.Plan(classification(classify.ClassFactual, classify.IntentFactual, 7)).ShouldSplit {
		t.Error("high complexity should advise splitting")
	}
}

func TestPlanner_OverrideRules(t *testing.T) {
	p := New([]RuleSpec{
		{Name: "bad rule", Condition: "nonsense &&& syntax"},
		{Name: "escalate deep dives", Condition: `Complexity >= 8`, ForceTier: "quality", ForceGenerate: true},
	})

	// Matching rule forces tier and escalates cache to generate.
	rp := p.Plan(classify.Classification{
		Intent:        classify.IntentFactual,
		ResponseClass: classify.ClassFactual,
		Complexity:    8,
		CharBudget:    700,
		LengthBucket:  classify.BucketMicro,
	})
	if rp.Tier != TierQuality {
		t.Errorf("Tier = %s, want quality", rp.Tier)
	}

	// Rules never touch template plans.
	rp = p.Plan(classification(classify.ClassRefusal, classify.IntentForbidden, 9))
	if rp.Strategy != StrategyTemplate {
		t.Errorf("refusal strategy = %s, want template despite matching rule", rp.Strategy)
	}
}

func TestPlanner_BudgetPositiveAndBounded(t *testing.T) {
	p := New(nil)
	for _, class := range []classify.ResponseClass{
		classify.ClassGreeting, classify.ClassClosing, classify.ClassRefusal,
		classify.ClassFactual, classify.ClassProcedural,
	} {
		rp := p.Plan(classification(class, classify.IntentFactual, 3))
		if rp.CharBudget <= 0 || rp.CharBudget > 4096 {
			t.Errorf("class %s budget = %d, want in (0, 4096]", class, rp.CharBudget)
		}
	}
}
