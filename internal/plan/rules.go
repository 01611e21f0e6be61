// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plan

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/pepperlabs/pepperbot/internal/classify"
)

// RuleSpec is an operator-supplied planner override, loaded from the config
// file. Condition is an expression evaluated against the classification;
// the first matching rule wins.
type RuleSpec struct {
	// Name identifies the rule in logs.
	Name string `yaml:"name"`
	// Condition is an expr expression over RuleEnv, e.g.
	// "Complexity >= 8 && Intent == \"procedural\"".
	Condition string `yaml:"condition"`
	// ForceTier forces the model tier when set ("fast" or "quality").
	ForceTier string `yaml:"force-tier"`
	// ForceGenerate escalates a cache-strategy plan to live generation.
	ForceGenerate bool `yaml:"force-generate"`
}

// RuleEnv is the expression environment: one classification flattened into
// primitive fields.
type RuleEnv struct {
	Intent     string
	Class      string
	Complexity int
	Bucket     string
	Keywords   []string
}

type overrideRule struct {
	spec    RuleSpec
	program *vm.Program
}

func compileRule(spec RuleSpec) (overrideRule, error) {
	if spec.Condition == "" {
		return overrideRule{}, fmt.Errorf("rule %q has no condition", spec.Name)
	}
	if spec.ForceTier != "" && spec.ForceTier != string(TierFast) && spec.ForceTier != string(TierQuality) {
		return overrideRule{}, fmt.Errorf("rule %q has unknown tier %q", spec.Name, spec.ForceTier)
	}
	program, err := expr.Compile(spec.Condition, expr.Env(RuleEnv{}), expr.AsBool())
	if err != nil {
		return overrideRule{}, fmt.Errorf("compiling condition for rule %q: %w", spec.Name, err)
	}
	return overrideRule{spec: spec, program: program}, nil
}

// applyRules evaluates the override rules in order and applies the first
// match. Rule evaluation errors are swallowed: planning must never fail.
func (p *Planner) applyRules(c classify.Classification, rp *ResponsePlan) {
	if len(p.rules) == 0 {
		return
	}

	env := RuleEnv{
		Intent:     string(c.Intent),
		Class:      string(c.ResponseClass),
		Complexity: c.Complexity,
		Bucket:     string(c.LengthBucket),
		Keywords:   c.Keywords,
	}
	for _, rule := range p.rules {
		out, err := expr.Run(rule.program, env)
		if err != nil {
			continue
		}
		matched, ok := out.(bool)
		if !ok || !matched {
			continue
		}
		if rule.spec.ForceTier != "" {
			rp.Tier = ModelTier(rule.spec.ForceTier)
		}
		if rule.spec.ForceGenerate && rp.Strategy == StrategyCache {
			rp.Strategy = StrategyGenerate
		}
		return
	}
}
