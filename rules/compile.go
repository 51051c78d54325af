package rules

import (
	"log"
	"regexp"
)

// CompiledRule pairs a rule with its compiled matcher. Matcher is nil exactly
// when the pattern failed to compile or the trigger type is not "regex"; the
// rule stays visible and editable but never matches.
type CompiledRule struct {
	Rule    Rule
	Matcher *regexp.Regexp
}

// Compile turns one rule into its matchable form. A compile failure is logged
// with the offending pattern and yields an inert rule; it never propagates.
func Compile(r Rule) CompiledRule {
	if r.Trigger.Type != "regex" {
		return CompiledRule{Rule: r}
	}
	re, err := regexp.Compile(r.Trigger.Pattern)
	if err != nil {
		log.Printf("Rules: failed to compile pattern %q for rule %s: %v", r.Trigger.Pattern, r.Meta.ID, err)
		return CompiledRule{Rule: r}
	}
	return CompiledRule{Rule: r, Matcher: re}
}

// CompileAll compiles every rule, tolerating individual failures.
func CompileAll(rs []Rule) []CompiledRule {
	compiled := make([]CompiledRule, 0, len(rs))
	for _, r := range rs {
		compiled = append(compiled, Compile(r))
	}
	return compiled
}
