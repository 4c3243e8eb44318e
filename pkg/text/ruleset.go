// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package text

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// 🚦 Severity of a rule set conflict
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// ConflictKind classifies a rule set problem.
type ConflictKind string

const (
	ConflictInvalid    ConflictKind = "invalid"     // rule cannot be compiled
	ConflictEmptyMatch ConflictKind = "empty-match" // pattern can match the empty string
	ConflictBadRef     ConflictKind = "bad-ref"     // replacement references a missing group
	ConflictDuplicate  ConflictKind = "duplicate"   // same matcher as an earlier rule
	ConflictRematch    ConflictKind = "rematch"     // replacement is matched by itself or an earlier rule
	ConflictChain      ConflictKind = "chain"       // replacement is matched by a later rule
	ConflictShadow     ConflictKind = "shadow"      // earlier literal rewrites part of this literal
)

// ⚠️ Conflict describes one problem found while validating a rule set.
type Conflict struct {
	Rule     int // index of the offending rule
	Other    int // index of the rule it conflicts with, -1 if none
	Kind     ConflictKind
	Severity Severity
	Detail   string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s: %s", c.Kind, c.Detail)
}

// ValidationError is returned when a rule set cannot be applied safely.
type ValidationError struct {
	Conflicts []Conflict
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		msgs = append(msgs, c.String())
	}
	return "invalid rule set: " + strings.Join(msgs, "; ")
}

// 📚 RuleSet is an ordered, immutable sequence of compiled rules.
type RuleSet struct {
	rules     []*compiledRule
	conflicts []Conflict
}

// 🏭 Compile builds a RuleSet from rules in the given order.
//
// Compile fails only when a rule cannot be compiled at all. Idempotence
// problems are collected and reported by Validate, so callers that want to
// apply a deliberately order-dependent rule set still can.
func Compile(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{rules: make([]*compiledRule, 0, len(rules))}

	var broken []Conflict
	for i, r := range rules {
		cr, err := compileRule(r)
		if err != nil {
			broken = append(broken, Conflict{
				Rule:     i,
				Other:    -1,
				Kind:     ConflictInvalid,
				Severity: SeverityError,
				Detail:   fmt.Sprintf("%s: %v", r.label(i), err),
			})
			continue
		}
		rs.rules = append(rs.rules, cr)
	}
	if len(broken) > 0 {
		return nil, &ValidationError{Conflicts: broken}
	}

	rs.conflicts = rs.check()
	return rs, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(rules ...Rule) *RuleSet {
	rs, err := Compile(rules)
	if err != nil {
		panic(err)
	}
	return rs
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Rules returns a copy of the rules in order.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = r.Rule
	}
	return out
}

// Conflicts returns every problem found at compile time, errors and warnings.
func (rs *RuleSet) Conflicts() []Conflict {
	return append([]Conflict(nil), rs.conflicts...)
}

// Warnings returns the non-fatal conflicts.
func (rs *RuleSet) Warnings() []Conflict {
	var out []Conflict
	for _, c := range rs.conflicts {
		if c.Severity == SeverityWarning {
			out = append(out, c)
		}
	}
	return out
}

// ✅ Validate returns a *ValidationError if the rule set is not guaranteed to
// reach a fixed point after one pass.
func (rs *RuleSet) Validate() error {
	var errs []Conflict
	for _, c := range rs.conflicts {
		if c.Severity == SeverityError {
			errs = append(errs, c)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Conflicts: errs}
	}
	return nil
}

// zeroWidthInputs are inputs used to detect patterns that can match zero-width.
var zeroWidthInputs = []string{"", "a", " a ", "a b", "a\nb"}

func (rs *RuleSet) check() []Conflict {
	var out []Conflict

	for i, r := range rs.rules {
		if zeroWidth(r) {
			out = append(out, Conflict{
				Rule: i, Other: -1, Kind: ConflictEmptyMatch, Severity: SeverityError,
				Detail: fmt.Sprintf("%s can match the empty string", r.label(i)),
			})
		}

		for _, ref := range r.refs {
			if !r.hasGroup(ref) {
				out = append(out, Conflict{
					Rule: i, Other: -1, Kind: ConflictBadRef, Severity: SeverityError,
					Detail: fmt.Sprintf("%s replacement references unknown group $%s", r.label(i), ref),
				})
			}
		}

		for j := 0; j < i; j++ {
			if rs.rules[j].re.String() == r.re.String() && rs.rules[j].WholeWord == r.WholeWord {
				out = append(out, Conflict{
					Rule: i, Other: j, Kind: ConflictDuplicate, Severity: SeverityError,
					Detail: fmt.Sprintf("%s repeats the matcher of %s and never matches", r.label(i), rs.rules[j].label(j)),
				})
			}
			if r.literal && rs.rules[j].literal && r.Literal != rs.rules[j].Literal && rs.rules[j].hasMatch(r.Literal) {
				out = append(out, Conflict{
					Rule: i, Other: j, Kind: ConflictShadow, Severity: SeverityWarning,
					Detail: fmt.Sprintf("%s is partly rewritten by earlier %s", r.label(i), rs.rules[j].label(j)),
				})
			}
		}

		for j, other := range rs.rules {
			for _, frag := range r.fragments {
				if !other.hasMatch(frag) && !other.matchesAround(frag, r.literal && r.WholeWord) {
					continue
				}
				c := Conflict{Rule: i, Other: j}
				if j <= i {
					c.Kind = ConflictRematch
					c.Severity = SeverityError
					c.Detail = fmt.Sprintf("%s replacement %q is matched again by %s", r.label(i), frag, other.label(j))
				} else {
					c.Kind = ConflictChain
					c.Severity = SeverityWarning
					c.Detail = fmt.Sprintf("%s replacement %q is refined by later %s", r.label(i), frag, other.label(j))
				}
				out = append(out, c)
				break
			}
		}
	}

	return out
}

// matchesAround reports whether a literal rule can match text made of frag
// and the surrounding pieces of its own literal. Rewriting "tutores" to
// "tutor" inside "tutoreses" leaves "tutores" behind, which a check against
// frag alone misses. When bounded, frag replaced a whole word, so only pieces
// meeting it at a non-word character are tried. Only literal matchers are
// covered; the text a pattern could match around frag is unbounded.
func (r *compiledRule) matchesAround(frag string, bounded bool) bool {
	if !r.literal || frag == "" {
		return false
	}

	lit := r.Literal
	var left, right []string
	for k := 1; k < len(lit); k++ {
		if !utf8.RuneStart(lit[k]) {
			continue
		}
		before, _ := utf8.DecodeLastRuneInString(lit[:k])
		after, _ := utf8.DecodeRuneInString(lit[k:])
		if !bounded || !isWordRune(before) {
			left = append(left, lit[:k])
		}
		if !bounded || !isWordRune(after) {
			right = append(right, lit[k:])
		}
	}

	for _, l := range left {
		if r.hasMatch(l + frag) {
			return true
		}
	}
	for _, rt := range right {
		if r.hasMatch(frag + rt) {
			return true
		}
	}
	for _, l := range left {
		for _, rt := range right {
			if r.hasMatch(l + frag + rt) {
				return true
			}
		}
	}
	return false
}

func zeroWidth(r *compiledRule) bool {
	for _, s := range zeroWidthInputs {
		for _, loc := range r.find(s) {
			if loc[0] == loc[1] {
				return true
			}
		}
	}
	return false
}

// 📊 Result is the outcome of applying a rule set to some text.
type Result struct {
	Output string
	Count  int   // total matches replaced, summed over rules
	Hits   []int // matches replaced per rule, in rule order
}

// 🔄 Apply runs every rule in order. Each rule sees the output of the
// previous one. The count of each rule is taken against its own input.
func (rs *RuleSet) Apply(content string) Result {
	res := Result{Output: content, Hits: make([]int, len(rs.rules))}
	for i, r := range rs.rules {
		out, n := r.replaceAll(res.Output)
		if n == 0 {
			continue
		}
		res.Hits[i] = n
		res.Count += n
		res.Output = out
	}
	return res
}
