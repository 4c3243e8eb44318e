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
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

// 🔄 Rule is a single ordered substitution.
//
// Exactly one of Literal or Pattern must be set. Literal rules replace the
// literal text and treat Replace literally. Pattern rules use RE2 syntax and
// may reference capture groups in Replace ($1, ${1}, ${name}, $$ for a dollar).
// WholeWord treats letters and digits of every script as word characters; a
// \b written inside a Pattern keeps its ASCII RE2 meaning.
type Rule struct {
	Name      string // Optional label used in reports
	Literal   string // Literal text to match
	Pattern   string // Regular expression to match
	Replace   string // Replacement text or template
	WholeWord bool   // Only match when not embedded in a larger run of letters, digits or '_'
}

// Matcher returns the user-facing form of the rule's matcher.
func (r Rule) Matcher() string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return r.Literal
}

func (r Rule) label(i int) string {
	if r.Name != "" {
		return fmt.Sprintf("rule %d (%s)", i, r.Name)
	}
	return fmt.Sprintf("rule %d %q", i, r.Matcher())
}

// compiledRule is a Rule with its matcher compiled and its replacement parsed.
type compiledRule struct {
	Rule
	re        *regexp.Regexp
	literal   bool     // replacement is inserted verbatim
	fragments []string // literal pieces of the replacement, group references removed
	refs      []string // group names or numbers referenced by the replacement
}

func compileRule(r Rule) (*compiledRule, error) {
	switch {
	case r.Literal == "" && r.Pattern == "":
		return nil, errors.Errorf("one of literal or pattern is required")
	case r.Literal != "" && r.Pattern != "":
		return nil, errors.Errorf("literal and pattern are mutually exclusive")
	}

	cr := &compiledRule{Rule: r}

	expr := r.Pattern
	if r.Literal != "" {
		cr.literal = true
		expr = regexp.QuoteMeta(r.Literal)
		first, _ := utf8.DecodeRuneInString(r.Literal)
		last, _ := utf8.DecodeLastRuneInString(r.Literal)
		if r.WholeWord && (!isWordRune(first) || !isWordRune(last)) {
			return nil, errors.Errorf("whole_word literal %q must start and end with a word character", r.Literal)
		}
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("compiling %q: %w", r.Matcher(), err)
	}
	cr.re = re

	if cr.literal {
		if r.Replace != "" {
			cr.fragments = []string{r.Replace}
		}
	} else {
		cr.fragments, cr.refs = parseTemplate(r.Replace)
	}

	return cr, nil
}

// find returns the submatch index pairs of every non-overlapping match in src.
// Whole-word rules keep only matches whose edges fall on a word boundary,
// where letters and digits of any script count as word characters.
func (r *compiledRule) find(src string) [][]int {
	if !r.WholeWord {
		return r.re.FindAllStringSubmatchIndex(src, -1)
	}

	if !r.literal {
		var out [][]int
		for _, m := range r.re.FindAllStringSubmatchIndex(src, -1) {
			if wordBoundary(src, m[0]) && wordBoundary(src, m[1]) {
				out = append(out, m)
			}
		}
		return out
	}

	var out [][]int
	for from := 0; from <= len(src)-len(r.Literal); {
		i := strings.Index(src[from:], r.Literal)
		if i < 0 {
			break
		}
		start, end := from+i, from+i+len(r.Literal)
		if wordBoundary(src, start) && wordBoundary(src, end) {
			out = append(out, []int{start, end})
			from = end
			continue
		}
		_, size := utf8.DecodeRuneInString(src[start:])
		from = start + size
	}
	return out
}

// hasMatch reports whether the rule has a non-empty match in s.
func (r *compiledRule) hasMatch(s string) bool {
	for _, m := range r.find(s) {
		if m[1] > m[0] {
			return true
		}
	}
	return false
}

// replaceAll rewrites every non-overlapping match in src and reports how many
// matches were replaced. The count and the rewrite come from the same match
// list so they can never disagree.
func (r *compiledRule) replaceAll(src string) (string, int) {
	matches := r.find(src)
	if len(matches) == 0 {
		return src, 0
	}

	dst := make([]byte, 0, len(src))
	last := 0
	for _, m := range matches {
		dst = append(dst, src[last:m[0]]...)
		if r.literal {
			dst = append(dst, r.Replace...)
		} else {
			dst = r.re.ExpandString(dst, r.Replace, src, m)
		}
		last = m[1]
	}
	dst = append(dst, src[last:]...)

	return string(dst), len(matches)
}

// hasGroup reports whether ref names a capture group of the rule's pattern.
func (r *compiledRule) hasGroup(ref string) bool {
	if n, err := strconv.Atoi(ref); err == nil && isDigits(ref) {
		return n <= r.re.NumSubexp()
	}
	for _, name := range r.re.SubexpNames() {
		if name != "" && name == ref {
			return true
		}
	}
	return false
}

// parseTemplate splits a regexp replacement template into the literal text
// between group references and the references themselves. It follows the
// rules of regexp.Expand: malformed references are kept as literal text.
func parseTemplate(tmpl string) (fragments []string, refs []string) {
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			fragments = append(fragments, cur.String())
			cur.Reset()
		}
	}

	for len(tmpl) > 0 {
		i := strings.IndexByte(tmpl, '$')
		if i < 0 {
			cur.WriteString(tmpl)
			break
		}
		cur.WriteString(tmpl[:i])
		tmpl = tmpl[i:]

		if len(tmpl) > 1 && tmpl[1] == '$' {
			cur.WriteByte('$')
			tmpl = tmpl[2:]
			continue
		}

		name, rest, ok := extractRef(tmpl)
		if !ok {
			cur.WriteByte('$')
			tmpl = tmpl[1:]
			continue
		}
		flush()
		refs = append(refs, name)
		tmpl = rest
	}
	flush()

	return fragments, refs
}

// extractRef parses $name or ${name} at the start of s.
func extractRef(s string) (name, rest string, ok bool) {
	if len(s) < 2 || s[0] != '$' {
		return "", "", false
	}
	brace := false
	if s[1] == '{' {
		brace = true
		s = s[2:]
	} else {
		s = s[1:]
	}

	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		i += size
	}
	if i == 0 {
		return "", "", false
	}
	name = s[:i]
	if brace {
		if i >= len(s) || s[i] != '}' {
			return "", "", false
		}
		i++
	}
	return name, s[i:], true
}

// wordBoundary reports whether byte offset i of s sits between a word
// character and a non-word character. The ends of s count as non-word.
func wordBoundary(s string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWordRune(r)
	}
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
