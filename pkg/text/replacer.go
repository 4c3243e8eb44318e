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
	"bytes"
	"context"
	"io"

	"gitlab.com/tozd/go/errors"
)

// ReplacementResult contains the results of a text replacement operation
type ReplacementResult struct {
	// WasModified indicates if the output differs from the input
	WasModified bool

	// ReplacementCount is the number of replacements made
	ReplacementCount int

	// Hits is the number of replacements made by each rule, in order
	Hits []int

	// OriginalContent is the content before replacements
	OriginalContent []byte

	// ModifiedContent is the content after replacements
	ModifiedContent []byte
}

// TextReplacer defines the interface for text replacement operations
type TextReplacer interface {
	// ReplaceText applies a rule set to the content
	ReplaceText(ctx context.Context, content io.Reader, rules *RuleSet) (*ReplacementResult, error)
}

var _ TextReplacer = (*Replacer)(nil)

// Replacer implements TextReplacer on top of RuleSet.Apply
type Replacer struct{}

// NewReplacer creates a new Replacer
func NewReplacer() *Replacer {
	return &Replacer{}
}

// ReplaceText implements TextReplacer.ReplaceText
func (r *Replacer) ReplaceText(ctx context.Context, content io.Reader, rules *RuleSet) (*ReplacementResult, error) {
	if rules == nil {
		return nil, errors.New("rule set is required")
	}

	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("replacing text: %w", err)
	}

	res := rules.Apply(string(originalContent))
	modified := []byte(res.Output)

	return &ReplacementResult{
		WasModified:      !bytes.Equal(originalContent, modified),
		ReplacementCount: res.Count,
		Hits:             res.Hits,
		OriginalContent:  originalContent,
		ModifiedContent:  modified,
	}, nil
}
