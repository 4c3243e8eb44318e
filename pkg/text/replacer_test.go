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
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplacer_ReplaceText(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		rules        *RuleSet
		want         string
		wantCount    int
		wantError    string
		wantModified bool
	}{
		{
			name:         "simple_replacement",
			content:      "Hello World",
			rules:        MustCompile(Rule{Literal: "World", Replace: "Universe"}),
			want:         "Hello Universe",
			wantCount:    1,
			wantModified: true,
		},
		{
			name:    "multiple_rules",
			content: "Hello World",
			rules: MustCompile(
				Rule{Literal: "Hello", Replace: "Hi"},
				Rule{Literal: "World", Replace: "Universe"},
			),
			want:         "Hi Universe",
			wantCount:    2,
			wantModified: true,
		},
		{
			name:    "rules_cancel_out",
			content: "cat",
			rules: MustCompile(
				Rule{Literal: "cat", Replace: "dog"},
				Rule{Literal: "dog", Replace: "cat"},
			),
			want:         "cat",
			wantCount:    2,
			wantModified: false,
		},
		{
			name:         "no_match",
			content:      "Hello World",
			rules:        MustCompile(Rule{Literal: "Goodbye", Replace: "Hi"}),
			want:         "Hello World",
			wantCount:    0,
			wantModified: false,
		},
		{
			name:      "nil_rules",
			content:   "Hello World",
			wantError: "rule set is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replacer := NewReplacer()
			result, err := replacer.ReplaceText(context.Background(), strings.NewReader(tt.content), tt.rules)

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.content, string(result.OriginalContent))
			assert.Equal(t, tt.want, string(result.ModifiedContent))
			assert.Equal(t, tt.wantCount, result.ReplacementCount)
			assert.Equal(t, tt.wantModified, result.WasModified)
		})
	}
}

func TestReplacer_ReplaceTextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReplacer().ReplaceText(ctx, strings.NewReader("AuZap"), MustCompile(Rule{Literal: "AuZap", Replace: "Oxy"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
