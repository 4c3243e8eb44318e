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

package config

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/codemod/pkg/discovery"
	"github.com/walteh/codemod/pkg/operation"
	"github.com/walteh/codemod/pkg/rename"
	"github.com/walteh/codemod/pkg/status"
	"github.com/walteh/codemod/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// DefaultFile is the config file used when none is given.
const DefaultFile = ".codemod.hcl"

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 Rule is one ordered substitution
type Rule struct {
	Name      string `hcl:"name,optional" yaml:"name,omitempty" json:"name,omitempty"`
	Literal   string `hcl:"literal,optional" yaml:"literal,omitempty" json:"literal,omitempty"`
	Pattern   string `hcl:"pattern,optional" yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Replace   string `hcl:"replace,optional" yaml:"replace" json:"replace"`
	WholeWord bool   `hcl:"whole_word,optional" yaml:"whole_word,omitempty" json:"whole_word,omitempty"`
}

// 🚚 Rename moves a path before substitution runs
type Rename struct {
	From string `hcl:"from" yaml:"from" json:"from"`
	To   string `hcl:"to" yaml:"to" json:"to"`
}

// 🧩 PhaseConfig is one named migration step
type PhaseConfig struct {
	Name         string   `hcl:"name,label" yaml:"name" json:"name"`
	Description  string   `hcl:"description,optional" yaml:"description,omitempty" json:"description,omitempty"`
	Root         string   `hcl:"root,optional" yaml:"root,omitempty" json:"root,omitempty"`             // Relative to the config root
	Extensions   []string `hcl:"extensions,optional" yaml:"extensions,omitempty" json:"extensions,omitempty"` // Empty means every extension
	IgnoreDirs   []string `hcl:"ignore_dirs,optional" yaml:"ignore_dirs,omitempty" json:"ignore_dirs,omitempty"`
	Include      []string `hcl:"include,optional" yaml:"include,omitempty" json:"include,omitempty"`
	Exclude      []string `hcl:"exclude,optional" yaml:"exclude,omitempty" json:"exclude,omitempty"`
	Encoding     string   `hcl:"encoding,optional" yaml:"encoding,omitempty" json:"encoding,omitempty"`
	RenamePolicy string   `hcl:"rename_policy,optional" yaml:"rename_policy,omitempty" json:"rename_policy,omitempty"`
	Rules        []Rule   `hcl:"rule,block" yaml:"rules,omitempty" json:"rules,omitempty"`
	Renames      []Rename `hcl:"rename,block" yaml:"renames,omitempty" json:"renames,omitempty"`
}

// 📦 Config is the whole codemod configuration
type Config struct {
	Root   string        `hcl:"root,optional" yaml:"root,omitempty" json:"root,omitempty"` // Relative to the config file
	Phases []PhaseConfig `hcl:"phase,block" yaml:"phases" json:"phases"`

	location string
}

// Location returns the path the config was loaded from, if any.
func (cfg *Config) Location() string {
	return cfg.location
}

// 📥 Load reads, parses and validates a config file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().Int("phases", len(cfg.Phases)).Msg("configuration loaded")
	return cfg, nil
}

// ✅ Validate checks the config and fills in defaults.
func (cfg *Config) Validate() error {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	cfg.Root = filepath.Clean(cfg.Root)

	if len(cfg.Phases) == 0 {
		return errors.Errorf("at least one phase is required")
	}

	seen := make(map[string]bool, len(cfg.Phases))
	for i := range cfg.Phases {
		p := &cfg.Phases[i]
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return errors.Errorf("phase %d: name is required", i)
		}
		if seen[p.Name] {
			return errors.Errorf("phase %q is defined more than once", p.Name)
		}
		seen[p.Name] = true

		if err := p.validate(); err != nil {
			return errors.Errorf("phase %q: %w", p.Name, err)
		}
	}

	return nil
}

func (p *PhaseConfig) validate() error {
	if len(p.Rules) == 0 && len(p.Renames) == 0 {
		return errors.Errorf("at least one rule or rename is required")
	}

	if p.Root == "" {
		p.Root = "."
	}
	p.Root = filepath.Clean(p.Root)
	if filepath.IsAbs(p.Root) {
		return errors.Errorf("root %q must be relative to the config root", p.Root)
	}
	if p.Root != "." {
		clean, err := rename.CleanRel(p.Root)
		if err != nil {
			return errors.Errorf("root: %w", err)
		}
		p.Root = filepath.FromSlash(clean)
	}

	if p.Encoding == "" {
		p.Encoding = status.DefaultEncoding
	}
	codec, err := status.LookupCodec(p.Encoding)
	if err != nil {
		return err
	}
	p.Encoding = codec.Name()

	policy, err := rename.ParsePolicy(p.RenamePolicy)
	if err != nil {
		return err
	}
	p.RenamePolicy = string(policy)

	if err := p.selector().Validate(); err != nil {
		return err
	}
	if err := p.mapping().Validate(); err != nil {
		return err
	}

	for i, r := range p.Rules {
		if (r.Literal == "") == (r.Pattern == "") {
			return errors.Errorf("rule %d: exactly one of literal or pattern is required", i)
		}
	}

	return nil
}

func (p *PhaseConfig) selector() discovery.Selector {
	return discovery.Selector{
		Extensions: p.Extensions,
		IgnoreDirs: p.IgnoreDirs,
		Include:    p.Include,
		Exclude:    p.Exclude,
	}
}

func (p *PhaseConfig) mapping() rename.Mapping {
	m := make(rename.Mapping, 0, len(p.Renames))
	for _, r := range p.Renames {
		m = append(m, rename.Move{From: r.From, To: r.To})
	}
	return m
}

func (p *PhaseConfig) rules() []text.Rule {
	rules := make([]text.Rule, 0, len(p.Rules))
	for _, r := range p.Rules {
		rules = append(rules, text.Rule{
			Name:      r.Name,
			Literal:   r.Literal,
			Pattern:   r.Pattern,
			Replace:   r.Replace,
			WholeWord: r.WholeWord,
		})
	}
	return rules
}

// ResolveRoot returns the directory phases are resolved against: override
// when set, otherwise the config root relative to the config file.
func (cfg *Config) ResolveRoot(override string) (string, error) {
	root := override
	if root == "" {
		root = cfg.Root
		if !filepath.IsAbs(root) && cfg.location != "" {
			root = filepath.Join(filepath.Dir(cfg.location), root)
		}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Errorf("resolving root %q: %w", root, err)
	}
	return abs, nil
}

// 🏗️ Build compiles the selected phases against root, in config order. An
// empty only selects every phase.
func (cfg *Config) Build(root string, only []string) ([]*operation.Phase, error) {
	for _, name := range only {
		if !slices.ContainsFunc(cfg.Phases, func(p PhaseConfig) bool { return p.Name == name }) {
			return nil, errors.Errorf("unknown phase %q", name)
		}
	}

	phases := make([]*operation.Phase, 0, len(cfg.Phases))
	for i := range cfg.Phases {
		p := &cfg.Phases[i]
		if len(only) > 0 && !slices.Contains(only, p.Name) {
			continue
		}

		rules, err := text.Compile(p.rules())
		if err != nil {
			return nil, &operation.ConfigError{Phase: p.Name, Err: err}
		}

		phases = append(phases, &operation.Phase{
			Name:         p.Name,
			Root:         filepath.Join(root, p.Root),
			Rules:        rules,
			Selector:     p.selector(),
			Encoding:     p.Encoding,
			Renames:      p.mapping(),
			RenamePolicy: rename.Policy(p.RenamePolicy),
		})
	}
	return phases, nil
}
