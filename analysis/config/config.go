// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.amazon.com/pkg/ARG-StringApprox/analysis/functional"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// TypeRegex is a single entry of the type-regex table: the regex fragment and character set contributed by a
// non-literal terminal's declared type (spec.md §3: "the type 'int' maps to 0|(-?[1-9][0-9]*)").
type TypeRegex struct {
	// Pattern is the regex fragment substituted for a terminal declared with this type.
	Pattern string `yaml:"pattern"`

	// Chars lists every character that can appear in a string matched by Pattern; this becomes the terminal's
	// CharSet. It is listed explicitly rather than derived from Pattern because deriving a character set from an
	// arbitrary regex fragment is not generally decidable in closed form. An empty Chars stands for Sigma (used by
	// "string", whose pattern ".*" can produce any character).
	Chars string `yaml:"chars"`
}

// Config contains the ambient settings for one run of the engine: logging verbosity, the fix-point safety bound
// for C5, and the table used to resolve non-literal terminal types to regex fragments and character sets.
// If some field is not defined in the config file, Load keeps its NewDefault value.
type Config struct {
	sourceFile string

	// LogLevel controls the verbosity of the engine's LogGroup.
	LogLevel int `yaml:"log-level"`

	// MaxFixpointRounds bounds C5's fix-point per component (the worklist is popped at most MaxFixpointRounds
	// times one more than the component's size) before widening the component's nonterminals to Sigma and logging
	// a warning (spec.md §5 resource bounds; §7: widening is never fatal). A value <= 0 selects
	// DefaultMaxFixpointRounds.
	MaxFixpointRounds int `yaml:"max-fixpoint-rounds"`

	// TypeRegexTable maps a non-literal terminal's declared type name (e.g. "int") to its TypeRegex. Unknown types
	// are not an error (spec.md §7): they widen to Sigma.
	TypeRegexTable map[string]TypeRegex `yaml:"type-regex-table"`
}

// NewDefault returns a default config: Info-level logging, a generous but finite fix-point bound, and the
// baseline type-regex table for the primitive types used throughout the spec's scenarios.
func NewDefault() *Config {
	return &Config{
		LogLevel:          int(InfoLevel),
		MaxFixpointRounds: DefaultMaxFixpointRounds,
		TypeRegexTable: map[string]TypeRegex{
			"int":    {Pattern: `0|(-?[1-9][0-9]*)`, Chars: "0123456789-"},
			"uint":   {Pattern: `0|([1-9][0-9]*)`, Chars: "0123456789"},
			"bool":   {Pattern: `true|false`, Chars: "truefals"},
			"string": {Pattern: `.*`, Chars: ""},
		},
	}
}

// DefaultMaxFixpointRounds is the default bound on C5's fix-point rounds per component.
const DefaultMaxFixpointRounds = 4096

// Load reads a configuration from a yaml file. A missing file is an error; a config file with fields the engine
// does not recognize is not (unknown yaml fields are silently ignored, consistent with widening-on-the-unknown
// per spec.md §7).
func Load(filename string) (*Config, error) {
	cfg := NewDefault()
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}
	cfg.sourceFile = filename

	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	if cfg.MaxFixpointRounds <= 0 {
		cfg.MaxFixpointRounds = DefaultMaxFixpointRounds
	}
	if cfg.TypeRegexTable == nil {
		cfg.TypeRegexTable = NewDefault().TypeRegexTable
	}
	return cfg, nil
}

// SourceFile returns the filename the config was loaded from, or "" for a default/in-memory config.
func (c Config) SourceFile() string {
	return c.sourceFile
}

// Verbose returns true if the configuration verbosity setting is larger than Info (i.e. Debug or Trace).
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// Lookup returns the TypeRegex registered for typeName, or None if typeName is not in the table. Callers widen to
// Sigma on None, per spec.md §7.
func (c Config) Lookup(typeName string) functional.Optional[TypeRegex] {
	if tr, found := c.TypeRegexTable[typeName]; found {
		return functional.Some(tr)
	}
	return functional.None[TypeRegex]()
}
