package idconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// tomlTypeCode is the on-disk representation of a TypeCode entry.
type tomlTypeCode struct {
	Code  string `toml:"code"`
	Name  string `toml:"name"`
	Level int    `toml:"level"`
}

// tomlPattern is the on-disk representation of the [pattern] table.
type tomlPattern struct {
	Prefix          string         `toml:"prefix"`
	JourneyPrefix   string         `toml:"journey_prefix"`
	Types           []tomlTypeCode `toml:"types"`
	NumericWidth    int            `toml:"numeric_width"`
	AssertionLabels string         `toml:"assertion_labels"`
}

// tomlReference is the on-disk representation of the [reference] table.
type tomlReference struct {
	ImplementsKeyword string `toml:"implements_keyword"`
	RefinesKeyword    string `toml:"refines_keyword"`
	AddressesKeyword  string `toml:"addresses_keyword"`
	ValidatesKeyword  string `toml:"validates_keyword"`
	ValidatesSynonym  string `toml:"validates_synonym"`
	LegacyImplements  *bool  `toml:"legacy_implements"`
}

// HashMode selects the requirement hashing strategy of invariant I6.
type HashMode string

const (
	// HashModeFullText hashes the requirement's full body text together
	// with its assertion lines.
	HashModeFullText HashMode = "full-text"
	// HashModeNormalizedText hashes only the concatenated assertion
	// label+text pairs, ignoring prose changes outside assertions.
	HashModeNormalizedText HashMode = "normalized-text"
)

// EngineConfig carries the ambient, non-ID-grammar settings for a run:
// test-scan locations, hash mode, and metrics-rollup policy. Loaded from
// TOML, immutable once built.
type EngineConfig struct {
	HashMode           HashMode `toml:"hash_mode"`
	TestDirs           []string `toml:"test_dirs"`
	TestFileGlobs      []string `toml:"test_file_globs"`
	CountPlaceholders  bool     `toml:"count_placeholders"`
	FileStructureScan  bool     `toml:"file_structure_scan"`
}

// DefaultEngineConfig returns the conventional defaults: full-text hashing,
// "tests/" and "test/" scan roots, common test-file globs, placeholders excluded from
// metrics rollups (per spec.md §9 "Placeholder assertions"), and
// file-structure scanning enabled (needed by the replayer).
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		HashMode:          HashModeFullText,
		TestDirs:          []string{"tests", "test"},
		TestFileGlobs:     []string{"test_*.py", "*_test.go", "*.test.js", "*.test.ts", "*_test.py"},
		CountPlaceholders: false,
		FileStructureScan: true,
	}
}

// LoadEngineConfig reads an EngineConfig from a TOML file at path,
// defaulting any unset field.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("idconfig: decode engine config %s: %w", path, err)
	}
	if cfg.HashMode == "" {
		cfg.HashMode = HashModeFullText
	}
	return cfg, nil
}

// LoadPatternConfig reads the [pattern] table from a TOML file at path,
// falling back to DefaultPatternConfig when the file does not exist.
func LoadPatternConfig(path string) (*PatternConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return DefaultPatternConfig(), nil
	}
	var doc struct {
		Pattern tomlPattern `toml:"pattern"`
	}
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("idconfig: decode pattern config %s: %w", path, err)
	}
	if doc.Pattern.Prefix == "" {
		return DefaultPatternConfig(), nil
	}
	var types []TypeCode
	for _, t := range doc.Pattern.Types {
		types = append(types, TypeCode{Code: t.Code, Name: t.Name, Level: t.Level})
	}
	return NewPatternConfig(doc.Pattern.Prefix, doc.Pattern.JourneyPrefix, types, doc.Pattern.NumericWidth, doc.Pattern.AssertionLabels)
}

// LoadReferenceConfig reads the [reference] table from a TOML file at
// path, falling back to DefaultReferenceConfig for any unset field.
func LoadReferenceConfig(path string) (*ReferenceConfig, error) {
	cfg := DefaultReferenceConfig()
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	var doc struct {
		Reference tomlReference `toml:"reference"`
	}
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("idconfig: decode reference config %s: %w", path, err)
	}
	r := doc.Reference
	if r.ImplementsKeyword != "" {
		cfg.ImplementsKeyword = r.ImplementsKeyword
	}
	if r.RefinesKeyword != "" {
		cfg.RefinesKeyword = r.RefinesKeyword
	}
	if r.AddressesKeyword != "" {
		cfg.AddressesKeyword = r.AddressesKeyword
	}
	if r.ValidatesKeyword != "" {
		cfg.ValidatesKeyword = r.ValidatesKeyword
	}
	if r.ValidatesSynonym != "" {
		cfg.ValidatesSynonym = r.ValidatesSynonym
	}
	if r.LegacyImplements != nil {
		cfg.LegacyImplements = *r.LegacyImplements
	}
	return cfg, nil
}
