// Package config loads the optional "-config FILE" project file (spec
// SPEC_FULL.md §4.7): a JSON document supplying defaults the CLI flags may
// still override, validated against an embedded JSON Schema before use.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"
)

// Config is the decoded project file. Every field is optional; a zero value
// means "not set in the file", so the driver can tell the difference between
// "file said word mode" and "file was silent" when applying CLI overrides.
type Config struct {
	PointerModel string   `json:"pointerModel,omitempty"` // "byte" or "word"
	WordBits     int      `json:"wordBits,omitempty"`     // 0, 16, or 32
	Libs         []string `json:"libs,omitempty"`
	IncludeDirs  []string `json:"includeDirs,omitempty"`
	CCMinVersion string   `json:"ccMinVersion,omitempty"`
}

// schemaJSON is the embedded JSON Schema every project file is validated
// against before being unmarshaled into Config. It is deliberately narrow
// (a handful of named, typed fields) since this is tooling configuration,
// not an open-ended schema language the way a B program's own data is.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "pointerModel": { "type": "string", "enum": ["byte", "word"] },
    "wordBits": { "type": "integer", "enum": [0, 16, 32] },
    "libs": { "type": "array", "items": { "type": "string" } },
    "includeDirs": { "type": "array", "items": { "type": "string" } },
    "ccMinVersion": { "type": "string" }
  }
}`

// Error reports a tooling-level config problem (malformed JSON or a schema
// violation), per SPEC_FULL.md §7.1: these are never two-letter B
// diagnostics, since they are about the project file, not B source.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("config %s: %v", e.Path, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	const url = "schema://bcc-config.json"
	if err := compiler.AddResource(url, strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// Load reads and validates the project file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("malformed JSON: %w", err)}
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("internal: schema compile: %w", err)}
	}
	if err := schema.Validate(raw); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("schema violation: %w", err)}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	if cfg.CCMinVersion != "" {
		if !semver.IsValid(normalizeSemver(cfg.CCMinVersion)) {
			return nil, &Error{Path: path, Err: fmt.Errorf("ccMinVersion %q is not a valid version", cfg.CCMinVersion)}
		}
	}
	return &cfg, nil
}

// normalizeSemver prefixes a bare "X.Y.Z" version with "v", since
// golang.org/x/mod/semver requires the leading 'v' that most compiler
// version strings (and this config field) omit.
func normalizeSemver(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// MeetsMinVersion reports whether reported (a compiler version string,
// "v"-prefixed or not) is at least as new as min.
func MeetsMinVersion(reported, min string) bool {
	return semver.Compare(normalizeSemver(reported), normalizeSemver(min)) >= 0
}

// Apply merges file-sourced defaults into dst, never overwriting a field the
// caller already set explicitly (via a CLI flag) — SPEC_FULL.md §8.1's
// config-precedence property: an explicit flag always wins over the file.
type Overrides struct {
	PointerModelSet bool
	WordBitsSet     bool
	CCMinVersionSet bool
}

func (c *Config) Apply(dst *Config, already Overrides) {
	if !already.PointerModelSet && c.PointerModel != "" {
		dst.PointerModel = c.PointerModel
	}
	if !already.WordBitsSet && c.WordBits != 0 {
		dst.WordBits = c.WordBits
	}
	if !already.CCMinVersionSet && c.CCMinVersion != "" {
		dst.CCMinVersion = c.CCMinVersion
	}
	dst.Libs = append(dst.Libs, c.Libs...)
	dst.IncludeDirs = append(dst.IncludeDirs, c.IncludeDirs...)
}
