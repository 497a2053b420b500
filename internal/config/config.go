// Package config loads, validates and saves catalogview configuration.
//
// Values are layered: Default, then the YAML file, then CATALOGVIEW_*
// environment variables, where "__" separates nested keys
// (CATALOGVIEW_VIEWER__DEBUG=true sets viewer.debug).
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "CATALOGVIEW_"

//go:embed schema.cue
var schemaCUE string

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. A missing file, or an empty path, leaves
// the defaults in place.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// CATALOGVIEW_SHOP__ACCOUNT_ID -> shop.account_id
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// ValidationError lists every schema violation found in a configuration.
type ValidationError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

// Validate checks the configuration against the embedded CUE schema.
// Returns all violations found (does not fail-fast).
func (c *Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	v := ctx.Encode(c)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := schema.Unify(v).Validate(cue.Concrete(true)); err != nil {
		verr := &ValidationError{}
		for _, e := range cueerrors.Errors(err) {
			verr.Problems = append(verr.Problems, formatProblem(e))
		}
		return verr
	}
	return nil
}

func formatProblem(e cueerrors.Error) string {
	format, args := e.Msg()
	msg := fmt.Sprintf(format, args...)
	if path := e.Path(); len(path) > 0 {
		return strings.Join(path, ".") + ": " + msg
	}
	return msg
}
