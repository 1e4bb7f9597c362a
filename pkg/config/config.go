// Package config loads layout dimensions from TOML files.
//
// A file only needs to name the values it changes; everything else keeps
// its [layout.DefaultConfig] value:
//
//	[grid]
//	width = 200
//
//	[connector]
//	stroke_width = 4
//
//	[connector.margins.branch]
//	top = 16
package config

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/layout"
)

// Load reads the TOML file at path over the default configuration. An empty
// path returns the defaults.
func Load(path string) (layout.Config, error) {
	if path == "" {
		return layout.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return layout.Config{}, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes TOML from r over the default configuration and validates the
// result. Unknown keys are rejected.
func Parse(r io.Reader) (layout.Config, error) {
	cfg := layout.DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return layout.Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return layout.Config{}, errors.New(errors.ErrCodeInvalidFormat, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return layout.Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg layout.Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
