package cli

import (
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/zeebo/xxh3"
)

// configCache holds parsed configurations keyed by the hash of their
// content.
//
//nolint:gochecknoglobals
var configCache sync.Map

// resolve is a [kong.ConfigurationLoader] that reads a YAML mapping of flag
// names to values.
//
// Flag names with hyphens may be written with underscores instead, and a
// top-level "config" mapping, when present, is read in place of the
// document. Command-line flags override config file values.
//
//	log_level: debug
//	include:
//	  - ~/lib/js
func resolve(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return config{}, nil
	}

	key := xxh3.Hash(data)
	if c, ok := configCache.Load(key); ok {
		return c.(config), nil //nolint:forcetypeassert
	}

	c := parseConfig(data)
	configCache.Store(key, c)

	return c, nil
}

// parseConfig returns the flag values in data. A malformed document yields
// an empty config.
func parseConfig(data []byte) config {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return config{}
	}

	if nested, ok := doc[baseConfig].(map[string]any); ok {
		doc = nested
	}

	c := make(config, len(doc))
	for k, v := range doc {
		c[k] = flagValue(v)
	}

	return c
}

// flagValue converts a decoded YAML value to the form kong parses flag
// values from.
func flagValue(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagValue(e)
		}

		return out
	default:
		return v
	}
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	for _, name := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
		if v, ok := c[name]; ok {
			return v, nil
		}
	}

	return nil, nil //nolint:nilnil
}
