// Package config loads server configuration from a YAML file, modeled
// on upspin.io/config's valsFromYAML: a fixed set of known keys, with
// any other key rejected as an error rather than silently ignored.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"

	"dfs.io/errors"
)

// Known keys. All others are treated as errors.
const (
	keyAddr   = "addr"
	keyRoot   = "root"
	keyNaming = "naming"
	keyLog    = "log"
)

// Config holds the settings a naming or storage server reads from its
// YAML configuration file.
type Config struct {
	// Addr is the network address this server listens on.
	Addr string
	// Root is the local directory a storage server serves files from.
	// Empty for the naming server.
	Root string
	// Naming is the naming server's registration address. Empty for
	// the naming server itself.
	Naming string
	// Log is the logging level: debug, info, error, or disabled.
	Log string
}

// Default returns a Config with Log set to "info" and every other field
// empty.
func Default() Config {
	return Config{Log: "info"}
}

// FromFile parses a YAML configuration file at name.
func FromFile(name string) (Config, error) {
	const op = "config.FromFile"
	data, err := os.ReadFile(name)
	if err != nil {
		return Config{}, errors.E(op, err)
	}
	return FromYAML(data)
}

// FromYAML parses YAML configuration data. Unrecognized keys are
// rejected, following upspin.io/config's valsFromYAML discipline.
func FromYAML(data []byte) (Config, error) {
	const op = "config.FromYAML"
	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, raw); err != nil {
		return Config{}, errors.E(op, errors.Invalid, errors.Errorf("parsing YAML: %v", err))
	}
	cfg := Default()
	for k, v := range raw {
		s, err := asString(v)
		if err != nil {
			return Config{}, errors.E(op, errors.Invalid, errors.Errorf("%q: %v", k, err))
		}
		switch k {
		case keyAddr:
			cfg.Addr = s
		case keyRoot:
			cfg.Root = s
		case keyNaming:
			cfg.Naming = s
		case keyLog:
			cfg.Log = s
		default:
			return Config{}, errors.E(op, errors.Invalid, errors.Errorf("unrecognized key %q", k))
		}
	}
	return cfg, nil
}

// asString converts a YAML scalar back into a string, for the small set
// of value types a server config field can legally hold.
func asString(v interface{}) (string, error) {
	switch vc := v.(type) {
	case string:
		return vc, nil
	case int, int32, int64, uint, uint32, uint64, float32, float64, bool:
		return fmt.Sprintf("%v", vc), nil
	}
	return "", errors.E(errors.Invalid, errors.Errorf("unrecognized value %T", v))
}
