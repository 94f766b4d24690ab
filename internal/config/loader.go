package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pvemon/ttydash/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = "ttydash.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/ttydash"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads, macro-expands, decodes, and validates the config at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'ttydash init' to create one, or specify a path with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is readable")
	}
	return Parse(raw, path)
}

// Parse decodes a config document from raw YAML bytes. The color-macro
// rewrite runs over the decoded tree before the struct decode so that every
// string field sees resolved ${colors.*} tokens.
func Parse(raw []byte, path string) (*Config, error) {
	var tree map[string]interface{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}
	if tree == nil {
		tree = map[string]interface{}{}
	}
	tree = ApplyColorMacros(tree)

	expanded, err := yaml.Marshal(tree)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to re-encode config after macro expansion", "")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if err := v.ReadConfig(bytes.NewReader(expanded)); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config structure",
			"Check field names and types in "+path)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. ttydash.yaml in the current directory
// 3. ~/.config/ttydash/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}
	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// setDefaults seeds viper with the documented defaults so a sparse config
// still produces a runnable dashboard.
func setDefaults(v *viper.Viper) {
	v.SetDefault("datasources.prometheus.timeout_s", 3.0)
	v.SetDefault("globals.refresh.fast_s", 0.2)
	v.SetDefault("globals.refresh.bulk_s", 5.0)
	v.SetDefault("globals.defaults.missing_value", "---")
}
