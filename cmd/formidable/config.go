package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileName = "formidable"
	configFileType = "yaml"

	cfgKeyCacheMode = "cache.mode"
	cfgKeyCacheDir  = "cache.dir"
	cfgKeyCacheDSN  = "cache.dsn"
	cfgKeyLanguage  = "language"

	envPrefix = "FORMIDABLE"
)

// loadConfig reads formidable.yaml from the working directory, or path when
// set. A missing file is not an error. Flags and FORMIDABLE_* variables
// override file values.
func loadConfig(path string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyCacheMode, "file")
	v.SetDefault(cfgKeyCacheDir, filepath.Join(os.TempDir(), "formidable"))
	v.SetDefault(cfgKeyCacheDSN, filepath.Join(os.TempDir(), "formidable", "cache.db"))
	v.SetDefault(cfgKeyLanguage, "en")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlag(v, cfgKeyLanguage, flags.Lookup("language")); err != nil {
			return nil, err
		}
		if err := bindFlag(v, cfgKeyCacheMode, flags.Lookup("cache")); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// bindFlag binds a flag only when it was set so empty defaults do not mask
// config file values.
func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) error {
	if flag == nil || !flag.Changed {
		return nil
	}
	if err := v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("bind %s: %w", key, err)
	}
	return nil
}
