/* Copyright 2025 Dreambuilder Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config reads and writes the dream configuration file
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/cli/consts"
	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Default values written to a new config file
const (
	DefaultAPIEndpoint  = "http://localhost:3001/api"
	DefaultSyncInterval = "10s"
	DefaultSyncTimeout  = "30s"
	DefaultSaveDebounce = "300ms"
)

// Config holds dream configuration
type Config struct {
	Editor       string `yaml:"editor"`
	APIEndpoint  string `yaml:"apiEndpoint"`
	SyncInterval string `yaml:"syncInterval,omitempty"`
	SyncTimeout  string `yaml:"syncTimeout,omitempty"`
	SaveDebounce string `yaml:"saveDebounce,omitempty"`
}

// Default returns the configuration of a new installation
func Default(editor string) Config {
	return Config{
		Editor:       editor,
		APIEndpoint:  DefaultAPIEndpoint,
		SyncInterval: DefaultSyncInterval,
		SyncTimeout:  DefaultSyncTimeout,
		SaveDebounce: DefaultSaveDebounce,
	}
}

// Durations are the parsed durations of a config
type Durations struct {
	SyncInterval time.Duration
	SyncTimeout  time.Duration
	SaveDebounce time.Duration
}

func parseDuration(name, val, fallback string) (time.Duration, error) {
	if val == "" {
		val = fallback
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", name)
	}
	if d <= 0 {
		return 0, errors.Errorf("%s must be positive, got %s", name, val)
	}

	return d, nil
}

// ParseDurations parses the duration settings, falling back to the default
// for the ones that are not set
func (c Config) ParseDurations() (Durations, error) {
	var ret Durations
	var err error

	if ret.SyncInterval, err = parseDuration("syncInterval", c.SyncInterval, DefaultSyncInterval); err != nil {
		return ret, err
	}
	if ret.SyncTimeout, err = parseDuration("syncTimeout", c.SyncTimeout, DefaultSyncTimeout); err != nil {
		return ret, err
	}
	if ret.SaveDebounce, err = parseDuration("saveDebounce", c.SaveDebounce, DefaultSaveDebounce); err != nil {
		return ret, err
	}

	return ret, nil
}

// GetPath returns the path to the dream config file
func GetPath(ctx context.DreamCtx) string {
	return filepath.Join(ctx.Paths.Config, consts.DreamDirName, consts.ConfigFilename)
}

// Read reads the config file
func Read(ctx context.DreamCtx) (Config, error) {
	var ret Config

	configPath := GetPath(ctx)
	b, err := os.ReadFile(configPath)
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	err = yaml.Unmarshal(b, &ret)
	if err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	return ret, nil
}

// Write writes the config to the config file
func Write(ctx context.DreamCtx, cf Config) error {
	path := GetPath(ctx)

	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config into YAML")
	}

	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.Wrap(err, "writing the config file")
	}

	return nil
}
