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

// Package dirs resolves the base directories in which dream keeps its
// configuration, data, and cache
package dirs

import (
	"os"
	"os/user"
	"path/filepath"

	"github.com/pkg/errors"
)

// envDreamRoot, when set, places every base directory under one root.
// It takes precedence over the platform variables.
const envDreamRoot = "DREAM_ROOT"

var (
	// Home is the home directory of the user
	Home string
	// ConfigHome is the directory for user-specific configuration
	ConfigHome string
	// DataHome is the directory for user-specific data such as the local store
	DataHome string
	// CacheHome is the directory for non-essential files such as editor buffers
	CacheHome string
)

func init() {
	Reload()
}

// Reload re-reads the environment and recomputes the directories
func Reload() {
	Home = homeDir()

	if root := os.Getenv(envDreamRoot); root != "" {
		ConfigHome = filepath.Join(root, "config")
		DataHome = filepath.Join(root, "data")
		CacheHome = filepath.Join(root, "cache")
		return
	}

	initDirs()
}

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}

	usr, err := user.Current()
	if err != nil {
		panic(errors.Wrap(err, "getting home dir"))
	}

	return usr.HomeDir
}

func fromEnv(envName, fallback string) string {
	if dir := os.Getenv(envName); dir != "" {
		return dir
	}

	return fallback
}
