//go:build linux || darwin || freebsd

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

package dirs

import (
	"path/filepath"
)

func initDirs() {
	ConfigHome = fromEnv("XDG_CONFIG_HOME", filepath.Join(Home, ".config"))
	DataHome = fromEnv("XDG_DATA_HOME", filepath.Join(Home, ".local", "share"))
	CacheHome = fromEnv("XDG_CACHE_HOME", filepath.Join(Home, ".cache"))
}
