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

// Package consts provides definitions of constants
package consts

var (
	// DreamDirName is the name of the directory containing dream files
	DreamDirName = "dream"
	// DreamDBFileName is a filename for the dream SQLite database
	DreamDBFileName = "dream.db"
	// TmpContentFileBase is the base for the filename for a temporary content
	TmpContentFileBase = "DREAM_TMPCONTENT"
	// TmpContentFileExt is the extension for the temporary content file
	TmpContentFileExt = "md"
	// ConfigFilename is the name of the config file
	ConfigFilename = "dreamrc"

	// SnapshotKey is the well-known key under which the snapshot and its
	// sync record are stored
	SnapshotKey = "userData"

	// SystemLastSyncAt is the unix timestamp of the last successful sync
	SystemLastSyncAt = "last_sync_at"
	// SystemSessionKey is the session key
	SystemSessionKey = "session_token"
	// SystemSessionKeyExpiry is the timestamp at which the session key will expire
	SystemSessionKeyExpiry = "session_token_expiry"
	// SystemUserUUID is the uuid of the signed in user
	SystemUserUUID = "user_uuid"
	// SystemTimerArea is the area of the running timer
	SystemTimerArea = "timer_area"
	// SystemTimerStartedAt is the unix timestamp at which the running timer started
	SystemTimerStartedAt = "timer_started_at"
	// SystemTimerCarryPrefix prefixes the keys holding the fraction of an
	// hour carried over to the next timer session of an area
	SystemTimerCarryPrefix = "timer_carry:"
)
