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

package database

import (
	"time"
)

// Model is the base model definition
type Model struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// User is a model for a user
type User struct {
	Model
	UUID        string     `json:"uuid" gorm:"type:text;uniqueIndex"`
	Email       string     `json:"email" gorm:"uniqueIndex"`
	Password    string     `json:"-"`
	LastLoginAt *time.Time `json:"-"`
}

// Session represents a user session
type Session struct {
	Model
	UserID     int    `gorm:"index"`
	Key        string `gorm:"uniqueIndex"`
	LastUsedAt time.Time
	ExpiresAt  time.Time
}

// Area is a life area of a user. A user has at most one area per type.
type Area struct {
	Model
	UUID         string  `json:"uuid" gorm:"type:text;uniqueIndex"`
	UserID       int     `json:"-" gorm:"uniqueIndex:idx_areas_user_type"`
	AreaType     string  `json:"area_type" gorm:"type:text;uniqueIndex:idx_areas_user_type"`
	Name         string  `json:"name"`
	Icon         string  `json:"icon"`
	Goal         string  `json:"goal"`
	Progress     int     `json:"progress"`
	TimeSpent    float64 `json:"time_spent"`
	Milestones   int     `json:"milestones"`
	Streak       int     `json:"streak"`
	LastActivity time.Time
	Tasks        []Task `json:"tasks" gorm:"foreignKey:AreaID"`
}

// Subtask is a checklist item of a task. Subtasks are stored inline with
// their task.
type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Task is a task within an area. UUID holds the identifier assigned by the
// client and is unique within the area.
type Task struct {
	Model
	AreaID     int    `gorm:"uniqueIndex:idx_tasks_area_uuid"`
	UserID     int    `gorm:"index"`
	UUID       string `gorm:"type:text;uniqueIndex:idx_tasks_area_uuid"`
	Content    string `gorm:"type:text"`
	Completed  bool
	Subtasks   []Subtask `gorm:"type:text;serializer:json"`
	OrderIndex int
}

// Friendship statuses
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipDeclined = "declined"
)

// Friendship is a link from UserID to FriendID. A request is stored as a
// pending row from the sender. Once accepted, the link exists in both
// directions.
type Friendship struct {
	Model
	UUID     string `json:"uuid" gorm:"type:text;uniqueIndex"`
	UserID   int    `json:"-" gorm:"uniqueIndex:idx_friendships_pair"`
	FriendID int    `json:"-" gorm:"uniqueIndex:idx_friendships_pair;index"`
	Status   string `json:"status" gorm:"type:text;index"`
}
