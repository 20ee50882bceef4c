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

package app

import (
	"regexp"

	"github.com/dreambuilder/dreambuilder/pkg/server/database"
	"github.com/dreambuilder/dreambuilder/pkg/server/helpers"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var areaKeyRegexp = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)

// AreaFields are the scalar fields of an area
type AreaFields struct {
	Name       string  `json:"name"`
	Icon       string  `json:"icon"`
	Goal       string  `json:"goal"`
	Progress   int     `json:"progress"`
	TimeSpent  float64 `json:"time_spent"`
	Milestones int     `json:"milestones"`
	Streak     int     `json:"streak"`
}

// ValidateAreaKey checks that the key can identify an area
func ValidateAreaKey(key string) error {
	if !areaKeyRegexp.MatchString(key) {
		return errors.Wrapf(ErrInvalidAreaKey, "'%s'", key)
	}

	return nil
}

func validateAreaFields(f AreaFields) error {
	if f.Progress < 0 || f.Progress > 100 {
		return ErrInvalidProgress
	}
	if f.TimeSpent < 0 || f.Milestones < 0 || f.Streak < 0 {
		return ErrNegativeCounter
	}

	return nil
}

// UpsertArea creates the area of the given type for the user, or overwrites
// the scalar fields of the existing one. Tasks are left untouched.
func (a *App) UpsertArea(user database.User, key string, fields AreaFields) (database.Area, error) {
	if err := ValidateAreaKey(key); err != nil {
		return database.Area{}, err
	}
	if err := validateAreaFields(fields); err != nil {
		return database.Area{}, err
	}

	var area database.Area
	err := a.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND area_type = ?", user.ID, key).First(&area).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			uuid, err := helpers.GenUUID()
			if err != nil {
				return err
			}

			area = database.Area{
				UUID:     uuid,
				UserID:   user.ID,
				AreaType: key,
			}
		} else if err != nil {
			return errors.Wrap(err, "finding area")
		}

		area.Name = fields.Name
		area.Icon = fields.Icon
		area.Goal = fields.Goal
		area.Progress = fields.Progress
		area.TimeSpent = fields.TimeSpent
		area.Milestones = fields.Milestones
		area.Streak = fields.Streak
		area.LastActivity = a.Clock.Now()

		if err := tx.Save(&area).Error; err != nil {
			return errors.Wrap(err, "saving area")
		}

		return nil
	})
	if err != nil {
		return database.Area{}, err
	}

	return area, nil
}

// GetArea returns the area with the given uuid if it belongs to the user
func (a *App) GetArea(user database.User, areaUUID string) (database.Area, error) {
	var area database.Area

	err := a.DB.Where("uuid = ? AND user_id = ?", areaUUID, user.ID).First(&area).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return area, ErrNotFound
	} else if err != nil {
		return area, errors.Wrap(err, "finding area")
	}

	return area, nil
}

// GetSnapshot returns the areas of the user with their tasks in order. When
// keys is not empty, only the areas of those types are returned.
func (a *App) GetSnapshot(user database.User, keys []string) ([]database.Area, error) {
	var areas []database.Area

	conn := a.DB.Where("user_id = ?", user.ID)
	if len(keys) > 0 {
		conn = conn.Where("area_type IN (?)", keys)
	}

	err := conn.
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Order("area_type ASC").
		Find(&areas).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding areas")
	}

	return areas, nil
}
