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
	"strings"

	"github.com/dreambuilder/dreambuilder/pkg/server/database"
	"github.com/dreambuilder/dreambuilder/pkg/server/helpers"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// searchLimit is the maximum number of users returned by a search
const searchLimit = 5

// FriendRequest is a pending request along with its sender
type FriendRequest struct {
	Friendship database.Friendship
	From       database.User
}

// FeedEntry is a friend with the friend's areas, most recently active first
type FeedEntry struct {
	Friend database.User
	Areas  []database.Area
}

func findFriendship(tx *gorm.DB, userID, friendID int) (*database.Friendship, error) {
	var f database.Friendship
	err := tx.Where("user_id = ? AND friend_id = ?", userID, friendID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "finding friendship")
	}

	return &f, nil
}

func createFriendship(tx *gorm.DB, userID, friendID int, status string) (database.Friendship, error) {
	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.Friendship{}, err
	}

	f := database.Friendship{
		UUID:     uuid,
		UserID:   userID,
		FriendID: friendID,
		Status:   status,
	}
	if err := tx.Create(&f).Error; err != nil {
		return database.Friendship{}, errors.Wrap(err, "creating friendship")
	}

	return f, nil
}

// accept marks the request as accepted and links the recipient back to the
// sender. It returns the link from the recipient.
func accept(tx *gorm.DB, req database.Friendship) (database.Friendship, error) {
	if err := tx.Model(&req).Update("status", database.FriendshipAccepted).Error; err != nil {
		return database.Friendship{}, errors.Wrap(err, "accepting request")
	}

	reciprocal, err := findFriendship(tx, req.FriendID, req.UserID)
	if err != nil {
		return database.Friendship{}, err
	}
	if reciprocal == nil {
		return createFriendship(tx, req.FriendID, req.UserID, database.FriendshipAccepted)
	}

	if err := tx.Model(reciprocal).Update("status", database.FriendshipAccepted).Error; err != nil {
		return database.Friendship{}, errors.Wrap(err, "updating reciprocal friendship")
	}
	reciprocal.Status = database.FriendshipAccepted

	return *reciprocal, nil
}

// RequestFriend sends a friend request from the user to the user with the
// given email. If that user already asked to be friends, the pending request
// is accepted instead. A declined request can be sent again.
func (a *App) RequestFriend(user database.User, email string) (database.Friendship, error) {
	if normalizeEmail(email) == "" {
		return database.Friendship{}, ErrEmailRequired
	}

	target, err := a.GetUserByEmail(email)
	if err != nil {
		return database.Friendship{}, errors.Wrap(err, "finding user")
	}
	if target.ID == user.ID {
		return database.Friendship{}, ErrFriendSelf
	}

	var ret database.Friendship
	err = a.DB.Transaction(func(tx *gorm.DB) error {
		existing, err := findFriendship(tx, user.ID, target.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			switch existing.Status {
			case database.FriendshipAccepted:
				return ErrAlreadyFriends
			case database.FriendshipPending:
				return ErrFriendRequestExists
			}
		}

		incoming, err := findFriendship(tx, target.ID, user.ID)
		if err != nil {
			return err
		}
		if incoming != nil && incoming.Status == database.FriendshipPending {
			ret, err = accept(tx, *incoming)
			return err
		}

		if existing != nil {
			if err := tx.Model(existing).Update("status", database.FriendshipPending).Error; err != nil {
				return errors.Wrap(err, "renewing request")
			}
			existing.Status = database.FriendshipPending
			ret = *existing
			return nil
		}

		ret, err = createFriendship(tx, user.ID, target.ID, database.FriendshipPending)
		return err
	})
	if err != nil {
		return database.Friendship{}, err
	}

	return ret, nil
}

func (a *App) getIncomingRequest(tx *gorm.DB, user database.User, requestUUID string) (database.Friendship, error) {
	var req database.Friendship
	err := tx.Where("uuid = ? AND friend_id = ? AND status = ?", requestUUID, user.ID, database.FriendshipPending).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return req, ErrNotFound
	} else if err != nil {
		return req, errors.Wrap(err, "finding request")
	}

	return req, nil
}

// AcceptFriendRequest accepts a pending request sent to the user
func (a *App) AcceptFriendRequest(user database.User, requestUUID string) (database.Friendship, error) {
	var ret database.Friendship
	err := a.DB.Transaction(func(tx *gorm.DB) error {
		req, err := a.getIncomingRequest(tx, user, requestUUID)
		if err != nil {
			return err
		}

		ret, err = accept(tx, req)
		return err
	})
	if err != nil {
		return database.Friendship{}, err
	}

	return ret, nil
}

// DeclineFriendRequest declines a pending request sent to the user
func (a *App) DeclineFriendRequest(user database.User, requestUUID string) error {
	return a.DB.Transaction(func(tx *gorm.DB) error {
		req, err := a.getIncomingRequest(tx, user, requestUUID)
		if err != nil {
			return err
		}

		if err := tx.Model(&req).Update("status", database.FriendshipDeclined).Error; err != nil {
			return errors.Wrap(err, "declining request")
		}

		return nil
	})
}

// PendingFriendRequests returns the requests waiting for the user's answer,
// oldest first
func (a *App) PendingFriendRequests(user database.User) ([]FriendRequest, error) {
	var reqs []database.Friendship
	err := a.DB.Where("friend_id = ? AND status = ?", user.ID, database.FriendshipPending).
		Order("created_at ASC, id ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding requests")
	}

	senderIDs := make([]int, 0, len(reqs))
	for _, r := range reqs {
		senderIDs = append(senderIDs, r.UserID)
	}
	senders, err := a.usersByID(senderIDs)
	if err != nil {
		return nil, err
	}

	ret := []FriendRequest{}
	for _, r := range reqs {
		sender, ok := senders[r.UserID]
		if !ok {
			continue
		}
		ret = append(ret, FriendRequest{Friendship: r, From: sender})
	}

	return ret, nil
}

func (a *App) usersByID(ids []int) (map[int]database.User, error) {
	ret := map[int]database.User{}
	if len(ids) == 0 {
		return ret, nil
	}

	var users []database.User
	if err := a.DB.Where("id IN (?)", ids).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "finding users")
	}
	for _, u := range users {
		ret[u.ID] = u
	}

	return ret, nil
}

// friendIDs returns the ids of the users linked to the user by an accepted
// friendship in either direction
func (a *App) friendIDs(user database.User) ([]int, error) {
	var links []database.Friendship
	err := a.DB.Where("(user_id = ? OR friend_id = ?) AND status = ?", user.ID, user.ID, database.FriendshipAccepted).
		Find(&links).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding friendships")
	}

	seen := map[int]bool{}
	var ret []int
	for _, l := range links {
		id := l.FriendID
		if id == user.ID {
			id = l.UserID
		}
		if id == user.ID || seen[id] {
			continue
		}
		seen[id] = true
		ret = append(ret, id)
	}

	return ret, nil
}

// Friends returns the user's friends ordered by email
func (a *App) Friends(user database.User) ([]database.User, error) {
	ids, err := a.friendIDs(user)
	if err != nil {
		return nil, err
	}

	friends := []database.User{}
	if len(ids) == 0 {
		return friends, nil
	}

	if err := a.DB.Where("id IN (?)", ids).Order("email ASC").Find(&friends).Error; err != nil {
		return nil, errors.Wrap(err, "finding friends")
	}

	return friends, nil
}

// RemoveFriend deletes every link between the user and the user with the
// given uuid, including pending requests in either direction
func (a *App) RemoveFriend(user database.User, friendUUID string) error {
	var friend database.User
	err := a.DB.Where("uuid = ?", friendUUID).First(&friend).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	} else if err != nil {
		return errors.Wrap(err, "finding friend")
	}

	res := a.DB.
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", user.ID, friend.ID, friend.ID, user.ID).
		Delete(&database.Friendship{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting friendship")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// FriendsFeed returns the areas of the user's friends grouped by friend.
// Friends are ordered by their latest activity, and friends without any area
// come last.
func (a *App) FriendsFeed(user database.User) ([]FeedEntry, error) {
	friends, err := a.Friends(user)
	if err != nil {
		return nil, err
	}

	ret := []FeedEntry{}
	if len(friends) == 0 {
		return ret, nil
	}

	ids := make([]int, 0, len(friends))
	byID := map[int]database.User{}
	for _, f := range friends {
		ids = append(ids, f.ID)
		byID[f.ID] = f
	}

	var areas []database.Area
	err = a.DB.Where("user_id IN (?)", ids).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Order("last_activity DESC, area_type ASC").
		Find(&areas).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding areas")
	}

	pos := map[int]int{}
	for _, area := range areas {
		idx, ok := pos[area.UserID]
		if !ok {
			idx = len(ret)
			pos[area.UserID] = idx
			ret = append(ret, FeedEntry{Friend: byID[area.UserID]})
		}
		ret[idx].Areas = append(ret[idx].Areas, area)
	}

	for _, f := range friends {
		if _, ok := pos[f.ID]; !ok {
			ret = append(ret, FeedEntry{Friend: f, Areas: []database.Area{}})
		}
	}

	return ret, nil
}

// SearchUsers finds other users whose email contains the query
func (a *App) SearchUsers(user database.User, query string) ([]database.User, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrSearchQueryRequired
	}

	users := []database.User{}
	err := a.DB.Where("email LIKE ? AND id <> ?", "%"+q+"%", user.ID).
		Order("email ASC").
		Limit(searchLimit).
		Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "searching users")
	}

	return users, nil
}
