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

package presenters

import (
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/server/database"
)

// Friendship is a friendship presented to clients
type Friendship struct {
	UUID   string `json:"uuid"`
	Status string `json:"status"`
	Friend User   `json:"friend"`
}

// PresentFriendship presents a friendship with the user on the other end
func PresentFriendship(f database.Friendship, friend database.User) Friendship {
	return Friendship{
		UUID:   f.UUID,
		Status: f.Status,
		Friend: PresentUser(friend),
	}
}

// FriendRequest is a pending friend request presented to its recipient
type FriendRequest struct {
	UUID      string    `json:"uuid"`
	From      User      `json:"from"`
	CreatedAt time.Time `json:"created_at"`
}

// PresentFriendRequest presents a request sent by the given user
func PresentFriendRequest(f database.Friendship, from database.User) FriendRequest {
	return FriendRequest{
		UUID:      f.UUID,
		From:      PresentUser(from),
		CreatedAt: FormatTS(f.CreatedAt),
	}
}

// FeedArea is an area of a friend. Key is the area type.
type FeedArea struct {
	Key string `json:"key"`
	Area
}

// FeedEntry is a friend with the friend's areas
type FeedEntry struct {
	Friend User       `json:"friend"`
	Areas  []FeedArea `json:"areas"`
}

// PresentFeedEntry presents a friend with the given areas, keeping their order
func PresentFeedEntry(friend database.User, areas []database.Area) FeedEntry {
	ret := FeedEntry{
		Friend: PresentUser(friend),
		Areas:  make([]FeedArea, 0, len(areas)),
	}
	for _, a := range areas {
		ret.Areas = append(ret.Areas, FeedArea{
			Key:  a.AreaType,
			Area: PresentArea(a),
		})
	}

	return ret
}

// PresentUsers presents a list of users
func PresentUsers(users []database.User) []User {
	ret := make([]User, 0, len(users))
	for _, u := range users {
		ret = append(ret, PresentUser(u))
	}

	return ret
}
