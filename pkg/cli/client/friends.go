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

package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/cli/model"
	"github.com/pkg/errors"
)

// doNoContent does an authorized request whose response has no body
func (c *Client) doNoContent(ctx context.Context, method, path string) error {
	opts := requestOptions{
		ExpectedContentType: &contentTypeNone,
	}
	res, err := c.doAuthorizedReq(ctx, method, path, nil, &opts)
	if err != nil {
		return err
	}
	res.Body.Close()

	return nil
}

// FriendshipAccepted is the status of a friendship both users agreed to
const FriendshipAccepted = "accepted"

// RespFriendship is a friendship in a response
type RespFriendship struct {
	UUID   string   `json:"uuid"`
	Status string   `json:"status"`
	Friend RespUser `json:"friend"`
}

// RespFriendRequest is a pending friend request in a response
type RespFriendRequest struct {
	UUID      string    `json:"uuid"`
	From      RespUser  `json:"from"`
	CreatedAt time.Time `json:"created_at"`
}

// ListFriendsResp is the response from the list friends endpoint
type ListFriendsResp struct {
	Friends []RespUser `json:"friends"`
}

// ListFriends returns the accepted friends of the user
func (c *Client) ListFriends(ctx context.Context) ([]RespUser, error) {
	var resp ListFriendsResp
	if err := c.doJSON(ctx, "GET", "/v1/friends", nil, &resp); err != nil {
		return nil, errors.Wrap(err, "listing friends")
	}

	return resp.Friends, nil
}

// FriendRequestsResp is the response from the list friend requests endpoint
type FriendRequestsResp struct {
	Requests []RespFriendRequest `json:"requests"`
}

// FriendRequests returns the requests waiting for the user's answer
func (c *Client) FriendRequests(ctx context.Context) ([]RespFriendRequest, error) {
	var resp FriendRequestsResp
	if err := c.doJSON(ctx, "GET", "/v1/friends/requests", nil, &resp); err != nil {
		return nil, errors.Wrap(err, "listing friend requests")
	}

	return resp.Requests, nil
}

// FriendRequestPayload is a payload for sending a friend request
type FriendRequestPayload struct {
	Email string `json:"email"`
}

// FriendshipResp is the response from the endpoints creating or accepting a
// friendship
type FriendshipResp struct {
	Friendship RespFriendship `json:"friendship"`
}

// SendFriendRequest asks the user with the given email to be friends. The
// returned friendship is accepted if that user had asked first.
func (c *Client) SendFriendRequest(ctx context.Context, email string) (RespFriendship, error) {
	var resp FriendshipResp
	if err := c.doJSON(ctx, "POST", "/v1/friends/requests", FriendRequestPayload{Email: email}, &resp); err != nil {
		return RespFriendship{}, errors.Wrap(err, "sending friend request")
	}

	return resp.Friendship, nil
}

// AcceptFriendRequest accepts the request with the given uuid
func (c *Client) AcceptFriendRequest(ctx context.Context, requestUUID string) (RespFriendship, error) {
	var resp FriendshipResp
	path := fmt.Sprintf("/v1/friends/requests/%s/accept", url.PathEscape(requestUUID))
	if err := c.doJSON(ctx, "POST", path, nil, &resp); err != nil {
		return RespFriendship{}, errors.Wrap(err, "accepting friend request")
	}

	return resp.Friendship, nil
}

// DeclineFriendRequest declines the request with the given uuid
func (c *Client) DeclineFriendRequest(ctx context.Context, requestUUID string) error {
	path := fmt.Sprintf("/v1/friends/requests/%s/decline", url.PathEscape(requestUUID))
	if err := c.doNoContent(ctx, "POST", path); err != nil {
		return errors.Wrap(err, "declining friend request")
	}

	return nil
}

// RemoveFriend ends the friendship with the user with the given uuid
func (c *Client) RemoveFriend(ctx context.Context, userUUID string) error {
	path := fmt.Sprintf("/v1/friends/%s", url.PathEscape(userUUID))
	if err := c.doNoContent(ctx, "DELETE", path); err != nil {
		return errors.Wrap(err, "removing friend")
	}

	return nil
}

// RespFeedArea is an area of a friend in the feed
type RespFeedArea struct {
	Key string `json:"key"`
	RespArea
}

// RespFeedEntry is a friend with the friend's areas in the feed
type RespFeedEntry struct {
	Friend RespUser       `json:"friend"`
	Areas  []RespFeedArea `json:"areas"`
}

// FeedResp is the response from the friends feed endpoint
type FeedResp struct {
	Friends []RespFeedEntry `json:"friends"`
}

// FeedEntry is a friend with the friend's areas, most recently active first
type FeedEntry struct {
	Friend RespUser
	Areas  []model.Area
}

// FriendsFeed returns the areas of the user's friends
func (c *Client) FriendsFeed(ctx context.Context) ([]FeedEntry, error) {
	var resp FeedResp
	if err := c.doJSON(ctx, "GET", "/v1/friends/feed", nil, &resp); err != nil {
		return nil, errors.Wrap(err, "fetching friends feed")
	}

	ret := make([]FeedEntry, 0, len(resp.Friends))
	for _, e := range resp.Friends {
		areas := make([]model.Area, 0, len(e.Areas))
		for _, a := range e.Areas {
			areas = append(areas, a.toArea(a.Key))
		}

		ret = append(ret, FeedEntry{Friend: e.Friend, Areas: areas})
	}

	return ret, nil
}

// SearchUsersResp is the response from the user search endpoint
type SearchUsersResp struct {
	Users []RespUser `json:"users"`
}

// SearchUsers finds other users whose email contains the query
func (c *Client) SearchUsers(ctx context.Context, query string) ([]RespUser, error) {
	v := url.Values{}
	v.Set("q", query)

	var resp SearchUsersResp
	if err := c.doJSON(ctx, "GET", fmt.Sprintf("/v1/users/search?%s", v.Encode()), nil, &resp); err != nil {
		return nil, errors.Wrap(err, "searching users")
	}

	return resp.Users, nil
}
