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

// Package friends implements the commands for connecting with other users
// and following the areas of friends.
package friends

import (
	stdcontext "context"
	"strings"

	"github.com/dreambuilder/dreambuilder/pkg/cli/client"
	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/infra"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ErrNotLoggedIn is an error for using friends while not logged in
var ErrNotLoggedIn = errors.New("not logged in. Run 'dream login' first")

var example = `
 * See what your friends are working on
 dream friends

 * Ask someone to be friends
 dream friends add bob@example.com

 * Answer a request, using the id shown by "dream friends requests"
 dream friends accept 3f2a9c1e-8d7b-4e6f-a1b2-c3d4e5f6a7b8`

func argsExactly(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.New("Incorrect number of argument")
		}

		return nil
	}
}

// NewCmd returns a new friends command
func NewCmd(ctx context.DreamCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "friends",
		Aliases: []string{"f"},
		Short:   "Follow the areas of your friends",
		Example: example,
		RunE:    newFeedRun(ctx),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your friends",
		RunE:  newListRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "requests",
		Short: "List the friend requests waiting for your answer",
		RunE:  newRequestsRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "add <email>",
		Short:   "Ask a user to be friends",
		PreRunE: argsExactly(1),
		RunE:    newAddRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "accept <request>",
		Short:   "Accept a friend request",
		PreRunE: argsExactly(1),
		RunE:    newAcceptRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "decline <request>",
		Short:   "Decline a friend request",
		PreRunE: argsExactly(1),
		RunE:    newDeclineRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "remove <user>",
		Short:   "Stop being friends with a user",
		PreRunE: argsExactly(1),
		RunE:    newRemoveRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "search <query>",
		Short:   "Find users by email",
		PreRunE: argsExactly(1),
		RunE:    newSearchRun(ctx),
	})

	return cmd
}

func newClient(ctx context.DreamCtx) (*client.Client, error) {
	if ctx.SessionKey == "" {
		return nil, ErrNotLoggedIn
	}

	return infra.NewClient(ctx), nil
}

func newFeedRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}

		feed, err := c.FriendsFeed(stdcontext.Background())
		if err != nil {
			return errors.Wrap(err, "getting feed")
		}

		if len(feed) == 0 {
			log.Info("no friends yet. Add one with 'dream friends add <email>'\n")
			return nil
		}

		for _, e := range feed {
			log.Plain(output.FormatFriend(e.Friend.Email, e.Areas))
		}

		return nil
	}
}

func printUsers(users []client.RespUser, empty string) {
	if len(users) == 0 {
		log.Info(empty)
		return
	}

	for _, u := range users {
		log.Plainf("%s  %s\n", u.Email, log.ColorGray.Sprint(u.UUID))
	}
}

func newListRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}

		friends, err := c.ListFriends(stdcontext.Background())
		if err != nil {
			return errors.Wrap(err, "listing friends")
		}

		printUsers(friends, "no friends yet\n")

		return nil
	}
}

func newRequestsRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}

		reqs, err := c.FriendRequests(stdcontext.Background())
		if err != nil {
			return errors.Wrap(err, "listing requests")
		}

		if len(reqs) == 0 {
			log.Info("no pending requests\n")
			return nil
		}

		for _, r := range reqs {
			log.Plainf("%s  %s\n", r.From.Email, log.ColorGray.Sprint(r.UUID))
		}

		return nil
	}
}

func newAddRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}

		email := strings.TrimSpace(args[0])
		f, err := c.SendFriendRequest(stdcontext.Background(), email)
		if err != nil {
			return errors.Wrap(err, "sending request")
		}

		if f.Status == client.FriendshipAccepted {
			log.Successf("you are now friends with %s\n", f.Friend.Email)
			return nil
		}

		log.Successf("sent a friend request to %s\n", f.Friend.Email)

		return nil
	}
}

func newAcceptRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}

		f, err := c.AcceptFriendRequest(stdcontext.Background(), args[0])
		if err != nil {
			return errors.Wrap(err, "accepting request")
		}

		log.Successf("you are now friends with %s\n", f.Friend.Email)

		return nil
	}
}

func newDeclineRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}

		if err := c.DeclineFriendRequest(stdcontext.Background(), args[0]); err != nil {
			return errors.Wrap(err, "declining request")
		}

		log.Success("declined\n")

		return nil
	}
}

func newRemoveRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}

		if err := c.RemoveFriend(stdcontext.Background(), args[0]); err != nil {
			return errors.Wrap(err, "removing friend")
		}

		log.Success("removed\n")

		return nil
	}
}

func newSearchRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}

		users, err := c.SearchUsers(stdcontext.Background(), args[0])
		if err != nil {
			return errors.Wrap(err, "searching users")
		}

		printUsers(users, "no users found\n")

		return nil
	}
}
