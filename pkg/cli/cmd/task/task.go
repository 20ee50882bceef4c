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

// Package task implements the commands editing the tasks of an area and
// their subtasks. Tasks and subtasks are referred to either by their id or
// by their position as shown by "dream area".
package task

import (
	"strings"

	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/dashboard"
	"github.com/dreambuilder/dreambuilder/pkg/cli/infra"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * Add a task
 dream task add tech "Write the onboarding flow"

 * Complete the second task of an area
 dream task done tech 2

 * Add a subtask to the first task
 dream task sub add tech 1 "Sketch the screens"

 * Complete it
 dream task sub done tech 1 1`

func argsAtLeast(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return errors.New("Incorrect number of argument")
		}

		return nil
	}
}

func argsExactly(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.New("Incorrect number of argument")
		}

		return nil
	}
}

// NewCmd returns a new task command
func NewCmd(ctx context.DreamCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"t"},
		Short:   "Manage the tasks of an area",
		Example: example,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "add <area> <text>",
		Short:   "Add a task",
		PreRunE: argsAtLeast(2),
		RunE:    newAddRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "edit <area> <task> <text>",
		Short:   "Change the text of a task",
		PreRunE: argsAtLeast(3),
		RunE:    newEditRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "done <area> <task>",
		Aliases: []string{"toggle"},
		Short:   "Toggle the completion of a task",
		PreRunE: argsExactly(2),
		RunE:    newToggleRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <area> <task>",
		Aliases: []string{"remove"},
		Short:   "Remove a task and its subtasks",
		PreRunE: argsExactly(2),
		RunE:    newRemoveRun(ctx),
	})
	cmd.AddCommand(newSubCmd(ctx))

	return cmd
}

func newSubCmd(ctx context.DreamCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sub",
		Short: "Manage the subtasks of a task",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "add <area> <task> <text>",
		Short:   "Add a subtask",
		PreRunE: argsAtLeast(3),
		RunE:    newSubAddRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "done <area> <task> <subtask>",
		Aliases: []string{"toggle"},
		Short:   "Toggle the completion of a subtask",
		PreRunE: argsExactly(3),
		RunE:    newSubToggleRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <area> <task> <subtask>",
		Aliases: []string{"remove"},
		Short:   "Remove a subtask",
		PreRunE: argsExactly(3),
		RunE:    newSubRemoveRun(ctx),
	})

	return cmd
}

// resolveTask returns the area key and the id of the task the arguments
// refer to
func resolveTask(svc *dashboard.Service, args []string) (string, string, error) {
	key := strings.ToLower(args[0])

	id, err := svc.ResolveTaskID(key, args[1])
	if err != nil {
		return "", "", errors.Wrap(err, "finding task")
	}

	return key, id, nil
}

func newAddRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc := infra.NewDashboard(ctx)
		t, err := svc.AddTask(strings.ToLower(args[0]), strings.Join(args[1:], " "))
		if err != nil {
			return errors.Wrap(err, "adding task")
		}
		if err := svc.Commit(); err != nil {
			return err
		}

		log.Successf("added %s (%s)\n", t.Text, t.ID)

		return nil
	}
}

func newEditRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc := infra.NewDashboard(ctx)
		key, id, err := resolveTask(svc, args)
		if err != nil {
			return err
		}

		t, err := svc.EditTask(key, id, strings.Join(args[2:], " "))
		if err != nil {
			return errors.Wrap(err, "editing task")
		}
		if err := svc.Commit(); err != nil {
			return err
		}

		log.Successf("edited %s\n", t.Text)

		return nil
	}
}

func newToggleRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc := infra.NewDashboard(ctx)
		key, id, err := resolveTask(svc, args)
		if err != nil {
			return err
		}

		t, err := svc.ToggleTask(key, id)
		if err != nil {
			return errors.Wrap(err, "toggling task")
		}
		if err := svc.Commit(); err != nil {
			return err
		}

		if t.Completed {
			log.Successf("completed %s\n", t.Text)
		} else {
			log.Infof("reopened %s\n", t.Text)
		}

		return nil
	}
}

func newRemoveRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc := infra.NewDashboard(ctx)
		key, id, err := resolveTask(svc, args)
		if err != nil {
			return err
		}

		t, err := svc.RemoveTask(key, id)
		if err != nil {
			return errors.Wrap(err, "removing task")
		}
		if err := svc.Commit(); err != nil {
			return err
		}

		log.Successf("removed %s\n", t.Text)

		return nil
	}
}

func newSubAddRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc := infra.NewDashboard(ctx)
		key, id, err := resolveTask(svc, args)
		if err != nil {
			return err
		}

		sub, err := svc.AddSubtask(key, id, strings.Join(args[2:], " "))
		if err != nil {
			return errors.Wrap(err, "adding subtask")
		}
		if err := svc.Commit(); err != nil {
			return err
		}

		log.Successf("added %s (%s)\n", sub.Text, sub.ID)

		return nil
	}
}

// resolveSubtask returns the area key and the ids of the task and the
// subtask the arguments refer to
func resolveSubtask(svc *dashboard.Service, args []string) (string, string, string, error) {
	key, taskID, err := resolveTask(svc, args)
	if err != nil {
		return "", "", "", err
	}

	subID, err := svc.ResolveSubtaskID(key, taskID, args[2])
	if err != nil {
		return "", "", "", errors.Wrap(err, "finding subtask")
	}

	return key, taskID, subID, nil
}

func newSubToggleRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc := infra.NewDashboard(ctx)
		key, taskID, subID, err := resolveSubtask(svc, args)
		if err != nil {
			return err
		}

		sub, err := svc.ToggleSubtask(key, taskID, subID)
		if err != nil {
			return errors.Wrap(err, "toggling subtask")
		}
		if err := svc.Commit(); err != nil {
			return err
		}

		if sub.Completed {
			log.Successf("completed %s\n", sub.Text)
		} else {
			log.Infof("reopened %s\n", sub.Text)
		}

		return nil
	}
}

func newSubRemoveRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc := infra.NewDashboard(ctx)
		key, taskID, subID, err := resolveSubtask(svc, args)
		if err != nil {
			return err
		}

		sub, err := svc.RemoveSubtask(key, taskID, subID)
		if err != nil {
			return errors.Wrap(err, "removing subtask")
		}
		if err := svc.Commit(); err != nil {
			return err
		}

		log.Successf("removed %s\n", sub.Text)

		return nil
	}
}
