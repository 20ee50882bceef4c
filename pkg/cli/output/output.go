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

// Package output provides functions to print information on the terminal
// in a consistent manner
package output

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/model"
	"github.com/dreambuilder/dreambuilder/pkg/cli/syncer"
	"github.com/fatih/color"
)

var indentation = "  "

// colorOrange approximates orange on terminals without true color
var colorOrange = color.New(color.FgHiRed)

// FormatTimeSpent formats a number of hours for display
func FormatTimeSpent(hours float64) string {
	if hours < 1 {
		return fmt.Sprintf("%dm", int(math.Round(hours*60)))
	}
	if hours < 100 {
		return fmt.Sprintf("%.1fh", hours)
	}

	return fmt.Sprintf("%dh", int(math.Round(hours)))
}

// CompletionPercent returns the rounded percentage of completed items
func CompletionPercent(completed, total int) int {
	if total == 0 {
		return 0
	}

	return int(math.Round(float64(completed) / float64(total) * 100))
}

// ProgressColor returns the color used to display a progress percentage
func ProgressColor(progress int) *color.Color {
	switch {
	case progress >= 75:
		return log.ColorGreen
	case progress >= 50:
		return log.ColorYellow
	case progress >= 25:
		return colorOrange
	default:
		return log.ColorRed
	}
}

// MotivationalMessage returns an encouragement matching the progress of an area
func MotivationalMessage(progress int, name string) string {
	switch {
	case progress <= 0:
		return fmt.Sprintf("Ready to start your %s journey? 🚀", name)
	case progress < 25:
		return fmt.Sprintf("Great start on %s! Keep going! 💪", name)
	case progress < 50:
		return fmt.Sprintf("You're making solid progress in %s! 🌟", name)
	case progress < 75:
		return fmt.Sprintf("Over halfway there in %s! Amazing work! 🎯", name)
	case progress < 100:
		return fmt.Sprintf("Almost there with %s! Final push! 🔥", name)
	default:
		return fmt.Sprintf("%s mastered! Incredible achievement! 🏆", name)
	}
}

// RelativeTime describes how long ago t was
func RelativeTime(now, t time.Time) string {
	diff := now.Sub(t)

	days := int(diff.Hours() / 24)
	hours := int(diff.Hours())
	minutes := int(diff.Minutes())

	switch {
	case days > 0:
		return fmt.Sprintf("%dd ago", days)
	case hours > 0:
		return fmt.Sprintf("%dh ago", hours)
	case minutes > 0:
		return fmt.Sprintf("%dm ago", minutes)
	default:
		return "Just now"
	}
}

// ExportFilename returns the default name of a backup file
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("dream-builder-backup-%d.json", now.UnixMilli())
}

// ProgressBar renders a progress percentage as a bar of the given width
func ProgressBar(progress, width int) string {
	progress = min(max(progress, 0), 100)
	filled := progress * width / 100

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}

	return "[ ]"
}

// FormatTask renders a task and its subtasks. The position is 1-based.
func FormatTask(pos int, t model.Task) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s(%d) %s %s", indentation, pos, checkbox(t.Completed), t.Text)
	if len(t.Subtasks) > 0 {
		fmt.Fprintf(&sb, " %s", log.ColorGray.Sprintf("%d/%d", t.CompletedSubtasks(), len(t.Subtasks)))
	}
	fmt.Fprintf(&sb, " %s\n", log.ColorGray.Sprintf("[%s]", t.ID))

	for i, sub := range t.Subtasks {
		fmt.Fprintf(&sb, "%s%s(%d) %s %s\n", indentation, indentation, i+1, checkbox(sub.Completed), sub.Text)
	}

	return sb.String()
}

// FormatAreaSummary renders an area on a single line
func FormatAreaSummary(key string, a model.Area) string {
	var done int
	for _, t := range a.Tasks {
		if t.Completed {
			done++
		}
	}

	return fmt.Sprintf("%s %-9s %s %s  %s  %d/%d tasks  %s streak\n",
		a.Icon,
		key,
		ProgressBar(a.Progress, 10),
		ProgressColor(a.Progress).Sprintf("%3d%%", a.Progress),
		FormatTimeSpent(a.TimeSpent),
		done,
		len(a.Tasks),
		fmt.Sprintf("%dd", a.Streak),
	)
}

// FormatArea renders an area with its tasks
func FormatArea(a model.Area) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s\n", a.Icon, log.ColorBlue.Sprint(a.Name))
	fmt.Fprintf(&sb, "%sgoal: %s\n", indentation, a.Goal)
	fmt.Fprintf(&sb, "%sprogress: %s %s\n", indentation, ProgressBar(a.Progress, 20), ProgressColor(a.Progress).Sprintf("%d%%", a.Progress))
	fmt.Fprintf(&sb, "%stime spent: %s, milestones: %d, streak: %dd\n", indentation, FormatTimeSpent(a.TimeSpent), a.Milestones, a.Streak)
	fmt.Fprintf(&sb, "%s%s\n", indentation, MotivationalMessage(a.Progress, a.Name))

	if len(a.Tasks) == 0 {
		fmt.Fprintf(&sb, "\n%sno next steps\n", indentation)
		return sb.String()
	}

	var done int
	for _, t := range a.Tasks {
		if t.Completed {
			done++
		}
	}
	fmt.Fprintf(&sb, "\n%snext steps (%d%% done)\n", indentation, CompletionPercent(done, len(a.Tasks)))
	for i, t := range a.Tasks {
		sb.WriteString(FormatTask(i+1, t))
	}

	return sb.String()
}

// plainLines prints every line of s through the logger
func plainLines(s string) {
	for _, line := range strings.SplitAfter(s, "\n") {
		if line != "" {
			log.Plain(line)
		}
	}
}

// Area prints an area with its tasks
func Area(a model.Area) {
	plainLines(FormatArea(a))
}

// Status prints the summary of every area followed by the sync indicators
func Status(snap model.Snapshot, unsynced int, lastSync time.Time, now time.Time) {
	for _, key := range snap.Keys() {
		plainLines(FormatAreaSummary(key, snap[key]))
	}

	log.Plain("\n")
	plainLines(FormatSyncIndicator(unsynced, lastSync, now))
}

// FormatSyncIndicator renders the number of unsynced areas and the time of
// the last sync
func FormatSyncIndicator(unsynced int, lastSync time.Time, now time.Time) string {
	last := "never synced"
	if !lastSync.IsZero() {
		last = fmt.Sprintf("synced %s", RelativeTime(now, lastSync))
	}

	if unsynced == 0 {
		return fmt.Sprintf("%s all changes synced (%s)\n", log.ColorGreen.Sprint("✔"), last)
	}

	return fmt.Sprintf("%s %d unsynced (%s)\n", log.ColorYellow.Sprint("●"), unsynced, last)
}

// FormatSyncResult describes the outcome of a sync
func FormatSyncResult(res syncer.Result) string {
	if res.Success {
		if res.StillDirty {
			return fmt.Sprintf("synced %d areas, newer changes will be synced next", res.SyncedCount)
		}
		return fmt.Sprintf("synced %d areas", res.SyncedCount)
	}

	switch res.Reason {
	case syncer.ReasonInProgress:
		return "a sync is already in progress"
	case syncer.ReasonLocalOnly:
		return "not logged in, changes are kept on this device"
	case syncer.ReasonNoLocalData:
		return "nothing to sync"
	case syncer.ReasonPartialFailure:
		return fmt.Sprintf("synced %d areas, %d failed and will be retried", res.SyncedCount, res.ErrorCount)
	case syncer.ReasonRemoteUnavailable:
		return "server unreachable, changes will be synced later"
	case syncer.ReasonTimedOut:
		return "sync timed out, changes will be synced later"
	case syncer.ReasonStorageError:
		return "could not access the local data"
	case syncer.ReasonStopped:
		return "sync stopped"
	default:
		return res.Reason
	}
}

// SyncResult prints the outcome of a sync
func SyncResult(res syncer.Result) {
	msg := FormatSyncResult(res)

	if res.Success {
		log.Successf("%s\n", msg)
		return
	}

	switch res.Reason {
	case syncer.ReasonLocalOnly, syncer.ReasonNoLocalData, syncer.ReasonInProgress, syncer.ReasonStopped:
		log.Infof("%s\n", msg)
	default:
		log.Warnf("%s\n", msg)
	}

	if res.Err != nil {
		log.Debug("%+v\n", res.Err)
	}
}

// FormatFriend renders a friend with a summary line per area
func FormatFriend(email string, areas []model.Area) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n", log.ColorBlue.Sprint(email))
	if len(areas) == 0 {
		fmt.Fprintf(&sb, "%sno areas yet\n", indentation)
	}
	for _, a := range areas {
		fmt.Fprintf(&sb, "%s%s", indentation, FormatAreaSummary(a.ID, a))
	}

	return sb.String()
}
