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

package model

// Defaults returns the data a new user starts with
func Defaults() Snapshot {
	return Snapshot{
		AreaOverall: {
			ID:    AreaOverall,
			Name:  "Overall",
			Icon:  "🎯",
			Goal:  "Become the best version of myself",
			Tasks: []Task{},
		},
		AreaBusiness: {
			ID:         AreaBusiness,
			Name:       "Business",
			Icon:       "💼",
			Goal:       "Make a $1,000,000",
			Progress:   25,
			TimeSpent:  120,
			Milestones: 5,
			Streak:     12,
			Tasks: []Task{
				{
					ID:   "biz-1",
					Text: "Get resort client",
					Subtasks: []Subtask{
						{ID: "biz-1-sub-1", Text: "Research resort websites"},
						{ID: "biz-1-sub-2", Text: "Prepare pitch deck"},
					},
				},
				{ID: "biz-2", Text: "Find business thesis idea", Subtasks: []Subtask{}},
			},
		},
		AreaTech: {
			ID:   AreaTech,
			Name: "Tech",
			Icon: "⚡",
			Goal: "Master full-stack development",
			Tasks: []Task{
				{ID: "tech-1", Text: "Develop Fullstack App", Subtasks: []Subtask{}},
				{ID: "tech-2", Text: "Find Full-time Gig", Subtasks: []Subtask{}},
			},
		},
		AreaPhysical: {
			ID:   AreaPhysical,
			Name: "Physical",
			Icon: "💪",
			Goal: "Run a half marathon",
			Tasks: []Task{
				{ID: "phys-1", Text: "Increase weekly mileage to 30km", Subtasks: []Subtask{}},
			},
		},
		AreaSocial: {
			ID:   AreaSocial,
			Name: "Social",
			Icon: "🤝",
			Goal: "Build meaningful connections",
			Tasks: []Task{
				{ID: "soc-1", Text: "Attend networking events", Subtasks: []Subtask{}},
			},
		},
		AreaMisc: {
			ID:   AreaMisc,
			Name: "Misc",
			Icon: "✨",
			Goal: "Creative expression",
			Tasks: []Task{
				{ID: "misc-1", Text: "Practice guitar", Subtasks: []Subtask{}},
			},
		},
	}
}
