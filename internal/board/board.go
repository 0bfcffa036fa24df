// Package board projects stored tasks into role-scoped views. Every function
// here is pure: callers load the tasks (with collaborators) and pass them in.
package board

import (
	"sort"

	"github.com/yukikurage/kanban-board-api/internal/constants"
	"github.com/yukikurage/kanban-board-api/internal/models"
)

// Board is the three-column view of the tasks visible under Filter.
type Board struct {
	Filter     string
	Assignees  []string
	Todo       []models.Task
	InProgress []models.Task
	Done       []models.Task
}

// Column returns the tasks of one stage.
func (b Board) Column(stage models.Stage) []models.Task {
	switch stage {
	case models.StageTodo:
		return b.Todo
	case models.StageInProgress:
		return b.InProgress
	case models.StageDone:
		return b.Done
	}
	return nil
}

// Len is the number of tasks across all columns.
func (b Board) Len() int {
	return len(b.Todo) + len(b.InProgress) + len(b.Done)
}

// CanMutate reports whether actor may transition task or append to its ledger.
func CanMutate(actor models.Actor, task models.Task) bool {
	return actor.IsElevated() || task.IsAssigned(actor.Username)
}

// Assignees returns the sorted set of usernames assigned to any of tasks.
func Assignees(tasks []models.Task) []string {
	seen := make(map[string]struct{})
	for _, t := range tasks {
		for _, name := range t.Assignees() {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultFilter narrows a baseline actor to their own tasks when they have any.
func DefaultFilter(actor models.Actor, tasks []models.Task) string {
	if actor.IsElevated() {
		return constants.AllAssigneesFilter
	}
	for _, t := range tasks {
		if t.IsAssigned(actor.Username) {
			return actor.Username
		}
	}
	return constants.AllAssigneesFilter
}

// View buckets tasks by stage, keeping those assigned to filter. An empty
// filter selects DefaultFilter.
func View(actor models.Actor, filter string, tasks []models.Task) Board {
	if filter == "" {
		filter = DefaultFilter(actor, tasks)
	}

	b := Board{
		Filter:     filter,
		Assignees:  Assignees(tasks),
		Todo:       []models.Task{},
		InProgress: []models.Task{},
		Done:       []models.Task{},
	}

	for _, t := range tasks {
		if filter != constants.AllAssigneesFilter && !t.IsAssigned(filter) {
			continue
		}
		switch t.Stage {
		case models.StageTodo:
			b.Todo = append(b.Todo, t)
		case models.StageInProgress:
			b.InProgress = append(b.InProgress, t)
		case models.StageDone:
			b.Done = append(b.Done, t)
		}
	}

	return b
}
