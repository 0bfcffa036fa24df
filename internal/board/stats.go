package board

import "github.com/yukikurage/kanban-board-api/internal/models"

// Stats aggregates the board for reporting. Per-assignee figures flatten the
// assignment relation: a task with N assignees counts once for each of them.
type Stats struct {
	Total               int
	ByStage             map[models.Stage]int
	ByPriority          map[models.Priority]int
	PendingDue          map[DueBucket]int
	CompletedByAssignee map[string]int
	ProgressByAssignee  map[string]map[models.Stage]int
}

// Aggregate computes Stats over tasks. Due buckets only count pending tasks.
func Aggregate(tasks []models.Task, today models.Date, thresholds Thresholds) Stats {
	s := Stats{
		Total:               len(tasks),
		ByStage:             make(map[models.Stage]int),
		ByPriority:          make(map[models.Priority]int),
		PendingDue:          make(map[DueBucket]int),
		CompletedByAssignee: make(map[string]int),
		ProgressByAssignee:  make(map[string]map[models.Stage]int),
	}

	for _, stage := range models.Stages() {
		s.ByStage[stage] = 0
	}
	for _, bucket := range DueBuckets() {
		s.PendingDue[bucket] = 0
	}

	for _, t := range tasks {
		s.ByStage[t.Stage]++
		s.ByPriority[t.Priority]++

		if t.Stage != models.StageDone {
			s.PendingDue[BucketFor(t, today, thresholds.DueSoonDays)]++
		}

		for _, name := range t.Assignees() {
			if t.Stage == models.StageDone {
				s.CompletedByAssignee[name]++
			}
			perStage, ok := s.ProgressByAssignee[name]
			if !ok {
				perStage = make(map[models.Stage]int)
				s.ProgressByAssignee[name] = perStage
			}
			perStage[t.Stage] += t.Progress
		}
	}

	return s
}
