package board

import (
	"github.com/yukikurage/kanban-board-api/internal/constants"
	"github.com/yukikurage/kanban-board-api/internal/models"
)

// Thresholds are the look-ahead windows in days. Card colouring uses
// CardWarningDays, statistics use DueSoonDays; the two are independent.
type Thresholds struct {
	DueSoonDays     int
	CardWarningDays int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		DueSoonDays:     constants.DefaultDueSoonDays,
		CardWarningDays: constants.DefaultCardWarningDays,
	}
}

type DueBucket string

const (
	BucketOverdue   DueBucket = "overdue"
	BucketDueSoon   DueBucket = "due_soon"
	BucketOnTime    DueBucket = "on_time"
	BucketNoDueDate DueBucket = "no_due_date"
)

// DueBuckets lists the buckets in report order.
func DueBuckets() []DueBucket {
	return []DueBucket{BucketOverdue, BucketDueSoon, BucketOnTime, BucketNoDueDate}
}

// BucketFor classifies task by its due date. A task due today is overdue.
func BucketFor(task models.Task, today models.Date, dueSoonDays int) DueBucket {
	if task.DueDate == nil {
		return BucketNoDueDate
	}
	due := *task.DueDate
	switch {
	case due <= today:
		return BucketOverdue
	case due <= today.AddDays(dueSoonDays):
		return BucketDueSoon
	default:
		return BucketOnTime
	}
}

type CardColor string

const (
	CardCompleted CardColor = "completed"
	CardOverdue   CardColor = "overdue"
	CardWarning   CardColor = "warning"
	CardNormal    CardColor = "normal"
)

// CardColorFor picks the card highlight for task.
func CardColorFor(task models.Task, today models.Date, warningDays int) CardColor {
	if task.Stage == models.StageDone {
		return CardCompleted
	}
	switch BucketFor(task, today, warningDays) {
	case BucketOverdue:
		return CardOverdue
	case BucketDueSoon:
		return CardWarning
	}
	return CardNormal
}
