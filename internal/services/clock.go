package services

import (
	"time"

	"github.com/yukikurage/kanban-board-api/internal/models"
)

// Clock returns the current instant. Services default to time.Now.
type Clock func() time.Time

func (c Clock) today() models.Date {
	return models.DateOf(c())
}

// stamp is the ledger timestamp: UTC at second precision.
func (c Clock) stamp() time.Time {
	return c().UTC().Truncate(time.Second)
}
