package models

import "time"

type Task struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	Title          string    `gorm:"type:varchar(255);not null" json:"title"`
	Description    *string   `gorm:"type:text" json:"description"`
	CreatedDate    Date      `gorm:"type:varchar(10);not null" json:"created_date"`
	StartDate      *Date     `gorm:"type:varchar(10)" json:"start_date"`
	DueDate        *Date     `gorm:"type:varchar(10)" json:"due_date"`
	Priority       Priority  `gorm:"type:varchar(10);not null" json:"priority"`
	Shift          Shift     `gorm:"type:varchar(10);not null" json:"shift"`
	Stage          Stage     `gorm:"type:varchar(20);not null;default:'Todo'" json:"stage"`
	CompletionDate *Date     `gorm:"type:varchar(10)" json:"completion_date"`
	Progress       int       `gorm:"not null;default:0" json:"progress"`
	CreatedBy      string    `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Collaborators []TaskCollaborator `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"collaborators,omitempty"`
	Interactions  []TaskInteraction  `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

// Assignees returns the usernames assigned to t. Collaborators must be loaded.
func (t Task) Assignees() []string {
	names := make([]string, len(t.Collaborators))
	for i, c := range t.Collaborators {
		names[i] = c.Username
	}
	return names
}

// IsAssigned reports whether username is one of t's collaborators.
func (t Task) IsAssigned(username string) bool {
	for _, c := range t.Collaborators {
		if c.Username == username {
			return true
		}
	}
	return false
}
