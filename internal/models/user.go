package models

import "time"

type User struct {
	Username           string    `gorm:"primarykey;type:varchar(100)" json:"username"`
	PasswordHash       string    `gorm:"type:varchar(255);not null" json:"-"`
	Role               Role      `gorm:"type:varchar(20);not null" json:"role"`
	MustChangePassword bool      `gorm:"not null;default:false" json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Relations
	Assignments  []TaskCollaborator `gorm:"foreignKey:Username;references:Username;constraint:OnDelete:CASCADE" json:"-"`
	Interactions []TaskInteraction  `gorm:"foreignKey:Username;references:Username;constraint:OnDelete:CASCADE" json:"-"`
}
