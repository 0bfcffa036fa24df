package models

// TaskCollaborator links a task to an assigned user.
type TaskCollaborator struct {
	TaskID   uint64 `gorm:"primarykey;autoIncrement:false" json:"task_id"`
	Username string `gorm:"primarykey;type:varchar(100)" json:"username"`
}
