package entities

import "time"

// ActionPlan is a remediation task owned by exactly one kaizen record.
type ActionPlan struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	KaizenID          int64  `gorm:"not null;index"`
	ActionDescription string `gorm:"not null"`
	ResponsiblePerson string `gorm:"type:varchar(128);not null"`
	StartDate         *string
	DueDate           string `gorm:"not null"`
	CompletedDate     *string
	Status            string `gorm:"type:varchar(32);default:'Pending'"`
	Notes             *string

	DeliverableEvidenceLink *string
	CompletionDate          *string

	CreatedBy string    `gorm:"type:varchar(128);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedBy *string
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ActionPlan) TableName() string {
	return "action_plans"
}
