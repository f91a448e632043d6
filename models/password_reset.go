package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Password reset request statuses
const (
	ResetPending   = "PENDING"
	ResetCompleted = "COMPLETED"
	ResetCancelled = "CANCELLED"
)

// PasswordResetRequest is created by the self-service "forgot password" flow
// and resolved only by an admin, who sets the new password out of band.
type PasswordResetRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status      string     `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (p *PasswordResetRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// TableName specifies the table name for PasswordResetRequest
func (PasswordResetRequest) TableName() string {
	return "password_reset_requests"
}
