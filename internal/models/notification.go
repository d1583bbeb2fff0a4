package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationNdaRequest    NotificationType = "nda_request"
	NotificationNdaInvitation NotificationType = "nda_invitation"
	NotificationNdaCompleted  NotificationType = "nda_completed"
	NotificationNdaCancelled  NotificationType = "nda_cancelled"
	NotificationNewOffer      NotificationType = "new_offer"
	NotificationOfferResponse NotificationType = "offer_response"
)

// Notification is an in-app lifecycle event row. Emission is
// fire-and-forget from the state machine's perspective.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Content   string           `gorm:"type:text" json:"content"`
	ActionURL string           `json:"action_url,omitempty"`
	Metadata  datatypes.JSON   `json:"metadata,omitempty"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
