package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// DepositPayment is the escrow-style deposit an entrepreneur pays on a
// project before bidding companies' identities are revealed to them.
type DepositPayment struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	EntrepreneurID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"entrepreneur_id"`
	ProjectID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Amount             int64          `gorm:"not null" json:"amount"` // halalas (minor units)
	Currency           string         `gorm:"not null;default:'sar'" json:"currency"`
	StripePaymentID    string         `gorm:"index" json:"stripe_payment_id,omitempty"`
	StripeClientSecret string         `json:"-"`
	Status             PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Description        string         `json:"description"`
	ReceiptURL         string         `json:"receipt_url,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Entrepreneur *User    `gorm:"foreignKey:EntrepreneurID" json:"entrepreneur,omitempty"`
	Project      *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (p *DepositPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *DepositPayment) IsSettled() bool {
	return p.Status == PaymentStatusCompleted
}
