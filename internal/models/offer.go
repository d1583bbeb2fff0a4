package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "pending"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusRejected  OfferStatus = "rejected"
	OfferStatusWithdrawn OfferStatus = "withdrawn"
	OfferStatusExpired   OfferStatus = "expired"
)

// Offer is a development company's bid on a posted project. The
// company's identity stays blinded to the project owner until the
// owner has paid the deposit for the project.
type Offer struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CompanyUserID uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_user_id"`
	ProjectID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"project_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	DurationWeeks int             `json:"duration_weeks"`
	Proposal      string          `gorm:"type:text" json:"proposal"`
	Status        OfferStatus     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ResponseNotes string          `gorm:"type:text" json:"response_notes,omitempty"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	RespondedAt   *time.Time      `json:"responded_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Company *User    `gorm:"foreignKey:CompanyUserID" json:"company,omitempty"`
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	// Offers lapse after 30 days unless the owner responds
	if o.ExpiresAt == nil {
		expires := time.Now().AddDate(0, 0, 30)
		o.ExpiresAt = &expires
	}
	return nil
}

func (o *Offer) IsExpired() bool {
	if o.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*o.ExpiresAt)
}

func (o *Offer) CanRespond() bool {
	return o.Status == OfferStatusPending && !o.IsExpired()
}

// OfferBlinded is the owner-facing view before the deposit is paid:
// terms are visible, the bidding company is not.
type OfferBlinded struct {
	ID            uuid.UUID       `json:"id"`
	ProjectID     uuid.UUID       `json:"project_id"`
	Amount        decimal.Decimal `json:"amount"`
	DurationWeeks int             `json:"duration_weeks"`
	Proposal      string          `json:"proposal"`
	Status        OfferStatus     `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (o *Offer) ToBlinded() OfferBlinded {
	return OfferBlinded{
		ID:            o.ID,
		ProjectID:     o.ProjectID,
		Amount:        o.Amount,
		DurationWeeks: o.DurationWeeks,
		Proposal:      o.Proposal,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
	}
}
