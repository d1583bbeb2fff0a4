package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NdaStatus string

const (
	NdaStatusAwaitingEntrepreneur NdaStatus = "awaiting_entrepreneur"
	NdaStatusInvitationSent       NdaStatus = "invitation_sent"
	NdaStatusSigned               NdaStatus = "signed"
	NdaStatusCancelled            NdaStatus = "cancelled"
	NdaStatusExpired              NdaStatus = "expired"
)

// statusRank orders the forward path of the lifecycle. Terminal states
// sit above everything so a stored terminal status can never be
// overwritten by a late poll result.
var statusRank = map[NdaStatus]int{
	NdaStatusAwaitingEntrepreneur: 1,
	NdaStatusInvitationSent:       2,
	NdaStatusSigned:               3,
	NdaStatusCancelled:            4,
	NdaStatusExpired:              4,
}

// NdaAgreement tracks one company's confidentiality agreement for one
// project. At most one row exists per (project, initiating company);
// re-initiation reuses the row. Rows are never hard-deleted: signed
// agreements are a legal audit trail.
type NdaAgreement struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_nda_project_company" json:"project_id"`
	CompanyUserID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_nda_project_company" json:"company_user_id"`
	Status        NdaStatus `gorm:"type:varchar(30);not null;default:'awaiting_entrepreneur'" json:"status"`

	// Company signer snapshot, captured at initiation and immutable
	// once the invitation is sent.
	CompanySignerName  string `gorm:"not null" json:"company_signer_name"`
	CompanySignerEmail string `gorm:"not null" json:"company_signer_email"`
	CompanySignerPhone string `gorm:"not null" json:"company_signer_phone"`
	CompanyName        string `json:"company_name"`

	// Entrepreneur (counterparty) info, populated when the project
	// owner completes their data.
	EntrepreneurUserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"entrepreneur_user_id"`
	EntrepreneurName       string     `json:"entrepreneur_name,omitempty"`
	EntrepreneurEmail      string     `json:"entrepreneur_email,omitempty"`
	EntrepreneurPhone      string     `json:"entrepreneur_phone,omitempty"`
	EntrepreneurNationalID string     `json:"entrepreneur_national_id,omitempty"`
	EntrepreneurBirthDate  string     `json:"entrepreneur_birth_date,omitempty"`
	EntrepreneurAddress    string     `json:"entrepreneur_address,omitempty"`
	EntrepreneurDoneAt     *time.Time `json:"entrepreneur_done_at,omitempty"`

	// Signature-provider correlation. Opaque except for the status
	// mapping done at the bridge boundary.
	SadiqEnvelopeID      string `gorm:"index" json:"sadiq_envelope_id,omitempty"`
	SadiqReferenceNumber string `gorm:"index" json:"sadiq_reference_number,omitempty"`
	SadiqDocumentID      string `json:"sadiq_document_id,omitempty"`
	EnvelopeStatus       string `json:"envelope_status,omitempty"`

	PdfURL    string         `json:"pdf_url,omitempty"`
	SignedAt  *time.Time     `json:"signed_at,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Company *User    `gorm:"foreignKey:CompanyUserID" json:"company,omitempty"`
}

func (n *NdaAgreement) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// IsTerminal reports whether the agreement can no longer advance.
func (n *NdaAgreement) IsTerminal() bool {
	switch n.Status {
	case NdaStatusSigned, NdaStatusCancelled, NdaStatusExpired:
		return true
	}
	return false
}

// IsTimeExpired reports whether the validity window has lapsed,
// regardless of the stored status. The disclosure gate checks this
// lazily; the hourly sweep persists it.
func (n *NdaAgreement) IsTimeExpired() bool {
	if n.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*n.ExpiresAt)
}

// GrantsAccess reports whether this agreement currently entitles its
// initiating company to full project disclosure.
func (n *NdaAgreement) GrantsAccess() bool {
	return n.Status == NdaStatusSigned && !n.IsTimeExpired()
}

// CanAdvanceTo enforces monotonic forward transitions: cancelled and
// expired are reachable from any non-terminal state, terminal states
// absorb, everything else only moves forward. A signed agreement that
// outlives its validity window is handled lazily by GrantsAccess, not
// by rewriting the stored status.
func (n *NdaAgreement) CanAdvanceTo(next NdaStatus) bool {
	if n.IsTerminal() {
		return false
	}
	return statusRank[next] > statusRank[n.Status]
}
