package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`
	NameAr      string         `json:"name_ar"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Projects []Project `gorm:"foreignKey:CategoryID" json:"projects,omitempty"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type ProjectStatus string

const (
	ProjectStatusDraft    ProjectStatus = "draft"
	ProjectStatusPending  ProjectStatus = "pending"
	ProjectStatusApproved ProjectStatus = "approved"
	ProjectStatusRejected ProjectStatus = "rejected"
)

type Project struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	CategoryID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Title           string          `gorm:"not null" json:"title"`
	TitleAr         string          `json:"title_ar"`
	Summary         string          `gorm:"size:300" json:"summary"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	TechnicalScope  string          `gorm:"type:text" json:"technical_scope"`
	Deliverables    string          `gorm:"type:text" json:"deliverables"`
	BudgetMin       decimal.Decimal `gorm:"type:decimal(14,2)" json:"budget_min"`
	BudgetMax       decimal.Decimal `gorm:"type:decimal(14,2)" json:"budget_max"`
	DurationWeeks   int             `json:"duration_weeks"`
	RequiresNda     bool            `gorm:"default:false;index" json:"requires_nda"`
	Status          ProjectStatus   `gorm:"type:varchar(20);default:'draft'" json:"status"`
	RejectionReason string          `gorm:"type:text" json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	ApprovedBy      *uuid.UUID      `gorm:"type:uuid" json:"approved_by,omitempty"`
	ViewCount       int             `gorm:"default:0" json:"view_count"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Owner      *User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Category   *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Offers     []Offer        `gorm:"foreignKey:ProjectID" json:"offers,omitempty"`
	Agreements []NdaAgreement `gorm:"foreignKey:ProjectID" json:"agreements,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProjectTeaser is the limited view shown when the disclosure gate
// denies full access to an NDA-protected project.
type ProjectTeaser struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	TitleAr       string          `json:"title_ar"`
	Summary       string          `json:"summary"`
	CategoryID    uuid.UUID       `json:"category_id"`
	Category      *Category       `json:"category,omitempty"`
	BudgetMin     decimal.Decimal `json:"budget_min"`
	BudgetMax     decimal.Decimal `json:"budget_max"`
	DurationWeeks int             `json:"duration_weeks"`
	RequiresNda   bool            `json:"requires_nda"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (p *Project) ToTeaser() ProjectTeaser {
	return ProjectTeaser{
		ID:            p.ID,
		Title:         p.Title,
		TitleAr:       p.TitleAr,
		Summary:       p.Summary,
		CategoryID:    p.CategoryID,
		Category:      p.Category,
		BudgetMin:     p.BudgetMin,
		BudgetMax:     p.BudgetMax,
		DurationWeeks: p.DurationWeeks,
		RequiresNda:   p.RequiresNda,
		CreatedAt:     p.CreatedAt,
	}
}

// CanViewFullProject is the disclosure gate. It is evaluated on every
// detail load, never cached across the agreement lifecycle, because
// signing completes asynchronously.
//
// Priority order: open projects are visible to everyone; the owner and
// admins always see everything; a company sees full detail only when
// its own agreement on this project is signed and still valid; all
// other viewers get the teaser.
func CanViewFullProject(viewerID uuid.UUID, role UserRole, project *Project, agreements []NdaAgreement) bool {
	if !project.RequiresNda {
		return true
	}
	if role == RoleAdmin || project.OwnerID == viewerID {
		return true
	}
	if role != RoleCompany {
		return false
	}
	for _, a := range agreements {
		if a.ProjectID == project.ID && a.CompanyUserID == viewerID && a.GrantsAccess() {
			return true
		}
	}
	return false
}
