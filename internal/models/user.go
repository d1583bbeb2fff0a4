package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleEntrepreneur UserRole = "entrepreneur"
	RoleCompany      UserRole = "company"
	RoleAdmin        UserRole = "admin"
)

type User struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string         `gorm:"not null" json:"-"`
	Role          UserRole       `gorm:"type:varchar(20);not null" json:"role"`
	FullName      string         `gorm:"not null" json:"full_name"`
	Phone         string         `json:"phone"`
	PreferredLang string         `gorm:"type:varchar(5);default:'ar'" json:"preferred_lang"`
	Bio           string         `gorm:"type:text" json:"bio"`
	EmailVerified bool           `gorm:"default:false" json:"email_verified"`
	VerifyToken   string         `gorm:"index" json:"-"`
	ResetToken    string         `gorm:"index" json:"-"`
	ResetExpires  *time.Time     `json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Company-role legal identity, required before a company may sign
	// agreements. Owned by the profile feature; the NDA flow reads it
	// and writes it only through ProfileService.
	CompanyName        string `json:"company_name,omitempty"`
	NationalID         string `json:"national_id,omitempty"`
	BirthDate          string `json:"birth_date,omitempty"`
	Address            string `json:"address,omitempty"`
	CommercialRegistry string `json:"commercial_registry,omitempty"`
	Verified           bool   `gorm:"default:false" json:"verified"`

	// Relations
	Projects      []Project        `gorm:"foreignKey:OwnerID" json:"projects,omitempty"`
	Agreements    []NdaAgreement   `gorm:"foreignKey:CompanyUserID" json:"agreements,omitempty"`
	Offers        []Offer          `gorm:"foreignKey:CompanyUserID" json:"offers,omitempty"`
	Deposits      []DepositPayment `gorm:"foreignKey:EntrepreneurID" json:"deposits,omitempty"`
	Notifications []Notification   `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasContactInfo reports whether the account carries both contact
// channels an agreement invitation needs. Email is always present via
// the account; phone is optional at registration.
func (u *User) HasContactInfo() bool {
	return strings.TrimSpace(u.Email) != "" && strings.TrimSpace(u.Phone) != ""
}

// IsPersonalInfoComplete reports whether every legal-identity field the
// signature provider requires is a non-empty trimmed string. Companies
// additionally need a commercial registry number.
func (u *User) IsPersonalInfoComplete() bool {
	required := []string{u.FullName, u.NationalID, u.Phone, u.BirthDate, u.Address}
	if u.Role == RoleCompany {
		required = append(required, u.CommercialRegistry)
	}
	for _, f := range required {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// MissingPersonalFields lists which legal-identity fields are still
// empty, so callers can prompt for exactly those.
func (u *User) MissingPersonalFields() []string {
	fields := map[string]string{
		"full_name":   u.FullName,
		"national_id": u.NationalID,
		"phone":       u.Phone,
		"birth_date":  u.BirthDate,
		"address":     u.Address,
	}
	if u.Role == RoleCompany {
		fields["commercial_registry"] = u.CommercialRegistry
	}
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// UserResponse is a safe representation without sensitive fields
type UserResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Role          UserRole  `json:"role"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone"`
	PreferredLang string    `json:"preferred_lang"`
	CompanyName   string    `json:"company_name,omitempty"`
	Bio           string    `json:"bio"`
	EmailVerified bool      `json:"email_verified"`
	Verified      bool      `json:"verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Role:          u.Role,
		FullName:      u.FullName,
		Phone:         u.Phone,
		PreferredLang: u.PreferredLang,
		CompanyName:   u.CompanyName,
		Bio:           u.Bio,
		EmailVerified: u.EmailVerified,
		Verified:      u.Verified,
		CreatedAt:     u.CreatedAt,
	}
}
