package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/wathiq/b2b-platform/internal/apperrors"
	"github.com/wathiq/b2b-platform/internal/config"
	"github.com/wathiq/b2b-platform/internal/database"
	"github.com/wathiq/b2b-platform/internal/models"
)

// ProfileService owns the single authoritative write path for personal
// and contact fields. Both the dashboard profile form and the NDA
// flow's own contact step go through it, so neither can clobber the
// other's writes.
type ProfileService struct {
	config *config.Config
}

func NewProfileService(cfg *config.Config) *ProfileService {
	return &ProfileService{config: cfg}
}

// ContactCheck is the result of validating a prospective signer's
// contact data before an agreement may be initiated.
type ContactCheck struct {
	Valid         bool   `json:"valid"`
	HasEmail      bool   `json:"has_email"`
	HasPhone      bool   `json:"has_phone"`
	ExistingPhone string `json:"existing_phone,omitempty"`
}

// ValidateContact checks whether the company representative has the
// contact data an agreement invitation needs. Pure read.
func (s *ProfileService) ValidateContact(companyUserID uuid.UUID) (*ContactCheck, error) {
	db := database.GetDB()

	var user models.User
	if err := db.First(&user, "id = ? AND role = ?", companyUserID, models.RoleCompany).Error; err != nil {
		return nil, apperrors.NotFound("company profile not found")
	}

	check := &ContactCheck{
		HasEmail:      strings.TrimSpace(user.Email) != "",
		HasPhone:      strings.TrimSpace(user.Phone) != "",
		ExistingPhone: user.Phone,
	}
	check.Valid = check.HasEmail && check.HasPhone
	return check, nil
}

// ContactUpdate carries a partial contact write. Empty fields are left
// alone; a supplied field never blanks an existing value.
type ContactUpdate struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// UpdateContact applies a partial contact update and returns the fresh
// profile. Idempotent: re-sending the same values is a no-op.
func (s *ProfileService) UpdateContact(companyUserID uuid.UUID, update ContactUpdate) (*models.User, error) {
	db := database.GetDB()

	var user models.User
	if err := db.First(&user, "id = ?", companyUserID).Error; err != nil {
		return nil, apperrors.NotFound("company profile not found")
	}

	changes := map[string]interface{}{}
	if v := strings.TrimSpace(update.Email); v != "" {
		changes["email"] = v
	}
	if v := strings.TrimSpace(update.Phone); v != "" {
		changes["phone"] = v
	}
	if len(changes) == 0 {
		return &user, nil
	}

	if err := db.Model(&user).Updates(changes).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// PersonalFields carries the legal-identity subset the signature
// provider requires.
type PersonalFields struct {
	FullName           string `json:"full_name"`
	NationalID         string `json:"national_id"`
	Phone              string `json:"phone"`
	BirthDate          string `json:"birth_date"`
	Address            string `json:"address"`
	CommercialRegistry string `json:"commercial_registry"`
}

// UpdatePersonalFields applies a partial legal-identity update through
// the one authoritative path. Same non-blanking rule as UpdateContact.
func (s *ProfileService) UpdatePersonalFields(userID uuid.UUID, fields PersonalFields) (*models.User, error) {
	db := database.GetDB()

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, apperrors.NotFound("profile not found")
	}

	changes := map[string]interface{}{}
	set := func(column, value string) {
		if v := strings.TrimSpace(value); v != "" {
			changes[column] = v
		}
	}
	set("full_name", fields.FullName)
	set("national_id", fields.NationalID)
	set("phone", fields.Phone)
	set("birth_date", fields.BirthDate)
	set("address", fields.Address)
	set("commercial_registry", fields.CommercialRegistry)

	if len(changes) == 0 {
		return &user, nil
	}
	if err := db.Model(&user).Updates(changes).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckSigningEligibility verifies a company may initiate an NDA at
// all: admin verification first, then legal-identity completeness,
// then the contact check. Each failure names its remediation.
func (s *ProfileService) CheckSigningEligibility(companyUserID uuid.UUID) (*models.User, error) {
	db := database.GetDB()

	var user models.User
	if err := db.First(&user, "id = ? AND role = ?", companyUserID, models.RoleCompany).Error; err != nil {
		return nil, apperrors.NotFound("company profile not found")
	}

	if !user.Verified {
		return nil, apperrors.Precondition("company is not yet verified by an administrator")
	}
	if !user.IsPersonalInfoComplete() {
		return nil, apperrors.Validation("company legal information is incomplete", user.MissingPersonalFields()...)
	}
	if !user.HasContactInfo() {
		missing := []string{}
		if strings.TrimSpace(user.Email) == "" {
			missing = append(missing, "email")
		}
		if strings.TrimSpace(user.Phone) == "" {
			missing = append(missing, "phone")
		}
		return nil, apperrors.Validation("contact information is incomplete", missing...)
	}
	return &user, nil
}
