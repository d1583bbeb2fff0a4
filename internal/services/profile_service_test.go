package services

import (
	"testing"

	"github.com/wathiq/b2b-platform/internal/apperrors"
	"github.com/wathiq/b2b-platform/internal/database"
	"github.com/wathiq/b2b-platform/internal/models"
)

func TestValidateContact(t *testing.T) {
	setupTestDB(t)
	svc := NewProfileService(testConfig())

	complete := createCompany(t, true)
	check, err := svc.ValidateContact(complete.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !check.Valid || !check.HasEmail || !check.HasPhone {
		t.Fatalf("expected valid contact, got %+v", check)
	}
	if check.ExistingPhone != complete.Phone {
		t.Fatalf("existing phone should be surfaced for confirmation")
	}

	noPhone := createCompany(t, false)
	check, err = svc.ValidateContact(noPhone.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if check.Valid || check.HasPhone {
		t.Fatalf("company without phone must not validate, got %+v", check)
	}
}

func TestValidateContactRejectsNonCompany(t *testing.T) {
	setupTestDB(t)
	svc := NewProfileService(testConfig())

	owner := createEntrepreneur(t)
	if _, err := svc.ValidateContact(owner.ID); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("entrepreneur accounts have no signer contact check, got %v", err)
	}
}

func TestUpdateContactNeverBlanks(t *testing.T) {
	setupTestDB(t)
	svc := NewProfileService(testConfig())

	company := createCompany(t, true)

	updated, err := svc.UpdateContact(company.ID, ContactUpdate{Phone: "+966509998888"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	var stored models.User
	database.GetDB().First(&stored, "id = ?", company.ID)
	if stored.Phone != "+966509998888" {
		t.Fatalf("phone not updated: %q", stored.Phone)
	}
	if stored.Email != company.Email {
		t.Fatalf("omitted email must stay untouched, got %q", stored.Email)
	}
	_ = updated

	// Empty update is a no-op, not a wipe
	if _, err := svc.UpdateContact(company.ID, ContactUpdate{}); err != nil {
		t.Fatalf("empty update failed: %v", err)
	}
	database.GetDB().First(&stored, "id = ?", company.ID)
	if stored.Phone != "+966509998888" {
		t.Fatalf("empty update must not blank phone, got %q", stored.Phone)
	}
}

func TestUpdatePersonalFieldsPartial(t *testing.T) {
	setupTestDB(t)
	svc := NewProfileService(testConfig())

	company := createCompany(t, true)

	if _, err := svc.UpdatePersonalFields(company.ID, PersonalFields{Address: "Dammam, Corniche"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	var stored models.User
	database.GetDB().First(&stored, "id = ?", company.ID)
	if stored.Address != "Dammam, Corniche" {
		t.Fatalf("address not updated: %q", stored.Address)
	}
	if stored.NationalID != company.NationalID {
		t.Fatalf("omitted fields must stay untouched")
	}
}

func TestCheckSigningEligibilityOrder(t *testing.T) {
	setupTestDB(t)
	svc := NewProfileService(testConfig())

	// Verification is checked before field completeness: an unverified
	// company with an empty profile hears about verification first.
	company := createCompany(t, false)
	_, err := svc.CheckSigningEligibility(company.ID)
	if !apperrors.IsKind(err, apperrors.KindPrecondition) {
		t.Fatalf("expected precondition for unverified company, got %v", err)
	}

	database.GetDB().Model(company).Update("verified", true)
	_, err = svc.CheckSigningEligibility(company.ID)
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("verified but incomplete company should fail validation, got %v", err)
	}
	typed, _ := apperrors.AsError(err)
	if len(typed.Fields) == 0 {
		t.Fatalf("validation error must name the missing fields")
	}

	eligible := createCompany(t, true)
	user, err := svc.CheckSigningEligibility(eligible.ID)
	if err != nil {
		t.Fatalf("eligible company rejected: %v", err)
	}
	if user.ID != eligible.ID {
		t.Fatalf("wrong user returned")
	}
}
