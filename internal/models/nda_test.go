package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCanAdvanceToOnlyMovesForward(t *testing.T) {
	cases := []struct {
		from    NdaStatus
		to      NdaStatus
		allowed bool
	}{
		{NdaStatusAwaitingEntrepreneur, NdaStatusInvitationSent, true},
		{NdaStatusAwaitingEntrepreneur, NdaStatusSigned, true},
		{NdaStatusAwaitingEntrepreneur, NdaStatusCancelled, true},
		{NdaStatusInvitationSent, NdaStatusSigned, true},
		{NdaStatusInvitationSent, NdaStatusAwaitingEntrepreneur, false},
		{NdaStatusSigned, NdaStatusInvitationSent, false},
		{NdaStatusSigned, NdaStatusExpired, true},
		{NdaStatusSigned, NdaStatusSigned, false},
	}

	for _, tc := range cases {
		a := NdaAgreement{Status: tc.from}
		if got := a.CanAdvanceTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestTerminalStatesAbsorb(t *testing.T) {
	targets := []NdaStatus{
		NdaStatusAwaitingEntrepreneur,
		NdaStatusInvitationSent,
		NdaStatusSigned,
		NdaStatusCancelled,
		NdaStatusExpired,
	}

	for _, terminal := range []NdaStatus{NdaStatusCancelled, NdaStatusExpired} {
		a := NdaAgreement{Status: terminal}
		if !a.IsTerminal() {
			t.Fatalf("%s should be terminal", terminal)
		}
		for _, next := range targets {
			if a.CanAdvanceTo(next) {
				t.Errorf("terminal %s must not advance to %s", terminal, next)
			}
		}
	}
}

func TestGrantsAccess(t *testing.T) {
	future := time.Now().AddDate(0, 1, 0)
	past := time.Now().AddDate(0, -1, 0)

	cases := []struct {
		name      string
		agreement NdaAgreement
		want      bool
	}{
		{"signed with validity remaining", NdaAgreement{Status: NdaStatusSigned, ExpiresAt: &future}, true},
		{"signed with no expiry", NdaAgreement{Status: NdaStatusSigned}, true},
		{"signed but validity lapsed", NdaAgreement{Status: NdaStatusSigned, ExpiresAt: &past}, false},
		{"invitation still out", NdaAgreement{Status: NdaStatusInvitationSent}, false},
		{"cancelled", NdaAgreement{Status: NdaStatusCancelled}, false},
	}

	for _, tc := range cases {
		if got := tc.agreement.GrantsAccess(); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanViewFullProject(t *testing.T) {
	ownerID := uuid.New()
	companyID := uuid.New()
	otherCompanyID := uuid.New()
	projectID := uuid.New()

	open := &Project{ID: projectID, OwnerID: ownerID, RequiresNda: false}
	protected := &Project{ID: projectID, OwnerID: ownerID, RequiresNda: true}

	signed := []NdaAgreement{{
		ProjectID:     projectID,
		CompanyUserID: companyID,
		Status:        NdaStatusSigned,
	}}
	pending := []NdaAgreement{{
		ProjectID:     projectID,
		CompanyUserID: companyID,
		Status:        NdaStatusInvitationSent,
	}}

	cases := []struct {
		name       string
		viewerID   uuid.UUID
		role       UserRole
		project    *Project
		agreements []NdaAgreement
		want       bool
	}{
		{"open project, anonymous viewer", uuid.Nil, "", open, nil, true},
		{"protected, owner", ownerID, RoleEntrepreneur, protected, nil, true},
		{"protected, admin", uuid.New(), RoleAdmin, protected, nil, true},
		{"protected, company with signed agreement", companyID, RoleCompany, protected, signed, true},
		{"protected, company with pending agreement", companyID, RoleCompany, protected, pending, false},
		{"protected, company with no agreement", otherCompanyID, RoleCompany, protected, nil, false},
		{"protected, entrepreneur who is not the owner", uuid.New(), RoleEntrepreneur, protected, nil, false},
	}

	for _, tc := range cases {
		if got := CanViewFullProject(tc.viewerID, tc.role, tc.project, tc.agreements); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanViewFullProjectIgnoresOthersAgreements(t *testing.T) {
	ownerID := uuid.New()
	viewerID := uuid.New()
	projectID := uuid.New()

	project := &Project{ID: projectID, OwnerID: ownerID, RequiresNda: true}

	// A signed agreement held by a different company grants the viewer
	// nothing.
	agreements := []NdaAgreement{{
		ProjectID:     projectID,
		CompanyUserID: uuid.New(),
		Status:        NdaStatusSigned,
	}}

	if CanViewFullProject(viewerID, RoleCompany, project, agreements) {
		t.Fatalf("viewer must not gain access through another company's agreement")
	}
}

func TestPersonalInfoCompleteness(t *testing.T) {
	complete := User{
		Role:               RoleCompany,
		FullName:           "Sara Al-Qahtani",
		NationalID:         "1023456789",
		Phone:              "+966501234567",
		BirthDate:          "1990-04-12",
		Address:            "Riyadh, Olaya District",
		CommercialRegistry: "CR-7010234567",
	}
	if !complete.IsPersonalInfoComplete() {
		t.Fatalf("expected complete profile, missing: %v", complete.MissingPersonalFields())
	}

	incomplete := complete
	incomplete.NationalID = "   "
	if incomplete.IsPersonalInfoComplete() {
		t.Fatalf("whitespace-only national ID must not count as filled")
	}
	missing := incomplete.MissingPersonalFields()
	if len(missing) != 1 || missing[0] != "national_id" {
		t.Fatalf("expected [national_id], got %v", missing)
	}

	// Commercial registry is only demanded from companies
	entrepreneur := complete
	entrepreneur.Role = RoleEntrepreneur
	entrepreneur.CommercialRegistry = ""
	if !entrepreneur.IsPersonalInfoComplete() {
		t.Fatalf("entrepreneurs do not need a commercial registry")
	}
}
