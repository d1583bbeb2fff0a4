package database

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wathiq/b2b-platform/internal/models"
)

// SeedDemoProjects inserts a handful of showcase projects so a fresh
// install has something to browse. Only runs when SEED_DEMO_DATA=true
// and no projects exist yet.
func SeedDemoProjects(ownerID uuid.UUID) error {
	if os.Getenv("SEED_DEMO_DATA") != "true" {
		return nil
	}

	var count int64
	DB.Model(&models.Project{}).Count(&count)
	if count > 0 {
		return nil
	}

	var webDev, fintech models.Category
	DB.Where("name = ?", "Web Development").First(&webDev)
	DB.Where("name = ?", "FinTech").First(&fintech)

	projects := []models.Project{
		{
			OwnerID:       ownerID,
			CategoryID:    webDev.ID,
			Title:         "Logistics booking portal",
			TitleAr:       "بوابة حجز الشحنات",
			Summary:       "A booking portal connecting shippers with carriers across the Kingdom.",
			Description:   "Full web portal with carrier onboarding, shipment tracking, and invoicing.",
			BudgetMin:     decimal.NewFromInt(80000),
			BudgetMax:     decimal.NewFromInt(150000),
			DurationWeeks: 16,
			Status:        models.ProjectStatusApproved,
		},
		{
			OwnerID:       ownerID,
			CategoryID:    fintech.ID,
			Title:         "Micro-savings wallet",
			TitleAr:       "محفظة ادخار",
			Summary:       "A round-up savings wallet. Full details under NDA.",
			Description:   "Mobile wallet that rounds up card purchases into a savings pot, with SAMA-compliant KYC flows and bank integrations.",
			BudgetMin:     decimal.NewFromInt(200000),
			BudgetMax:     decimal.NewFromInt(400000),
			DurationWeeks: 28,
			RequiresNda:   true,
			Status:        models.ProjectStatusApproved,
		},
	}

	for i := range projects {
		if err := DB.Create(&projects[i]).Error; err != nil {
			return err
		}
	}
	log.Println("Seeded demo projects")
	return nil
}
