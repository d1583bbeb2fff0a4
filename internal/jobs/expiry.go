package jobs

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wathiq/b2b-platform/internal/database"
	"github.com/wathiq/b2b-platform/internal/models"
)

// StartScheduler runs the hourly agreement expiry sweep. Access checks
// already treat an overdue signed agreement as expired on read; the
// sweep persists that outcome so listings and stats agree with it.
func StartScheduler() *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("@hourly", SweepExpiredAgreements); err != nil {
		log.Printf("Failed to schedule agreement expiry sweep: %v", err)
	}
	if _, err := c.AddFunc("@hourly", SweepLapsedOffers); err != nil {
		log.Printf("Failed to schedule offer expiry sweep: %v", err)
	}

	c.Start()
	log.Println("Background scheduler started")
	return c
}

// SweepExpiredAgreements moves signed agreements past their validity
// window into the expired state. The guarded WHERE keeps the sweep
// idempotent and safe against concurrent readers doing the same lazily.
func SweepExpiredAgreements() {
	db := database.GetDB()
	if db == nil {
		return
	}

	res := db.Model(&models.NdaAgreement{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?",
			models.NdaStatusSigned, time.Now()).
		Update("status", models.NdaStatusExpired)
	if res.Error != nil {
		log.Printf("Agreement expiry sweep failed: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Agreement expiry sweep: %d agreement(s) expired", res.RowsAffected)
	}
}

// SweepLapsedOffers expires pending offers the owner never responded to.
func SweepLapsedOffers() {
	db := database.GetDB()
	if db == nil {
		return
	}

	res := db.Model(&models.Offer{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?",
			models.OfferStatusPending, time.Now()).
		Update("status", models.OfferStatusExpired)
	if res.Error != nil {
		log.Printf("Offer expiry sweep failed: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Offer expiry sweep: %d offer(s) expired", res.RowsAffected)
	}
}
