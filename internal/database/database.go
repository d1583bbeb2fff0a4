package database

import (
	"log"

	"github.com/glebarez/sqlite"
	"github.com/wathiq/b2b-platform/internal/config"
	"github.com/wathiq/b2b-platform/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Initialize(cfg *config.Config) error {
	var dialector gorm.Dialector

	switch cfg.DatabaseType {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		dialector = sqlite.Open(cfg.DatabaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return err
	}

	DB = db
	log.Println("Database connected successfully")

	if err := autoMigrate(); err != nil {
		return err
	}

	if err := seedData(); err != nil {
		log.Printf("Warning: seed data error: %v", err)
	}

	return nil
}

func autoMigrate() error {
	return DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Project{},
		&models.NdaAgreement{},
		&models.Offer{},
		&models.DepositPayment{},
		&models.Notification{},
	)
}

func seedData() error {
	// Seed categories if empty
	var count int64
	DB.Model(&models.Category{}).Count(&count)
	if count == 0 {
		categories := []models.Category{
			{Name: "Web Development", NameAr: "تطوير المواقع", Description: "Websites, portals, and web applications"},
			{Name: "Mobile Apps", NameAr: "تطبيقات الجوال", Description: "iOS and Android application development"},
			{Name: "E-Commerce", NameAr: "التجارة الإلكترونية", Description: "Online stores and marketplace builds"},
			{Name: "ERP & Back Office", NameAr: "أنظمة الموارد", Description: "Enterprise resource planning and internal systems"},
			{Name: "FinTech", NameAr: "التقنية المالية", Description: "Payments, wallets, and financial services"},
			{Name: "GovTech", NameAr: "التقنية الحكومية", Description: "Government integrations and digital services"},
			{Name: "AI & Data", NameAr: "الذكاء الاصطناعي", Description: "Machine learning, analytics, and data platforms"},
			{Name: "IoT", NameAr: "إنترنت الأشياء", Description: "Connected devices and embedded systems"},
		}
		for _, cat := range categories {
			DB.Create(&cat)
		}
		log.Println("Seeded categories")
	}

	return nil
}

func GetDB() *gorm.DB {
	return DB
}
