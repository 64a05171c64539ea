package database

import (
	"fmt"
	"log"

	"livewright-backend/internal/domain/billing"
	"livewright-backend/internal/domain/contracts"
	"livewright-backend/internal/domain/roster"
	"livewright-backend/internal/domain/scholarship"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(dsn string) *gorm.DB {
	if dsn == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&contracts.Contract{},
		&contracts.PricingOption{},
		&billing.Payment{},
		&scholarship.Application{},
		&roster.Attendee{},
		&roster.AttendanceRecord{},
	); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
	return db
}
