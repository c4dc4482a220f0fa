// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tripline/travel-backend/internal/config"
	"github.com/tripline/travel-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.SellerProfile{},
		&models.Trip{},
		&models.TripSchedule{},
		&models.Booking{},
		&models.CommissionPayment{},
		&models.SellerCoins{},
		&models.CoinTransaction{},
		&models.CoinRedemption{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_type_status ON users(user_type, status)",

		// Seller indexes
		"CREATE INDEX IF NOT EXISTS idx_seller_profiles_status ON seller_profiles(status)",
		"CREATE INDEX IF NOT EXISTS idx_seller_profiles_referral ON seller_profiles(referral_code)",

		// Trip indexes
		"CREATE INDEX IF NOT EXISTS idx_trips_active ON trips(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_trips_destination ON trips(destination)",
		"CREATE INDEX IF NOT EXISTS idx_trip_schedules_trip ON trip_schedules(trip_id, departure_date)",

		// Booking indexes
		"CREATE INDEX IF NOT EXISTS idx_bookings_customer ON bookings(customer_id)",
		"CREATE INDEX IF NOT EXISTS idx_bookings_seller ON bookings(seller_id)",
		"CREATE INDEX IF NOT EXISTS idx_bookings_schedule ON bookings(trip_schedule_id)",
		"CREATE INDEX IF NOT EXISTS idx_bookings_payment_status ON bookings(payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_bookings_created_at ON bookings(created_at DESC)",

		// Commission indexes
		"CREATE INDEX IF NOT EXISTS idx_commission_payments_seller ON commission_payments(seller_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_commission_payments_created ON commission_payments(created_at DESC)",

		// Coin indexes
		"CREATE INDEX IF NOT EXISTS idx_coin_transactions_seller ON coin_transactions(seller_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_coin_transactions_reference ON coin_transactions(reference_type, reference_id)",
		"CREATE INDEX IF NOT EXISTS idx_coin_redemptions_seller ON coin_redemptions(seller_id, status)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",

		// Full-text search indexes
		"CREATE INDEX IF NOT EXISTS idx_trips_search ON trips USING GIN(to_tsvector('english', title || ' ' || description))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	// Create default admin user
	var adminCount int64
	db.Model(&models.User{}).Where("user_type = ?", models.UserTypeAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Username: "admin",
			Email:    "admin@tripline.io",
			UserType: models.UserTypeAdmin,
			Status:   models.UserStatusActive,
			FullName: "System Administrator",
			ProfileData: models.JSONB{
				"role": "super_admin",
			},
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default admin user created successfully")
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
