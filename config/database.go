package config

import (
	"fmt"

	"github.com/yunseo-dev/glowbook/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection
func InitDB() {
	config, err := LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	// TranslateError turns driver duplicate-key errors into
	// gorm.ErrDuplicatedKey, which the guards rely on to detect a lost race.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	if err := MigrateModels(db); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}
	if err := EnsureLedgerIndexes(db); err != nil {
		panic(fmt.Sprintf("Failed to create ledger indexes: %v", err))
	}

	DB = db
}

// MigrateModels runs the schema migration for every model in the system.
// Shared with the test database setup.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Studio{},
		&models.Designer{},
		&models.Customer{},
		&models.SalonService{},
		&models.User{},
		&models.AuthLocal{},
		&models.Reservation{},
		&models.Consultation{},
		&models.Coupon{},
		&models.CustomerCoupon{},
	)
}

// EnsureLedgerIndexes creates the partial unique indexes the booking and
// coupon guards depend on. AutoMigrate cannot express partial indexes, so
// they are created with raw SQL the same way on Postgres and SQLite.
//
// A slot is only taken while a reservation on it is live, so the
// reservation index excludes CANCELED rows: canceling frees the slot for
// rebooking without deleting history. The coupon index scopes to
// non-deleted rows so a soft-deleted instance does not block reissuance.
func EnsureLedgerIndexes(db *gorm.DB) error {
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_live_slot
		 ON reservations (designer_id, reserved_at)
		 WHERE status <> 'CANCELED'`,
	).Error; err != nil {
		return err
	}
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_customer_coupons_once
		 ON customer_coupons (coupon_id, customer_id)
		 WHERE deleted_at IS NULL`,
	).Error
}
