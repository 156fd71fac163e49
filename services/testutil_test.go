package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yunseo-dev/glowbook/config"
	"github.com/yunseo-dev/glowbook/models"
)

var testDBSeq uint64

// newTestDB opens a fresh in-memory SQLite database with the same schema
// and partial unique indexes as production. A single connection is shared
// so concurrent goroutine transactions serialize instead of fighting over
// SQLite's writer lock.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:glowbook_test_%d?mode=memory&cache=shared", atomic.AddUint64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateModels(db))
	require.NoError(t, config.EnsureLedgerIndexes(db))

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// fixtures seeds one studio with a designer, a service and two customers.
type fixtures struct {
	Studio    models.Studio
	Designer  models.Designer
	Service   models.SalonService
	Customer  models.Customer
	Customer2 models.Customer
}

func seedFixtures(t *testing.T, db *gorm.DB) fixtures {
	t.Helper()

	f := fixtures{
		Studio: models.Studio{Name: "Glow Seongsu", Phone: "02-1234-5678"},
	}
	require.NoError(t, db.Create(&f.Studio).Error)

	f.Designer = models.Designer{StudioID: f.Studio.ID, Name: "Jiwoo", IsActive: true}
	require.NoError(t, db.Create(&f.Designer).Error)

	f.Service = models.SalonService{StudioID: f.Studio.ID, Name: "Cut", DurationMin: 60, Price: 35000}
	require.NoError(t, db.Create(&f.Service).Error)

	f.Customer = models.Customer{StudioID: f.Studio.ID, Name: "Minji", Phone: "010-1111-2222"}
	require.NoError(t, db.Create(&f.Customer).Error)

	f.Customer2 = models.Customer{StudioID: f.Studio.ID, Name: "Haeun", Phone: "010-3333-4444"}
	require.NoError(t, db.Create(&f.Customer2).Error)

	return f
}

func staffActor(f fixtures) models.Actor {
	return models.Actor{UserID: 1, Role: models.RoleStudio, StudioID: f.Studio.ID}
}

func customerActor(f fixtures) models.Actor {
	return models.Actor{UserID: 2, Role: models.RoleCustomer, CustomerID: f.Customer.ID}
}

func seedPolicy(t *testing.T, db *gorm.DB, studioID uint, mutate func(*models.Coupon)) models.Coupon {
	t.Helper()

	percent := 10.0
	policy := models.Coupon{
		StudioID:   studioID,
		Name:       "Welcome 10%",
		PercentOff: &percent,
		StartsAt:   time.Now().Add(-time.Hour),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}
	if mutate != nil {
		mutate(&policy)
	}
	require.NoError(t, db.Create(&policy).Error)
	return policy
}

func seedCredential(t *testing.T, db *gorm.DB, userID uint) models.AuthLocal {
	t.Helper()

	auth := models.AuthLocal{UserID: userID, PasswordHash: "$2a$10$testhash"}
	require.NoError(t, db.Create(&auth).Error)
	return auth
}
