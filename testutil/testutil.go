// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"io"
	"testing"

	"foodhub-api/config"
	"foodhub-api/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory SQLite database with every model migrated.
// The pool holds a single connection so the database lives as long as the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), config.GormConfig(Logger()))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// Logger discards output
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func Price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func CreateUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()
	u := &models.User{
		Name:          email,
		Email:         email,
		PasswordHash:  "x",
		EmailVerified: true,
		Role:          role,
		Address:       "1 Test Street",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateProvider creates a provider user and its open, approved profile
func CreateProvider(t *testing.T, db *gorm.DB, name string, minOrder, deliveryFee string) *models.Provider {
	t.Helper()
	u := CreateUser(t, db, name+"@provider.test", models.RoleProvider)
	p := &models.Provider{
		ID:             u.ID,
		RestaurantName: name,
		Email:          u.Email,
		Address:        "2 Kitchen Road",
		DeliveryFee:    Price(deliveryFee),
		MinOrderAmount: Price(minOrder),
		IsApproved:     true,
		IsOpen:         true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func CreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreateMeal(t *testing.T, db *gorm.DB, providerID, categoryID uint, name, price string) *models.Meal {
	t.Helper()
	m := &models.Meal{
		ProviderID:  providerID,
		CategoryID:  categoryID,
		Name:        name,
		Price:       Price(price),
		IsAvailable: true,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}
