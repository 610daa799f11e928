// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

// NewSQLite opens a private in-memory database with the users and
// refresh_tokens tables. One connection keeps every statement on the same
// in-memory database.
func NewSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))
	return db
}

// CreateUser inserts a user with an already computed password digest.
func CreateUser(t *testing.T, db *gorm.DB, email, digest, role string) *models.User {
	t.Helper()

	u := &models.User{Email: email, PasswordHash: digest, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}
