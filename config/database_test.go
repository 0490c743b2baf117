package config

import (
	"testing"

	"foodhub-api/models"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	db, err := gorm.Open(sqlite.Open("file::memory:"), GormConfig(log))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, Migrate(db))
	hook.Reset()

	var cart models.Cart
	err = db.Where("customer_id = ?", 42).First(&cart).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, hook.AllEntries())

	require.Error(t, db.Exec("SELECT * FROM no_such_table").Error)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "gorm", hook.LastEntry().Data["component"])
}
