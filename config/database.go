package config

import (
	"fmt"
	"time"

	"foodhub-api/models"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormWriter sends GORM's slow-query and error lines through logrus
type gormWriter struct {
	entry *logrus.Entry
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.entry.Warnf(format, args...)
}

// GormLogger reports slow queries and failed statements. A missing row is a normal lookup result and is not logged.
func GormLogger(log *logrus.Logger) logger.Interface {
	return logger.New(gormWriter{entry: log.WithField("component", "gorm")}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// GormConfig is shared by the server and the tests.
// Foreign keys are not declared in the schema: order items keep their meal id after the meal is gone,
// and every delete that spans tables runs in one transaction.
func GormConfig(log *logrus.Logger) *gorm.Config {
	return &gorm.Config{
		Logger:                                   GormLogger(log),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// OpenDB connects to the configured database and migrates all models
func OpenDB(cfg Config, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DBSource)
	default:
		dialector = sqlite.Open(cfg.DBSource)
	}

	db, err := gorm.Open(dialector, GormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"driver": cfg.DBDriver}).Info("database connected and migrated")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
