package db

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the plan store and configures the pool. SQL statements slower
// than 100ms are written to l at warn level.
func Connect(dsn string, l *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, eris.New("db: DATABASE_URL is empty")
	}
	if l == nil {
		l = zap.L()
	}

	lg := logger.New(
		zap.NewStdLog(l.Named("gorm")),
		logger.Config{
			SlowThreshold:             100 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: lg,
	})
	if err != nil {
		return nil, eris.Wrap(err, "db: connect")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, eris.Wrap(err, "db: get sql.DB")
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	l.Info("connected to database")
	return db, nil
}

// Ping checks that the pool can reach the server.
func Ping(ctx context.Context, d *gorm.DB) error {
	if d == nil {
		return eris.New("db: not connected")
	}
	sqlDB, err := d.DB()
	if err != nil {
		return eris.Wrap(err, "db: get sql.DB")
	}
	return sqlDB.PingContext(ctx)
}
