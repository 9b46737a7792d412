package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/config"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/timezone"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/usecase/account"
)

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Opportunity{},
		&models.TimeSlot{},
		&models.Booking{},
		&models.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := db.Exec(`
        UPDATE organizations
        SET timezone = ?
        WHERE timezone IS NULL OR timezone = ''
    `, timezone.Default()).Error; err != nil {
		return nil, fmt.Errorf("backfill timezones: %w", err)
	}

	return db, nil
}

// SeedAdmin creates the administrator account from ADMIN_EMAIL and
// ADMIN_PASSWORD when both are set and no user has that email yet.
func SeedAdmin(ctx context.Context, repo identity.Repository, cfg *config.Config, log zerolog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := repo.GetUserByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, identity.ErrUserNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hashed, err := account.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Email:        cfg.AdminEmail,
		Username:     "admin",
		PasswordHash: hashed,
		FullName:     "Administrator",
		Role:         string(identity.RoleAdmin),
		IsActive:     true,
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Info().Uint("user_id", admin.ID).Str("email", admin.Email).Msg("administrator seeded")
	return nil
}
