package db

import (
	"database/sql"
	"fmt"
	"time"

	"rhythmfm/config"
	"rhythmfm/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormDB is the GORM database handle, used by the catalog repository.
var GormDB *gorm.DB

// DB is the raw sql.DB handle shared with GormDB's pool, used by the
// prepared-statement repositories.
var DB *sql.DB

// ConnectDB establishes the MySQL connection and configures the pool.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	GormDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB, err = GormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	DB.SetMaxIdleConns(10)
	DB.SetMaxOpenConns(100)
	DB.SetConnMaxLifetime(time.Hour)

	return nil
}

// CloseDB closes the database connection.
func CloseDB() error {
	if DB == nil {
		return nil
	}
	return DB.Close()
}

// AutoMigrate migrates the full schema.
func AutoMigrate() error {
	if GormDB == nil {
		return fmt.Errorf("database not initialized")
	}

	err := GormDB.AutoMigrate(
		&model.User{},
		&model.UserProfile{},
		&model.Broadcaster{},
		&model.Artist{},
		&model.Album{},
		&model.Tag{},
		&model.Track{},
		&model.RecentlyPlayed{},
		&model.Favorite{},
		&model.Playlist{},
		&model.Advertisement{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	return nil
}
