package database

import (
	"log"
	"os"
	"time"

	"toloka2web/config"
	"toloka2web/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the main application database (users, settings, releases, revoked tokens).
var DB *gorm.DB

// CatalogDB is the read-only local anime catalog. It stays nil when the
// catalog file does not exist; lookups then return empty results.
var CatalogDB *gorm.DB

// InitDB opens and configures the GORM SQLite database according to
// config.Settings, applies connection pool settings and optional SQLite
// PRAGMAs, and runs automigrations for the application models.
func InitDB() error {
	var err error

	// Configure GORM log level
	logLevel := logger.Silent
	if config.Settings.LogLevel == "DEBUG" {
		logLevel = logger.Info
	}

	logWriter := log.Writer()

	dsn := buildSQLiteDSN(config.Settings.DatabaseURL, config.Settings)
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: contentionLogger{Interface: logger.New(
			log.New(logWriter, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel: logLevel,
			},
		)},
	})
	if err != nil {
		return err
	}

	// Get underlying SQL DB and configure the connection pool
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	pool := currentSQLitePoolConfig(config.Settings)
	sqlDB.SetMaxIdleConns(pool.maxIdleConns)
	sqlDB.SetMaxOpenConns(pool.maxOpenConns)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.maxIdleSec) * time.Second)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.maxLifeSec) * time.Second)

	// Apply PRAGMAs again as a best-effort startup initialization (useful for existing DB files).
	// Connection URL parameters ensure PRAGMAs are applied for new connections too.
	if config.Settings.SQLitePragmasEnabled {
		if config.Settings.SQLiteBusyTimeoutMS > 0 {
			DB.Exec("PRAGMA busy_timeout = ?", config.Settings.SQLiteBusyTimeoutMS)
		}
		if journalMode := pragmaValue(config.Settings.SQLiteJournalMode, "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF"); journalMode != "" {
			DB.Exec("PRAGMA journal_mode = " + journalMode)
		}
		if synchronous := pragmaValue(config.Settings.SQLiteSynchronous, "OFF", "NORMAL", "FULL", "EXTRA", "0", "1", "2", "3"); synchronous != "" {
			DB.Exec("PRAGMA synchronous = " + synchronous)
		}
		if config.Settings.SQLiteForeignKeys {
			DB.Exec("PRAGMA foreign_keys = ON")
		} else {
			DB.Exec("PRAGMA foreign_keys = OFF")
		}
	}

	// Auto-migrate database tables
	err = DB.AutoMigrate(
		&models.User{},
		&models.AppSetting{},
		&models.Release{},
		&models.RevokedToken{},
	)
	if err != nil {
		return err
	}

	log.Println("Database initialized successfully")
	return nil
}

// InitCatalogDB opens the read-only anime catalog database when the file
// exists. A missing catalog is not an error: the catalog endpoints degrade
// to empty results.
func InitCatalogDB() error {
	path := config.Settings.CatalogDBPath
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("Catalog database %s not found, catalog search disabled", path)
		return nil
	}

	db, err := gorm.Open(sqlite.Open(path+"?mode=ro"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	CatalogDB = db
	log.Printf("Catalog database loaded from %s", path)
	return nil
}

// CloseDB closes the database connections and releases resources
func CloseDB() error {
	if CatalogDB != nil {
		if sqlDB, err := CatalogDB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	log.Println("Closing database connection...")
	return sqlDB.Close()
}
