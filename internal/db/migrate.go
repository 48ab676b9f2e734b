package db

import (
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smartsupply/delivery-app/internal/config"
	"github.com/smartsupply/delivery-app/internal/models"
)

func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}
	var db *gorm.DB
	var err error
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// Timestamps are stored in UTC; the PKT business day is derived at read time.
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		log.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	log.Println("[DB] Using DSN:", masked)

	// MIGRATIONS=1 runs sql migrations via golang-migrate; otherwise AutoMigrate (dev convenience).
	if config.ParseBool("MIGRATIONS", false) {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		modelsToMigrate := []interface{}{
			&models.User{}, &models.AdminProfile{}, &models.RiderProfile{},
			&models.Customer{}, &models.Order{}, &models.Notification{},
			&models.DailyClosing{}, &models.DailyClosingRider{}, &models.DailyClosingPayment{},
		}
		for _, m := range modelsToMigrate {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"users", "customers", "orders"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if config.ParseBool("DB_SEED", false) {
		seed(db)
	}
	return db, nil
}

// seed ensures the bootstrap admin account and the walk-in sentinel customer
// exist. It never overwrites existing rows.
func seed(db *gorm.DB) {
	cfg := config.Load()
	var admin models.User
	if err := db.Where("role = ?", models.RoleAdmin).First(&admin).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			password = "changeme"
			log.Println("[DB] ADMIN_PASSWORD not set, seeding admin with the default password")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[DB] seed admin hash failed:", err)
			return
		}
		admin = models.User{Email: cfg.AdminEmail, Password: string(hash), Role: models.RoleAdmin, IsActive: true}
		if err := db.Create(&admin).Error; err != nil {
			log.Println("[DB] seed admin failed:", err)
			return
		}
		db.Create(&models.AdminProfile{UserID: admin.ID, Name: "Administrator"})
	}

	var sentinel models.Customer
	if err := db.Where("name = ?", models.WalkInCustomerName).First(&sentinel).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		db.Create(&models.Customer{Name: models.WalkInCustomerName, IsActive: true})
	}
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", ToURLDSN(dsn))
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
