package database

import (
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	"jamb/config"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MaterialsDB is the Postgres handle of the finishing materials store.
var MaterialsDB *sqlx.DB

// InitMaterialsDB opens the materials database and brings its schema up to date.
func InitMaterialsDB() {
	db, err := OpenMaterialsDB(config.AppConfig.MaterialsDatabaseURL)
	if err != nil {
		log.Fatalf("failed to open materials database: %v", err)
	}
	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate materials database: %v", err)
	}
	MaterialsDB = db
	log.Println("Connected to materials database successfully!")
}

// OpenMaterialsDB connects to Postgres and verifies the connection.
func OpenMaterialsDB(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Migrate applies every pending embedded migration.
func Migrate(db *sqlx.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := migratepg.WithInstance(db.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
