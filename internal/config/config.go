package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/fitnease/fitnease-auth/internal/models"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string
	ES_INDEX    string

	KAFKA_ADDRESS string
	KAFKA_TOPIC   string

	APP_URL                string
	AUTH_PORT              string
	LOG_LEVEL              string
	BCRYPT_COST            int
	SERVICE_JWT_SECRET     string
	COMMS_SERVICE_URL      string
	ENGAGEMENT_SERVICE_URL string
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cost := bcrypt.DefaultCost
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cost = n
		}
	}

	config := &Config{
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),
		ES_INDEX:    getenvDefault("ES_INDEX", "users"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),
		KAFKA_TOPIC:   getenvDefault("KAFKA_TOPIC", "user_events"),

		APP_URL:                getenvDefault("APP_URL", "http://localhost:8001"),
		AUTH_PORT:              getenvDefault("AUTH_PORT", ":8001"),
		LOG_LEVEL:              getenvDefault("LOG_LEVEL", "info"),
		BCRYPT_COST:            cost,
		SERVICE_JWT_SECRET:     os.Getenv("SERVICE_JWT_SECRET"),
		COMMS_SERVICE_URL:      getenvDefault("COMMS_SERVICE_URL", "http://fitnease-comms"),
		ENGAGEMENT_SERVICE_URL: getenvDefault("ENGAGEMENT_SERVICE_URL", "http://fitnease-engagement"),
	}

	return config, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.UserRole{},
		&models.RolePermission{},
		&models.AccessToken{},
		&models.UserPreference{},
		&models.FitnessAssessment{},
	)
}
