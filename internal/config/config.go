package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Provider exposes the application configuration to the rest of the system.
// Consumers depend on this interface rather than the concrete env-backed
// implementation so tests can swap in fixed values.
type Provider interface {
	GetAddr() string
	GetDBUrl() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string
	GetJWTSecret() string
	GetJWTExpiry() time.Duration
}

// Config holds all configuration for the application.
type Config struct {
	Addr      string
	DBUrl     string
	DBNs      string
	DBDb      string
	DBUser    string
	DBPass    string
	JWTSecret string
	JWTExpiry time.Duration
}

const defaultJWTExpiry = 30 * 24 * time.Hour

// New loads configuration from environment variables.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Addr:      os.Getenv("APP_ADDR"),
		DBUrl:     os.Getenv("SURREAL_URL"),
		DBUser:    os.Getenv("SURREAL_USER"),
		DBPass:    os.Getenv("SURREAL_PASS"),
		DBNs:      os.Getenv("SURREAL_NS"),
		DBDb:      os.Getenv("SURREAL_DB"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTExpiry: defaultJWTExpiry,
	}

	if cfg.Addr == "" {
		cfg.Addr = ":5000"
	}

	if raw := os.Getenv("JWT_EXPIRY"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid JWT_EXPIRY duration: %v", err)
		}
		cfg.JWTExpiry = d
	}

	if cfg.DBUrl == "" || cfg.DBNs == "" || cfg.DBDb == "" {
		log.Fatal("Required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set.")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("Required environment variable JWT_SECRET is not set.")
	}

	return cfg
}

func (c *Config) GetAddr() string             { return c.Addr }
func (c *Config) GetDBUrl() string            { return c.DBUrl }
func (c *Config) GetDBNs() string             { return c.DBNs }
func (c *Config) GetDBDb() string             { return c.DBDb }
func (c *Config) GetDBUser() string           { return c.DBUser }
func (c *Config) GetDBPass() string           { return c.DBPass }
func (c *Config) GetJWTSecret() string        { return c.JWTSecret }
func (c *Config) GetJWTExpiry() time.Duration { return c.JWTExpiry }
