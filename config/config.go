package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	SOURCE_PATH=./data/prices.csv
//	SOURCE_DELIMITER=,
//	SOURCE_SKIP_ROWS=2
//	AGG_START_YEAR=2020
//	AGG_END_YEAR=2025
//	AGG_VOLUME_SCALE=1000000
//	CHART_TITLE=Monthly prices
//	RATE_LIMIT=60
//	RATE_WINDOW=1m
//	POSTGRES_HOST=localhost
type Config struct {
	Server      ServerConfig
	Source      SourceConfig
	Aggregation AggregationConfig
	Chart       ChartConfig
	Postgres    PostgresConfig // only used by the postgres export format
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port       string        // TCP port the HTTP server listens on (e.g., "8080")
	RateLimit  int           // requests allowed per client per RateWindow
	RateWindow time.Duration // rate limiter window
}

// SourceConfig describes the price file.
type SourceConfig struct {
	Path      string // path to the delimited price file
	Delimiter rune   // field separator
	SkipRows  int    // metadata rows after the header
}

// AggregationConfig bounds the monthly aggregation.
type AggregationConfig struct {
	StartYear   int
	EndYear     int
	VolumeScale float64
}

// ChartConfig holds presentation settings for the /chart page.
type ChartConfig struct {
	Title string
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host, Port, User, Password, DBName, SSLMode: connection parameters.
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and read by cmd/main.go, which
// passes the relevant parts down explicitly.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig() terminates the app.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("RATE_LIMIT", 60)
	viper.SetDefault("RATE_WINDOW", time.Minute)

	viper.SetDefault("SOURCE_PATH", "./data/prices.csv")
	viper.SetDefault("SOURCE_DELIMITER", ",")
	viper.SetDefault("SOURCE_SKIP_ROWS", 2)

	viper.SetDefault("AGG_START_YEAR", 2020)
	viper.SetDefault("AGG_END_YEAR", 2025)
	viper.SetDefault("AGG_VOLUME_SCALE", 1_000_000)

	viper.SetDefault("CHART_TITLE", "Monthly Close, Open and Volume")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "pricechart")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:       viper.GetString("SERVER_PORT"),
			RateLimit:  viper.GetInt("RATE_LIMIT"),
			RateWindow: viper.GetDuration("RATE_WINDOW"),
		},
		Source: SourceConfig{
			Path:      viper.GetString("SOURCE_PATH"),
			Delimiter: firstRune(viper.GetString("SOURCE_DELIMITER")),
			SkipRows:  viper.GetInt("SOURCE_SKIP_ROWS"),
		},
		Aggregation: AggregationConfig{
			StartYear:   viper.GetInt("AGG_START_YEAR"),
			EndYear:     viper.GetInt("AGG_END_YEAR"),
			VolumeScale: viper.GetFloat64("AGG_VOLUME_SCALE"),
		},
		Chart: ChartConfig{
			Title: viper.GetString("CHART_TITLE"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
	}

	AppConfig.Postgres.URL = AppConfig.Postgres.DSN()

	validateConfig()
}

// DSN builds the PostgreSQL connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// problems returns the keys that are missing or invalid in c.
func (c Config) problems() []string {
	var bad []string

	if c.Server.Port == "" {
		bad = append(bad, "SERVER_PORT")
	}
	if c.Server.RateLimit <= 0 {
		bad = append(bad, "RATE_LIMIT")
	}
	if c.Server.RateWindow <= 0 {
		bad = append(bad, "RATE_WINDOW")
	}
	if c.Source.Path == "" {
		bad = append(bad, "SOURCE_PATH")
	}
	if c.Source.Delimiter == 0 {
		bad = append(bad, "SOURCE_DELIMITER")
	}
	if c.Source.SkipRows < 0 {
		bad = append(bad, "SOURCE_SKIP_ROWS")
	}
	if c.Aggregation.StartYear == 0 || c.Aggregation.StartYear > c.Aggregation.EndYear {
		bad = append(bad, "AGG_START_YEAR")
	}
	if c.Aggregation.EndYear == 0 {
		bad = append(bad, "AGG_END_YEAR")
	}
	if c.Aggregation.VolumeScale <= 0 {
		bad = append(bad, "AGG_VOLUME_SCALE")
	}

	return bad
}

// validateConfig terminates the application with log.Fatalf when a
// required variable is missing or out of range.
func validateConfig() {
	if bad := AppConfig.problems(); len(bad) > 0 {
		log.Fatalf("❌ Missing or invalid environment variables: %v\n", bad)
	}
}
