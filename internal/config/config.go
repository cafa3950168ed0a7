// Package config reads the process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreXLSX     = "xlsx"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	BackupNone = "none"
	BackupFS   = "fs"
	BackupS3   = "s3"
)

type Config struct {
	ServiceName string
	Env         string
	HTTPAddr    string
	CORSOrigins []string
	LogFile     string
	LogLevel    string

	StoreDriver   string
	XLSXPath      string
	XLSXSheet     string
	StockRowLabel string
	SQLitePath    string
	PostgresDSN   string

	BackupDriver      string
	BackupDir         string
	BackupS3Bucket    string
	BackupS3Region    string
	BackupS3Endpoint  string
	BackupS3PathStyle bool
	BackupS3AccessKey string
	BackupS3SecretKey string

	LowStockThreshold int
	ShutdownTimeout   time.Duration
}

// Load reads every key once. Unset keys take their defaults; values that are
// set but do not parse are reported as errors.
func Load() (Config, error) {
	cfg := Config{
		ServiceName: getenvDefault("SERVICE_NAME", "flower-crm"),
		Env:         getenvDefault("ENV", "dev"),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		LogFile:     os.Getenv("LOG_FILE"),
		LogLevel:    getenvDefault("LOG_LEVEL", "info"),

		StoreDriver:   getenvDefault("STORE_DRIVER", StoreXLSX),
		XLSXPath:      getenvDefault("XLSX_PATH", "bouquets.xlsx"),
		XLSXSheet:     getenvDefault("XLSX_SHEET", "CRM"),
		StockRowLabel: getenvDefault("STOCK_ROW_LABEL", "склад"),
		SQLitePath:    getenvDefault("SQLITE_PATH", "flower-crm.db"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),

		BackupDriver:     getenvDefault("BACKUP_DRIVER", BackupNone),
		BackupDir:        getenvDefault("BACKUP_DIR", "backups"),
		BackupS3Bucket:   os.Getenv("BACKUP_S3_BUCKET"),
		BackupS3Region:   os.Getenv("BACKUP_S3_REGION"),
		BackupS3Endpoint: os.Getenv("BACKUP_S3_ENDPOINT"),

		BackupS3AccessKey: os.Getenv("BACKUP_S3_ACCESS_KEY_ID"),
		BackupS3SecretKey: os.Getenv("BACKUP_S3_SECRET_ACCESS_KEY"),
		CORSOrigins:       splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	var err error
	if cfg.BackupS3PathStyle, err = getenvBool("BACKUP_S3_PATH_STYLE", false); err != nil {
		return Config{}, err
	}
	if cfg.LowStockThreshold, err = getenvInt("LOW_STOCK_THRESHOLD", 3); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreXLSX, StoreSQLite, StoreMemory:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("config: POSTGRES_DSN is required for STORE_DRIVER=%s", c.StoreDriver)
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.BackupDriver {
	case BackupNone, BackupFS:
	case BackupS3:
		if c.BackupS3Bucket == "" {
			return fmt.Errorf("config: BACKUP_S3_BUCKET is required for BACKUP_DRIVER=%s", c.BackupDriver)
		}
	default:
		return fmt.Errorf("config: unknown BACKUP_DRIVER %q", c.BackupDriver)
	}
	if (c.BackupS3AccessKey == "") != (c.BackupS3SecretKey == "") {
		return fmt.Errorf("config: BACKUP_S3_ACCESS_KEY_ID and BACKUP_S3_SECRET_ACCESS_KEY must be set together")
	}
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("config: LOW_STOCK_THRESHOLD must not be negative, got %d", c.LowStockThreshold)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitList reads a comma separated value, dropping blank entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
