package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultBusyTimeout is how long SQLite waits on a locked database before failing
const DefaultBusyTimeout = 5 * time.Second

var DB *gorm.DB

// Options configures a database connection
type Options struct {
	Driver      string // "sqlite" or "postgres"; inferred from DSN when empty
	DSN         string
	BusyTimeout time.Duration
	MaxOpenConn int
	LogLevel    logger.LogLevel
}

// DetectDriver infers the driver from a DSN
func DetectDriver(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") {
		return DriverPostgres
	}
	return DriverSQLite
}

// sqliteDSN turns foreign keys on and sets a busy timeout, preserving any existing parameters
func sqliteDSN(dsn string, busy time.Duration) string {
	if busy <= 0 {
		busy = DefaultBusyTimeout
	}
	params := []string{}
	if !strings.Contains(dsn, "_foreign_keys") && !strings.Contains(dsn, "_fk=") {
		params = append(params, "_foreign_keys=on")
	}
	if !strings.Contains(dsn, "_busy_timeout") {
		params = append(params, fmt.Sprintf("_busy_timeout=%d", busy.Milliseconds()))
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	return dsn + sep + strings.Join(params, "&")
}

// Open opens a database connection without touching the package-level handle.
// Unique violations are translated to gorm.ErrDuplicatedKey.
func Open(opts Options) (*gorm.DB, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DetectDriver(opts.DSN)
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(opts.DSN, opts.BusyTimeout))
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	maxOpen := opts.MaxOpenConn
	if maxOpen == 0 && driver == DriverSQLite {
		// SQLite has a single writer; one connection avoids lock upgrade failures
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(maxOpen)
	}

	return db, nil
}

// Connect initializes the package-level database connection.
func Connect(opts Options) error {
	db, err := Open(opts)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// GetDB returns the database instance.
func GetDB() *gorm.DB {
	return DB
}
