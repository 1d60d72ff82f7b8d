package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkglog "github.com/weiawesome/framez/pkg/log"
)

// Config holds database configuration.
type Config struct {
	Driver          string        `mapstructure:"driver"` // postgres, mysql, sqlite
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`   // postgres only
	TimeZone        string        `mapstructure:"timezone"`  // postgres only
	FilePath        string        `mapstructure:"file_path"` // sqlite only
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime int           `mapstructure:"conn_max_lifetime"` // minutes
	SlowQuery       time.Duration `mapstructure:"slow_query"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// New opens a GORM connection for the configured driver.
func New(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "postgres":
		tz := cfg.TimeZone
		if tz == "" {
			tz = "UTC"
		}
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode, tz,
		)
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})

	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		)
		dialector = mysql.Open(dsn)

	case "sqlite":
		dialector = sqlite.Open(cfg.FilePath)

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewLogger(pkglog.L(), cfg.SlowQuery, parseLogLevel(cfg.LogLevel)),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}

	return db, nil
}

// AutoMigrate runs GORM auto-migration for the given models.
func AutoMigrate(db *gorm.DB, models ...interface{}) error {
	return db.AutoMigrate(models...)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func parseLogLevel(s string) logger.LogLevel {
	switch s {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// zerologGorm sends GORM's query log through zerolog, preferring the
// request-scoped logger carried by the statement context.
type zerologGorm struct {
	base      zerolog.Logger
	slowQuery time.Duration
	level     logger.LogLevel
}

// NewLogger adapts a zerolog logger to gorm's logger.Interface.
func NewLogger(base zerolog.Logger, slowQuery time.Duration, level logger.LogLevel) logger.Interface {
	if slowQuery <= 0 {
		slowQuery = 200 * time.Millisecond
	}
	return &zerologGorm{base: base, slowQuery: slowQuery, level: level}
}

func (g *zerologGorm) LogMode(level logger.LogLevel) logger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *zerologGorm) from(ctx context.Context) zerolog.Logger {
	if l, ok := pkglog.FromContext(ctx); ok {
		return l
	}
	return g.base
}

func (g *zerologGorm) Info(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= logger.Info {
		l := g.from(ctx)
		l.Info().Msgf(msg, args...)
	}
}

func (g *zerologGorm) Warn(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= logger.Warn {
		l := g.from(ctx)
		l.Warn().Msgf(msg, args...)
	}
}

func (g *zerologGorm) Error(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= logger.Error {
		l := g.from(ctx)
		l.Error().Msgf(msg, args...)
	}
}

func (g *zerologGorm) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	l := g.from(ctx)

	switch {
	case err != nil && g.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.Error().Err(err).Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("query failed")
	case elapsed > g.slowQuery && g.level >= logger.Warn:
		sql, rows := fc()
		l.Warn().Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("slow query")
	case g.level >= logger.Info:
		sql, rows := fc()
		l.Debug().Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("query")
	}
}
