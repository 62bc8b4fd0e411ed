// Package database 负责打开数据库连接并执行迁移
// 默认使用纯 Go 的 SQLite，也支持 PostgreSQL 和 MySQL
package database

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqliteDriver "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mealmood-server/internal/config"
	"mealmood-server/internal/model"
)

// Open 根据驱动名打开 gorm 连接
// 参数:
//   - driver: sqlite / postgres / mysql，为空时使用 sqlite
//   - dsn: 连接串；sqlite 为空时使用 mealmood.db
//   - gormLogger: gorm 日志器，可以为 nil
//
// 返回:
//   - *gorm.DB: 数据库连接
//   - error: 驱动不支持或连接失败
func Open(driver, dsn string, gormLogger logger.Interface) (*gorm.DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = "sqlite"
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		if driver != "sqlite" {
			return nil, fmt.Errorf("dsn is required for driver %q", driver)
		}
		dsn = "mealmood.db"
	}

	gormCfg := &gorm.Config{}
	if gormLogger != nil {
		gormCfg.Logger = gormLogger
	}

	switch driver {
	case "sqlite":
		if err := ensureSQLiteDirectory(dsn); err != nil {
			return nil, err
		}
		return gorm.Open(sqliteDriver.Open(dsn), gormCfg)
	case "postgres":
		return gorm.Open(postgres.Open(dsn), gormCfg)
	case "mysql":
		return gorm.Open(mysql.Open(dsn), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// OpenWithConfig 按配置打开连接并设置连接池
// SQL 日志写到 log，release 模式只记录慢查询和错误
func OpenWithConfig(cfg config.DatabaseConfig, mode string, log *zap.Logger) (*gorm.DB, error) {
	gormLogger := NewGormLogger(log, logger.Info)
	if mode == "release" {
		gormLogger = NewGormLogger(log, logger.Warn)
	}

	db, err := Open(cfg.Driver, cfg.DSN, gormLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if strings.EqualFold(cfg.Driver, "sqlite") || cfg.Driver == "" {
		// SQLite 只允许单写者
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	return db, nil
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate 自动迁移数据库表
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.ChatTurn{},
		&model.Bookmark{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

func ensureSQLiteDirectory(dsn string) error {
	path, ok := sqliteFilePath(dsn)
	if !ok {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite db dir: %w", err)
	}
	return nil
}

// sqliteFilePath 从 DSN 中取出文件路径，内存库返回 false
func sqliteFilePath(dsn string) (string, bool) {
	raw := strings.TrimSpace(dsn)
	lower := strings.ToLower(raw)
	if raw == "" || lower == ":memory:" || strings.HasPrefix(lower, "file::memory:") {
		return "", false
	}

	if strings.HasPrefix(lower, "file:") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return stripQuery(raw), true
		}
		if strings.EqualFold(parsed.Query().Get("mode"), "memory") {
			return "", false
		}
		if parsed.Path != "" {
			return parsed.Path, true
		}
		if parsed.Opaque != "" {
			return stripQuery(strings.TrimPrefix(raw, "file:")), true
		}
		return "", false
	}

	return stripQuery(raw), true
}

func stripQuery(v string) string {
	if i := strings.Index(v, "?"); i >= 0 {
		return v[:i]
	}
	return v
}
