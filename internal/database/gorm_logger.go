package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slowQueryThreshold 超过该耗时的 SQL 按 Warn 输出
const slowQueryThreshold = 200 * time.Millisecond

// GormLogger 把 gorm 的日志写到 zap
type GormLogger struct {
	log   *zap.Logger
	level logger.LogLevel
}

// NewGormLogger 创建 GormLogger，log 为 nil 时丢弃全部日志
func NewGormLogger(log *zap.Logger, level logger.LogLevel) *GormLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &GormLogger{log: log, level: level}
}

// LogMode 返回指定级别的副本
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &GormLogger{log: l.log, level: level}
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		l.log.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		l.log.Error(fmt.Sprintf(msg, data...))
	}
}

// Trace 记录一条 SQL
// 出错按 Error，慢查询按 Warn，其余在 Info 级别下按 Debug 输出
// 查不到记录不算错误
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error("SQL failed",
			zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed), zap.Error(err))
	case elapsed > slowQueryThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		l.log.Warn("Slow SQL",
			zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	case l.level >= logger.Info:
		sql, rows := fc()
		l.log.Debug("SQL",
			zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	}
}
