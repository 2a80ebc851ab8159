package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wtppaul/course-marketplace/internal/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLogger routes gorm's output into the service's zap logger.
type gormLogger struct {
	log   *logger.Logger
	level gormlogger.LogLevel
}

func newGormLogger(log *logger.Logger, mode string) gormlogger.Interface {
	level := gormlogger.Warn
	if strings.EqualFold(mode, "debug") {
		level = gormlogger.Info
	}
	return &gormLogger{log: log.With("component", "gorm"), level: level}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.Error(fmt.Sprintf(msg, args...))
	}
}

// Trace logs failed queries as errors and slow ones as warnings. Missing
// rows are an expected outcome and stay quiet.
func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error("query failed", "sql", sql, "rows", rows, "duration_ms", elapsed.Milliseconds(), "error", err)
	case elapsed > slowQueryThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.Warn("slow query", "sql", sql, "rows", rows, "duration_ms", elapsed.Milliseconds())
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.log.Debug("query", "sql", sql, "rows", rows, "duration_ms", elapsed.Milliseconds())
	}
}
