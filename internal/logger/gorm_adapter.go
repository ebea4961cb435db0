package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// DefaultMaxSQLLength caps the statement text written per query. A batched
// upsert of patch records renders one VALUES tuple per record.
const DefaultMaxSQLLength = 512

// GormOptions tunes the GORM logger.
type GormOptions struct {
	// SlowThreshold marks queries as slow (WARN). Zero disables the check.
	SlowThreshold time.Duration
	// MaxSQLLength truncates logged statements. Zero means DefaultMaxSQLLength,
	// negative disables truncation.
	MaxSQLLength int
}

// GormLogger writes GORM output through a module logger. Statements go out
// at TRACE, so they only show when the datastore module (or a sink override
// for it) is set to trace.
type GormLogger struct {
	log   Logger
	opts  GormOptions
	level gorm_logger.LogLevel
}

// NewGormLogger returns a GORM logger writing to log, or to stderr when log
// is nil.
func NewGormLogger(log Logger, opts GormOptions) *GormLogger {
	if log == nil {
		log = NewSlogLogger(nil, LogLevelInfo)
	}
	if opts.MaxSQLLength == 0 {
		opts.MaxSQLLength = DefaultMaxSQLLength
	}
	return &GormLogger{log: log, opts: opts, level: gorm_logger.Info}
}

// LogMode returns a copy that drops everything below level. Silent mutes
// the logger entirely.
func (g *GormLogger) LogMode(level gorm_logger.LogLevel) gorm_logger.Interface {
	c := *g
	c.level = level
	return &c
}

// Info is verbose in GORM and written at DEBUG.
func (g *GormLogger) Info(_ context.Context, msg string, data ...any) {
	if g.level >= gorm_logger.Info {
		g.log.Debug(fmt.Sprintf(msg, data...))
	}
}

func (g *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	if g.level >= gorm_logger.Warn {
		g.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (g *GormLogger) Error(_ context.Context, msg string, data ...any) {
	if g.level >= gorm_logger.Error {
		g.log.Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs one executed statement. Failed statements and slow ones are
// warnings; ErrRecordNotFound is an ordinary outcome of a lookup.
func (g *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if g.level <= gorm_logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := g.opts.SlowThreshold > 0 && elapsed > g.opts.SlowThreshold

	switch {
	case failed && g.level >= gorm_logger.Error:
		g.log.Warn("query failed", append(g.statement(fc, elapsed), Error(err))...)
	case slow && g.level >= gorm_logger.Warn:
		g.log.Warn("slow query", append(g.statement(fc, elapsed), Duration("threshold", g.opts.SlowThreshold))...)
	case !failed && !slow && g.level >= gorm_logger.Info:
		g.log.Trace("query", g.statement(fc, elapsed)...)
	}
}

func (g *GormLogger) statement(fc func() (string, int64), elapsed time.Duration) []Field {
	sql, rows := fc()
	fields := []Field{
		String("op", sqlVerb(sql)),
		Int64("rows", rows),
		Int64("duration_ms", elapsed.Milliseconds()),
	}
	if limit := g.opts.MaxSQLLength; limit > 0 && len(sql) > limit {
		fields = append(fields, Int("sql_len", len(sql)))
		sql = sql[:limit] + "..."
	}
	return append(fields, String("sql", sql))
}

// sqlVerb returns the lower-cased leading keyword of a statement.
func sqlVerb(sql string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	return strings.ToLower(verb)
}
