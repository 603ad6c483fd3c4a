package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rafabene/avantpro-members/internal/domain/ports"
)

// slowQueryThreshold marca consultas lentas da área de membros
const slowQueryThreshold = 200 * time.Millisecond

// queryLogger encaminha os logs do GORM para o logger da aplicação.
// Registro não encontrado é resultado normal das buscas por GUID e email,
// e tabela ausente vira aviso porque a instalação ainda pode não ter rodado.
type queryLogger struct {
	log   ports.Logger
	level logger.LogLevel
}

// NewQueryLogger cria o logger GORM ligado ao ports.Logger
func NewQueryLogger(log ports.Logger, level logger.LogLevel) logger.Interface {
	return &queryLogger{log: log.With("component", "gorm"), level: level}
}

func (l *queryLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *queryLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := fc()
		if isMissingTable(err) {
			l.log.Warn("members table missing", "sql", sql, "error", err)
			return
		}
		l.log.Error("query failed", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case elapsed > slowQueryThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		l.log.Warn("slow query", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.level >= logger.Info:
		sql, rows := fc()
		l.log.Debug("query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
