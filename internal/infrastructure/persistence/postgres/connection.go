package postgres

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rafabene/avantpro-members/internal/domain/ports"
	"github.com/rafabene/avantpro-members/internal/infrastructure/config"
)

// NewGormConfig retorna a configuração GORM compartilhada pela aplicação e pelos testes.
// TranslateError faz o dialeto devolver gorm.ErrDuplicatedKey para email repetido;
// translateError completa com tabela ausente virando ErrStorageUnavailable.
func NewGormConfig(logLevel logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt:    false,
		TranslateError: true,
	}
}

// LogLevel traduz DB_DEBUG para o nível do GORM: com debug todas as
// consultas vão para o log, sem debug só lentas e falhas.
func LogLevel(cfg *config.DatabaseConfig) logger.LogLevel {
	if cfg.Debug {
		return logger.Info
	}
	return logger.Warn
}

// NewDatabaseConnection abre o PostgreSQL das tabelas members_*.
// Os logs do GORM seguem pelo logger da aplicação.
func NewDatabaseConnection(cfg *config.DatabaseConfig, log ports.Logger) (*gorm.DB, error) {
	gormConfig := NewGormConfig(LogLevel(cfg))
	gormConfig.Logger = NewQueryLogger(log, LogLevel(cfg))

	// Conectar
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configurar connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.MinConns)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.MaxIdleTime) * time.Second)

	// Ping para verificar conexão
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("members database connected",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.DBName,
		"max_conns", cfg.MaxConns,
		"debug", cfg.Debug,
	)

	return db, nil
}
