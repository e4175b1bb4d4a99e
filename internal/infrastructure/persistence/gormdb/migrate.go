package gormdb

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"

	"github.com/xiebiao/mall/internal/infrastructure/config"
)

//go:embed migrations/mysql/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// NewMigrator 按驱动加载内嵌的迁移脚本
// 调用方负责Close
func NewMigrator(cfg config.DatabaseConfig, logger zerolog.Logger) (*migrate.Migrate, error) {
	if cfg.Driver != "mysql" && cfg.Driver != "postgres" {
		return nil, fmt.Errorf("驱动%s不支持版本化迁移", cfg.Driver)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("加载迁移脚本失败: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrateURL())
	if err != nil {
		return nil, fmt.Errorf("初始化迁移失败: %w", err)
	}
	m.Log = migrateLogger{logger: logger}
	return m, nil
}

// Migrate 执行全部未执行的迁移
func Migrate(cfg config.DatabaseConfig, logger zerolog.Logger) error {
	m, err := NewMigrator(cfg, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("读取迁移版本失败: %w", err)
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("数据库迁移完成")
	return nil
}

// migrateLogger 实现migrate.Logger
type migrateLogger struct {
	logger zerolog.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Info().Str("component", "migrate").Msgf(format, v...)
}

func (l migrateLogger) Verbose() bool {
	return false
}
