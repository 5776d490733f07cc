package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"anvil-esign/internal/config"
)

type Database struct {
	DB     *sql.DB
	Driver string
	logger *zap.Logger
}

// NewDatabase connects to the configured API log store. It returns nil when
// the database is disabled; callers must handle a nil *Database.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*Database, error) {
	if !cfg.Database.Enabled {
		logger.Info("Database disabled, API logs will not be stored")
		return nil, nil
	}

	database, err := Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return database.Close()
		},
	})
	return database, nil
}

// Open connects and runs migrations.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*Database, error) {
	var dsn string
	switch cfg.Driver {
	case config.DriverPostgres:
		// Build PostgreSQL connection string
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
	case config.DriverSQLite:
		dsn = cfg.Path
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Driver == config.DriverPostgres {
		logger.Info("Database connected successfully",
			zap.String("driver", cfg.Driver),
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.String("dbname", cfg.DBName),
		)
	} else {
		logger.Info("Database connected successfully",
			zap.String("driver", cfg.Driver),
			zap.String("path", cfg.Path),
		)
	}

	database := &Database{
		DB:     db,
		Driver: cfg.Driver,
		logger: logger,
	}

	// Run migrations
	if err := database.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database, nil
}

func (d *Database) migrate() error {
	idColumn := "id SERIAL PRIMARY KEY"
	if d.Driver == config.DriverSQLite {
		idColumn = "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS api_logs (
		` + idColumn + `,
		endpoint TEXT NOT NULL,
		method VARCHAR(10) NOT NULL,
		operation VARCHAR(255) DEFAULT '',
		request_body TEXT DEFAULT '',
		response_body TEXT DEFAULT '',
		status_code INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := d.DB.Exec(createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create api_logs table: %w", err)
	}

	createIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_api_logs_operation ON api_logs(operation);
	`
	_, err = d.DB.Exec(createIndexSQL)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	d.logger.Info("Database migrations completed successfully")
	return nil
}

// Rebind rewrites $n placeholders to ? for sqlite.
func (d *Database) Rebind(query string) string {
	if d.Driver != config.DriverSQLite {
		return query
	}

	var sb strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] != '$' {
			sb.WriteByte(query[i])
			continue
		}
		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		if _, err := strconv.Atoi(query[i+1 : j]); err != nil {
			sb.WriteByte(query[i])
			continue
		}
		sb.WriteByte('?')
		i = j - 1
	}
	return sb.String()
}

func (d *Database) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

func (d *Database) Close() error {
	return d.DB.Close()
}

var Module = fx.Module("database",
	fx.Provide(NewDatabase),
)
