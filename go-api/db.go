package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// openDatabase picks the driver from the DSN: "sqlite:<path>" for local runs, postgres otherwise.
func openDatabase(dsn string, gLogger logger.Interface) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, sqlitePrefix) {
		return openSQLite(strings.TrimPrefix(dsn, sqlitePrefix), gLogger)
	}
	return openGormIPv4(dsn, gLogger)
}

// openGormIPv4 opens postgres through pgx's database/sql adapter, forcing IPv4
// dials and the simple query protocol (pgbouncer-friendly).
func openGormIPv4(dsn string, gLogger logger.Interface) (*gorm.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	cfg.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	cfg.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		d := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}
		// Force IPv4
		return d.DialContext(ctx, "tcp4", addr)
	}

	sqlDB := stdlib.OpenDB(*cfg)

	// Reasonable pool settings for Render free/starter dynos
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// Fast fail if unreachable
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(gLogger))
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return gdb, nil
}

func openSQLite(path string, gLogger logger.Interface) (*gorm.DB, error) {
	if path == "" {
		path = "mystery.db"
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig(gLogger))
	if err != nil {
		return nil, err
	}
	log.Println("[DB] using sqlite", path)
	return db, nil
}

// gormConfig maps driver constraint errors to gorm.ErrDuplicatedKey and friends.
func gormConfig(gLogger logger.Interface) *gorm.Config {
	return &gorm.Config{Logger: gLogger, TranslateError: true}
}

// AutoMigrate all app tables.
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&MessageRecord{},
		&InboxStat{},
	)
}
