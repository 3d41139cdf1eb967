package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS raktar (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	nev VARCHAR(191) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
	mennyiseg INT NOT NULL,
	UNIQUE KEY uniq_raktar_nev (nev)
)`

const mysqlDuplicateEntry = 1062

// OpenMySQL connects to the ledger in a MySQL database. Affected-row counts
// report matched rows, so setting a quantity to its current value still
// finds the item.
func OpenMySQL(ctx context.Context, dsn string) (*SQLStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true

	db, err := sqlx.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	if _, err := db.ExecContext(ctx, mysqlSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return newSQLStore(db, isMySQLDuplicate), nil
}

func isMySQLDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
