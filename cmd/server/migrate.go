package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	dbstore "github.com/statafric/consultation/internal/db"
)

// openStore resolves the database path, applies the schema migrations and
// returns the SQLite store. When configuredPath is empty it tries an
// app-local data directory first and falls back to the system temp dir so a
// respondent-facing deployment never dies on a read-only working directory.
func openStore(configuredPath string) (*dbstore.SQLiteStore, string, error) {
	path, err := resolveDBPath(configuredPath)
	if err != nil {
		return nil, "", err
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(path))
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open sqlite: %w", err)
	}

	if err := dbstore.RunMigrations(sqlDB, os.Getenv("CONSULTATION_MIGRATIONS_DIR")); err != nil {
		_ = sqlDB.Close()
		return nil, "", fmt.Errorf("run migrations: %w", err)
	}

	store, err := dbstore.NewSQLiteStore(sqlDB, path)
	if err != nil {
		_ = sqlDB.Close()
		return nil, "", fmt.Errorf("init sqlite store: %w", err)
	}
	return store, path, nil
}

func resolveDBPath(configured string) (string, error) {
	if configured != "" {
		if err := os.MkdirAll(filepath.Dir(configured), 0o755); err != nil {
			return "", fmt.Errorf("create database dir: %w", err)
		}
		return configured, nil
	}
	local := filepath.Join("data", "responses.db")
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err == nil {
		if writable(filepath.Dir(local)) {
			return local, nil
		}
	}
	fallback := filepath.Join(os.TempDir(), "consultation", "responses.db")
	if err := os.MkdirAll(filepath.Dir(fallback), 0o755); err != nil {
		return "", fmt.Errorf("create fallback database dir: %w", err)
	}
	log.Printf("data directory not writable, using %s", fallback)
	return fallback, nil
}

func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
