package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ignite/email-subscribers/internal/pkg/distlock"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const migrateLockKey = "es:migrate"

// Applies every migrations/*.sql file in name order, each in its own
// transaction. Statements use IF NOT EXISTS so reruns are harmless.
//
//	migrate [--list] [dir]
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	dir, listOnly := parseArgs(os.Args[1:])

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	log.Println("Connected to database")

	if listOnly {
		tables, err := listTables(ctx, db)
		if err != nil {
			log.Fatal(err)
		}
		for _, t := range tables {
			fmt.Println(" ", t)
		}
		fmt.Printf("Total: %d tables\n", len(tables))
		return
	}

	files, err := migrationFiles(dir)
	if err != nil {
		log.Fatalf("read migrations dir %s: %v", dir, err)
	}

	lock := distlock.NewPGAdvisoryLock(db, migrateLockKey)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		log.Fatalf("migration lock: %v", err)
	}
	if !acquired {
		log.Fatal("another migration run holds the lock")
	}

	ok, failed := apply(ctx, db, files)
	if err := lock.Release(ctx); err != nil {
		log.Printf("release migration lock: %v", err)
	}
	log.Printf("Done: %d OK, %d errors", ok, failed)
	if failed > 0 {
		os.Exit(1)
	}
	log.Println("Migrations complete")
}

func parseArgs(args []string) (dir string, listOnly bool) {
	dir = "migrations"
	for _, a := range args {
		if a == "--list" {
			listOnly = true
		} else {
			dir = a
		}
	}
	return dir, listOnly
}

// migrationFiles returns the non-empty .sql files of dir, sorted by name.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func apply(ctx context.Context, db *sql.DB, files []string) (ok, failed int) {
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("read %s: %v", path, err)
			failed++
			continue
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		fmt.Printf("  %s ... ", filepath.Base(path))
		if err := execTx(ctx, db, string(data)); err != nil {
			fmt.Printf("ERROR: %v\n", err)
			failed++
			continue
		}
		fmt.Println("OK")
		ok++
	}
	return ok, failed
}

func execTx(ctx context.Context, db *sql.DB, content string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, content); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename LIKE 'es\_%' ORDER BY tablename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
