package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	dir, list := parseArgs(nil)
	assert.Equal(t, "migrations", dir)
	assert.False(t, list)

	dir, list = parseArgs([]string{"--list", "db/sql"})
	assert.Equal(t, "db/sql", dir)
	assert.True(t, list)
}

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old.sql"), 0755))

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "001_a.sql"), filepath.Join(dir, "002_b.sql")}, files)
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "001_good.sql")
	empty := filepath.Join(dir, "002_empty.sql")
	bad := filepath.Join(dir, "003_bad.sql")
	require.NoError(t, os.WriteFile(good, []byte("CREATE TABLE a (id INT);"), 0644))
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0644))
	require.NoError(t, os.WriteFile(bad, []byte("CREATE TABLE nope"), 0644))

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE a`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE nope`).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	ok, failed := apply(context.Background(), db, []string{good, empty, bad})
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitMigrationCreatesTables(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	require.NoError(t, err)
	for _, table := range []string{"es_contacts", "es_lists", "es_lists_contacts", "es_actions", "es_workflows"} {
		assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
