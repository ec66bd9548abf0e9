package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jacentio/identitystore/sqlstore"
)

// setupSQLite creates an identity table and points the CLI at it.
func setupSQLite(t *testing.T, mobColumn string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "identities.db")

	conn, err := sqlstore.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()
	if _, err := conn.DB().Exec(`CREATE TABLE identities (identity TEXT PRIMARY KEY, mob TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	t.Setenv("IDENTITYCTL_BACKEND", "sqlite")
	t.Setenv("IDENTITYCTL_SQLITE_PATH", path)
	t.Setenv("IDENTITYCTL_TABLE", "identities")
	t.Setenv("IDENTITYCTL_IDENTITY_COLUMN", "identity")
	t.Setenv("IDENTITYCTL_MOB_COLUMN", mobColumn)
	return path
}

func TestRun_StoresArguments(t *testing.T) {
	setupSQLite(t, "mob")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-mob", "batch-1", "a", "b"}, strings.NewReader(""), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit %d, got %d (stderr: %s)", exitOK, code, stderr.String())
	}
	if stdout.String() != "stored a\nstored b\n" {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestRun_ReadsStdin(t *testing.T) {
	setupSQLite(t, "")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), nil, strings.NewReader("a\n\n  b  \n"), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit %d, got %d (stderr: %s)", exitOK, code, stderr.String())
	}
	if stdout.String() != "stored a\nstored b\n" {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestRun_ReportsDuplicates(t *testing.T) {
	setupSQLite(t, "")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"a", "a"}, strings.NewReader(""), &stdout, &stderr)
	if code != exitDuplicates {
		t.Fatalf("expected exit %d, got %d", exitDuplicates, code)
	}
	if stdout.String() != "stored a\nduplicate a\n" {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestRun_MobWithoutMobColumn(t *testing.T) {
	setupSQLite(t, "")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-mob", "batch-1", "a"}, strings.NewReader(""), &stdout, &stderr)
	if code != exitUsage {
		t.Fatalf("expected exit %d, got %d", exitUsage, code)
	}
	if stdout.Len() != 0 {
		t.Errorf("expected nothing stored, got %q", stdout.String())
	}
}

func TestRun_ExplicitEmptyMob(t *testing.T) {
	path := setupSQLite(t, "mob")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-mob", "", "a"}, strings.NewReader(""), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit %d, got %d (stderr: %s)", exitOK, code, stderr.String())
	}

	conn, err := sqlstore.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	var mob *string
	if err := conn.DB().QueryRow(`SELECT mob FROM identities WHERE identity = 'a'`).Scan(&mob); err != nil {
		t.Fatalf("select: %v", err)
	}
	if mob == nil || *mob != "" {
		t.Errorf("expected empty mob to be stored, got %v", mob)
	}
}

func TestRun_StorageFailure(t *testing.T) {
	setupSQLite(t, "")
	t.Setenv("IDENTITYCTL_TABLE", "missing")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"a"}, strings.NewReader(""), &stdout, &stderr)
	if code != exitFailure {
		t.Fatalf("expected exit %d, got %d", exitFailure, code)
	}
}

func TestRun_UnknownBackend(t *testing.T) {
	t.Setenv("IDENTITYCTL_BACKEND", "etcd")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"a"}, strings.NewReader(""), &stdout, &stderr)
	if code != exitUsage {
		t.Fatalf("expected exit %d, got %d", exitUsage, code)
	}
}

func TestRun_NoIdentities(t *testing.T) {
	setupSQLite(t, "")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), nil, strings.NewReader(""), &stdout, &stderr)
	if code != exitUsage {
		t.Fatalf("expected exit %d, got %d", exitUsage, code)
	}
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-nope"}, strings.NewReader(""), &stdout, &stderr)
	if code != exitUsage {
		t.Fatalf("expected exit %d, got %d", exitUsage, code)
	}
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader(" x \ny\n\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 || lines[0] != "x" || lines[1] != "y" {
		t.Errorf("unexpected lines %v", lines)
	}
}
