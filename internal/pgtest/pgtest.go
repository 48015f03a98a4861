//go:build integration

// Package pgtest starts a throwaway PostgreSQL container with the project
// migrations applied, for integration tests.
package pgtest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	pgpkg "github.com/vadimbarashkov/shortlink/pkg/postgres"
)

// FindProjectRoot walks up from the working directory to the directory holding go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}
		dir = parent
	}
}

// Start runs a postgres:16-alpine container for the lifetime of t and
// returns the settings to reach it.
func Start(t testing.TB) pgpkg.Config {
	t.Helper()

	ctx := context.Background()

	cfg := pgpkg.DefaultConfig()
	cfg.User = "test"
	cfg.Password = "test"
	cfg.DB = "shortlink"

	pgCont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_USER":     cfg.User,
				"POSTGRES_PASSWORD": cfg.Password,
				"POSTGRES_DB":       cfg.DB,
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgCont.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate postgres container: %v", err)
		}
	})

	cfg.Host, err = pgCont.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get postgres container host: %v", err)
	}

	port, err := pgCont.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get postgres container port: %v", err)
	}
	cfg.Port = port.Int()

	return cfg
}

// Open starts a container, applies the migrations and connects to it.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	cfg := Start(t)

	root, err := FindProjectRoot()
	if err != nil {
		t.Fatalf("Failed to get project root: %v", err)
	}

	if err := pgpkg.RunMigrations("file://"+filepath.Join(root, "migrations"), cfg.DSN()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := pgpkg.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("Failed to close database: %v", err)
		}
	})

	return db
}
