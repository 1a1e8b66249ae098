package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/mediareq/core/config"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunWithoutDatabase(t *testing.T) {
	connected := false
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(context.Context, coreconfig.DatabaseConfig) (*sqlx.DB, error) {
			connected = true
			return nil, nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if connected || res.DB != nil {
		t.Fatal("database must not be touched when disabled")
	}
	if err := res.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRunPropagatesFailures(t *testing.T) {
	boom := errors.New("boom")

	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("logger failure: err = %v", err)
	}

	cfg := &coreconfig.Config{Database: coreconfig.DatabaseConfig{Host: "db"}}
	_, err = Run(context.Background(), Options{
		Config:     cfg,
		LoggerInit: noLogger,
		Connect: func(context.Context, coreconfig.DatabaseConfig) (*sqlx.DB, error) {
			return nil, boom
		},
		Migrate: func(context.Context, coreconfig.DatabaseConfig, fs.FS, string) error {
			t.Fatal("migrate must not run after a failed connect")
			return nil
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("connect failure: err = %v", err)
	}

	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}
