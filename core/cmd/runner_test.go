package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/mediareq/core/config"
	coretelegram "github.com/m3rciful/mediareq/core/telegram"
)

type stubApp struct {
	opts coretelegram.RunOptions
	err  error
}

func (s stubApp) TelegramRunOptions() (coretelegram.RunOptions, error) { return s.opts, s.err }

func TestConfigPathPrecedence(t *testing.T) {
	opts := Options{ConfigEnvVar: "MEDIAREQ_TEST_CONFIG", DefaultConfigPath: "config.yaml"}

	t.Setenv("MEDIAREQ_TEST_CONFIG", "")
	if got := opts.ConfigPath(""); got != "config.yaml" {
		t.Fatalf("default path = %q", got)
	}
	t.Setenv("MEDIAREQ_TEST_CONFIG", "/etc/bot.yaml")
	if got := opts.ConfigPath(""); got != "/etc/bot.yaml" {
		t.Fatalf("env path = %q", got)
	}
	if got := opts.ConfigPath("flag.yaml"); got != "flag.yaml" {
		t.Fatalf("flag path = %q", got)
	}
}

func TestRunWrapsLifecycleHooks(t *testing.T) {
	cfg := &coreconfig.Config{}
	var (
		loaded  string
		order   []string
		closed  bool
		logShut bool
	)
	opts := Options{
		LoadConfig: func(path string) (*coreconfig.Config, error) {
			loaded = path
			return cfg, nil
		},
		Bootstrap: func(_ context.Context, got *coreconfig.Config) (TelegramApp, func() error, error) {
			if got != cfg {
				t.Error("bootstrap received a different config")
			}
			app := stubApp{opts: coretelegram.RunOptions{
				Config:  got,
				OnStart: func(context.Context, coretelegram.Runtime) error { order = append(order, "app.start"); return nil },
				OnStop:  func(context.Context, coretelegram.Runtime) error { order = append(order, "app.stop"); return nil },
			}}
			return app, func() error { closed = true; return nil }, nil
		},
		ShutdownLogger: func() error { logShut = true; return nil },
		RunTelegram: func(ctx context.Context, ro coretelegram.RunOptions) error {
			if err := ro.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			return ro.OnStop(ctx, coretelegram.Runtime{})
		},
	}

	if err := Run(context.Background(), "bot.yaml", opts); err != nil {
		t.Fatal(err)
	}
	if loaded != "bot.yaml" {
		t.Fatalf("loaded %q", loaded)
	}
	if len(order) != 2 || order[0] != "app.start" || order[1] != "app.stop" {
		t.Fatalf("hook order = %v", order)
	}
	if !closed || !logShut {
		t.Fatalf("closed = %v, logger shutdown = %v", closed, logShut)
	}
}

func TestRunStopsOnBootstrapError(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	err := Run(context.Background(), "x.yaml", Options{
		LoadConfig: func(string) (*coreconfig.Config, error) { return &coreconfig.Config{}, nil },
		Bootstrap: func(context.Context, *coreconfig.Config) (TelegramApp, func() error, error) {
			return nil, nil, boom
		},
		RunTelegram: func(context.Context, coretelegram.RunOptions) error { ran = true; return nil },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if ran {
		t.Fatal("bot must not run after a failed bootstrap")
	}
}

func TestRunRequiresBootstrap(t *testing.T) {
	if err := Run(context.Background(), "x.yaml", Options{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRootCommandFlags(t *testing.T) {
	root := NewRootCommand("mediareq", "test", Options{})
	if root.Flags().Lookup("config") == nil {
		t.Fatal("missing --config flag")
	}
	if root.Version == "" {
		t.Fatal("version must be set")
	}
}
