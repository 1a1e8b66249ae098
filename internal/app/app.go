// Package app assembles the media request bot from its parts.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/mediareq/core/bootstrap"
	corecmd "github.com/m3rciful/mediareq/core/cmd"
	coreconfig "github.com/m3rciful/mediareq/core/config"
	"github.com/m3rciful/mediareq/core/logger"
	"github.com/m3rciful/mediareq/internal/bot"
	"github.com/m3rciful/mediareq/internal/conversation"
	"github.com/m3rciful/mediareq/internal/ledger"
	"github.com/m3rciful/mediareq/internal/media"
)

// Bootstrap connects the optional ledger database and builds the bot.
func Bootstrap(ctx context.Context, cfg *coreconfig.Config) (corecmd.TelegramApp, func() error, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:        cfg,
		Migrations:    ledger.Migrations,
		MigrationsDir: ledger.MigrationsDir,
	})
	if err != nil {
		return nil, nil, err
	}

	allowed := conversation.NewAllowList(cfg.Access.AllowedUsers)
	opts := conversation.Options{
		Client:      media.NewHTTPClientFromConfig(cfg.Media),
		Allowed:     allowed,
		CallTimeout: time.Duration(cfg.Media.TimeoutSeconds) * time.Second,
	}
	var history bot.History
	if res.DB != nil {
		store := ledger.NewStore(res.DB)
		opts.Recorder = store
		history = store
	}

	b, err := bot.New(bot.Options{
		Config:       cfg,
		Conversation: conversation.NewMachine(opts),
		History:      history,
		Allowed:      allowed.Contains,
	})
	if err != nil {
		_ = res.Close()
		return nil, nil, err
	}

	logger.Info(ctx, "app", "bootstrap",
		slog.Int("allowed_users", len(allowed)),
		slog.Bool("ledger", res.DB != nil),
	)
	return b, res.Close, nil
}
