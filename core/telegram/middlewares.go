package telegram

import (
	"time"

	coreconfig "github.com/m3rciful/mediareq/core/config"
	"github.com/m3rciful/mediareq/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the global middleware chain: panic recovery, the
// optional per-user rate limit and reply counters. exempt lists commands the
// rate limit lets through regardless.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited tele.HandlerFunc, exempt ...string) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if cfg != nil {
		if interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond; interval > 0 {
			ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
			for _, t := range cfg.RateLimit.ExcludeUpdates {
				ex[t] = struct{}{}
			}
			cmds := make(map[string]struct{}, len(exempt))
			for _, cmd := range exempt {
				cmds[cmd] = struct{}{}
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
					Interval:       interval,
					Exclude:        ex,
					ExemptCommands: cmds,
					OnLimited:      onLimited,
				}),
			})
		}
	}

	return append(mws, Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware})
}
