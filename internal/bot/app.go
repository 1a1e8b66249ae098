// Package bot binds the request conversation to Telegram: commands, inline
// buttons, free text and the way replies are drawn.
package bot

import (
	"context"
	"errors"
	"log/slog"

	coreconfig "github.com/m3rciful/mediareq/core/config"
	"github.com/m3rciful/mediareq/core/logger"
	tg "github.com/m3rciful/mediareq/core/telegram"
	"github.com/m3rciful/mediareq/core/telegram/callbacks"
	"github.com/m3rciful/mediareq/core/telegram/commands"
	tghelpers "github.com/m3rciful/mediareq/core/telegram/helpers"
	"github.com/m3rciful/mediareq/core/telegram/middleware"
	"github.com/m3rciful/mediareq/core/telegram/router"
	"github.com/m3rciful/mediareq/internal/conversation"
	"github.com/m3rciful/mediareq/internal/ledger"

	tele "gopkg.in/telebot.v4"
)

// cmdCancel stays available under the rate limit.
const cmdCancel = "/cancel"

// Conversation is the part of conversation.Machine the bot drives.
type Conversation interface {
	InProgress(userID int64) bool
	Start(ctx context.Context, userID int64) (conversation.Reply, bool)
	Cancel(ctx context.Context, userID int64) (conversation.Reply, bool)
	Choose(ctx context.Context, userID int64, payload string) (conversation.Reply, bool)
	Pick(ctx context.Context, userID int64, payload string) (conversation.Reply, bool)
	Text(ctx context.Context, userID int64, text string) (conversation.Reply, bool)
}

// History lists a user's past requests. A nil History disables /history.
type History interface {
	Recent(ctx context.Context, userID int64, limit int) ([]ledger.Entry, error)
}

// Options configure an App.
type Options struct {
	Config       *coreconfig.Config
	Conversation Conversation
	History      History
	Allowed      func(userID int64) bool
}

// App implements the Telegram surface of the bot.
type App struct {
	cfg      *coreconfig.Config
	conv     Conversation
	history  History
	allowed  func(int64) bool
	renderer *Renderer
}

// New validates opts and returns an App.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("bot: nil config provided")
	}
	if opts.Conversation == nil {
		return nil, errors.New("bot: nil conversation provided")
	}
	allowed := opts.Allowed
	if allowed == nil {
		allowed = conversation.NewAllowList(opts.Config.Access.AllowedUsers).Contains
	}
	return &App{
		cfg:      opts.Config,
		conv:     opts.Conversation,
		history:  opts.History,
		allowed:  allowed,
		renderer: NewRenderer(opts.Config),
	}, nil
}

// Registry builds the command and callback registry of the bot.
func (a *App) Registry() (*tg.Registry, error) {
	reg := tg.NewRegistry()
	cmds := []struct {
		name string
		cmd  commands.Command
	}{
		{"/start", commands.Command{Handler: a.onStart, Description: "Request a show or a movie"}},
		{cmdCancel, commands.Command{Handler: a.onCancel, Description: "Cancel the current request"}},
		{"/history", commands.Command{Handler: a.onHistory, Description: "Show your recent requests", Restricted: true}},
	}
	for _, c := range cmds {
		if err := reg.RegisterCommand(c.name, c.cmd); err != nil {
			return nil, err
		}
	}
	if err := reg.RegisterCallback(cbKind, a.onKind); err != nil {
		return nil, err
	}
	if err := reg.RegisterCallback(cbPick, a.onPick); err != nil {
		return nil, err
	}
	return reg, nil
}

// TelegramRunOptions assembles everything RunTelegram needs.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg, err := a.Registry()
	if err != nil {
		return tg.RunOptions{}, err
	}

	access := middleware.AccessOptions{Allowed: a.allowed, OnReject: a.onRejected}
	routes := router.CommandRoutes(reg, access)
	routes = append(routes, router.CallbackRoute(reg), router.TextRoute(a, reg))

	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(a.cfg, onLimited, cmdCancel),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			logger.Info(ctx, "app", "bot.started", slog.String("username", rt.Bot.Me.Username))
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			logger.Info(ctx, "app", "bot.stopped", slog.Uint64("send_failures", rt.Dispatcher.ErrorCount()))
			return nil
		},
	}, nil
}

// InProgress reports whether userID is mid-conversation.
func (a *App) InProgress(userID int64) bool {
	return a.conv.InProgress(userID)
}

// HandleText feeds free text into the user's conversation.
func (a *App) HandleText(c tele.Context) error {
	return a.respond(c, func(ctx context.Context, userID int64) (conversation.Reply, bool) {
		return a.conv.Text(ctx, userID, c.Text())
	})
}

func (a *App) onStart(c tele.Context) error {
	return a.respond(c, a.conv.Start)
}

func (a *App) onCancel(c tele.Context) error {
	return a.respond(c, a.conv.Cancel)
}

func (a *App) onKind(c tele.Context) error {
	_, payload := callbacks.Parse(c)
	return a.respond(c, func(ctx context.Context, userID int64) (conversation.Reply, bool) {
		return a.conv.Choose(ctx, userID, payload)
	})
}

func (a *App) onPick(c tele.Context) error {
	_, payload := callbacks.Parse(c)
	return a.respond(c, func(ctx context.Context, userID int64) (conversation.Reply, bool) {
		return a.conv.Pick(ctx, userID, payload)
	})
}

func (a *App) onRejected(c tele.Context) error {
	return tghelpers.SendText(c, textUnauthorized)
}

func (a *App) respond(c tele.Context, step func(context.Context, int64) (conversation.Reply, bool)) error {
	reply, ok := step(tghelpers.BuildContext(c), senderID(c))
	if !ok {
		return nil
	}
	return a.renderer.Render(c, reply)
}

// onLimited acknowledges throttled button presses so the client stops spinning.
func onLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond()
	}
	return nil
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}
