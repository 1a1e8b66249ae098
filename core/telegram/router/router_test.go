package router

import (
	"testing"

	tg "github.com/m3rciful/mediareq/core/telegram"
	"github.com/m3rciful/mediareq/core/telegram/commands"
	"github.com/m3rciful/mediareq/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

type fakeConversation struct {
	active map[int64]bool
	texts  []string
}

func (f *fakeConversation) InProgress(userID int64) bool { return f.active[userID] }

func (f *fakeConversation) HandleText(c tele.Context) error {
	f.texts = append(f.texts, c.Text())
	return nil
}

func textFrom(userID int64, text string) tele.Context {
	return tele.NewContext(nil, tele.Update{
		ID: int(userID),
		Message: &tele.Message{
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID},
			Text:   text,
		},
	})
}

func TestTextRoutePrefersConversation(t *testing.T) {
	conv := &fakeConversation{active: map[int64]bool{1: true}}
	reg := tg.NewRegistry()
	fallbacks := 0
	reg.SetTextFallback(func(tele.Context) error { fallbacks++; return nil })

	route := TextRoute(conv, reg)
	_ = route.Handler(textFrom(1, "Breaking Bad"))
	_ = route.Handler(textFrom(2, "Breaking Bad"))

	if len(conv.texts) != 1 || conv.texts[0] != "Breaking Bad" {
		t.Fatalf("conversation texts = %q", conv.texts)
	}
	if fallbacks != 1 {
		t.Fatalf("fallbacks = %d, want 1", fallbacks)
	}
}

func TestTextRouteBareCommandName(t *testing.T) {
	reg := tg.NewRegistry()
	called := 0
	_ = reg.RegisterCommand("/cancel", commands.Command{Handler: func(tele.Context) error { called++; return nil }})
	_ = reg.RegisterCommand("/history", commands.Command{Handler: func(tele.Context) error { called += 10; return nil }, Restricted: true})

	route := TextRoute(&fakeConversation{}, reg)
	_ = route.Handler(textFrom(3, "cancel"))
	_ = route.Handler(textFrom(3, "history"))
	if called != 1 {
		t.Fatalf("called = %d, want 1", called)
	}
}

func TestCommandRoutesGuardRestricted(t *testing.T) {
	reg := tg.NewRegistry()
	served := 0
	_ = reg.RegisterCommand("/history", commands.Command{
		Handler:    func(tele.Context) error { served++; return nil },
		Restricted: true,
		Aliases:    []string{"recent"},
	})
	rejected := 0
	routes := CommandRoutes(reg, middleware.AccessOptions{
		Allowed:  func(id int64) bool { return id == 1 },
		OnReject: func(tele.Context) error { rejected++; return nil },
	})
	if len(routes) != 2 {
		t.Fatalf("routes = %d, want 2", len(routes))
	}
	for _, r := range routes {
		_ = r.Handler(textFrom(1, "/history"))
		_ = r.Handler(textFrom(2, "/history"))
	}
	if served != 2 || rejected != 2 {
		t.Fatalf("served=%d rejected=%d", served, rejected)
	}
}

func TestCallbackRouteDispatchesByUnique(t *testing.T) {
	reg := tg.NewRegistry()
	var got string
	_ = reg.RegisterCallback("pick", func(c tele.Context) error {
		got = c.Callback().Data
		return nil
	})
	notFound := 0
	reg.SetCallbackNotFound(func(tele.Context) error { notFound++; return nil })

	route := CallbackRoute(reg)
	c := tele.NewContext(nil, tele.Update{ID: 5, Callback: &tele.Callback{
		ID:     "cb",
		Sender: &tele.User{ID: 1},
		Data:   "\fother|x",
	}})
	_ = route.Handler(c)
	if notFound != 1 || got != "" {
		t.Fatalf("notFound=%d got=%q", notFound, got)
	}
}

func TestNormalizeHandlerName(t *testing.T) {
	cases := map[string]string{
		"/Start":     "start",
		" ":          "unknown",
		"pick media": "pick_media",
	}
	for in, want := range cases {
		if got := normalizeHandlerName(in); got != want {
			t.Errorf("normalizeHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextRouteKeepsUnknownCommandsOutOfConversation(t *testing.T) {
	conv := &fakeConversation{active: map[int64]bool{1: true}}
	reg := tg.NewRegistry()
	fallbacks := 0
	reg.SetTextFallback(func(tele.Context) error { fallbacks++; return nil })

	route := TextRoute(conv, reg)
	_ = route.Handler(textFrom(1, "/foo"))
	_ = route.Handler(textFrom(1, "1,3"))

	if len(conv.texts) != 1 || conv.texts[0] != "1,3" {
		t.Fatalf("conversation texts = %q, want only 1,3", conv.texts)
	}
	if fallbacks != 1 {
		t.Fatalf("fallbacks = %d, want 1", fallbacks)
	}
}
