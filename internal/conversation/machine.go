package conversation

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/mediareq/core/logger"
	"github.com/m3rciful/mediareq/core/telegram/state"
	"github.com/m3rciful/mediareq/internal/media"
)

const component = "conversation"

// DefaultCallTimeout bounds each catalog call when Options.CallTimeout is zero.
const DefaultCallTimeout = 10 * time.Second

// Submission is a finished acquisition request.
type Submission struct {
	UserID    int64
	Candidate media.Candidate
	Seasons   []int
	OK        bool
	At        time.Time
}

// Recorder keeps a history of submissions.
type Recorder interface {
	RecordSubmission(ctx context.Context, s Submission)
}

// Options configures a Machine.
type Options struct {
	Client      media.Client
	Allowed     AllowList
	Recorder    Recorder
	CallTimeout time.Duration
	Store       *state.Store[Session]
	Now         func() time.Time
}

// Machine runs conversations for many users. Events of one user are handled
// one at a time; different users never wait on each other.
type Machine struct {
	client      media.Client
	allowed     AllowList
	recorder    Recorder
	callTimeout time.Duration
	store       *state.Store[Session]
	now         func() time.Time
}

// NewMachine returns a Machine. Options.Client is required.
func NewMachine(opts Options) *Machine {
	m := &Machine{
		client:      opts.Client,
		allowed:     opts.Allowed,
		recorder:    opts.Recorder,
		callTimeout: opts.CallTimeout,
		store:       opts.Store,
		now:         opts.Now,
	}
	if m.callTimeout <= 0 {
		m.callTimeout = DefaultCallTimeout
	}
	if m.store == nil {
		m.store = state.NewStore[Session]()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// InProgress reports whether the user has an open conversation.
func (m *Machine) InProgress(userID int64) bool {
	return m.store.Active(userID)
}

// Start opens a new conversation, ending any open one.
func (m *Machine) Start(ctx context.Context, userID int64) (Reply, bool) {
	return m.handle(ctx, userID, Start{Authorized: m.allowed.Contains(userID)})
}

// Cancel ends the user's conversation. A catalog call in flight is abandoned
// and its result discarded.
func (m *Machine) Cancel(ctx context.Context, userID int64) (Reply, bool) {
	return m.handle(ctx, userID, Cancel{})
}

// Choose handles a media kind button.
func (m *Machine) Choose(ctx context.Context, userID int64, payload string) (Reply, bool) {
	return m.handle(ctx, userID, Choice{Payload: payload})
}

// Pick handles a candidate confirmation button.
func (m *Machine) Pick(ctx context.Context, userID int64, payload string) (Reply, bool) {
	return m.handle(ctx, userID, Pick{Payload: payload})
}

// Text handles free text.
func (m *Machine) Text(ctx context.Context, userID int64, text string) (Reply, bool) {
	return m.handle(ctx, userID, Text{Text: text})
}

// handle runs in and every call it triggers to completion under the user's
// slot and returns the reply to show, if any. ok is false when the event did
// not apply or its outcome was discarded by a concurrent cancel.
func (m *Machine) handle(ctx context.Context, userID int64, in Input) (reply Reply, ok bool) {
	create := false
	switch in := in.(type) {
	case Start:
		m.store.Interrupt(userID)
		create = in.Authorized
	case Cancel:
		m.store.Interrupt(userID)
	}

	slot, found := m.store.Acquire(userID, create)
	cur := Session{UserID: userID, State: Idle}
	if !found {
		next, eff := Transition(cur, in)
		m.logTransition(ctx, cur, next, in, eff)
		reply, ok = eff.(Reply)
		return reply, ok
	}
	defer slot.Unlock()
	if slot.Stale() {
		m.logDiscarded(ctx, userID, in)
		return Reply{}, false
	}
	if v := slot.Value(); v != nil {
		cur = *v
	}

	for {
		next, eff := Transition(cur, in)
		m.logTransition(ctx, cur, next, in, eff)
		cur = next

		var result Input
		switch eff := eff.(type) {
		case nil:
			m.commit(slot, cur)
			return Reply{}, false
		case Reply:
			m.commit(slot, cur)
			return eff, true
		case Search:
			result, ok = m.call(ctx, slot, func(cctx context.Context) Input {
				return Searched{Candidates: m.client.Search(cctx, eff.Query, eff.Kind)}
			})
		case CountSeasons:
			result, ok = m.call(ctx, slot, func(cctx context.Context) Input {
				return SeasonsCounted{Count: m.client.SeasonCount(cctx, eff.SeriesID)}
			})
		case Submit:
			result, ok = m.call(ctx, slot, func(cctx context.Context) Input {
				return Submitted{OK: m.client.SubmitRequest(cctx, eff.Candidate, eff.Seasons)}
			})
			if ok {
				m.record(ctx, userID, eff, result.(Submitted).OK)
			}
		}
		if !ok {
			logger.Info(ctx, component, "result.discarded",
				slog.String("outcome", "discarded"),
				slog.String("from", string(cur.State)),
			)
			return Reply{}, false
		}
		in = result
	}
}

// call runs fn under the slot's cancellable, time-bounded call context. ok is
// false when the slot was interrupted while fn ran.
func (m *Machine) call(ctx context.Context, slot *state.Slot[Session], fn func(context.Context) Input) (Input, bool) {
	if slot.Stale() {
		return nil, false
	}
	cctx, finish := slot.Call(ctx, m.callTimeout)
	result := fn(cctx)
	if finish() {
		return nil, false
	}
	return result, true
}

func (m *Machine) commit(slot *state.Slot[Session], s Session) {
	if s.State == Idle {
		slot.Clear()
		return
	}
	slot.Set(&s)
}

// logDiscarded notes an event dropped because the user cancelled or restarted
// while it waited for the slot.
func (m *Machine) logDiscarded(ctx context.Context, userID int64, in Input) {
	logger.Info(ctx, component, "event.discarded",
		slog.String("outcome", "discarded"),
		slog.Int64("user_id", userID),
		slog.String("input", inputName(in)),
	)
}

// record runs under the user's slot, so the recorder gets the same bound as
// media calls.
func (m *Machine) record(ctx context.Context, userID int64, eff Submit, ok bool) {
	if m.recorder == nil {
		return
	}
	rctx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()
	m.recorder.RecordSubmission(rctx, Submission{
		UserID:    userID,
		Candidate: eff.Candidate,
		Seasons:   eff.Seasons,
		OK:        ok,
		At:        m.now(),
	})
}

func (m *Machine) logTransition(ctx context.Context, from, to Session, in Input, eff Effect) {
	attrs := []slog.Attr{
		slog.String("from", string(from.State)),
		slog.String("to", string(to.State)),
		slog.String("input", inputName(in)),
	}
	switch eff := eff.(type) {
	case Reply:
		attrs = append(attrs, slog.String("reply", eff.Kind.String()))
		if eff.Kind == ReplyCandidate {
			attrs = append(attrs,
				slog.Int64("media_id", eff.Candidate.ID),
				slog.String("title", eff.Candidate.Title),
				slog.Int("position", eff.Position),
				slog.Int("count", eff.Total),
			)
		}
	case Search:
		attrs = append(attrs, slog.String("query", eff.Query), slog.String("kind", string(eff.Kind)))
	case Submit:
		attrs = append(attrs, slog.Int64("media_id", eff.Candidate.ID), slog.Any("seasons", eff.Seasons))
	case CountSeasons:
		attrs = append(attrs, slog.Int64("media_id", eff.SeriesID))
	case nil:
		attrs = append(attrs, slog.String("outcome", "ignored"))
	}
	logger.Info(ctx, component, "transition", attrs...)
}

func inputName(in Input) string {
	switch in.(type) {
	case Start:
		return "start"
	case Cancel:
		return "cancel"
	case Choice:
		return "choice"
	case Text:
		return "text"
	case Pick:
		return "pick"
	case Searched:
		return "searched"
	case Submitted:
		return "submitted"
	case SeasonsCounted:
		return "seasons_counted"
	}
	return "unknown"
}
