package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/m3rciful/mediareq/core/telegram/state"
	"github.com/m3rciful/mediareq/internal/media"
	"github.com/m3rciful/mediareq/internal/pager"
)

var dune = media.Candidate{ID: 438631, Title: "Dune", Kind: media.Movie}

func pickingMovie(c media.Candidate) *Session {
	return &Session{
		UserID:   user,
		State:    Picking,
		Kind:     media.Movie,
		Pager:    pager.New([]media.Candidate{c}),
		Selected: &c,
	}
}

func TestMachineCancelBeatsQueuedPick(t *testing.T) {
	client := &fakeClient{submitOK: true}
	rec := &fakeRecorder{}
	store := state.NewStore[Session]()
	m := NewMachine(Options{
		Client:      client,
		Allowed:     NewAllowList([]int64{user}),
		Recorder:    rec,
		CallTimeout: time.Second,
		Store:       store,
	})

	held, _ := store.Acquire(user, true)
	held.Set(pickingMovie(dune))

	type result struct {
		reply Reply
		ok    bool
	}
	picked := make(chan result)
	go func() {
		r, ok := m.Pick(context.Background(), user, PickCorrect)
		picked <- result{r, ok}
	}()

	deadline := time.Now().Add(time.Second)
	for store.Waiting(user) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("pick never queued on the slot")
		}
		time.Sleep(time.Millisecond)
	}
	store.Interrupt(user)
	held.Unlock()

	got := <-picked
	if got.ok {
		t.Fatalf("pick after cancel replied %s", got.reply.Kind)
	}
	if len(client.submits) != 0 {
		t.Fatalf("submits = %+v, want none", client.submits)
	}
	if len(rec.subs) != 0 {
		t.Fatalf("recorded = %+v, want none", rec.subs)
	}

	r, ok := m.Cancel(context.Background(), user)
	expect(t, "cancel", r, ok, ReplyCancelled)
	if m.InProgress(user) {
		t.Fatal("conversation still active after cancel")
	}
}

type deadlineRecorder struct {
	hadDeadline bool
	remaining   time.Duration
}

func (r *deadlineRecorder) RecordSubmission(ctx context.Context, _ Submission) {
	dl, ok := ctx.Deadline()
	r.hadDeadline = ok
	r.remaining = time.Until(dl)
}

func TestMachineRecorderIsTimeBounded(t *testing.T) {
	client := &fakeClient{submitOK: true}
	rec := &deadlineRecorder{}
	store := state.NewStore[Session]()
	m := NewMachine(Options{
		Client:      client,
		Allowed:     NewAllowList([]int64{user}),
		Recorder:    rec,
		CallTimeout: 2 * time.Second,
		Store:       store,
	})

	slot, _ := store.Acquire(user, true)
	slot.Set(pickingMovie(dune))
	slot.Unlock()

	r, ok := m.Pick(context.Background(), user, PickCorrect)
	expect(t, "pick", r, ok, ReplyMovieRequested)
	if !rec.hadDeadline {
		t.Fatal("recorder context has no deadline")
	}
	if rec.remaining <= 0 || rec.remaining > 2*time.Second {
		t.Fatalf("recorder deadline in %v, want within the call timeout", rec.remaining)
	}
}
