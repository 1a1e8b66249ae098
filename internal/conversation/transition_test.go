package conversation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/m3rciful/mediareq/internal/media"
)

var (
	breakingBad = media.Candidate{ID: 1396, Title: "Breaking Bad", Kind: media.Series, PosterPath: "/bb.jpg"}
	bbLive      = media.Candidate{ID: 4000, Title: "Breaking Bad Live", Kind: media.Series}
	inception   = media.Candidate{ID: 27205, Title: "Inception", Kind: media.Movie, PosterPath: "/in.jpg"}
)

func picking(kind media.Kind, cands ...media.Candidate) Session {
	s := Session{UserID: 1, State: Answering, Kind: kind}
	s, _ = Transition(s, Searched{Candidates: cands})
	return s
}

func TestTransitionTable(t *testing.T) {
	idle := Session{UserID: 1, State: Idle}
	choosing := Session{UserID: 1, State: Choosing}
	answeringTV := Session{UserID: 1, State: Answering, Kind: media.Series}
	selecting := picking(media.Series, breakingBad)
	selecting.State = SelectingSeasons

	cases := []struct {
		name      string
		from      Session
		in        Input
		wantState State
		wantEff   Effect
	}{
		{"unauthorized start", idle, Start{}, Idle, Reply{Kind: ReplyUnauthorized}},
		{"authorized start", idle, Start{Authorized: true}, Choosing, Reply{Kind: ReplyKindPrompt}},
		{"restart while picking", picking(media.Movie, inception), Start{Authorized: true}, Choosing, Reply{Kind: ReplyKindPrompt}},
		{"choose tv", choosing, Choice{Payload: "tv"}, Answering, Reply{Kind: ReplyTitlePrompt}},
		{"choose movie", choosing, Choice{Payload: "movie"}, Answering, Reply{Kind: ReplyTitlePrompt}},
		{"choose bogus", choosing, Choice{Payload: "music"}, Idle, Reply{Kind: ReplyInvalidChoice}},
		{"text while choosing", choosing, Text{Text: "hello"}, Choosing, nil},
		{"title", answeringTV, Text{Text: "  Breaking Bad! "}, Answering, Search{Query: "Breaking Bad", Kind: media.Series}},
		{"empty title", answeringTV, Text{Text: "!!!"}, Answering, Reply{Kind: ReplyInvalidInput}},
		{"no results", answeringTV, Searched{}, Idle, Reply{Kind: ReplyNoResults}},
		{"pick while answering", answeringTV, Pick{Payload: "correct"}, Answering, nil},
		{"correct series", picking(media.Series, breakingBad), Pick{Payload: "correct"}, SelectingSeasons, Reply{Kind: ReplySeasonPrompt}},
		{"correct movie", picking(media.Movie, inception), Pick{Payload: "correct"}, Picking, Submit{Candidate: inception}},
		{"movie submitted", picking(media.Movie, inception), Submitted{OK: true}, Idle, Reply{Kind: ReplyMovieRequested}},
		{"movie failed", picking(media.Movie, inception), Submitted{OK: false}, Idle, Reply{Kind: ReplyRequestFailed}},
		{"incorrect last", picking(media.Series, breakingBad), Pick{Payload: "incorrect"}, Idle, Reply{Kind: ReplyExhausted}},
		{"bogus pick", picking(media.Series, breakingBad), Pick{Payload: "maybe"}, Picking, nil},
		{"bad seasons", selecting, Text{Text: "1,a"}, SelectingSeasons, Reply{Kind: ReplyInvalidSeasons}},
		{"all seasons", selecting, Text{Text: "0"}, SelectingSeasons, CountSeasons{SeriesID: 1396}},
		{"explicit seasons", selecting, Text{Text: "3, 1, 3"}, SelectingSeasons, Submit{Candidate: breakingBad, Seasons: []int{3, 1, 3}}},
		{"counted", selecting, SeasonsCounted{Count: 2}, SelectingSeasons, Submit{Candidate: breakingBad, Seasons: []int{1, 2}}},
		{"counted zero", selecting, SeasonsCounted{}, SelectingSeasons, Submit{Candidate: breakingBad, Seasons: []int{}}},
		{"series sent", selecting, Submitted{OK: true}, Idle, Reply{Kind: ReplyRequestSent}},
		{"series failed", selecting, Submitted{}, Idle, Reply{Kind: ReplyRequestFailed}},
		{"cancel idle", idle, Cancel{}, Idle, Reply{Kind: ReplyCancelled}},
		{"cancel selecting", selecting, Cancel{}, Idle, Reply{Kind: ReplyCancelled}},
		{"text idle", idle, Text{Text: "hi"}, Idle, nil},
		{"stale search result", choosing, Searched{Candidates: []media.Candidate{inception}}, Choosing, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, eff := Transition(tc.from, tc.in)
			if got.State != tc.wantState {
				t.Fatalf("state = %s, want %s", got.State, tc.wantState)
			}
			if got.UserID != 1 {
				t.Fatalf("user id lost: %d", got.UserID)
			}
			if diff := cmp.Diff(tc.wantEff, eff); diff != "" {
				t.Fatalf("effect mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTransitionPresentsCandidatesInOrder(t *testing.T) {
	s := Session{UserID: 1, State: Answering, Kind: media.Series}

	s, eff := Transition(s, Searched{Candidates: []media.Candidate{breakingBad, bbLive}})
	want := Reply{Kind: ReplyCandidate, Candidate: breakingBad, Position: 1, Total: 2}
	if diff := cmp.Diff(want, eff); diff != "" {
		t.Fatal(diff)
	}
	if s.State != Picking || s.Selected == nil || *s.Selected != breakingBad {
		t.Fatalf("session = %+v", s)
	}

	s, eff = Transition(s, Pick{Payload: PickIncorrect})
	want = Reply{Kind: ReplyCandidate, Candidate: bbLive, Position: 2, Total: 2}
	if diff := cmp.Diff(want, eff); diff != "" {
		t.Fatal(diff)
	}
	if *s.Selected != bbLive {
		t.Fatalf("selected = %+v", s.Selected)
	}

	s, eff = Transition(s, Pick{Payload: PickIncorrect})
	if diff := cmp.Diff(Reply{Kind: ReplyExhausted}, eff); diff != "" {
		t.Fatal(diff)
	}
	if s.State != Idle || s.Selected != nil {
		t.Fatalf("session after exhaustion = %+v", s)
	}
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	s := picking(media.Series, breakingBad, bbLive)
	before := s.Pager.Position()
	_, _ = Transition(s, Pick{Payload: PickIncorrect})
	if s.Pager.Position() != before || *s.Selected != breakingBad {
		t.Fatal("Transition mutated its argument")
	}
}

func TestCancelFromEveryState(t *testing.T) {
	for _, st := range []State{Idle, Choosing, Answering, Picking, SelectingSeasons} {
		s := picking(media.Series, breakingBad)
		s.State = st
		got, eff := Transition(s, Cancel{})
		if got.State != Idle || got.Selected != nil {
			t.Fatalf("%s: session = %+v", st, got)
		}
		if r, ok := eff.(Reply); !ok || r.Kind != ReplyCancelled {
			t.Fatalf("%s: effect = %#v", st, eff)
		}
	}
}

func TestAllowList(t *testing.T) {
	l := NewAllowList([]int64{10, 20})
	if !l.Contains(10) || l.Contains(1) {
		t.Fatal("membership mismatch")
	}
	if NewAllowList(nil).Contains(0) {
		t.Fatal("empty list admitted a user")
	}
}
