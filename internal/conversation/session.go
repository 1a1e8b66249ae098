// Package conversation implements the per-user request dialogue: choose a
// media kind, search by title, confirm one candidate at a time and, for
// series, pick the seasons to request.
//
// Transition is a pure function over Session. Machine feeds it user events,
// runs the catalog calls it asks for and keeps sessions in a state.Store.
package conversation

import (
	"github.com/m3rciful/mediareq/internal/media"
	"github.com/m3rciful/mediareq/internal/pager"
)

// State is the step a session is at.
type State string

const (
	// Idle means there is no conversation; an Idle session is never stored.
	Idle             State = "idle"
	Choosing         State = "choosing"
	Answering        State = "answering"
	Picking          State = "picking"
	SelectingSeasons State = "selecting_seasons"
)

// Session is one user's conversation.
type Session struct {
	UserID int64
	State  State
	Kind   media.Kind
	Pager  pager.Pager[media.Candidate]
	// Selected is the candidate on screen while Picking and the confirmed
	// series while SelectingSeasons.
	Selected *media.Candidate
}

// Input is a user event or the result of a catalog call.
type Input interface{ isInput() }

// Start opens a conversation. Authorized is filled in from the allow-list.
type Start struct{ Authorized bool }

// Cancel ends the conversation in any state.
type Cancel struct{}

// Choice is the media kind button payload.
type Choice struct{ Payload string }

// Text is free text typed by the user.
type Text struct{ Text string }

// Pick is the confirmation button payload.
type Pick struct{ Payload string }

// Searched carries the result of a Search effect.
type Searched struct{ Candidates []media.Candidate }

// Submitted carries the result of a Submit effect.
type Submitted struct{ OK bool }

// SeasonsCounted carries the result of a CountSeasons effect.
type SeasonsCounted struct{ Count int }

func (Start) isInput()          {}
func (Cancel) isInput()         {}
func (Choice) isInput()         {}
func (Text) isInput()           {}
func (Pick) isInput()           {}
func (Searched) isInput()       {}
func (Submitted) isInput()      {}
func (SeasonsCounted) isInput() {}

// Pick payloads.
const (
	PickCorrect   = "correct"
	PickIncorrect = "incorrect"
)

// Effect is what a transition asks for: a reply to the user or one catalog call.
type Effect interface{ isEffect() }

// Search looks up Query among titles of Kind; its result is fed back as Searched.
type Search struct {
	Query string
	Kind  media.Kind
}

// Submit requests Candidate; its result is fed back as Submitted.
type Submit struct {
	Candidate media.Candidate
	Seasons   []int
}

// CountSeasons asks how many seasons SeriesID has; fed back as SeasonsCounted.
type CountSeasons struct{ SeriesID int64 }

func (Reply) isEffect()        {}
func (Search) isEffect()       {}
func (Submit) isEffect()       {}
func (CountSeasons) isEffect() {}

// ReplyKind selects the message shown to the user.
type ReplyKind int

const (
	ReplyUnauthorized ReplyKind = iota + 1
	ReplyKindPrompt
	ReplyInvalidChoice
	ReplyTitlePrompt
	ReplyInvalidInput
	ReplyNoResults
	ReplyCandidate
	ReplyExhausted
	ReplySeasonPrompt
	ReplyInvalidSeasons
	ReplyMovieRequested
	ReplyRequestSent
	ReplyRequestFailed
	ReplyCancelled
)

var replyNames = map[ReplyKind]string{
	ReplyUnauthorized:   "unauthorized",
	ReplyKindPrompt:     "kind_prompt",
	ReplyInvalidChoice:  "invalid_choice",
	ReplyTitlePrompt:    "title_prompt",
	ReplyInvalidInput:   "invalid_input",
	ReplyNoResults:      "no_results",
	ReplyCandidate:      "candidate",
	ReplyExhausted:      "exhausted",
	ReplySeasonPrompt:   "season_prompt",
	ReplyInvalidSeasons: "invalid_seasons",
	ReplyMovieRequested: "movie_requested",
	ReplyRequestSent:    "request_sent",
	ReplyRequestFailed:  "request_failed",
	ReplyCancelled:      "cancelled",
}

func (k ReplyKind) String() string {
	if s, ok := replyNames[k]; ok {
		return s
	}
	return "unknown"
}

// Reply is a render instruction. Candidate, Position (1-based) and Total are
// set for ReplyCandidate only.
type Reply struct {
	Kind      ReplyKind
	Candidate media.Candidate
	Position  int
	Total     int
}
