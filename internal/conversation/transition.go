package conversation

import (
	"github.com/m3rciful/mediareq/core/telegram/format"
	"github.com/m3rciful/mediareq/internal/media"
	"github.com/m3rciful/mediareq/internal/pager"
	"github.com/m3rciful/mediareq/internal/seasons"
)

// Transition computes the session that follows s on input in and the single
// effect to carry out, if any. A returned session in Idle must be dropped.
// Inputs that do not apply to the current state leave s unchanged with a nil
// effect.
func Transition(s Session, in Input) (Session, Effect) {
	switch in := in.(type) {
	case Start:
		if !in.Authorized {
			return end(s), Reply{Kind: ReplyUnauthorized}
		}
		return Session{UserID: s.UserID, State: Choosing}, Reply{Kind: ReplyKindPrompt}
	case Cancel:
		return end(s), Reply{Kind: ReplyCancelled}
	}

	switch s.State {
	case Choosing:
		if in, ok := in.(Choice); ok {
			kind, ok := media.ParseKind(in.Payload)
			if !ok {
				return end(s), Reply{Kind: ReplyInvalidChoice}
			}
			s.State, s.Kind = Answering, kind
			return s, Reply{Kind: ReplyTitlePrompt}
		}

	case Answering:
		switch in := in.(type) {
		case Text:
			query := format.SanitizeInput(in.Text)
			if query == "" {
				return s, Reply{Kind: ReplyInvalidInput}
			}
			return s, Search{Query: query, Kind: s.Kind}
		case Searched:
			if len(in.Candidates) == 0 {
				return end(s), Reply{Kind: ReplyNoResults}
			}
			s.State = Picking
			s.Pager = pager.New(in.Candidates)
			return present(s)
		}

	case Picking:
		switch in := in.(type) {
		case Pick:
			switch in.Payload {
			case PickCorrect:
				if s.Kind == media.Series {
					s.State = SelectingSeasons
					return s, Reply{Kind: ReplySeasonPrompt}
				}
				return s, Submit{Candidate: *s.Selected}
			case PickIncorrect:
				s.Pager = s.Pager.Advance()
				return present(s)
			}
		case Submitted:
			if s.Kind == media.Movie {
				if in.OK {
					return end(s), Reply{Kind: ReplyMovieRequested}
				}
				return end(s), Reply{Kind: ReplyRequestFailed}
			}
		}

	case SelectingSeasons:
		switch in := in.(type) {
		case Text:
			sel, err := seasons.Parse(format.SanitizeInput(in.Text))
			if err != nil {
				return s, Reply{Kind: ReplyInvalidSeasons}
			}
			if sel.All {
				return s, CountSeasons{SeriesID: s.Selected.ID}
			}
			return s, Submit{Candidate: *s.Selected, Seasons: sel.Resolve(0)}
		case SeasonsCounted:
			all := seasons.Selection{All: true}
			return s, Submit{Candidate: *s.Selected, Seasons: all.Resolve(in.Count)}
		case Submitted:
			if in.OK {
				return end(s), Reply{Kind: ReplyRequestSent}
			}
			return end(s), Reply{Kind: ReplyRequestFailed}
		}
	}
	return s, nil
}

// present shows the candidate under the pager cursor or ends the conversation
// when none is left.
func present(s Session) (Session, Effect) {
	c, ok := s.Pager.Current()
	if !ok {
		return end(s), Reply{Kind: ReplyExhausted}
	}
	s.Selected = &c
	return s, Reply{
		Kind:      ReplyCandidate,
		Candidate: c,
		Position:  s.Pager.Position() + 1,
		Total:     s.Pager.Len(),
	}
}

func end(s Session) Session {
	return Session{UserID: s.UserID, State: Idle}
}
