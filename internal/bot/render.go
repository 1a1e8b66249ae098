package bot

import (
	"fmt"
	"strings"

	coreconfig "github.com/m3rciful/mediareq/core/config"
	"github.com/m3rciful/mediareq/core/telegram/format"
	tghelpers "github.com/m3rciful/mediareq/core/telegram/helpers"
	"github.com/m3rciful/mediareq/core/telegram/keyboard"
	"github.com/m3rciful/mediareq/internal/conversation"
	"github.com/m3rciful/mediareq/internal/media"

	tele "gopkg.in/telebot.v4"
)

// Callback unique keys.
const (
	cbKind = "kind"
	cbPick = "pick"
)

const (
	textUnauthorized   = "You are not authorized to use this bot."
	textKindPrompt     = "Shows or movies:"
	textInvalidChoice  = "Invalid choice. Please start over."
	textTitlePrompt    = "What title are you looking for?"
	textInvalidInput   = "Invalid input. Please try again."
	textNoResults      = "No results found."
	textExhausted      = "No more results to be shown"
	textMovieRequested = "Movie requested successfully. ✅"
	textRequestSent    = "Request successfully sent. ✅"
	textRequestFailed  = "Failed to send the request. Please try again."
	textCancelled      = "Conversation cancelled."
	textSeasonPrompt   = "Great! Please enter the seasons you want to download:\n" +
		"- Enter `0` to download all seasons.\n" +
		"- Enter a comma-separated list like `1,2,3` for specific seasons."
	textInvalidSeasons = "Invalid input. Please enter `0` for all seasons or a comma-separated list like `1,2,3`."
)

type op int

const (
	opSendText op = iota + 1
	opEditText
	opEditCaption
	opSendPhoto
	opEditPhoto
)

// outbound is the single message operation that renders one reply.
type outbound struct {
	op       op
	text     string
	markdown bool
	photo    *tele.Photo
	markup   *tele.ReplyMarkup
}

// origin describes the update a reply answers.
type origin struct {
	callback bool
	onPhoto  bool
}

func originOf(c tele.Context) origin {
	if c.Callback() == nil {
		return origin{}
	}
	msg := c.Message()
	return origin{callback: msg != nil, onPhoto: msg != nil && msg.Photo != nil}
}

// Renderer turns conversation replies into Telegram messages.
type Renderer struct {
	posterBase     string
	posterNotFound string
	noMoreResults  string
}

// NewRenderer builds a renderer from the normalized configuration.
func NewRenderer(cfg *coreconfig.Config) *Renderer {
	return &Renderer{
		posterBase:     strings.TrimRight(cfg.Media.PosterBaseURL, "/"),
		posterNotFound: cfg.Assets.PosterNotFound,
		noMoreResults:  cfg.Assets.NoMoreResults,
	}
}

func kindKeyboard() *tele.ReplyMarkup {
	return keyboard.Row(
		keyboard.InlineBtn{Text: "TV Shows", Unique: cbKind, Data: string(media.Series)},
		keyboard.InlineBtn{Text: "Movies", Unique: cbKind, Data: string(media.Movie)},
	)
}

func pickKeyboard() *tele.ReplyMarkup {
	return keyboard.Row(
		keyboard.InlineBtn{Text: "✅ Correct", Unique: cbPick, Data: conversation.PickCorrect},
		keyboard.InlineBtn{Text: "❌ Incorrect", Unique: cbPick, Data: conversation.PickIncorrect},
	)
}

// plan decides how r is shown. Replies to button presses edit the message
// that carried the buttons; everything else is sent as a new message.
func (rn *Renderer) plan(r conversation.Reply, from origin) outbound {
	switch r.Kind {
	case conversation.ReplyKindPrompt:
		return outbound{op: opSendText, text: textKindPrompt, markup: kindKeyboard()}
	case conversation.ReplyCandidate:
		photo := &tele.Photo{File: rn.poster(r.Candidate), Caption: candidateCaption(r)}
		if from.callback && from.onPhoto {
			return outbound{op: opEditPhoto, photo: photo, markdown: true, markup: pickKeyboard()}
		}
		return outbound{op: opSendPhoto, photo: photo, markdown: true, markup: pickKeyboard()}
	case conversation.ReplyExhausted:
		photo := &tele.Photo{File: tele.FromDisk(rn.noMoreResults), Caption: textExhausted}
		if from.callback && from.onPhoto {
			return outbound{op: opEditPhoto, photo: photo, markdown: true}
		}
		return outbound{op: opSendPhoto, photo: photo, markdown: true}
	}

	text, markdown := replyText(r.Kind)
	switch {
	case from.callback && from.onPhoto:
		return outbound{op: opEditCaption, text: text, markdown: true}
	case from.callback:
		return outbound{op: opEditText, text: text, markdown: markdown}
	}
	return outbound{op: opSendText, text: text, markdown: markdown}
}

func replyText(k conversation.ReplyKind) (string, bool) {
	switch k {
	case conversation.ReplyUnauthorized:
		return textUnauthorized, false
	case conversation.ReplyInvalidChoice:
		return textInvalidChoice, false
	case conversation.ReplyTitlePrompt:
		return textTitlePrompt, false
	case conversation.ReplyInvalidInput:
		return textInvalidInput, false
	case conversation.ReplyNoResults:
		return textNoResults, false
	case conversation.ReplySeasonPrompt:
		return textSeasonPrompt, true
	case conversation.ReplyInvalidSeasons:
		return textInvalidSeasons, true
	case conversation.ReplyMovieRequested:
		return textMovieRequested, false
	case conversation.ReplyRequestSent:
		return textRequestSent, false
	case conversation.ReplyRequestFailed:
		return textRequestFailed, false
	case conversation.ReplyCancelled:
		return textCancelled, false
	}
	return "", false
}

func (rn *Renderer) poster(c media.Candidate) tele.File {
	if c.PosterPath == "" {
		return tele.FromDisk(rn.posterNotFound)
	}
	return tele.FromURL(rn.posterBase + c.PosterPath)
}

func candidateCaption(r conversation.Reply) string {
	title, _ := format.EscapeMarkdown(r.Candidate.Title, format.MarkdownV1)
	caption := fmt.Sprintf("Is this the media you requested? (%s)", title)
	if r.Total > 1 {
		caption += fmt.Sprintf(" [%d/%d]", r.Position, r.Total)
	}
	return caption
}

// Render shows r in reply to the update in c.
func (rn *Renderer) Render(c tele.Context, r conversation.Reply) error {
	return deliver(c, rn.plan(r, originOf(c)))
}

func deliver(c tele.Context, out outbound) error {
	switch out.op {
	case opSendPhoto:
		return tghelpers.SendPhoto(c, out.photo, out.markup)
	case opEditPhoto:
		return tghelpers.EditPhoto(c, out.photo, out.markup)
	case opEditCaption:
		return tghelpers.EditCaption(c, out.text)
	case opEditText:
		if out.markdown {
			return tghelpers.EditMD(c, out.text, out.markup)
		}
		return tghelpers.EditText(c, out.text, out.markup)
	case opSendText:
		if out.markdown {
			return tghelpers.SendMD(c, out.text, out.markup)
		}
		return tghelpers.SendText(c, out.text, out.markup)
	}
	return fmt.Errorf("bot: unknown outbound op %d", out.op)
}
