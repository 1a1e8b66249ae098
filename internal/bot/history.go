package bot

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/mediareq/core/logger"
	tghelpers "github.com/m3rciful/mediareq/core/telegram/helpers"
	"github.com/m3rciful/mediareq/internal/ledger"

	tele "gopkg.in/telebot.v4"
)

const historyLimit = 5

const (
	textHistoryDisabled = "Request history is not available."
	textHistoryEmpty    = "You have not requested anything yet."
	textHistoryFailed   = "Could not load your request history. Please try again later."
)

func (a *App) onHistory(c tele.Context) error {
	if a.history == nil {
		return tghelpers.SendText(c, textHistoryDisabled)
	}
	ctx := tghelpers.BuildContext(c)
	entries, err := a.history.Recent(ctx, senderID(c), historyLimit)
	if err != nil {
		logger.Error(ctx, "bot", "history.load", slog.String("err", err.Error()))
		return tghelpers.SendText(c, textHistoryFailed)
	}
	return tghelpers.SendText(c, formatHistory(entries))
}

func formatHistory(entries []ledger.Entry) string {
	if len(entries) == 0 {
		return textHistoryEmpty
	}
	var b strings.Builder
	b.WriteString("Your recent requests:")
	for _, e := range entries {
		status := "sent"
		if !e.OK {
			status = "failed"
		}
		fmt.Fprintf(&b, "\n%s %s [%s]", e.RequestedAt.Format("2006-01-02"), e.Title, e.MediaType)
		if len(e.Seasons) > 0 {
			nums := make([]string, len(e.Seasons))
			for i, n := range e.Seasons {
				nums[i] = strconv.FormatInt(n, 10)
			}
			fmt.Fprintf(&b, " seasons %s", strings.Join(nums, ","))
		}
		fmt.Fprintf(&b, ": %s", status)
	}
	return b.String()
}
