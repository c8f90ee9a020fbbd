package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/courtside/internal/config"
	"github.com/sandevgo/courtside/internal/core"
	"github.com/sandevgo/courtside/pkg/conv"
	"github.com/sandevgo/courtside/pkg/log"
	tele "gopkg.in/telebot.v3"
)

// Notifier pushes a feed digest to a Telegram chat. Send-only: the bot
// never polls for updates.
type Notifier struct {
	bot    *tele.Bot
	chatID int64
	loc    *time.Location
}

func NewNotifier(cfg *config.TelegramConfig, loc *time.Location) (*Notifier, error) {
	b, err := tele.NewBot(tele.Settings{
		Token: cfg.Token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Notifier{
		bot:    b,
		chatID: cfg.ChatID,
		loc:    loc,
	}, nil
}

// SendDigest posts the current feed as an HTML message.
func (n *Notifier) SendDigest(ctx context.Context, result core.FeedResult, now time.Time) error {
	md := Digest(result, now, n.loc)
	if md == "" {
		return nil
	}

	html := conv.MarkdownToTelegramHTML([]byte(md))
	if _, err := n.bot.Send(tele.ChatID(n.chatID), html, tele.ModeHTML); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to send telegram digest")
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}

// Digest renders a feed as a markdown summary. Times are shown in the
// reference timezone the buckets were computed in.
func Digest(result core.FeedResult, now time.Time, loc *time.Location) string {
	if len(result.Records) == 0 {
		return ""
	}

	header := fmt.Sprintf("**Game feed — %s**", now.In(loc).Format("Mon, Jan 2"))
	if result.UsedFallback {
		header += "\n\n*No games in the selected window; showing all upcoming.*"
	}

	body := ""
	for _, rec := range result.Records {
		line := fmt.Sprintf("\n- %s at %s (%s)", rec.Event.AwayTeam, rec.Event.HomeTeam, rec.Event.League)
		if start, ok := rec.Event.StartTime(); ok {
			line += " — " + start.In(loc).Format("3:04 PM")
		}
		if rec.Prediction != nil {
			line += fmt.Sprintf(", confidence %.0f%%", rec.Prediction.Confidence*100)
		}
		body += line
	}

	return header + "\n" + body
}
