package engine

import (
	"context"
	"log/slog"

	"github.com/tartampluch/go-hijri/internal/config"
)

// Notification is the payload handed to the host notification primitive.
type Notification struct {
	ChannelID string
	Title     string
	Body      string
	TapAction string
}

// Notifier is the host notification primitive. It is fire-and-forget.
type Notifier interface {
	Notify(Notification)
}

// NotificationGate builds the month-end reminder.
// Raise is not deduplicated: every call hands one notification to the host.
type NotificationGate struct {
	Notifier Notifier

	// Format allows the UI to inject localized strings.
	// When nil, the built-in English text is used.
	Format func(d HijriDate) (title, body string)
}

// Raise sends the day-29 reminder for d.
func (g *NotificationGate) Raise(ctx context.Context, d HijriDate) {
	if g == nil || g.Notifier == nil {
		return
	}

	title, body := config.NotifTitle, config.NotifBody
	if g.Format != nil {
		title, body = g.Format(d)
	}

	g.Notifier.Notify(Notification{
		ChannelID: config.NotifChannelID,
		Title:     title,
		Body:      body,
		TapAction: config.NotifTapAction,
	})

	slog.InfoContext(ctx, config.MsgReminderRaised,
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyChannel, config.NotifChannelID,
		config.LogKeyBefore, d.String())
}

// LogNotifier writes notifications to the log. Used in headless mode.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notification) {
	slog.Warn(n.Title,
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyChannel, n.ChannelID,
		config.LogKeyValue, n.Body)
}
