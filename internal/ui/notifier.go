package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"github.com/tartampluch/go-hijri/internal/config"
	"github.com/tartampluch/go-hijri/internal/engine"
)

// FyneNotifier delivers engine notifications through the desktop notification center.
type FyneNotifier struct {
	App fyne.App
}

var _ engine.Notifier = FyneNotifier{}

func (n FyneNotifier) Notify(msg engine.Notification) {
	n.App.SendNotification(fyne.NewNotification(msg.Title, msg.Body))
	slog.Debug(config.MsgNotifSent,
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyChannel, msg.ChannelID)
}
