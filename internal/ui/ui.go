package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-hijri/internal/config"
	"github.com/tartampluch/go-hijri/internal/engine"
	"github.com/tartampluch/go-hijri/internal/server"
)

// GoHijriApp encapsulates the tray UI, preferences and the calendar service.
type GoHijriApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Service *engine.Service
	Server  *server.FeedServer

	Tray desktop.App
	Menu *fyne.Menu

	TrayStatusItem   *fyne.MenuItem
	TrayCheckItem    *fyne.MenuItem
	TraySettingsItem *fyne.MenuItem

	SupportedLanguages []string

	locMu sync.RWMutex // Guards Localizer, read from trigger goroutines.

	snapMu    sync.RWMutex
	snapshot  engine.Snapshot
	feedToken string
}

// NewGoHijriApp constructs the application and loads translations.
func NewGoHijriApp(a fyne.App, ctx context.Context, srv *server.FeedServer) *GoHijriApp {
	a.SetIcon(theme.HistoryIcon())

	app := &GoHijriApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Server:             srv,
		SupportedLanguages: config.SupportedLanguages,
	}
	app.SetupI18n()
	return app
}

// Bind attaches the calendar service. The tray follows every state change.
func (app *GoHijriApp) Bind(svc *engine.Service) {
	app.Service = svc
	svc.Subscribe(app.onSnapshot)
}

// Run launches the feed server and the tray, then blocks in the UI loop.
func (app *GoHijriApp) Run() {
	app.EnsureFeedToken()

	go func() {
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayNotSupported,
			config.LogKeyComponent, config.CompUI)
	}

	lc := app.App.Lifecycle()
	lc.SetOnStarted(func() { go app.Onboard() })
	lc.SetOnEnteredForeground(func() { go app.Recheck() })

	app.App.Run()
}

// Recheck runs the daily evaluation outside of a trigger delivery.
func (app *GoHijriApp) Recheck() {
	slog.Info(config.MsgForeground, config.LogKeyComponent, config.CompUI)
	if app.Service == nil {
		return
	}
	// Failures are logged by the service and the trigger is re-armed regardless.
	_, _ = app.Service.Evaluate(app.Ctx)
}

// Onboard explains the month-end reminder on the very first launch.
func (app *GoHijriApp) Onboard() {
	if app.Service == nil {
		return
	}
	first, err := app.Service.FirstLaunch()
	if err != nil {
		slog.Error(config.ErrStoreRead, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		return
	}
	if !first {
		return
	}

	app.App.SendNotification(fyne.NewNotification(
		app.GetMsg(config.TKeyOnboardTitle),
		app.GetMsg(config.TKeyOnboardBody)))

	if err := app.Service.CompleteFirstLaunch(app.Ctx); err != nil {
		slog.Error(config.ErrStoreWrite, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
	}
}

// EnsureFeedToken applies the keyring feed token to the server.
// The token is applied even when it cannot be stored.
func (app *GoHijriApp) EnsureFeedToken() string {
	token, err := server.FeedToken()
	if err != nil {
		slog.Error(config.ErrFeedToken, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
	}

	app.snapMu.Lock()
	app.feedToken = token
	app.snapMu.Unlock()

	if app.Server != nil {
		app.Server.SetToken(token)
	}
	return token
}

// FeedURL is the address calendar clients subscribe to.
func (app *GoHijriApp) FeedURL() string {
	app.snapMu.RLock()
	token := app.feedToken
	app.snapMu.RUnlock()

	if app.Server == nil || token == "" {
		return app.GetMsg(config.TKeyLblFeedMissing)
	}
	return fmt.Sprintf(config.FormatFeedURL, config.LocalhostBindAddr, app.Server.Port, token)
}

// setupTrayMenu constructs the system tray menu.
func (app *GoHijriApp) setupTrayMenu() {
	app.TrayStatusItem = fyne.NewMenuItem(config.FallbackTrayLabel, func() {
		app.ShowSettingsWindow()
	})

	app.TrayCheckItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuCheck), func() {
		go app.Recheck()
	})

	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), func() {
		app.ShowSettingsWindow()
	})

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		fyne.NewMenuItemSeparator(),
		app.TrayCheckItem,
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
	app.updateTrayStatus()
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *GoHijriApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayCheckItem.Label = app.GetMsg(config.TKeyMenuCheck)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyMenuSettings)
	app.updateTrayStatus()
}

// onSnapshot runs on whichever goroutine changed the state.
func (app *GoHijriApp) onSnapshot(snap engine.Snapshot) {
	app.snapMu.Lock()
	app.snapshot = snap
	app.snapMu.Unlock()

	fyne.Do(app.updateTrayStatus)
}

// CurrentSnapshot returns the last published state.
func (app *GoHijriApp) CurrentSnapshot() engine.Snapshot {
	app.snapMu.RLock()
	defer app.snapMu.RUnlock()
	return app.snapshot
}

// updateTrayStatus shows the current Hijri date as the top menu item.
func (app *GoHijriApp) updateTrayStatus() {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}
	app.TrayStatusItem.Label = app.FormatTrayStatus(app.CurrentSnapshot())
	app.Menu.Refresh()
}
