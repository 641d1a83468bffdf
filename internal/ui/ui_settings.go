package ui

import (
	"errors"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-hijri/internal/config"
	"github.com/tartampluch/go-hijri/internal/engine"
)

// reasonKeys maps validation reasons to user-facing messages.
var reasonKeys = map[string]string{
	config.ReasonEmpty:       config.TKeyErrEmpty,
	config.ReasonDateFormat:  config.TKeyErrDateFormat,
	config.ReasonDayRange:    config.TKeyErrDayRange,
	config.ReasonMonthRange:  config.TKeyErrMonthRange,
	config.ReasonYearRange:   config.TKeyErrYearRange,
	config.ReasonTimeFormat:  config.TKeyErrTimeFormat,
	config.ReasonNotMonthEnd: config.TKeyErrNotMonthEnd,
}

// settingsWidgets holds references to UI elements refreshed after each command.
type settingsWidgets struct {
	dateEntry   *FilteredEntry
	sunsetEntry *FilteredEntry
	langSelect  *widget.Select
	btnConfirm  *widget.Button
	nextLabel   *widget.Label
}

// ShowSettingsWindow displays the date, sunset and language settings.
func (app *GoHijriApp) ShowSettingsWindow() {
	if app.Window != nil {
		slog.Debug(config.MsgSettingsFocus, config.LogKeyComponent, config.CompUISet)
		app.Window.RequestFocus()
		return
	}

	slog.Info(config.MsgSettingsOpen, config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.Window = w

	snap := app.CurrentSnapshot()
	sw := &settingsWidgets{}

	// --- 1. Date ---
	sw.dateEntry = NewDateEntry()
	sw.dateEntry.PlaceHolder = config.PlaceholderDate
	if snap.Date != (engine.HijriDate{}) {
		sw.dateEntry.SetText(snap.Date.String())
	}

	btnSaveDate := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSaveDate), theme.DocumentSaveIcon(), func() {
		msg, err := app.SubmitDate(sw.dateEntry.Text)
		app.report(w, sw, msg, err)
	})
	btnSaveDate.Importance = widget.HighImportance

	sw.btnConfirm = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnConfirm30), theme.ConfirmIcon(), func() {
		msg, err := app.ConfirmThirtyDayMonth()
		app.report(w, sw, msg, err)
	})

	itemDate := widget.NewFormItem(app.GetMsg(config.TKeyLblDate), sw.dateEntry)
	itemDate.HintText = app.GetMsg(config.TKeyHelpDate)
	confirmHint := widget.NewLabel(app.GetMsg(config.TKeyHelpConfirm30))
	confirmHint.Wrapping = fyne.TextWrapWord
	dateCard := widget.NewCard(app.GetMsg(config.TKeyLblDate), "", container.NewVBox(
		widget.NewForm(itemDate),
		container.NewGridWithColumns(config.LayoutColumnsDouble, sw.btnConfirm, btnSaveDate),
		confirmHint,
	))

	// --- 2. Sunset ---
	sw.sunsetEntry = NewTimeEntry()
	sw.sunsetEntry.PlaceHolder = config.PlaceholderTime
	if snap.Date != (engine.HijriDate{}) {
		sw.sunsetEntry.SetText(snap.Sunset.Format12h())
	}

	btnSaveSunset := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSaveSunset), theme.DocumentSaveIcon(), func() {
		msg, formatted, err := app.SubmitSunsetTime(sw.sunsetEntry.Text)
		if err == nil {
			sw.sunsetEntry.SetText(formatted)
		}
		app.report(w, sw, msg, err)
	})

	itemSunset := widget.NewFormItem(app.GetMsg(config.TKeyLblSunset), sw.sunsetEntry)
	itemSunset.HintText = app.GetMsg(config.TKeyHelpSunset)
	sw.nextLabel = widget.NewLabel("")
	sunsetCard := widget.NewCard(app.GetMsg(config.TKeyLblSunset), "", container.NewVBox(
		widget.NewForm(itemSunset),
		btnSaveSunset,
		sw.nextLabel,
	))

	// --- 3. Language & Feed ---
	sw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	sw.langSelect.SetSelected(app.Language())
	sw.langSelect.OnChanged = func(lang string) {
		if lang == app.Language() {
			return
		}
		app.SetLanguage(lang)
		// Rebuild with the new translations.
		app.Window = nil
		w.Close()
		app.ShowSettingsWindow()
	}

	feedLabel := widget.NewLabel(app.FeedURL())
	feedLabel.Wrapping = fyne.TextWrapBreak
	feedLabel.TextStyle = fyne.TextStyle{Monospace: true}

	generalForm := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect),
		widget.NewFormItem(app.GetMsg(config.TKeyLblFeed), feedLabel),
	)
	generalCard := widget.NewCard(config.AppName, "", generalForm)

	// --- Footer ---
	btnClose := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnClose), theme.CancelIcon(), func() { w.Close() })

	footerLabel := widget.NewLabel(app.GetMsgWith(config.TKeyLblFooter, map[string]any{"Version": config.Version}))
	footerLabel.Alignment = fyne.TextAlignCenter
	footerLabel.TextStyle = fyne.TextStyle{Italic: true}

	content := container.NewPadded(container.NewVBox(
		dateCard,
		sunsetCard,
		generalCard,
		btnClose,
		footerLabel,
	))

	app.refreshSettings(sw)

	w.SetContent(content)
	w.Resize(fyne.NewSize(config.SettingsWindowWidth, content.MinSize().Height))
	w.SetFixedSize(true)
	w.SetOnClosed(func() {
		if app.Window == w {
			app.Window = nil
		}
	})
	w.Show()
}

// SubmitDate stores raw and returns the localized confirmation.
func (app *GoHijriApp) SubmitDate(raw string) (string, error) {
	d, err := app.Service.SubmitDate(app.Ctx, raw)
	if err != nil {
		return "", app.localizedError(err)
	}
	return app.GetMsgWith(config.TKeyMsgDateSaved, map[string]any{"Date": app.FormatDate(d)}), nil
}

// ConfirmThirtyDayMonth records that the current month reaches its 30th day.
func (app *GoHijriApp) ConfirmThirtyDayMonth() (string, error) {
	if _, err := app.Service.ConfirmThirtyDayMonth(app.Ctx); err != nil {
		return "", app.localizedError(err)
	}
	return app.GetMsg(config.TKeyMsgConfirmed), nil
}

// SubmitSunsetTime stores raw and returns the confirmation and the normalized 12-hour text.
func (app *GoHijriApp) SubmitSunsetTime(raw string) (msg, formatted string, err error) {
	sc, err := app.Service.SubmitSunsetTime(app.Ctx, raw)
	if err != nil {
		return "", "", app.localizedError(err)
	}
	formatted = sc.Format12h()
	return app.GetMsgWith(config.TKeyMsgSunsetSaved, map[string]any{"Time": formatted}), formatted, nil
}

// SetLanguage switches the UI language and republishes the localized views.
func (app *GoHijriApp) SetLanguage(lang string) {
	slog.Info(config.MsgLanguageChanged, config.LogKeyComponent, config.CompUISet, config.LogKeyLang, lang)
	app.Preferences.SetString(config.PrefLanguage, lang)
	app.UpdateLocalizer()
	app.RefreshTrayMenu()

	// Evaluation is idempotent within a day; it republishes the feed in the new language.
	go app.Recheck()
}

// NextUpdateText renders the next trigger instant for display.
func (app *GoHijriApp) NextUpdateText(snap engine.Snapshot) string {
	when := config.NextUpdateUnknown
	if !snap.NextTrigger.IsZero() {
		when = app.localizeDigits(snap.NextTrigger.Local().Format(config.NextUpdateLayout))
	}
	return app.GetMsgWith(config.TKeyLblNextUpdate, map[string]any{"Time": when})
}

// localizedError converts service errors into translated messages.
func (app *GoHijriApp) localizedError(err error) error {
	var verr *engine.ValidationError
	switch {
	case errors.As(err, &verr):
		key, ok := reasonKeys[verr.Reason]
		if !ok {
			key = config.TKeyErrDateFormat
		}
		return errors.New(app.GetMsg(key))
	case errors.Is(err, engine.ErrPersistenceUnavailable):
		return errors.New(app.GetMsg(config.TKeyErrPersistence))
	default:
		return errors.New(app.GetMsg(config.TKeyErrScheduling))
	}
}

// report shows the outcome of a command and refreshes dependent widgets.
func (app *GoHijriApp) report(w fyne.Window, sw *settingsWidgets, msg string, err error) {
	if err != nil {
		dialog.ShowError(err, w)
		return
	}
	dialog.ShowInformation(config.AppName, msg, w)
	app.refreshSettings(sw)
}

// refreshSettings syncs the window with the last published state.
func (app *GoHijriApp) refreshSettings(sw *settingsWidgets) {
	snap := app.CurrentSnapshot()
	if snap.Date.AtMonthEnd() {
		sw.btnConfirm.Enable()
	} else {
		sw.btnConfirm.Disable()
	}
	if snap.Date != (engine.HijriDate{}) {
		sw.dateEntry.SetText(snap.Date.String())
	}
	sw.nextLabel.SetText(app.NextUpdateText(snap))
}
