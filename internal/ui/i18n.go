package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-hijri/internal/config"
	"github.com/tartampluch/go-hijri/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// arabicIndicZero is U+0660. Digits one to nine follow it.
const arabicIndicZero = '٠'

// SetupI18n initializes the translation bundle and detects available languages.
func (app *GoHijriApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return
	}

	var detectedLangs []string

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		detectedLangs = append(detectedLangs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	app.SupportedLanguages = detectedLangs
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// UpdateLocalizer refreshes the translator based on the user's language preference.
func (app *GoHijriApp) UpdateLocalizer() {
	lang := app.Language()

	app.locMu.Lock()
	defer app.locMu.Unlock()
	if app.I18nBundle == nil {
		app.Localizer = nil
		return
	}
	app.Localizer = i18n.NewLocalizer(app.I18nBundle, lang)
}

// Language returns the selected UI language code.
func (app *GoHijriApp) Language() string {
	return app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
}

// GetMsg is a helper to translate a key safely.
func (app *GoHijriApp) GetMsg(key string) string {
	return app.GetMsgWith(key, nil)
}

// GetMsgWith translates key with template data. Missing keys return the key itself.
func (app *GoHijriApp) GetMsgWith(key string, data map[string]any) string {
	app.locMu.RLock()
	loc := app.Localizer
	app.locMu.RUnlock()

	if loc == nil {
		return key
	}
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// MonthName returns the localized name of month m.
// Out-of-range values fall back to the first month.
func (app *GoHijriApp) MonthName(m int) string {
	if m < config.MinMonth || m > config.MaxMonth {
		m = config.MinMonth
	}
	return app.GetMsg(config.TKeyMonthPrefix + strconv.Itoa(m))
}

// localizeDigits renders ASCII digits in the script of the UI language.
func (app *GoHijriApp) localizeDigits(s string) string {
	if app.Language() != config.LangArabic {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return arabicIndicZero + (r - '0')
		}
		return r
	}, s)
}

func (app *GoHijriApp) dateData(d engine.HijriDate) map[string]any {
	return map[string]any{
		"Day":   app.localizeDigits(strconv.Itoa(d.Day)),
		"Month": app.MonthName(d.Month),
		"Year":  app.localizeDigits(strconv.Itoa(d.Year)),
	}
}

// FormatTrayStatus renders the tray headline for snap.
func (app *GoHijriApp) FormatTrayStatus(snap engine.Snapshot) string {
	d := snap.Date
	if d == (engine.HijriDate{}) {
		return config.FallbackTrayLabel
	}

	key := config.TKeyTrayStatus
	if snap.MonthEnd() {
		key = config.TKeyTrayMonthEnd
	}
	if label := app.GetMsgWith(key, app.dateData(d)); label != key {
		return label
	}
	return fmt.Sprintf(config.FallbackTrayDate, d.Day, d.Month, d.Year)
}

// FormatFeedSummary localizes the feed event title.
func (app *GoHijriApp) FormatFeedSummary(d engine.HijriDate) string {
	if msg := app.GetMsgWith(config.TKeyFeedSummary, app.dateData(d)); msg != config.TKeyFeedSummary {
		return msg
	}
	return fmt.Sprintf(config.FallbackSummary, d.Day, d.Month, d.Year)
}

// FormatReminder localizes the month-end notification.
func (app *GoHijriApp) FormatReminder(d engine.HijriDate) (title, body string) {
	title = app.GetMsg(config.TKeyNotifTitle)
	if title == config.TKeyNotifTitle {
		title = config.NotifTitle
	}
	body = app.GetMsgWith(config.TKeyNotifBody, map[string]any{"Month": app.MonthName(d.Month)})
	if body == config.TKeyNotifBody {
		body = config.NotifBody
	}
	return title, body
}

// FormatDate renders d as typed in the date field, with localized digits.
func (app *GoHijriApp) FormatDate(d engine.HijriDate) string {
	return app.localizeDigits(d.String())
}
