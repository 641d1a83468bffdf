package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the feed server in logs and response headers.
var UserAgent = "Go-Hijri/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Hijri"
	AppID             = "com.github.tartampluch.go-hijri"
	KeyringService    = "com.github.tartampluch.go-hijri"
	KeyringFeedUser   = "feed-token"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	StateFileName     = "state.json"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and the headless state file.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagHeadless     = "headless"
	FlagState        = "state"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescHeadless = "Run without the tray UI (state kept in a JSON file)"
	FlagDescState    = "Path of the headless state file (default: user config dir)"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Environment Overrides (cleanenv)
// -----------------------------------------------------------------------------

const (
	EnvPort     = "GO_HIJRI_PORT"
	EnvExact    = "GO_HIJRI_EXACT"
	EnvLanguage = "GO_HIJRI_LANGUAGE"
)

// Env holds process-level overrides read once at startup.
// Empty values keep whatever is stored in preferences.
type Env struct {
	Port     string `env:"GO_HIJRI_PORT" env-description:"Feed server port"`
	Exact    bool   `env:"GO_HIJRI_EXACT" env-default:"true" env-description:"Allow exact trigger delivery"`
	Language string `env:"GO_HIJRI_LANGUAGE" env-description:"UI language (en, ar)"`
}

// -----------------------------------------------------------------------------
// Persisted State Keys
// -----------------------------------------------------------------------------

const (
	PrefDay         = "day"
	PrefMonth       = "month"
	PrefYear        = "year"
	PrefSunsetTime  = "sunset_time"
	PrefLastMarker  = "last_update_marker"
	PrefFirstLaunch = "first_launch"

	// PrefResolvedDay is the day on which a manual edit made after sunset
	// already settled that evening's date.
	PrefResolvedDay = "resolved_day"

	// UI only.
	PrefLanguage   = "language"
	PrefServerPort = "server_port"
	PrefLastRun    = "last_run_version"
)

// -----------------------------------------------------------------------------
// Calendar Defaults & Business Rules
// -----------------------------------------------------------------------------

const (
	DefaultDay        = 1
	DefaultMonth      = 1
	DefaultYear       = 1447
	DefaultSunsetTime = "18:00"
	DefaultPort       = "18081"
	DefaultLanguage   = "en"

	MinDay          = 1
	MaxDay          = 30
	MonthEndDay     = 29 // Automatic advance stops here pending confirmation.
	LastAutoDay     = 28 // Last day that advances without confirmation.
	MinMonth        = 1
	MaxMonth        = 12
	MinYear         = 1
	MaxHour         = 23
	MaxMinute       = 59
	HoursPerHalfDay = 12

	// SecondsPerDay converts a local calendar date into a day index.
	SecondsPerDay = 24 * 60 * 60
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "ar"}

// -----------------------------------------------------------------------------
// Time & Date Formats
// -----------------------------------------------------------------------------

const (
	TimeFormat24    = "%02d:%02d"
	TimeFormat12    = "%d:%02d %s"
	DateFormatInput = "%d - %d - %d"
	PeriodAM        = "AM"
	PeriodPM        = "PM"
	TimeSeparator   = ":"
	DateSeparator   = "-"
	DateFieldCount  = 3
	LogTimeLayout   = time.RFC3339
)

// -----------------------------------------------------------------------------
// Trigger Delivery
// -----------------------------------------------------------------------------

const (
	// TriggerHandle identifies the single daily trigger.
	// Re-registering with the same handle replaces the pending one.
	TriggerHandle = "sunset-advance"
	TriggerGroup  = "go-hijri"

	// TriggerMisfireGrace is how late a delivery may still run. A one-shot
	// trigger that misses it is dropped for good, so it spans any suspend.
	TriggerMisfireGrace = 100 * 365 * 24 * time.Hour

	// InexactWindow is the granularity used when exact delivery is refused.
	InexactWindow = time.Minute
)

// -----------------------------------------------------------------------------
// Notification
// -----------------------------------------------------------------------------

const (
	NotifChannelID   = "hijri_calendar_channel"
	NotifChannelName = "Hijri Calendar Notifications"
	NotifTapAction   = "open_settings"
	NotifTitle       = "Islamic Calendar - Month End"
	NotifBody        = "It's the 29th of the month. Please check for moon sighting and set the new date."
)

// -----------------------------------------------------------------------------
// UI Constants
// -----------------------------------------------------------------------------

const (
	SettingsWindowWidth = 420
	LayoutColumnsDouble = 2
	PlaceholderDate     = "15 - 7 - 1447"
	PlaceholderTime     = "6:30 PM"
	NextUpdateLayout    = "Mon 2 Jan 15:04"
	NextUpdateUnknown   = "-"

	// FormatFeedURL expects host, port and token.
	FormatFeedURL = "http://%s:%s/?token=%s"

	// LangArabic selects Arabic-Indic digits in displayed dates.
	LangArabic = "ar"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle       = "win_title"
	TKeyMenuSettings   = "menu_settings"
	TKeyMenuCheck      = "menu_check_now"
	TKeyTrayStatus     = "tray_status" // Requires Day, Month, Year
	TKeyLblDate        = "lbl_date"
	TKeyHelpDate       = "help_date"
	TKeyLblSunset      = "lbl_sunset"
	TKeyHelpSunset     = "help_sunset"
	TKeyLblLanguage    = "lbl_language"
	TKeyLblFeed        = "lbl_feed"
	TKeyBtnSaveDate    = "btn_save_date"
	TKeyBtnSaveSunset  = "btn_save_sunset"
	TKeyBtnClose       = "btn_close"
	TKeyMsgDateSaved   = "msg_date_saved"   // Requires Date
	TKeyMsgSunsetSaved = "msg_sunset_saved" // Requires Time
	TKeyNotifTitle     = "notif_month_end_title"
	TKeyNotifBody      = "notif_month_end_body" // Requires Month
	TKeyOnboardTitle   = "onboard_title"
	TKeyOnboardBody    = "onboard_body"
	TKeyFeedSummary    = "feed_summary" // Requires Day, Month, Year
	TKeyErrDateFormat  = "err_date_format"
	TKeyErrDayRange    = "err_day_range"
	TKeyErrMonthRange  = "err_month_range"
	TKeyErrYearRange   = "err_year_range"
	TKeyErrTimeFormat  = "err_time_format"
	TKeyErrEmpty       = "err_empty"
	TKeyErrPersistence = "err_persistence"
	TKeyErrScheduling  = "err_scheduling"
	TKeyTrayMonthEnd   = "tray_month_end" // Requires Day, Month, Year
	TKeyBtnConfirm30   = "btn_confirm_30"
	TKeyHelpConfirm30  = "help_confirm_30"
	TKeyMsgConfirmed   = "msg_confirmed_30"
	TKeyLblNextUpdate  = "lbl_next_update" // Requires Time
	TKeyLblFooter      = "lbl_footer"      // Requires Version
	TKeyLblFeedMissing = "lbl_feed_missing"
	TKeyErrNotMonthEnd = "err_not_month_end"

	// TKeyMonthPrefix is completed with the month number (month_1 .. month_12).
	TKeyMonthPrefix = "month_"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Hijri//Engine//EN"
	ICalCalName   = "Hijri Date"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gohijri"
	ICalTrigger   = "PT0M"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDescription = "DESCRIPTION"
	PropDTStart     = "DTSTART"
	PropDTEnd       = "DTEND"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	DefaultICalRefresh = 1 * time.Hour

	FormatHashInput = "%d|%d|%d|%s"
	FormatUID       = "%s@%s"
	UIDHashLength   = 16
	UIDSalt         = "go-hijri-v1-"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	RouteRoot          = "/"
	AddrSeparator      = ":"
	QueryToken         = "token"
	MinPort            = 1
	MaxPort            = 65535
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderServer          = "Server"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrPersistence      = "persistence unavailable"
	ErrScheduling       = "exact scheduling unavailable"
	ErrValidation       = "invalid input"
	ErrStoreRead        = "failed to read state"
	ErrStoreWrite       = "failed to write state"
	ErrStoreDecode      = "failed to decode state"
	ErrStoreEncode      = "failed to encode state"
	ErrStorePathEmpty   = "state path is required"
	ErrStoreCorrupt     = "stored value is malformed"
	ErrPrefsMissing     = "preferences backend is not initialized"
	ErrRegister         = "failed to register trigger"
	ErrCancel           = "failed to cancel trigger"
	ErrHostMissing      = "internal error: trigger host is not initialized"
	ErrSchedulerInit    = "failed to create trigger scheduler"
	ErrReschedule       = "failed to arm next trigger"
	ErrEvaluate         = "daily evaluation failed"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrConfigDir        = "could not determine user config dir"
	ErrCreateDir        = "could not create app dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"
	ErrLocNotInit       = "localizer not initialized"
	ErrEnvLoad          = "failed to read environment overrides"
	ErrFeedToken        = "failed to store feed token"
	ErrFeedRender       = "failed to render feed"

	// Validation reasons.
	ReasonEmpty       = "input is empty"
	ReasonDateFormat  = "expected three numbers: D M Y"
	ReasonDayRange    = "day must be between 1 and 30"
	ReasonMonthRange  = "month must be between 1 and 12"
	ReasonYearRange   = "year must be 1 or greater"
	ReasonTimeFormat  = "expected HH:MM (24-hour) or HH:MM AM/PM"
	ReasonNotMonthEnd = "a 30th day can only follow day 29"

	FieldDate   = "date"
	FieldDay    = "day"
	FieldMonth  = "month"
	FieldYear   = "year"
	FieldSunset = "sunset_time"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgForbidden    = "Forbidden"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary   = "%d/%d/%d AH"
	FallbackTrayLabel = "Go Hijri"
	FallbackTrayDate  = "%d/%d/%d AH"

	TitleStartupError = "Startup Error"

	MsgPortBusy        = "Port %s is busy or unavailable."
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down"
	MsgAppStarting     = "Starting application"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Feed cache updated"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgEvaluated       = "Daily evaluation finished"
	MsgAlreadyApplied  = "Advance already applied for this day"
	MsgBeforeSunset    = "Sunset not reached yet"
	MsgAdvanced        = "Hijri date advanced"
	MsgMonthEndHold    = "Month end reached, waiting for confirmation"
	MsgReminderRaised  = "Month-end reminder raised"
	MsgDateSubmitted   = "Date set manually"
	MsgMonthConfirmed  = "Month end confirmed, moved to next month"
	MsgSunsetSubmitted = "Sunset time updated"
	MsgRescheduled     = "Next trigger armed"
	MsgExactFallback   = "Exact delivery refused, falling back to inexact delivery"
	MsgTriggerFired    = "Trigger delivered"
	MsgTriggerCancel   = "Trigger cancelled"
	MsgMarkerCaptured  = "Last-applied marker initialized"
	MsgFirstLaunch     = "First launch onboarding completed"
	MsgForeground      = "Foreground re-check requested"
	MsgHeadless        = "Running in headless mode"
	MsgNotifSent       = "Notification sent"
	MsgValidation      = "Rejected user input"
	MsgFeedRendered    = "Feed rendered"
	MsgResolvedByHand  = "Date already settled by hand this evening"
	MsgSettingsOpen    = "Opening settings window"
	MsgSettingsFocus   = "Settings window already open, requesting focus"
	MsgLanguageChanged = "Language changed"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyOutcome   = "outcome"
	LogKeyBefore    = "before"
	LogKeyAfter     = "after"
	LogKeyDayIndex  = "day_index"
	LogKeyMarker    = "marker"
	LogKeySunset    = "sunset"
	LogKeyFireAt    = "fire_at"
	LogKeyExact     = "exact"
	LogKeyHandle    = "handle"
	LogKeyChannel   = "channel"
	LogKeyField     = "field"
	LogKeyValue     = "value"
	LogKeyPath      = "path"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI        = "ui"
	CompUISet     = "ui_settings"
	CompEngine    = "engine"
	CompEvaluator = "evaluator"
	CompScheduler = "scheduler"
	CompTrigger   = "trigger"
	CompStore     = "store"
	CompNotify    = "notify"
	CompServer    = "server"
	CompMain      = "main"
	CompI18n      = "i18n"
)
