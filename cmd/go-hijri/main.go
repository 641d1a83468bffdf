package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"fyne.io/fyne/v2/app"
	"github.com/tartampluch/go-hijri/internal/config"
	"github.com/tartampluch/go-hijri/internal/engine"
	"github.com/tartampluch/go-hijri/internal/server"
	"github.com/tartampluch/go-hijri/internal/trigger"
	"github.com/tartampluch/go-hijri/internal/ui"
	"golang.org/x/sync/errgroup"
)

// main is the application entry point.
// It delegates execution to runMain to ensure that deferred function calls
// (like closing log files) are executed before the process terminates.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	headless := flag.Bool(config.FlagHeadless, false, config.FlagDescHeadless)
	statePath := flag.String(config.FlagState, "", config.FlagDescState)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	env, err := config.LoadEnv()
	if err != nil {
		slog.Warn(config.ErrEnvLoad, config.LogKeyComponent, config.CompMain, config.LogKeyError, err)
	}

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if *headless {
		err = runHeadless(ctx, env, *statePath)
	} else {
		err = runDesktop(ctx, env)
	}
	if err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// runDesktop runs the tray application on top of the Fyne preferences store.
func runDesktop(ctx context.Context, env config.Env) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a := app.NewWithID(config.AppID)

	// Record the version for potential migration logic in future updates.
	a.Preferences().SetString(config.PrefLastRun, config.Version)
	if env.Language != "" {
		a.Preferences().SetString(config.PrefLanguage, env.Language)
	}

	port := env.Port
	if port == "" {
		port = a.Preferences().StringWithFallback(config.PrefServerPort, config.DefaultPort)
	}
	srv := server.NewFeedServer(port)

	gui := ui.NewGoHijriApp(a, ctx, srv)

	store := engine.NewPrefsStore(a.Preferences())
	feed := &engine.FeedGenerator{Clock: engine.RealClock{}, FormatSummary: gui.FormatFeedSummary}
	gate := &engine.NotificationGate{Notifier: ui.FyneNotifier{App: a}, Format: gui.FormatReminder}

	svc, host, err := wire(ctx, env, store, gate, feed, srv)
	if err != nil {
		return err
	}
	gui.Bind(svc)
	host.Start(ctx)
	defer waitHost(host)

	// Lifecycle Bridge:
	// Watch for context cancellation to quit the UI gracefully.
	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	// The first evaluation publishes through fyne.Do, which needs the UI loop.
	go func() { _, _ = svc.Start(ctx) }()

	// Blocks until the tray is quit.
	gui.Run()
	return nil
}

// runHeadless runs the calendar without a UI. State lives in a JSON file and
// reminders are written to the log.
func runHeadless(ctx context.Context, env config.Env, statePath string) error {
	path := statePath
	if path == "" {
		p, err := engine.DefaultStatePath()
		if err != nil {
			return err
		}
		path = p
	}

	store, err := engine.NewFileStore(path)
	if err != nil {
		return err
	}

	port := env.Port
	if port == "" {
		port = config.DefaultPort
	}
	srv := server.NewFeedServer(port)

	token, err := server.FeedToken()
	if err != nil {
		slog.Warn(config.ErrFeedToken, config.LogKeyComponent, config.CompMain, config.LogKeyError, err)
	}
	srv.SetToken(token)

	feed := &engine.FeedGenerator{Clock: engine.RealClock{}}
	gate := &engine.NotificationGate{Notifier: engine.LogNotifier{}}

	svc, host, err := wire(ctx, env, store, gate, feed, srv)
	if err != nil {
		return err
	}

	slog.Info(config.MsgHeadless,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyPath, path,
		config.LogKeyPort, port,
		config.LogKeyValue, fmt.Sprintf(config.FormatFeedURL, config.LocalhostBindAddr, port, token))

	g, gctx := errgroup.WithContext(ctx)
	host.Start(gctx)
	defer waitHost(host)

	g.Go(func() error {
		return srv.Start(gctx)
	})

	// Failures are logged by the service; the trigger is armed regardless.
	_, _ = svc.Start(gctx)

	return g.Wait()
}

// wire builds the service around the trigger host and publishes every
// state change to the feed server.
func wire(
	ctx context.Context,
	env config.Env,
	store engine.DateStore,
	gate *engine.NotificationGate,
	feed *engine.FeedGenerator,
	srv *server.FeedServer,
) (*engine.Service, *trigger.QuartzHost, error) {
	host, err := trigger.NewQuartzHost(ctx, env.Exact)
	if err != nil {
		return nil, nil, err
	}

	clock := engine.RealClock{}
	svc := engine.NewService(store, clock, engine.NewSunsetScheduler(host, store, clock), gate)

	host.OnDeliver(func(ctx context.Context, _ string) error {
		_, err := svc.Evaluate(ctx)
		return err
	})

	svc.Subscribe(func(snap engine.Snapshot) {
		data, err := feed.Render(snap)
		if err != nil {
			slog.Error(config.ErrFeedRender, config.LogKeyComponent, config.CompMain, config.LogKeyError, err)
			return
		}
		srv.Update(data)
	})

	return svc, host, nil
}

// waitHost stops the trigger host and lets a running delivery finish.
func waitHost(host *trigger.QuartzHost) {
	host.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	host.Wait(ctx)
}

// printVersion outputs the build information to stdout.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
func setupLogging(debugMode bool) io.Closer {
	writers := []io.Writer{os.Stdout}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
