package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/example/retouch/internal/config"
	"github.com/example/retouch/internal/editsvc"
	"github.com/example/retouch/internal/history"
	"github.com/example/retouch/internal/notify"
	"github.com/example/retouch/internal/presets"
	"github.com/example/retouch/internal/session"
	"github.com/example/retouch/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs            *flag.FlagSet
	program       string
	notifier      *notify.Notifier
	config        *config.Config
	configPath    string
	editAlerts    bool
	failureAlerts bool
	saveAlerts    bool
	copyAlerts    bool
	verbose       bool
	themeName     string
	activeTheme   *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:       program,
		notifier:      r.notifier,
		config:        r.config,
		configPath:    r.configPath,
		editAlerts:    r.editAlerts,
		failureAlerts: r.failureAlerts,
		saveAlerts:    r.saveAlerts,
		copyAlerts:    r.copyAlerts,
		verbose:       r.verbose,
		themeName:     r.themeName,
		activeTheme:   r.activeTheme,
	}
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to read .env: %v\n", err)
	}
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:         flag.NewFlagSet("retouch", flag.ExitOnError),
		program:    "retouch",
		notifier:   notify.New(prefs),
		config:     cfg,
		configPath: configPathOverride,
	}
	r.fs.BoolVar(&r.editAlerts, "notify-edit", cfg.Notify.Edit, "show a desktop notification when an edit is applied")
	r.fs.BoolVar(&r.failureAlerts, "notify-failure", cfg.Notify.Failure, "show a desktop notification when an edit fails")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.verbose, "v", false, "log edit service requests")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "color theme for the viewer (dark, light or a configured theme)")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventEdit, r.editAlerts)
		r.notifier.Enable(notify.EventFailure, r.failureAlerts)
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.activeTheme = r.resolveTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "presets":
		cmd, err = parsePresetsCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func (r *root) resolveTheme() *theme.Theme {
	themeName := r.themeName
	if themeName == "" {
		themeName = os.Getenv("RETOUCH_THEME")
	}
	if themeName == "" && r.config != nil {
		themeName = r.config.Theme
	}
	var custom map[string]*theme.Theme
	if r.config != nil {
		custom = r.config.Themes
	}
	t, err := theme.NewLoader(custom).Load(themeName)
	if err != nil {
		if themeName != "" && themeName != "default" {
			fmt.Fprintf(os.Stderr, "warning: failed to load theme '%s': %v. using default.\n", themeName, err)
		}
		t = theme.Default()
	}
	return t
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

// newServiceFn builds the edit service. Tests replace it with a fake.
var newServiceFn = func(ctx context.Context, cfg config.Service) (editsvc.Service, error) {
	env := cfg.APIKeyEnv
	if env == "" {
		env = config.DefaultAPIKeyEnv
	}
	key := strings.TrimSpace(os.Getenv(env))
	if key == "" {
		return nil, fmt.Errorf("%s is not set", env)
	}
	return editsvc.NewGemini(ctx, editsvc.GeminiConfig{APIKey: key, Model: cfg.Model})
}

func (r *root) cfg() *config.Config {
	if r == nil || r.config == nil {
		return config.New()
	}
	return r.config
}

// newSession creates a session configured from the loaded config. Without a
// usable edit service only crops are possible; that is reported as a warning.
func (r *root) newSession(ctx context.Context) *session.Session {
	cfg := r.cfg()
	svc, err := newServiceFn(ctx, cfg.Service)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: edit service unavailable: %v; only crop is available\n", err)
		svc = nil
	} else if r != nil && r.verbose {
		svc = editsvc.WithLogging(svc, log.Default())
	}
	opts := []session.Option{
		session.WithDevicePixelRatio(cfg.Display.DevicePixelRatio),
		session.WithTimeout(cfg.Service.Timeout),
		session.WithMaxImageBytes(cfg.MaxImageSize),
	}
	s := session.New(svc, opts...)
	s.Subscribe(r.notifySessionEvent)
	return s
}

func (r *root) activeThemeOrDefault() *theme.Theme {
	if r == nil || r.activeTheme == nil {
		return theme.Default()
	}
	return r.activeTheme
}

func (r *root) catalog() (*presets.Catalog, error) {
	return presets.Load(r.cfg().Presets)
}

func (r *root) notifySessionEvent(e session.Event) {
	if r == nil || r.notifier == nil {
		return
	}
	switch {
	case e.Type == session.EventState && e.State.Phase == session.PhaseFailed:
		r.notifier.Failure(e.State.Err)
	case e.Type == session.EventHistory && e.Change.Op == history.OpCommit && e.Change.Current != nil:
		img, err := e.Change.Current.Decode()
		if err != nil {
			img = nil
		}
		r.notifyEdit(e.Change.Current.Name(), img)
	}
}

func (r *root) notifyEdit(detail string, img image.Image) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Edit(detail, img)
}

func (r *root) notifySave(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(path)
}

func (r *root) notifyCopy(detail string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Copy(detail)
}
