package cli

import (
	"fmt"

	"seleniumacros/application/iim"
	"seleniumacros/application/macro"
	"seleniumacros/domain/interfaces"
	"seleniumacros/infrastructure/browser"
	"seleniumacros/infrastructure/config"
	"seleniumacros/infrastructure/input"
	"seleniumacros/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// app holds what every subcommand builds from the resolved configuration
type app struct {
	envFiles []string
	dryRun   bool

	cfg    *config.Config
	logger *logrus.Logger
}

// flag name -> config key
var flagKeys = map[string]string{
	"backend":        config.KeyBackend,
	"browser":        config.KeyBrowser,
	"driver-path":    config.KeyDriverPath,
	"binary-path":    config.KeyBinaryPath,
	"port":           config.KeySeleniumPort,
	"remote-url":     config.KeyRemoteURL,
	"headless":       config.KeyHeadless,
	"comment-marker": config.KeyCommentMarker,
	"replay-delay":   config.KeyReplayDelay,
	"log-level":      config.KeyLogLevel,
	"report-dir":     config.KeyReportDir,
	"listen":         config.KeyListenAddr,
	"xdotool":        config.KeyXdotoolPath,
}

func (a *app) registerFlags(flags *pflag.FlagSet) {
	flags.StringSliceVar(&a.envFiles, "env-file", nil, "Env files to load (default .env)")
	flags.BoolVar(&a.dryRun, "dry-run", false, "Replay against fetched HTML without a browser (static backend)")

	flags.String("backend", "", "Driver backend: selenium, playwright, chromedp or static")
	flags.StringP("browser", "b", "", "Browser code: cr, fx, ie or op")
	flags.String("driver-path", "", "chromedriver/geckodriver path (BROWSER_DRIVER_PATH)")
	flags.String("binary-path", "", "Browser binary path (CHROME_BINARY_PATH)")
	flags.Int("port", 0, "Local WebDriver service port")
	flags.String("remote-url", "", "Remote WebDriver URL")
	flags.Bool("headless", false, "Run the browser headless")
	flags.String("comment-marker", "", "Prefix of comment lines")
	flags.String("replay-delay", "", "Fixed delay between commands, overrides !REPLAYSPEED")
	flags.String("log-level", "", "Log level")
	flags.String("report-dir", "", "Directory for run reports")
	flags.String("listen", "", "HTTP listen address for serve")
	flags.String("xdotool", "", "xdotool executable used by DS commands")
}

// load - resolves configuration for cmd: flags, then environment, then defaults
func (a *app) load(cmd *cobra.Command) error {
	v, err := config.NewViper(a.envFiles...)
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}
	if a.dryRun {
		v.Set(config.KeyBackend, browser.BackendStatic)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger()
	a.logger.SetOutput(cmd.ErrOrStderr())
	return nil
}

func (a *app) injector() interfaces.InputInjector {
	x, err := input.NewXdotool(a.cfg.XdotoolPath, a.logger)
	if err != nil {
		a.logger.Debugf("DS commands disabled: %v", err)
		return nil
	}
	return x
}

func (a *app) newSession(recorder interfaces.Recorder) (*macro.Session, error) {
	factory, err := browser.NewFactory(browser.Options{
		Backend:    a.cfg.Backend,
		DriverPath: a.cfg.DriverPath,
		BinaryPath: a.cfg.BinaryPath,
		Port:       a.cfg.SeleniumPort,
		Headless:   a.cfg.Headless,
		RemoteURL:  a.cfg.RemoteURL,
	}, a.logger)
	if err != nil {
		return nil, err
	}

	return macro.NewSession(macro.Config{
		Factory:       factory,
		Injector:      a.injector(),
		Recorder:      recorder,
		Logger:        a.logger,
		CommentMarker: a.cfg.CommentMarker,
		ReplayDelay:   a.cfg.ReplayDelay,
	}), nil
}

func (a *app) newStore() (interfaces.ReportStore, error) {
	return storage.NewReportStore(a.cfg.ReportDir)
}

// newFacade - builds an initialized facade; store may be nil
func (a *app) newFacade(recorder interfaces.Recorder, store interfaces.ReportStore) (*iim.Interface, error) {
	session, err := a.newSession(recorder)
	if err != nil {
		return nil, err
	}
	facade := iim.New(session, store, a.logger)
	if err := facade.Init("-" + a.cfg.Browser); err != nil {
		return nil, err
	}
	return facade, nil
}

// setVariables - loads a YAML variable file into the facade
func setVariables(facade *iim.Interface, path string) error {
	if path == "" {
		return nil
	}
	vars, err := storage.LoadVariables(path)
	if err != nil {
		return err
	}
	for name, value := range vars {
		facade.Set(name, value)
	}
	return nil
}
