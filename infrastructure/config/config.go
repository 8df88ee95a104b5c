package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Keys resolve from flags, then the environment (upper-cased), then defaults
const (
	KeyBackend       = "browser_backend"
	KeyBrowser       = "browser"
	KeyDriverPath    = "browser_driver_path"
	KeyBinaryPath    = "chrome_binary_path"
	KeySeleniumPort  = "selenium_port"
	KeyRemoteURL     = "selenium_remote_url"
	KeyHeadless      = "headless"
	KeyCommentMarker = "comment_marker"
	KeyReplayDelay   = "replay_delay"
	KeyLogLevel      = "log_level"
	KeyReportDir     = "report_dir"
	KeyListenAddr    = "listen_addr"
	KeyXdotoolPath   = "xdotool_path"
)

// Config is the resolved runtime configuration
type Config struct {
	Backend       string
	Browser       string
	DriverPath    string
	BinaryPath    string
	SeleniumPort  int
	RemoteURL     string
	Headless      bool
	CommentMarker string
	// ReplayDelay overrides !REPLAYSPEED when set
	ReplayDelay *time.Duration
	LogLevel    logrus.Level
	ReportDir   string
	ListenAddr  string
	XdotoolPath string
}

// NewViper - loads the given env files, or an optional .env when none are named,
// and returns a viper bound to the environment
func NewViper(envFiles ...string) (*viper.Viper, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v, nil
}

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v.SetDefault(KeyBackend, "selenium")
	v.SetDefault(KeyBrowser, "cr")
	v.SetDefault(KeyDriverPath, "")
	v.SetDefault(KeyBinaryPath, "")
	v.SetDefault(KeySeleniumPort, 9515)
	v.SetDefault(KeyRemoteURL, "")
	v.SetDefault(KeyHeadless, false)
	v.SetDefault(KeyCommentMarker, "'")
	v.SetDefault(KeyReplayDelay, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyReportDir, filepath.Join(home, ".seleniumacros"))
	v.SetDefault(KeyListenAddr, ":8080")
	v.SetDefault(KeyXdotoolPath, "xdotool")
}

// Load - resolves a Config from v
func Load(v *viper.Viper) (*Config, error) {
	level, err := logrus.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", strings.ToUpper(KeyLogLevel), err)
	}

	cfg := &Config{
		Backend:       strings.ToLower(v.GetString(KeyBackend)),
		Browser:       v.GetString(KeyBrowser),
		DriverPath:    v.GetString(KeyDriverPath),
		BinaryPath:    v.GetString(KeyBinaryPath),
		SeleniumPort:  v.GetInt(KeySeleniumPort),
		RemoteURL:     v.GetString(KeyRemoteURL),
		Headless:      v.GetBool(KeyHeadless),
		CommentMarker: v.GetString(KeyCommentMarker),
		LogLevel:      level,
		ReportDir:     v.GetString(KeyReportDir),
		ListenAddr:    v.GetString(KeyListenAddr),
		XdotoolPath:   v.GetString(KeyXdotoolPath),
	}

	if raw := v.GetString(KeyReplayDelay); raw != "" {
		delay, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", strings.ToUpper(KeyReplayDelay), err)
		}
		if delay < 0 {
			return nil, fmt.Errorf("invalid %s: negative delay %s", strings.ToUpper(KeyReplayDelay), delay)
		}
		cfg.ReplayDelay = &delay
	}

	if cfg.CommentMarker == "" {
		return nil, fmt.Errorf("%s must not be empty", strings.ToUpper(KeyCommentMarker))
	}

	return cfg, nil
}

// NewLogger - creates the shared logger
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}
