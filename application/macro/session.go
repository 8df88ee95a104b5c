package macro

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"seleniumacros/domain/entities"
	"seleniumacros/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// DefaultCommentMarker starts a comment line
const DefaultCommentMarker = "'"

// Config wires a Session to its collaborators
type Config struct {
	Factory  interfaces.DriverFactory
	Injector interfaces.InputInjector // nil disables DS
	Recorder interfaces.Recorder
	Logger   *logrus.Logger

	CommentMarker string
	ReplayDelay   *time.Duration // overrides !REPLAYSPEED when set
	Sleep         func(time.Duration)
	Now           func() time.Time
}

// Session is one interpreter instance: variables, run state and at most one driver.
// A Session is not safe for concurrent use.
type Session struct {
	factory  interfaces.DriverFactory
	injector interfaces.InputInjector
	recorder interfaces.Recorder
	logger   *logrus.Logger
	sleep    func(time.Duration)
	now      func() time.Time
	comment  *regexp.Regexp

	browser  entities.Browser
	driver   interfaces.Driver
	vars     *VariableStore
	resolver *Resolver
	parser   *LocatorParser
	state    *RunState
	pacer    *Pacer
}

// NewSession - creates a session from cfg
func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = interfaces.NopRecorder()
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	marker := cfg.CommentMarker
	if marker == "" {
		marker = DefaultCommentMarker
	}

	vars := NewVariableStore(logger)
	resolver := NewResolver(vars)
	return &Session{
		factory:  cfg.Factory,
		injector: cfg.Injector,
		recorder: recorder,
		logger:   logger,
		sleep:    sleep,
		now:      now,
		comment:  regexp.MustCompile(`^` + regexp.QuoteMeta(marker) + `\s*(.*)$`),
		vars:     vars,
		resolver: resolver,
		parser:   NewLocatorParser(resolver),
		state:    NewRunState(),
		pacer:    NewPacer(sleep, cfg.ReplayDelay),
	}
}

// SetBrowser - selects the browser used by the next StartDriver
func (s *Session) SetBrowser(code string) error {
	browser, err := entities.ParseBrowser(code)
	if err != nil {
		return err
	}
	s.browser = browser
	return nil
}

// Browser - returns the selected browser code
func (s *Session) Browser() entities.Browser {
	return s.browser
}

// StartDriver - starts the driver; a running driver is kept unless force is set
func (s *Session) StartDriver(ctx context.Context, force bool) error {
	if s.driver != nil && !force {
		s.logger.Info("Driver is already started")
		return nil
	}
	if s.browser == "" {
		return fmt.Errorf("%w: browser is not set", entities.ErrInvalidArgument)
	}
	if s.factory == nil {
		return fmt.Errorf("%w: no driver factory configured", entities.ErrUnsupportedCapability)
	}
	if s.driver != nil {
		if err := s.closeDriver(); err != nil {
			s.logger.Warnf("Failed to close previous driver: %v", err)
		}
	}

	s.logger.Infof("Starting driver for browser %s", s.browser)
	driver, err := s.factory.Start(ctx, s.browser)
	if err != nil {
		return fmt.Errorf("failed to start driver: %w", err)
	}
	s.driver = driver
	return nil
}

// UseDriver - attaches an already running driver
func (s *Session) UseDriver(driver interfaces.Driver) {
	s.driver = driver
}

// Reset - closes the driver and clears variables and run state
func (s *Session) Reset() error {
	err := s.closeDriver()
	s.browser = ""
	s.vars.Reset()
	s.state.Reset()
	return err
}

func (s *Session) closeDriver() error {
	if s.driver == nil {
		return nil
	}
	err := s.driver.Close()
	s.driver = nil
	if err != nil {
		return fmt.Errorf("failed to close driver: %w", err)
	}
	return nil
}

// SetUserVariables - merges user variables
func (s *Session) SetUserVariables(variables map[string]string) {
	s.vars.SetUserVariables(variables)
}

// SetBuiltinVariables - merges allow-listed built-in variables
func (s *Session) SetBuiltinVariables(variables map[string]string) {
	s.vars.SetBuiltinVariables(variables)
}

// Variables - exposes the variable store
func (s *Session) Variables() *VariableStore {
	return s.vars
}

// Resolver - exposes the value resolver bound to this session
func (s *Session) Resolver() *Resolver {
	return s.resolver
}

// Errors - returns the run error log
func (s *Session) Errors() []entities.RunError {
	return s.state.Errors()
}

// Extracts - returns the run extract log
func (s *Session) Extracts() []string {
	return s.state.Extracts()
}

// RunState - exposes the run state
func (s *Session) RunState() *RunState {
	return s.state
}

// ExecuteScript - replays the macro file at path
func (s *Session) ExecuteScript(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open macro: %w", err)
	}
	defer f.Close()

	return s.ExecuteReader(ctx, path, f)
}

// ExecuteReader - replays a macro line by line until the end or the first fatal error
func (s *Session) ExecuteReader(ctx context.Context, name string, r io.Reader) error {
	runID := s.state.Begin(s.now())
	s.logger.WithFields(logrus.Fields{"run_id": runID, "macro": name}).Info("Replaying macro")

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			err = &entities.CommandError{Line: lineNo, Command: "", Err: fmt.Errorf("%w: %v", entities.ErrTimeout, err)}
			s.state.AddError(s.now(), err)
			return err
		}
		if err := s.ExecuteLine(ctx, lineNo, scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read macro: %w", err)
	}
	return nil
}

// ExecuteLine - processes one macro line: comment, command or unsupported command
func (s *Session) ExecuteLine(ctx context.Context, lineNo int, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if m := s.comment.FindStringSubmatch(line); m != nil {
		s.logger.Infof("Comment: %s", m[1])
		s.recorder.CommandProcessed("COMMENT", "comment", 0)
		s.pace()
		return nil
	}

	tokens, err := Tokenize(line)
	if err != nil {
		return s.fail(lineNo, "", err)
	}
	name, args := tokens[0], tokens[1:]
	cmd := entities.ParseCommand(name)

	started := s.now()
	err = s.dispatch(ctx, cmd, name, args)
	elapsed := s.now().Sub(started)

	switch {
	case err != nil:
		s.recorder.CommandProcessed(name, "error", elapsed)
		if ferr := s.fail(lineNo, name, err); ferr != nil {
			return ferr
		}
	case cmd == entities.CommandUnsupported:
		s.recorder.CommandProcessed(name, "unsupported", elapsed)
	default:
		s.recorder.CommandProcessed(name, "ok", elapsed)
	}

	s.pace()
	return nil
}

func (s *Session) dispatch(ctx context.Context, cmd entities.Command, name string, args []string) error {
	switch cmd {
	case entities.CommandDS:
		return s.executeDS(ctx, args)
	case entities.CommandSet:
		return s.executeSet(args)
	case entities.CommandSize:
		return s.executeSize(ctx, args)
	case entities.CommandTag:
		return s.executeTag(ctx, args)
	case entities.CommandURL:
		return s.executeURL(ctx, args)
	case entities.CommandWait:
		return s.executeWait(args)
	default:
		s.executeUnsupported(name, args)
		return nil
	}
}

// fail records err in the error log; it returns nil when !ERRORIGNORE lets the run continue
func (s *Session) fail(lineNo int, name string, err error) error {
	cmdErr := &entities.CommandError{Line: lineNo, Command: name, Err: err}
	s.state.AddError(s.now(), cmdErr)

	if v, _ := s.vars.Builtin("!ERRORIGNORE"); strings.EqualFold(v, "YES") {
		s.logger.Warnf("Ignoring error: %v", cmdErr)
		return nil
	}
	s.logger.Errorf("Macro stopped: %v", cmdErr)
	return cmdErr
}

func (s *Session) pace() {
	speed, _ := s.vars.Builtin("!REPLAYSPEED")
	s.pacer.Pace(speed)
}

func (s *Session) requireDriver() (interfaces.Driver, error) {
	if s.driver == nil {
		return nil, entities.ErrDriverNotStarted
	}
	return s.driver, nil
}

func (s *Session) executeUnsupported(name string, args []string) {
	s.logger.Warnf("This command is not supported yet. %s %s", name, strings.Join(args, " "))
}
