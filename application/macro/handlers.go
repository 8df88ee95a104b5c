package macro

import (
	"context"
	"fmt"
	"strings"
	"time"

	"seleniumacros/domain/entities"
)

// browser content area offsets used to map DS CLICK page coordinates to window coordinates
var contentOffsets = map[entities.Browser]struct{ X, Y int }{
	entities.BrowserFirefox: {X: 0, Y: 74},
	entities.BrowserChrome:  {X: 0, Y: 62},
	entities.BrowserOpera:   {X: 0, Y: 62},
}

// SET !NAME VALUE
func (s *Session) executeSet(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: SET expects NAME VALUE, got %d arguments", entities.ErrInvalidArgument, len(args))
	}
	name := args[0]
	if !builtinVariableName.MatchString(name) {
		return fmt.Errorf("%w: invalid built-in variable name %q", entities.ErrInvalidArgument, name)
	}
	value := s.resolver.Resolve(args[1])
	s.logger.Debugf("SET %s = %s", name, value)
	s.vars.SetBuiltinVariables(map[string]string{name: value.String()})
	return nil
}

// SIZE X=<int> Y=<int>
func (s *Session) executeSize(ctx context.Context, args []string) error {
	params, err := s.parseParams(args)
	if err != nil {
		return err
	}
	width, err := intParam(params, "X")
	if err != nil {
		return err
	}
	height, err := intParam(params, "Y")
	if err != nil {
		return err
	}

	driver, err := s.requireDriver()
	if err != nil {
		return err
	}
	s.logger.Infof("Resizing viewport to %dx%d", width, height)
	return driver.ResizeViewport(ctx, width, height)
}

// URL GOTO=<url>
func (s *Session) executeURL(ctx context.Context, args []string) error {
	if len(args) != 1 || !strings.HasPrefix(args[0], "GOTO=") {
		return fmt.Errorf("%w: URL expects GOTO=<url>", entities.ErrInvalidArgument)
	}
	// URLs take variables and quotes but no <SP>/<BR> markup
	url := s.resolver.Substitute(strings.TrimPrefix(args[0], "GOTO="))

	driver, err := s.requireDriver()
	if err != nil {
		return err
	}
	s.logger.Infof("Navigating to: %s", url)
	return driver.Navigate(ctx, url)
}

// WAIT SECONDS=<int>
func (s *Session) executeWait(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: WAIT expects SECONDS=<int>", entities.ErrInvalidArgument)
	}
	params, err := s.parseParams(args)
	if err != nil {
		return err
	}
	seconds, err := intParam(params, "SECONDS")
	if err != nil {
		return err
	}
	s.logger.Infof("Waiting %d seconds", seconds)
	s.sleep(time.Duration(seconds) * time.Second)
	return nil
}

// DS CMD=KEY CONTENT=... | DS CMD=CLICK X=<int> Y=<int>
func (s *Session) executeDS(ctx context.Context, args []string) error {
	if s.injector == nil {
		return fmt.Errorf("%w: DS requires OS input injection", entities.ErrUnsupportedCapability)
	}
	params, err := s.parseParams(args)
	if err != nil {
		return err
	}
	cmd, ok := params["CMD"]
	if !ok {
		return fmt.Errorf("%w: DS expects CMD=", entities.ErrInvalidArgument)
	}

	switch cmd.String() {
	case "KEY":
		content, ok := params["CONTENT"]
		if !ok {
			return fmt.Errorf("%w: DS CMD=KEY expects CONTENT=", entities.ErrInvalidArgument)
		}
		return s.injector.SendKeystrokes(ctx, content.String())
	case "CLICK":
		x, err := intParam(params, "X")
		if err != nil {
			return err
		}
		y, err := intParam(params, "Y")
		if err != nil {
			return err
		}
		offset, ok := contentOffsets[s.browser]
		if !ok {
			return fmt.Errorf("%w: no coordinate mapping for browser %q", entities.ErrUnsupportedCapability, s.browser)
		}
		driver, err := s.requireDriver()
		if err != nil {
			return err
		}
		window, err := driver.Title(ctx)
		if err != nil {
			return fmt.Errorf("failed to read window title: %w", err)
		}
		return s.injector.ClickAt(ctx, window, x+offset.X, y+offset.Y)
	default:
		return fmt.Errorf("%w: DS CMD=%s", entities.ErrNotImplemented, cmd)
	}
}

// parseParams resolves KEY=VALUE tokens into a map
func (s *Session) parseParams(args []string) (map[string]entities.Value, error) {
	params := make(map[string]entities.Value, len(args))
	for _, arg := range args {
		key, value, err := splitKeyValue(arg)
		if err != nil {
			return nil, err
		}
		params[key] = s.resolver.Resolve(value)
	}
	return params, nil
}

func intParam(params map[string]entities.Value, key string) (int, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s=", entities.ErrInvalidArgument, key)
	}
	if !v.IsInteger() {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", entities.ErrInvalidArgument, key, v.String())
	}
	return v.Int, nil
}
