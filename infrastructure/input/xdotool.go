package input

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"seleniumacros/domain/entities"
	"seleniumacros/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Runner executes a command and returns its combined output
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Xdotool injects keyboard and mouse input into X11 windows
type Xdotool struct {
	path   string
	run    Runner
	logger *logrus.Logger
}

// NewXdotool - locates the xdotool executable
func NewXdotool(path string, logger *logrus.Logger) (*Xdotool, error) {
	if path == "" {
		path = "xdotool"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: xdotool not found (%v). Please install it or set XDOTOOL_PATH environment variable", entities.ErrUnsupportedCapability, err)
	}
	logger.Infof("Using xdotool at: %s", resolved)
	return &Xdotool{path: resolved, run: execRunner, logger: logger}, nil
}

// NewXdotoolWithRunner - creates an injector around a custom runner
func NewXdotoolWithRunner(path string, run Runner, logger *logrus.Logger) *Xdotool {
	return &Xdotool{path: path, run: run, logger: logger}
}

// SendKeystrokes - types text into the focused window
func (x *Xdotool) SendKeystrokes(ctx context.Context, text string) error {
	x.logger.Infof("Typing %d characters into the focused window", len(text))
	if out, err := x.run(ctx, x.path, "type", "--delay", "50", "--", text); err != nil {
		return fmt.Errorf("xdotool type failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// ClickAt - activates the window titled window and clicks at x,y inside it
func (x *Xdotool) ClickAt(ctx context.Context, window string, posX, posY int) error {
	wid, err := x.findWindow(ctx, window)
	if err != nil {
		return err
	}

	steps := [][]string{
		{"windowactivate", "--sync", wid},
		{"mousemove", "--window", wid, strconv.Itoa(posX), strconv.Itoa(posY)},
		{"click", "1"},
	}
	for _, step := range steps {
		if out, err := x.run(ctx, x.path, step...); err != nil {
			return fmt.Errorf("xdotool %s failed: %w: %s", step[0], err, strings.TrimSpace(string(out)))
		}
	}

	x.logger.Infof("Clicked at %d,%d in window %q", posX, posY, window)
	return nil
}

func (x *Xdotool) findWindow(ctx context.Context, title string) (string, error) {
	out, err := x.run(ctx, x.path, "search", "--onlyvisible", "--name", regexp.QuoteMeta(title))
	if err != nil {
		return "", fmt.Errorf("%w: window %q: %v", entities.ErrElementNotFound, title, err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("%w: window %q", entities.ErrElementNotFound, title)
}

var _ interfaces.InputInjector = (*Xdotool)(nil)
