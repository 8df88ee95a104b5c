package iim

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"
	"time"

	"seleniumacros/application/macro"
	"seleniumacros/domain/entities"
	"seleniumacros/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var initCommand = regexp.MustCompile(`^-(\w+)(?:\s+(.*))?$`)

// Interface exposes the iMacros scripting calls (iimInit, iimPlay, ...) over one Session.
// All calls are serialized; one macro plays at a time.
type Interface struct {
	mu      sync.Mutex
	session *macro.Session
	store   interfaces.ReportStore
	logger  *logrus.Logger
	now     func() time.Time

	lastReport *entities.RunReport
}

// New - wraps session; store may be nil to skip persisting run reports
func New(session *macro.Session, store interfaces.ReportStore, logger *logrus.Logger) *Interface {
	return &Interface{
		session: session,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Init - resets the session and selects the browser from a command such as "-cr"
func (i *Interface) Init(command string) error {
	m := initCommand.FindStringSubmatch(command)
	if m == nil {
		return fmt.Errorf("%w: wrong command for init: %q", entities.ErrInvalidArgument, command)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.session.Reset(); err != nil {
		i.logger.Warnf("Failed to reset session: %v", err)
	}
	if m[2] != "" {
		i.logger.Debugf("Ignoring init options: %s", m[2])
	}
	return i.session.SetBrowser(m[1])
}

// Play - replays the macro file at path, starting the driver if needed
func (i *Interface) Play(ctx context.Context, path string, timeout time.Duration) int {
	f, err := os.Open(path)
	if err != nil {
		i.mu.Lock()
		defer i.mu.Unlock()
		return i.abort(path, fmt.Errorf("failed to open macro: %w", err))
	}
	defer f.Close()

	return i.PlayReader(ctx, path, f, timeout)
}

// PlayReader - replays macro text read from r; timeout <= 0 means unlimited
func (i *Interface) PlayReader(ctx context.Context, name string, r io.Reader, timeout time.Duration) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := i.session.StartDriver(ctx, false); err != nil {
		return i.abort(name, err)
	}

	err := i.session.ExecuteReader(ctx, name, r)
	return i.finish(name, err)
}

// abort records a failure that happened before any macro line ran
func (i *Interface) abort(name string, err error) int {
	state := i.session.RunState()
	state.Begin(i.now())
	state.AddError(i.now(), err)
	return i.finish(name, err)
}

func (i *Interface) finish(name string, err error) int {
	code := entities.ReturnCode(err)
	state := i.session.RunState()

	report := entities.RunReport{
		RunID:      state.RunID(),
		Script:     name,
		StartedAt:  state.StartedAt(),
		FinishedAt: i.now(),
		ReturnCode: code,
		Errors:     []entities.RunError{},
		Extracts:   state.Extracts(),
		Builtins:   i.session.Variables().Builtins(),
	}
	// the error log spans runs until the next reset; the report covers this run only
	for _, e := range state.Errors() {
		if e.RunID == report.RunID {
			report.Errors = append(report.Errors, e)
		}
	}
	if report.Extracts == nil {
		report.Extracts = []string{}
	}
	i.lastReport = &report

	fields := logrus.Fields{"run_id": report.RunID, "macro": name, "return_code": code}
	if err != nil {
		i.logger.WithFields(fields).Errorf("Macro failed: %v", err)
	} else {
		i.logger.WithFields(fields).Info("Macro finished")
	}

	if i.store != nil {
		if serr := i.store.SaveReport(report); serr != nil {
			i.logger.Warnf("Failed to save run report: %v", serr)
		}
	}
	return code
}

// Set - sets a user variable for the next Play
func (i *Interface) Set(name, value string) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.session.SetUserVariables(map[string]string{name: value})
	return entities.ReturnOK
}

// Display - logs message; there is no browser panel to show it in
func (i *Interface) Display(message string) int {
	i.logger.Infof("Display: %s", message)
	return entities.ReturnOK
}

// Exit - closes the browser and clears the session
func (i *Interface) Exit() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.session.Reset(); err != nil {
		i.logger.Warnf("Failed to close browser: %v", err)
	}
	i.lastReport = nil
	return entities.ReturnOK
}

// GetLastError - returns the error message at index; negative indexes count from the end
func (i *Interface) GetLastError(index int) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	errs := i.session.Errors()
	idx, ok := normalizeIndex(index, len(errs))
	if !ok {
		return "", false
	}
	return errs[idx].Message, true
}

// GetLastExtract - returns the extracted value at index; negative indexes count from the end
func (i *Interface) GetLastExtract(index int) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	extracts := i.session.Extracts()
	idx, ok := normalizeIndex(index, len(extracts))
	if !ok {
		return "", false
	}
	return extracts[idx], true
}

// LastReport - returns the report of the last Play in this process
func (i *Interface) LastReport() (entities.RunReport, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.lastReport == nil {
		return entities.RunReport{}, false
	}
	return *i.lastReport, true
}

// TakeBrowserScreenshot - not supported
func (i *Interface) TakeBrowserScreenshot(path, imageType string) error {
	return fmt.Errorf("%w: browser screenshots", entities.ErrNotImplemented)
}

// GetLastPerformance - not supported
func (i *Interface) GetLastPerformance(index int) error {
	return fmt.Errorf("%w: performance data", entities.ErrNotImplemented)
}

func normalizeIndex(index, length int) (int, bool) {
	if index < 0 {
		index += length
	}
	if index < 0 || index >= length {
		return 0, false
	}
	return index, true
}
