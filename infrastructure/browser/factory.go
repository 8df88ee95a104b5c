package browser

import (
	"fmt"
	"net/http"
	"strings"

	"seleniumacros/domain/entities"
	"seleniumacros/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Driver backends
const (
	BackendSelenium   = "selenium"
	BackendPlaywright = "playwright"
	BackendChromedp   = "chromedp"
	BackendStatic     = "static"
)

// DefaultSeleniumPort is the port the local chromedriver/geckodriver service listens on
const DefaultSeleniumPort = 9515

var cssValueEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Options configures how drivers are started
type Options struct {
	Backend    string
	DriverPath string
	BinaryPath string
	Port       int
	Headless   bool
	RemoteURL  string
	HTTPClient *http.Client // static backend only
}

// NewFactory - returns the driver factory for opts.Backend
func NewFactory(opts Options, logger *logrus.Logger) (interfaces.DriverFactory, error) {
	if opts.Port == 0 {
		opts.Port = DefaultSeleniumPort
	}

	switch strings.ToLower(opts.Backend) {
	case "", BackendSelenium:
		return &seleniumFactory{opts: opts, logger: logger}, nil
	case BackendPlaywright:
		return &playwrightFactory{opts: opts, logger: logger}, nil
	case BackendChromedp:
		return &chromedpFactory{opts: opts, logger: logger}, nil
	case BackendStatic:
		return &staticFactory{client: opts.HTTPClient, logger: logger}, nil
	}
	return nil, fmt.Errorf("%w: unknown driver backend %q", entities.ErrInvalidArgument, opts.Backend)
}
