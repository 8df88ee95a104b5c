package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"seleniumacros/domain/entities"
	"seleniumacros/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
)

// SeleniumDriver drives a WebDriver session through tebeka/selenium
type SeleniumDriver struct {
	wd      selenium.WebDriver
	service *selenium.Service
	logger  *logrus.Logger
}

// findDriverExecutable - finds a WebDriver executable (chromedriver, geckodriver)
func findDriverExecutable(configured, name string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
	}

	commonPaths := []string{
		filepath.Join("/usr/local/bin", name),
		filepath.Join("/usr/bin", name),
		filepath.Join("/opt/homebrew/bin", name),
		filepath.Join(os.Getenv("HOME"), "bin", name),
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%s not found. Please install it or set BROWSER_DRIVER_PATH environment variable", name)
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// NewSeleniumDriver - starts a WebDriver session for browser
func NewSeleniumDriver(opts Options, browser entities.Browser, logger *logrus.Logger) (*SeleniumDriver, error) {
	caps := selenium.Capabilities{"browserName": browser.WebDriverName()}

	var service *selenium.Service
	remoteURL := opts.RemoteURL

	switch browser {
	case entities.BrowserChrome:
		chromeCaps := chrome.Capabilities{
			Args: []string{
				"--disable-blink-features=AutomationControlled",
				"--disable-dev-shm-usage",
				"--no-sandbox",
			},
		}
		if opts.Headless {
			chromeCaps.Args = append(chromeCaps.Args, "--headless=new")
		}
		if binary := findChromeBinary(opts.BinaryPath); binary != "" {
			logger.Infof("Using Chrome binary at: %s", binary)
			chromeCaps.Path = binary
		}
		caps.AddChrome(chromeCaps)

		if remoteURL == "" {
			driverPath, err := findDriverExecutable(opts.DriverPath, "chromedriver")
			if err != nil {
				return nil, fmt.Errorf("failed to find chromedriver: %w", err)
			}
			logger.Infof("Using ChromeDriver at: %s", driverPath)
			service, err = selenium.NewChromeDriverService(driverPath, opts.Port)
			if err != nil {
				return nil, fmt.Errorf("failed to start chromedriver: %w", err)
			}
			remoteURL = fmt.Sprintf("http://localhost:%d/wd/hub", opts.Port)
		}

	case entities.BrowserFirefox:
		firefoxCaps := firefox.Capabilities{}
		if opts.Headless {
			firefoxCaps.Args = append(firefoxCaps.Args, "-headless")
		}
		if opts.BinaryPath != "" {
			firefoxCaps.Binary = opts.BinaryPath
		}
		caps.AddFirefox(firefoxCaps)

		if remoteURL == "" {
			driverPath, err := findDriverExecutable(opts.DriverPath, "geckodriver")
			if err != nil {
				return nil, fmt.Errorf("failed to find geckodriver: %w", err)
			}
			logger.Infof("Using GeckoDriver at: %s", driverPath)
			service, err = selenium.NewGeckoDriverService(driverPath, opts.Port)
			if err != nil {
				return nil, fmt.Errorf("failed to start geckodriver: %w", err)
			}
			remoteURL = fmt.Sprintf("http://localhost:%d", opts.Port)
		}

	default:
		// ie and op are only reachable through a Selenium server or grid
		if remoteURL == "" {
			return nil, fmt.Errorf("%w: browser %s needs SELENIUM_REMOTE_URL", entities.ErrUnsupportedCapability, browser)
		}
	}

	wd, err := selenium.NewRemote(caps, remoteURL)
	if err != nil {
		if service != nil {
			service.Stop()
		}
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set CHROME_BINARY_PATH environment variable. Error: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	return &SeleniumDriver{wd: wd, service: service, logger: logger}, nil
}

// Navigate - navigates browser to specified URL
func (s *SeleniumDriver) Navigate(ctx context.Context, url string) error {
	s.logger.Infof("Navigating to: %s", url)
	if err := s.wd.Get(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// ResizeViewport - resizes the current window
func (s *SeleniumDriver) ResizeViewport(ctx context.Context, width, height int) error {
	if err := s.wd.ResizeWindow("", width, height); err != nil {
		return fmt.Errorf("failed to resize window: %w", err)
	}
	return nil
}

// FindByID - finds the element with the given id
func (s *SeleniumDriver) FindByID(ctx context.Context, id string) (interfaces.Element, error) {
	found, err := s.wd.FindElements(selenium.ByID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find id %q: %w", id, err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: id %q", entities.ErrElementNotFound, id)
	}
	return &seleniumElement{el: found[0]}, nil
}

// QueryAll - finds every element matching selector, inside scope when given
func (s *SeleniumDriver) QueryAll(ctx context.Context, selector string, scope interfaces.Element) ([]interfaces.Element, error) {
	var (
		found []selenium.WebElement
		err   error
	)
	if scope != nil {
		el, ok := scope.(*seleniumElement)
		if !ok {
			return nil, fmt.Errorf("scope element %T does not belong to the selenium driver", scope)
		}
		found, err = el.el.FindElements(selenium.ByCSSSelector, selector)
	} else {
		found, err = s.wd.FindElements(selenium.ByCSSSelector, selector)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}

	elements := make([]interfaces.Element, 0, len(found))
	for _, el := range found {
		elements = append(elements, &seleniumElement{el: el})
	}
	return elements, nil
}

// KeyDown - presses a modifier key
func (s *SeleniumDriver) KeyDown(ctx context.Context, key interfaces.Key) error {
	code, err := seleniumKey(key)
	if err != nil {
		return err
	}
	return s.wd.KeyDown(code)
}

// KeyUp - releases a modifier key
func (s *SeleniumDriver) KeyUp(ctx context.Context, key interfaces.Key) error {
	code, err := seleniumKey(key)
	if err != nil {
		return err
	}
	return s.wd.KeyUp(code)
}

// Title - returns current page title
func (s *SeleniumDriver) Title(ctx context.Context) (string, error) {
	return s.wd.Title()
}

// Close - closes browser and stops the driver service
func (s *SeleniumDriver) Close() error {
	if s.wd != nil {
		if err := s.wd.Quit(); err != nil {
			s.logger.Warnf("Failed to quit webdriver: %v", err)
		}
	}
	if s.service != nil {
		return s.service.Stop()
	}
	return nil
}

func seleniumKey(key interfaces.Key) (string, error) {
	switch key {
	case interfaces.KeyControl:
		return selenium.ControlKey, nil
	}
	return "", fmt.Errorf("%w: key %q", entities.ErrInvalidArgument, key)
}

type seleniumElement struct {
	el selenium.WebElement
}

func (e *seleniumElement) Click(ctx context.Context) error {
	return e.el.Click()
}

func (e *seleniumElement) Clear(ctx context.Context) error {
	return e.el.Clear()
}

func (e *seleniumElement) SendKeys(ctx context.Context, text string) error {
	return e.el.SendKeys(text)
}

func (e *seleniumElement) IsSelected(ctx context.Context) (bool, error) {
	return e.el.IsSelected()
}

func (e *seleniumElement) IsMultiple(ctx context.Context) (bool, error) {
	value, err := e.GetAttribute(ctx, "multiple")
	if err != nil {
		return false, err
	}
	return value != "" && !strings.EqualFold(value, "false"), nil
}

func (e *seleniumElement) GetAttribute(ctx context.Context, name string) (string, error) {
	value, err := e.el.GetAttribute(name)
	if err != nil {
		// the WebDriver returns null for absent attributes
		if strings.Contains(err.Error(), "nil return value") {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (e *seleniumElement) TagName(ctx context.Context) (string, error) {
	name, err := e.el.TagName()
	return strings.ToLower(name), err
}

func (e *seleniumElement) Text(ctx context.Context) (string, error) {
	return e.el.Text()
}

type seleniumFactory struct {
	opts   Options
	logger *logrus.Logger
}

func (f *seleniumFactory) Start(ctx context.Context, browser entities.Browser) (interfaces.Driver, error) {
	return NewSeleniumDriver(f.opts, browser, f.logger)
}

var _ interfaces.Driver = (*SeleniumDriver)(nil)
