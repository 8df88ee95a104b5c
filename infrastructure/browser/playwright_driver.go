package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"seleniumacros/domain/entities"
	"seleniumacros/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// selectOptionScript selects an <option>; additive toggles it inside a multiple select
const selectOptionScript = `(el, additive) => {
	const select = el.closest('select');
	if (!select) { el.selected = true; return; }
	if (additive && select.multiple) {
		el.selected = !el.selected;
	} else {
		for (const o of select.options) o.selected = false;
		el.selected = true;
	}
	select.dispatchEvent(new Event('input', { bubbles: true }));
	select.dispatchEvent(new Event('change', { bubbles: true }));
}`

type playwrightDriver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	logger  *logrus.Logger

	mu      sync.Mutex
	control bool
}

// NewPlaywrightDriver - launches a Chromium or Firefox page through playwright
func NewPlaywrightDriver(opts Options, browser entities.Browser, logger *logrus.Logger) (interfaces.Driver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch browser {
	case entities.BrowserChrome:
		browserType = pw.Chromium
	case entities.BrowserFirefox:
		browserType = pw.Firefox
	default:
		pw.Stop()
		return nil, fmt.Errorf("%w: playwright backend does not drive browser %s", entities.ErrUnsupportedCapability, browser)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.BinaryPath != "" {
		launch.ExecutablePath = playwright.String(opts.BinaryPath)
	}
	if browser == entities.BrowserChrome {
		launch.Args = []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		}
	}

	b, err := browserType.Launch(launch)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	logger.Infof("Playwright %s page ready", browser.WebDriverName())
	return &playwrightDriver{pw: pw, browser: b, context: bctx, page: page, logger: logger}, nil
}

// Navigate - navigates to the specified URL
func (d *playwrightDriver) Navigate(ctx context.Context, url string) error {
	d.logger.Infof("Navigating to: %s", url)
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// ResizeViewport - resizes the page viewport
func (d *playwrightDriver) ResizeViewport(ctx context.Context, width, height int) error {
	return d.page.SetViewportSize(width, height)
}

// FindByID - finds the first element with the id
func (d *playwrightDriver) FindByID(ctx context.Context, id string) (interfaces.Element, error) {
	found, err := d.page.QuerySelectorAll(fmt.Sprintf(`[id="%s"]`, cssValueEscaper.Replace(id)))
	if err != nil {
		return nil, fmt.Errorf("failed to find id %q: %w", id, err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: id %q", entities.ErrElementNotFound, id)
	}
	return &playwrightElement{driver: d, handle: found[0]}, nil
}

// QueryAll - finds elements matching selector
func (d *playwrightDriver) QueryAll(ctx context.Context, selector string, scope interfaces.Element) ([]interfaces.Element, error) {
	var (
		found []playwright.ElementHandle
		err   error
	)
	if scope != nil {
		el, ok := scope.(*playwrightElement)
		if !ok {
			return nil, fmt.Errorf("scope element %T does not belong to the playwright driver", scope)
		}
		found, err = el.handle.QuerySelectorAll(selector)
	} else {
		found, err = d.page.QuerySelectorAll(selector)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}

	elements := make([]interfaces.Element, 0, len(found))
	for _, h := range found {
		elements = append(elements, &playwrightElement{driver: d, handle: h})
	}
	return elements, nil
}

// KeyDown - holds a modifier key on the page keyboard
func (d *playwrightDriver) KeyDown(ctx context.Context, key interfaces.Key) error {
	if key != interfaces.KeyControl {
		return fmt.Errorf("%w: key %q", entities.ErrInvalidArgument, key)
	}
	d.mu.Lock()
	d.control = true
	d.mu.Unlock()
	return d.page.Keyboard().Down("Control")
}

// KeyUp - releases a modifier key
func (d *playwrightDriver) KeyUp(ctx context.Context, key interfaces.Key) error {
	if key != interfaces.KeyControl {
		return fmt.Errorf("%w: key %q", entities.ErrInvalidArgument, key)
	}
	d.mu.Lock()
	d.control = false
	d.mu.Unlock()
	return d.page.Keyboard().Up("Control")
}

// Title - returns the page title
func (d *playwrightDriver) Title(ctx context.Context) (string, error) {
	return d.page.Title()
}

// Close - closes the context, the browser and the playwright driver
func (d *playwrightDriver) Close() error {
	var closeErr error

	if d.context != nil {
		if err := d.context.Close(); err != nil && !strings.Contains(err.Error(), "closed") {
			closeErr = fmt.Errorf("failed to close context: %w", err)
		}
		d.context = nil
	}

	if d.browser != nil {
		if err := d.browser.Close(); err != nil && !strings.Contains(err.Error(), "closed") {
			if closeErr != nil {
				closeErr = fmt.Errorf("%v; failed to close browser: %w", closeErr, err)
			} else {
				closeErr = fmt.Errorf("failed to close browser: %w", err)
			}
		}
		d.browser = nil
	}

	if d.pw != nil {
		if err := d.pw.Stop(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("failed to stop playwright: %w", err)
		}
		d.pw = nil
	}

	return closeErr
}

type playwrightElement struct {
	driver *playwrightDriver
	handle playwright.ElementHandle
}

func (e *playwrightElement) Click(ctx context.Context) error {
	tag, err := e.TagName(ctx)
	if err != nil {
		return err
	}
	// option elements are not clickable targets in every engine
	if tag == "option" {
		e.driver.mu.Lock()
		additive := e.driver.control
		e.driver.mu.Unlock()
		_, err := e.handle.Evaluate(selectOptionScript, additive)
		return err
	}
	return e.handle.Click()
}

func (e *playwrightElement) Clear(ctx context.Context) error {
	return e.handle.Fill("")
}

func (e *playwrightElement) SendKeys(ctx context.Context, text string) error {
	if typ, _ := e.handle.GetAttribute("type"); strings.EqualFold(typ, "file") {
		return e.handle.SetInputFiles(text)
	}
	return e.handle.Type(text)
}

func (e *playwrightElement) IsSelected(ctx context.Context) (bool, error) {
	v, err := e.handle.Evaluate(`el => !!(el.checked || el.selected)`)
	if err != nil {
		return false, err
	}
	selected, _ := v.(bool)
	return selected, nil
}

func (e *playwrightElement) IsMultiple(ctx context.Context) (bool, error) {
	v, err := e.handle.Evaluate(`el => !!el.multiple`)
	if err != nil {
		return false, err
	}
	multiple, _ := v.(bool)
	return multiple, nil
}

func (e *playwrightElement) GetAttribute(ctx context.Context, name string) (string, error) {
	return e.handle.GetAttribute(name)
}

func (e *playwrightElement) TagName(ctx context.Context) (string, error) {
	v, err := e.handle.Evaluate(`el => el.tagName.toLowerCase()`)
	if err != nil {
		return "", err
	}
	tag, _ := v.(string)
	return tag, nil
}

func (e *playwrightElement) Text(ctx context.Context) (string, error) {
	return e.handle.InnerText()
}

type playwrightFactory struct {
	opts   Options
	logger *logrus.Logger
}

func (f *playwrightFactory) Start(ctx context.Context, browser entities.Browser) (interfaces.Driver, error) {
	return NewPlaywrightDriver(f.opts, browser, f.logger)
}
