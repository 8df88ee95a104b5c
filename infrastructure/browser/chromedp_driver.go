package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"seleniumacros/domain/entities"
	"seleniumacros/domain/interfaces"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// chromedpSelectOption is selectOptionScript bound to this for Runtime.callFunctionOn
const chromedpSelectOption = `function(additive) { return (` + selectOptionScript + `)(this, additive); }`

type chromedpDriver struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	logger      *logrus.Logger

	mu      sync.Mutex
	control bool
}

// NewChromedpDriver - launches Chrome over the DevTools protocol
func NewChromedpDriver(opts Options, browser entities.Browser, logger *logrus.Logger) (interfaces.Driver, error) {
	if browser != entities.BrowserChrome {
		return nil, fmt.Errorf("%w: chromedp backend only drives cr, got %s", entities.ErrUnsupportedCapability, browser)
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1280, 720),
	)
	if binary := findChromeBinary(opts.BinaryPath); binary != "" {
		logger.Infof("Using Chrome binary at: %s", binary)
		allocOpts = append(allocOpts, chromedp.ExecPath(binary))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Debugf))

	// the first Run starts the browser
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	return &chromedpDriver{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc, logger: logger}, nil
}

func (d *chromedpDriver) run(actions ...chromedp.Action) error {
	return chromedp.Run(d.ctx, actions...)
}

// Navigate - navigates the tab to url
func (d *chromedpDriver) Navigate(ctx context.Context, url string) error {
	d.logger.Infof("Navigating to: %s", url)
	if err := d.run(chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// ResizeViewport - overrides the device metrics of the tab
func (d *chromedpDriver) ResizeViewport(ctx context.Context, width, height int) error {
	return d.run(chromedp.EmulateViewport(int64(width), int64(height)))
}

// FindByID - finds the element with the id
func (d *chromedpDriver) FindByID(ctx context.Context, id string) (interfaces.Element, error) {
	var nodes []*cdp.Node
	err := d.run(chromedp.Nodes(fmt.Sprintf(`[id="%s"]`, cssValueEscaper.Replace(id)), &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("failed to find id %q: %w", id, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: id %q", entities.ErrElementNotFound, id)
	}
	return &chromedpElement{driver: d, node: nodes[0]}, nil
}

// QueryAll - finds elements matching selector below scope
func (d *chromedpDriver) QueryAll(ctx context.Context, selector string, scope interfaces.Element) ([]interfaces.Element, error) {
	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if scope != nil {
		el, ok := scope.(*chromedpElement)
		if !ok {
			return nil, fmt.Errorf("scope element %T does not belong to the chromedp driver", scope)
		}
		opts = append(opts, chromedp.FromNode(el.node))
	}

	var nodes []*cdp.Node
	if err := d.run(chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}

	elements := make([]interfaces.Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, &chromedpElement{driver: d, node: n})
	}
	return elements, nil
}

// KeyDown - dispatches a raw key down for the modifier
func (d *chromedpDriver) KeyDown(ctx context.Context, key interfaces.Key) error {
	if key != interfaces.KeyControl {
		return fmt.Errorf("%w: key %q", entities.ErrInvalidArgument, key)
	}
	d.mu.Lock()
	d.control = true
	d.mu.Unlock()
	return d.run(input.DispatchKeyEvent(input.KeyRawDown).WithKey("Control").WithCode("ControlLeft").WithModifiers(input.ModifierCtrl))
}

// KeyUp - dispatches a key up for the modifier
func (d *chromedpDriver) KeyUp(ctx context.Context, key interfaces.Key) error {
	if key != interfaces.KeyControl {
		return fmt.Errorf("%w: key %q", entities.ErrInvalidArgument, key)
	}
	d.mu.Lock()
	d.control = false
	d.mu.Unlock()
	return d.run(input.DispatchKeyEvent(input.KeyUp).WithKey("Control").WithCode("ControlLeft"))
}

// Title - returns the document title
func (d *chromedpDriver) Title(ctx context.Context) (string, error) {
	var title string
	err := d.run(chromedp.Title(&title))
	return title, err
}

// Close - closes the tab and kills the browser process
func (d *chromedpDriver) Close() error {
	err := chromedp.Cancel(d.ctx)
	d.cancelTab()
	d.cancelAlloc()
	if err != nil && !strings.Contains(err.Error(), "canceled") {
		return fmt.Errorf("failed to close chrome: %w", err)
	}
	return nil
}

func (d *chromedpDriver) controlHeld() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.control
}

type chromedpElement struct {
	driver *chromedpDriver
	node   *cdp.Node
}

func (e *chromedpElement) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e *chromedpElement) Click(ctx context.Context) error {
	additive := e.driver.controlHeld()
	if strings.EqualFold(e.node.LocalName, "option") {
		return e.driver.run(chromedp.ActionFunc(func(ctx context.Context) error {
			obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
			if err != nil {
				return err
			}
			defer runtime.ReleaseObject(obj.ObjectID).Do(ctx)

			return chromedp.CallFunctionOn(chromedpSelectOption, nil,
				func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
					return p.WithObjectID(obj.ObjectID)
				},
				additive,
			).Do(ctx)
		}))
	}

	var opts []chromedp.MouseOption
	if additive {
		opts = append(opts, chromedp.ButtonModifiers(input.ModifierCtrl))
	}
	return e.driver.run(
		chromedp.ScrollIntoView(e.ids(), chromedp.ByNodeID),
		chromedp.MouseClickNode(e.node, opts...),
	)
}

func (e *chromedpElement) Clear(ctx context.Context) error {
	return e.driver.run(chromedp.Clear(e.ids(), chromedp.ByNodeID))
}

func (e *chromedpElement) SendKeys(ctx context.Context, text string) error {
	if strings.EqualFold(e.node.AttributeValue("type"), "file") {
		return e.driver.run(chromedp.SetUploadFiles(e.ids(), []string{text}, chromedp.ByNodeID))
	}
	return e.driver.run(chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID))
}

func (e *chromedpElement) IsSelected(ctx context.Context) (bool, error) {
	property := "checked"
	if strings.EqualFold(e.node.LocalName, "option") {
		property = "selected"
	}
	var selected bool
	err := e.driver.run(chromedp.JavascriptAttribute(e.ids(), property, &selected, chromedp.ByNodeID))
	return selected, err
}

func (e *chromedpElement) IsMultiple(ctx context.Context) (bool, error) {
	var multiple bool
	err := e.driver.run(chromedp.JavascriptAttribute(e.ids(), "multiple", &multiple, chromedp.ByNodeID))
	return multiple, err
}

func (e *chromedpElement) GetAttribute(ctx context.Context, name string) (string, error) {
	var (
		value string
		ok    bool
	)
	if err := e.driver.run(chromedp.AttributeValue(e.ids(), name, &value, &ok, chromedp.ByNodeID)); err != nil {
		return "", err
	}
	return value, nil
}

func (e *chromedpElement) TagName(ctx context.Context) (string, error) {
	return strings.ToLower(e.node.LocalName), nil
}

func (e *chromedpElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.driver.run(chromedp.Text(e.ids(), &text, chromedp.ByNodeID))
	return text, err
}

type chromedpFactory struct {
	opts   Options
	logger *logrus.Logger
}

func (f *chromedpFactory) Start(ctx context.Context, browser entities.Browser) (interfaces.Driver, error) {
	return NewChromedpDriver(f.opts, browser, f.logger)
}
