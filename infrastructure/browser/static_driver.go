package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"seleniumacros/domain/entities"
	"seleniumacros/domain/interfaces"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// StaticDriver replays macros against a parsed HTML document without a browser.
// Clicks toggle checkbox/radio/option state so form interactions can be inspected.
type StaticDriver struct {
	client *http.Client
	logger *logrus.Logger

	mu       sync.Mutex
	doc      *goquery.Document
	url      string
	width    int
	height   int
	modifier bool
	events   []string
}

// NewStaticDriver - creates a static driver fetching pages with client
func NewStaticDriver(client *http.Client, logger *logrus.Logger) *StaticDriver {
	if client == nil {
		client = http.DefaultClient
	}
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	return &StaticDriver{client: client, logger: logger, doc: doc, url: "about:blank"}
}

// LoadHTML - replaces the current document
func (d *StaticDriver) LoadHTML(markup string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}
	d.mu.Lock()
	d.doc = doc
	d.mu.Unlock()
	return nil
}

// Navigate - fetches url (http(s) or file://) and parses it
func (d *StaticDriver) Navigate(ctx context.Context, url string) error {
	body, err := d.fetch(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", url, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc = doc
	d.url = url
	d.events = append(d.events, "navigate "+url)
	return nil
}

func (d *StaticDriver) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	if path, ok := strings.CutPrefix(url, "file://"); ok {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", url, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: bad url %q: %v", entities.ErrInvalidArgument, url, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// ResizeViewport - records the requested viewport
func (d *StaticDriver) ResizeViewport(ctx context.Context, width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.width, d.height = width, height
	d.events = append(d.events, fmt.Sprintf("resize %dx%d", width, height))
	return nil
}

// Viewport - returns the last requested viewport size
func (d *StaticDriver) Viewport() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

// URL - returns the current document URL
func (d *StaticDriver) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

// Events - returns the recorded navigation, resize and click log
func (d *StaticDriver) Events() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

// Document - exposes the parsed document for inspection
func (d *StaticDriver) Document() *goquery.Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc
}

// FindByID - finds the first element carrying the id
func (d *StaticDriver) FindByID(ctx context.Context, id string) (interfaces.Element, error) {
	d.mu.Lock()
	sel := d.doc.FindMatcher(idMatcher(id)).First()
	d.mu.Unlock()

	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: id %q", entities.ErrElementNotFound, id)
	}
	return &staticElement{driver: d, sel: sel}, nil
}

// QueryAll - matches selector in document order, optionally inside scope
func (d *StaticDriver) QueryAll(ctx context.Context, selector string, scope interfaces.Element) ([]interfaces.Element, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: bad selector %q: %v", entities.ErrInvalidArgument, selector, err)
	}

	d.mu.Lock()
	root := d.doc.Selection
	d.mu.Unlock()
	if scope != nil {
		el, ok := scope.(*staticElement)
		if !ok {
			return nil, fmt.Errorf("scope element %T does not belong to the static driver", scope)
		}
		root = el.sel
	}

	found := root.FindMatcher(matcher)
	elements := make([]interfaces.Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, &staticElement{driver: d, sel: s})
	})
	return elements, nil
}

// KeyDown - holds the modifier used for multi-select clicks
func (d *StaticDriver) KeyDown(ctx context.Context, key interfaces.Key) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modifier = true
	d.events = append(d.events, "keydown "+string(key))
	return nil
}

// KeyUp - releases the modifier
func (d *StaticDriver) KeyUp(ctx context.Context, key interfaces.Key) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modifier = false
	d.events = append(d.events, "keyup "+string(key))
	return nil
}

// Title - returns the document title
func (d *StaticDriver) Title(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return strings.TrimSpace(d.doc.Find("title").First().Text()), nil
}

// Close - nothing to release
func (d *StaticDriver) Close() error {
	return nil
}

func idMatcher(id string) cascadia.Selector {
	return cascadia.Selector(func(n *html.Node) bool {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return true
			}
		}
		return false
	})
}

type staticElement struct {
	driver *StaticDriver
	sel    *goquery.Selection
}

func (e *staticElement) describe() string {
	desc := goquery.NodeName(e.sel)
	if id, ok := e.sel.Attr("id"); ok {
		return desc + "#" + id
	}
	if name, ok := e.sel.Attr("name"); ok {
		return desc + "[name=" + name + "]"
	}
	if value, ok := e.sel.Attr("value"); ok {
		return desc + "[value=" + value + "]"
	}
	return desc
}

// Click - records the click and applies form state changes
func (e *staticElement) Click(ctx context.Context) error {
	d := e.driver
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, "click "+e.describe())

	switch goquery.NodeName(e.sel) {
	case "input":
		switch strings.ToLower(e.sel.AttrOr("type", "text")) {
		case "checkbox":
			toggleAttr(e.sel, "checked")
		case "radio":
			if name, ok := e.sel.Attr("name"); ok {
				d.doc.Find("input[type=radio]").FilterFunction(func(_ int, s *goquery.Selection) bool {
					return s.AttrOr("name", "") == name
				}).RemoveAttr("checked")
			}
			e.sel.SetAttr("checked", "checked")
		}
	case "option":
		sel := e.sel.ParentsFiltered("select").First()
		_, multiple := sel.Attr("multiple")
		if multiple && d.modifier {
			toggleAttr(e.sel, "selected")
			return nil
		}
		sel.Find("option").RemoveAttr("selected")
		e.sel.SetAttr("selected", "selected")
	}
	return nil
}

// Clear - empties the value attribute
func (e *staticElement) Clear(ctx context.Context) error {
	e.driver.mu.Lock()
	defer e.driver.mu.Unlock()
	e.sel.SetAttr("value", "")
	return nil
}

// SendKeys - appends text to the value attribute
func (e *staticElement) SendKeys(ctx context.Context, text string) error {
	e.driver.mu.Lock()
	defer e.driver.mu.Unlock()
	e.sel.SetAttr("value", e.sel.AttrOr("value", "")+text)
	e.driver.events = append(e.driver.events, fmt.Sprintf("type %s %q", e.describe(), text))
	return nil
}

// IsSelected - reports checked or selected state
func (e *staticElement) IsSelected(ctx context.Context) (bool, error) {
	e.driver.mu.Lock()
	defer e.driver.mu.Unlock()
	_, checked := e.sel.Attr("checked")
	_, selected := e.sel.Attr("selected")
	return checked || selected, nil
}

// IsMultiple - reports whether the multiple attribute is present
func (e *staticElement) IsMultiple(ctx context.Context) (bool, error) {
	e.driver.mu.Lock()
	defer e.driver.mu.Unlock()
	_, ok := e.sel.Attr("multiple")
	return ok, nil
}

// GetAttribute - returns the attribute or ""
func (e *staticElement) GetAttribute(ctx context.Context, name string) (string, error) {
	e.driver.mu.Lock()
	defer e.driver.mu.Unlock()
	return e.sel.AttrOr(name, ""), nil
}

// TagName - returns the lower-cased node name
func (e *staticElement) TagName(ctx context.Context) (string, error) {
	return goquery.NodeName(e.sel), nil
}

// Text - returns the text content
func (e *staticElement) Text(ctx context.Context) (string, error) {
	e.driver.mu.Lock()
	defer e.driver.mu.Unlock()
	return e.sel.Text(), nil
}

func toggleAttr(sel *goquery.Selection, name string) {
	if _, ok := sel.Attr(name); ok {
		sel.RemoveAttr(name)
		return
	}
	sel.SetAttr(name, name)
}

type staticFactory struct {
	client *http.Client
	logger *logrus.Logger
}

// Start - returns a fresh static driver; the browser code only matters for logging
func (f *staticFactory) Start(ctx context.Context, browser entities.Browser) (interfaces.Driver, error) {
	f.logger.Infof("Using static document driver (browser %s emulated)", browser)
	return NewStaticDriver(f.client, f.logger), nil
}

var _ interfaces.Driver = (*StaticDriver)(nil)
