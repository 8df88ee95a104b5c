package interfaces

import (
	"context"

	"seleniumacros/domain/entities"
)

// Key names a keyboard modifier the driver can hold down
type Key string

const (
	// KeyControl is held while selecting several options of a multi-select
	KeyControl Key = "control"
)

// Element is a single node of the live document
type Element interface {
	// Click clicks on the element
	Click(ctx context.Context) error

	// Clear empties an input or textarea
	Clear(ctx context.Context) error

	// SendKeys types text into the element
	SendKeys(ctx context.Context, text string) error

	// IsSelected reports the checked/selected state of checkboxes, radios and options
	IsSelected(ctx context.Context) (bool, error)

	// IsMultiple reports whether a select accepts several options
	IsMultiple(ctx context.Context) (bool, error)

	// GetAttribute returns the attribute value, or "" when it is absent
	GetAttribute(ctx context.Context, name string) (string, error)

	// TagName returns the lower-cased element name
	TagName(ctx context.Context) (string, error)

	// Text returns the rendered text of the element
	Text(ctx context.Context) (string, error)
}

// Driver defines the automation capabilities the macro interpreter consumes
type Driver interface {
	// Navigate navigates to a URL
	Navigate(ctx context.Context, url string) error

	// ResizeViewport resizes the browser window/viewport
	ResizeViewport(ctx context.Context, width, height int) error

	// FindByID resolves an element by id; entities.ErrElementNotFound when absent
	FindByID(ctx context.Context, id string) (Element, error)

	// QueryAll returns the elements matching a CSS selector in document order.
	// A nil scope searches the whole document.
	QueryAll(ctx context.Context, selector string, scope Element) ([]Element, error)

	// KeyDown presses and holds a modifier key
	KeyDown(ctx context.Context, key Key) error

	// KeyUp releases a modifier key
	KeyUp(ctx context.Context, key Key) error

	// Title returns the current page title
	Title(ctx context.Context) (string, error)

	// Close closes the browser session
	Close() error
}

// DriverFactory starts automation sessions for a browser code
type DriverFactory interface {
	Start(ctx context.Context, browser entities.Browser) (Driver, error)
}
