package interfaces

import "context"

// InputInjector sends OS-level input, outside the page automation driver
type InputInjector interface {
	// SendKeystrokes types text into the focused window
	SendKeystrokes(ctx context.Context, text string) error

	// ClickAt clicks at window-relative coordinates of the window with the given title
	ClickAt(ctx context.Context, window string, x, y int) error
}
