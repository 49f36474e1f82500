// File: internal/browser/interfaces.go
package browser

import (
	"context"
	"time"
)

// Page is the set of page primitives the form navigation needs. The
// production implementation drives a Chrome tab over CDP; tests substitute
// an in-memory fake.
type Page interface {
	// Navigate loads a URL and waits for the page to be ready.
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until the selector matches a visible element or
	// the wait budget expires.
	WaitVisible(ctx context.Context, selector string) error

	// ScrollIntoView centers the first match in the viewport.
	ScrollIntoView(ctx context.Context, selector string) error

	// Click performs a native click on the first match.
	Click(ctx context.Context, selector string) error

	// ClickScript clicks the first match through a JavaScript call,
	// bypassing overlay interception.
	ClickScript(ctx context.Context, selector string) error

	// ClickPointer dispatches raw pressed/released mouse events at the
	// element's center.
	ClickPointer(ctx context.Context, selector string) error

	// Clear empties a text input; Type appends keystrokes to it.
	Clear(ctx context.Context, selector string) error
	Type(ctx context.Context, selector string, text string) error

	// SetRadioChecked checks the radio via script and reports whether the
	// element was found and checked.
	SetRadioChecked(ctx context.Context, id string) (bool, error)

	// SelectByValue picks a dropdown option by its value attribute;
	// SelectByText picks it by visible text. OptionTexts lists the visible
	// texts currently offered by the dropdown.
	SelectByValue(ctx context.Context, selector, value string) error
	SelectByText(ctx context.Context, selector, text string) error
	OptionTexts(ctx context.Context, selector string) ([]string, error)

	// Screenshot captures the full page as PNG. PrintToPDF renders the page
	// to an A4 portrait PDF with backgrounds.
	Screenshot(ctx context.Context) ([]byte, error)
	PrintToPDF(ctx context.Context) ([]byte, error)

	// Sleep pauses respecting context cancellation.
	Sleep(ctx context.Context, d time.Duration) error
}
