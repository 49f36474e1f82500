// File: internal/browser/browsertest/fake.go
// In-memory Page fake used by the interaction and navigation tests.
package browsertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xkilldash9x/einfill/internal/browser"
)

// Call is one recorded primitive invocation.
type Call struct {
	Op       string
	Selector string
	Value    string
}

// FakePage records every call and returns scripted failures. The zero
// value succeeds at everything.
type FakePage struct {
	mu    sync.Mutex
	calls []Call

	// Errs returns a permanent error for an "op:selector" key.
	Errs map[string]error
	// FailFirst fails the first N calls for an "op:selector" key, then
	// succeeds.
	FailFirst map[string]int
	// Options holds dropdown option texts per selector. SelectByText
	// consults it when present.
	Options map[string][]string
	// RadioUncheckable marks radio ids whose scripted check reports false.
	RadioUncheckable map[string]bool

	ScreenshotData []byte
	ScreenshotErr  error
	PDFData        []byte
	PDFErr         error
}

func NewFakePage() *FakePage {
	return &FakePage{
		Errs:             map[string]error{},
		FailFirst:        map[string]int{},
		Options:          map[string][]string{},
		RadioUncheckable: map[string]bool{},
	}
}

var _ browser.Page = (*FakePage)(nil)

func (f *FakePage) record(op, selector, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Selector: selector, Value: value})
	key := op + ":" + selector
	if n, ok := f.FailFirst[key]; ok && n > 0 {
		f.FailFirst[key] = n - 1
		return fmt.Errorf("injected failure for %s", key)
	}
	if err, ok := f.Errs[key]; ok {
		return err
	}
	return nil
}

// Calls returns a snapshot of everything recorded so far.
func (f *FakePage) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// SelectorsFor returns the selectors recorded for one op, in order.
func (f *FakePage) SelectorsFor(op string) []string {
	var out []string
	for _, c := range f.Calls() {
		if c.Op == op {
			out = append(out, c.Selector)
		}
	}
	return out
}

// Count returns how many times op was invoked against selector.
func (f *FakePage) Count(op, selector string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Op == op && c.Selector == selector {
			n++
		}
	}
	return n
}

// ValueFor returns the last value recorded for op against selector.
func (f *FakePage) ValueFor(op, selector string) (string, bool) {
	var value string
	found := false
	for _, c := range f.Calls() {
		if c.Op == op && c.Selector == selector {
			value = c.Value
			found = true
		}
	}
	return value, found
}

func (f *FakePage) Navigate(ctx context.Context, url string) error {
	return f.record("navigate", url, "")
}

func (f *FakePage) WaitVisible(ctx context.Context, selector string) error {
	return f.record("wait", selector, "")
}

func (f *FakePage) ScrollIntoView(ctx context.Context, selector string) error {
	return f.record("scroll", selector, "")
}

func (f *FakePage) Click(ctx context.Context, selector string) error {
	return f.record("click", selector, "")
}

func (f *FakePage) ClickScript(ctx context.Context, selector string) error {
	return f.record("click_script", selector, "")
}

func (f *FakePage) ClickPointer(ctx context.Context, selector string) error {
	return f.record("click_pointer", selector, "")
}

func (f *FakePage) Clear(ctx context.Context, selector string) error {
	return f.record("clear", selector, "")
}

func (f *FakePage) Type(ctx context.Context, selector, text string) error {
	return f.record("type", selector, text)
}

func (f *FakePage) SetRadioChecked(ctx context.Context, id string) (bool, error) {
	err := f.record("radio", id, "")
	if err != nil {
		return false, err
	}
	if f.RadioUncheckable[id] {
		return false, nil
	}
	return true, nil
}

func (f *FakePage) SelectByValue(ctx context.Context, selector, value string) error {
	return f.record("select_value", selector, value)
}

func (f *FakePage) SelectByText(ctx context.Context, selector, text string) error {
	if err := f.record("select_text", selector, text); err != nil {
		return err
	}
	if opts, ok := f.Options[selector]; ok {
		for _, o := range opts {
			if o == text {
				return nil
			}
		}
		return fmt.Errorf("no option %q in %s", text, selector)
	}
	return nil
}

func (f *FakePage) OptionTexts(ctx context.Context, selector string) ([]string, error) {
	if err := f.record("options", selector, ""); err != nil {
		return nil, err
	}
	return f.Options[selector], nil
}

func (f *FakePage) Screenshot(ctx context.Context) ([]byte, error) {
	if err := f.record("screenshot", "", ""); err != nil {
		return nil, err
	}
	if f.ScreenshotErr != nil {
		return nil, f.ScreenshotErr
	}
	if f.ScreenshotData != nil {
		return f.ScreenshotData, nil
	}
	return []byte("png-bytes"), nil
}

func (f *FakePage) PrintToPDF(ctx context.Context) ([]byte, error) {
	if err := f.record("pdf", "", ""); err != nil {
		return nil, err
	}
	if f.PDFErr != nil {
		return nil, f.PDFErr
	}
	if f.PDFData != nil {
		return f.PDFData, nil
	}
	return []byte("%PDF-1.4 fake"), nil
}

func (f *FakePage) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return f.record("sleep", d.String(), "")
}
