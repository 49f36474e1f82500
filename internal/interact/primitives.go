// File: internal/interact/primitives.go
// Form interaction primitives layered on the page interface. Each primitive
// owns the scroll/settle/retry choreography the form needs; callers decide
// which failures abort a run.
package interact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/einfill/internal/browser"
	"github.com/xkilldash9x/einfill/internal/config"
)

// Primitives wraps a page with the interaction policy: settle after
// scrolling, retry flaky clicks, escalate through click strategies.
type Primitives struct {
	page         browser.Page
	logger       *zap.Logger
	settleDelay  time.Duration
	retryDelay   time.Duration
	clickRetries int
}

// New builds primitives from the browser configuration. ClickRetries is the
// number of retries after the first click attempt.
func New(page browser.Page, cfg config.BrowserConfig, logger *zap.Logger) *Primitives {
	retries := cfg.ClickRetries
	if retries < 0 {
		retries = 0
	}
	return &Primitives{
		page:         page,
		logger:       logger,
		settleDelay:  cfg.SettleDelay,
		retryDelay:   cfg.RetryDelay,
		clickRetries: retries,
	}
}

// Page exposes the underlying page for operations the primitives do not
// wrap, like artifact capture.
func (p *Primitives) Page() browser.Page {
	return p.page
}

// FillField waits for the input, scrolls it into view, clears it, and types
// the value. An empty value is a silent no-op so optional fields never
// disturb the page.
func (p *Primitives) FillField(ctx context.Context, selector, value string) error {
	if value == "" {
		p.logger.Debug("Skipping empty field.", zap.String("selector", selector))
		return nil
	}
	if err := p.prepare(ctx, selector); err != nil {
		return fmt.Errorf("field '%s' not ready: %w", selector, err)
	}
	if err := p.page.Clear(ctx, selector); err != nil {
		return fmt.Errorf("failed to clear field '%s': %w", selector, err)
	}
	if err := p.page.Type(ctx, selector, value); err != nil {
		return fmt.Errorf("failed to type into field '%s': %w", selector, err)
	}
	return nil
}

// ClickButton clicks with escalating strategies. Each attempt tries a
// native click, then a script click when the native one is intercepted,
// then raw pointer events at the element center. Attempts beyond the first
// wait for the page to settle between retries.
func (p *Primitives) ClickButton(ctx context.Context, selector string) error {
	var lastErr error
	for attempt := 1; attempt <= p.clickRetries+1; attempt++ {
		if attempt > 1 {
			if err := p.page.Sleep(ctx, p.retryDelay); err != nil {
				return err
			}
		}
		if err := p.prepare(ctx, selector); err != nil {
			lastErr = err
			p.logger.Debug("Button not ready, retrying.",
				zap.String("selector", selector), zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		if err := p.page.Click(ctx, selector); err == nil {
			return nil
		} else {
			lastErr = err
			p.logger.Debug("Native click failed, trying script click.",
				zap.String("selector", selector), zap.Int("attempt", attempt), zap.Error(err))
		}
		if err := p.page.ClickScript(ctx, selector); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if err := p.page.ClickPointer(ctx, selector); err == nil {
			p.logger.Debug("Pointer-event click succeeded.",
				zap.String("selector", selector), zap.Int("attempt", attempt))
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("all click strategies exhausted for '%s': %w", selector, lastErr)
}

// SelectRadio checks a radio button by element id, preferring a scripted
// check-plus-change-event and falling back to a native click.
func (p *Primitives) SelectRadio(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("radio id is empty")
	}
	checked, err := p.page.SetRadioChecked(ctx, id)
	if err == nil && checked {
		return nil
	}
	if err != nil {
		p.logger.Debug("Scripted radio check failed, falling back to click.",
			zap.String("radio_id", id), zap.Error(err))
	}

	selector := "#" + id
	if prepErr := p.prepare(ctx, selector); prepErr != nil {
		return fmt.Errorf("radio '%s' not ready: %w", id, prepErr)
	}
	if clickErr := p.page.Click(ctx, selector); clickErr != nil {
		return fmt.Errorf("failed to select radio '%s': %w", id, clickErr)
	}
	return nil
}

// SelectDropdownByValue picks a dropdown option by value attribute.
func (p *Primitives) SelectDropdownByValue(ctx context.Context, selector, value string) error {
	if err := p.prepare(ctx, selector); err != nil {
		return fmt.Errorf("dropdown '%s' not ready: %w", selector, err)
	}
	if err := p.page.SelectByValue(ctx, selector, value); err != nil {
		return fmt.Errorf("failed to select '%s' in '%s': %w", value, selector, err)
	}
	return nil
}

// SelectDropdownByText picks a dropdown option by its visible text.
func (p *Primitives) SelectDropdownByText(ctx context.Context, selector, text string) error {
	if err := p.prepare(ctx, selector); err != nil {
		return fmt.Errorf("dropdown '%s' not ready: %w", selector, err)
	}
	if err := p.page.SelectByText(ctx, selector, text); err != nil {
		return fmt.Errorf("failed to select '%s' in '%s': %w", text, selector, err)
	}
	return nil
}

// DropdownOptions lists the visible option texts a dropdown currently
// offers, after waiting for it.
func (p *Primitives) DropdownOptions(ctx context.Context, selector string) ([]string, error) {
	if err := p.page.WaitVisible(ctx, selector); err != nil {
		return nil, fmt.Errorf("dropdown '%s' not ready: %w", selector, err)
	}
	return p.page.OptionTexts(ctx, selector)
}

// prepare is the shared wait/scroll/settle sequence before any interaction.
func (p *Primitives) prepare(ctx context.Context, selector string) error {
	if err := p.page.WaitVisible(ctx, selector); err != nil {
		return err
	}
	if err := p.page.ScrollIntoView(ctx, selector); err != nil {
		return err
	}
	return p.page.Sleep(ctx, p.settleDelay)
}
