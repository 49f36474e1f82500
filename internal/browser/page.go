// File: internal/browser/page.go
// Chrome-backed implementation of the Page primitives via CDP.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/einfill/internal/config"
)

// installOnNewDocument arms a script to run before every document the tab
// loads, surviving navigations.
func installOnNewDocument(script string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := cdppage.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
		return err
	})
}

type chromePage struct {
	session     *Session
	waitTimeout time.Duration
}

var _ Page = (*chromePage)(nil)

func newChromePage(s *Session, cfg config.BrowserConfig) *chromePage {
	return &chromePage{session: s, waitTimeout: cfg.WaitTimeout}
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	return p.session.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *chromePage) WaitVisible(ctx context.Context, selector string) error {
	opCtx, cancel := context.WithTimeout(ctx, p.waitTimeout)
	defer cancel()
	err := p.session.run(opCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err != nil && opCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("timed out after %v waiting for '%s': %w", p.waitTimeout, selector, opCtx.Err())
	}
	return err
}

func (p *chromePage) ScrollIntoView(ctx context.Context, selector string) error {
	script := fmt.Sprintf(`(function(sel) {
		const el = document.querySelector(sel);
		if (!el) return false;
		el.scrollIntoView({block: 'center', inline: 'center'});
		return true;
	})(%s)`, jsonEncode(selector))

	var found bool
	if err := p.evaluate(ctx, script, &found); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("element '%s' not found for scrolling", selector)
	}
	return nil
}

func (p *chromePage) Click(ctx context.Context, selector string) error {
	opCtx, cancel := context.WithTimeout(ctx, p.waitTimeout)
	defer cancel()
	return p.session.run(opCtx, chromedp.Click(selector, chromedp.ByQuery))
}

func (p *chromePage) ClickScript(ctx context.Context, selector string) error {
	script := fmt.Sprintf(`(function(sel) {
		const el = document.querySelector(sel);
		if (!el) return false;
		el.click();
		return true;
	})(%s)`, jsonEncode(selector))

	var found bool
	if err := p.evaluate(ctx, script, &found); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("element '%s' not found for script click", selector)
	}
	return nil
}

// ClickPointer resolves the element's center and dispatches raw mouse
// events there, sidestepping both overlay interception and synthetic-click
// filtering.
func (p *chromePage) ClickPointer(ctx context.Context, selector string) error {
	script := fmt.Sprintf(`(function(sel) {
		const el = document.querySelector(sel);
		if (!el) return null;
		const rect = el.getBoundingClientRect();
		if (rect.width <= 0 || rect.height <= 0) return null;
		return {x: rect.left + rect.width / 2, y: rect.top + rect.height / 2};
	})(%s)`, jsonEncode(selector))

	var center *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := p.evaluate(ctx, script, &center); err != nil {
		return err
	}
	if center == nil {
		return fmt.Errorf("element '%s' not found or has no geometry", selector)
	}

	press := input.DispatchMouseEvent(input.MousePressed, center.X, center.Y).
		WithButton(input.Left).
		WithClickCount(1)
	release := input.DispatchMouseEvent(input.MouseReleased, center.X, center.Y).
		WithButton(input.Left).
		WithClickCount(1)

	opCtx, cancel := context.WithTimeout(ctx, p.waitTimeout)
	defer cancel()
	return p.session.run(opCtx, press, release)
}

func (p *chromePage) Clear(ctx context.Context, selector string) error {
	opCtx, cancel := context.WithTimeout(ctx, p.waitTimeout)
	defer cancel()
	return p.session.run(opCtx, chromedp.Clear(selector, chromedp.ByQuery))
}

func (p *chromePage) Type(ctx context.Context, selector, text string) error {
	opCtx, cancel := context.WithTimeout(ctx, p.waitTimeout)
	defer cancel()
	return p.session.run(opCtx, chromedp.SendKeys(selector, text, chromedp.ByQuery))
}

func (p *chromePage) SetRadioChecked(ctx context.Context, id string) (bool, error) {
	script := fmt.Sprintf(`(function(id) {
		const el = document.getElementById(id);
		if (!el) return false;
		el.checked = true;
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return el.checked === true;
	})(%s)`, jsonEncode(id))

	var checked bool
	if err := p.evaluate(ctx, script, &checked); err != nil {
		return false, err
	}
	return checked, nil
}

func (p *chromePage) SelectByValue(ctx context.Context, selector, value string) error {
	script := fmt.Sprintf(`(function(sel, value) {
		const el = document.querySelector(sel);
		if (!el) return false;
		el.value = value;
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return el.value === value;
	})(%s, %s)`, jsonEncode(selector), jsonEncode(value))

	var ok bool
	if err := p.evaluate(ctx, script, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("dropdown '%s' has no option with value '%s'", selector, value)
	}
	return nil
}

func (p *chromePage) SelectByText(ctx context.Context, selector, text string) error {
	script := fmt.Sprintf(`(function(sel, text) {
		const el = document.querySelector(sel);
		if (!el) return false;
		for (let i = 0; i < el.options.length; i++) {
			if (el.options[i].text.trim() === text) {
				el.selectedIndex = i;
				el.dispatchEvent(new Event('change', {bubbles: true}));
				return true;
			}
		}
		return false;
	})(%s, %s)`, jsonEncode(selector), jsonEncode(text))

	var ok bool
	if err := p.evaluate(ctx, script, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("dropdown '%s' has no option with text '%s'", selector, text)
	}
	return nil
}

func (p *chromePage) OptionTexts(ctx context.Context, selector string) ([]string, error) {
	script := fmt.Sprintf(`(function(sel) {
		const el = document.querySelector(sel);
		if (!el) return null;
		return Array.from(el.options).map(o => o.text.trim());
	})(%s)`, jsonEncode(selector))

	var texts []string
	if err := p.evaluate(ctx, script, &texts); err != nil {
		return nil, err
	}
	if texts == nil {
		return nil, fmt.Errorf("dropdown '%s' not found", selector)
	}
	return texts, nil
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	opCtx, cancel := context.WithTimeout(ctx, p.waitTimeout)
	defer cancel()
	if err := p.session.run(opCtx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, fmt.Errorf("screenshot capture failed: %w", err)
	}
	return buf, nil
}

// PrintToPDF renders the page as an A4 portrait PDF with backgrounds and
// zero margins, honoring the page's own CSS page size when declared.
func (p *chromePage) PrintToPDF(ctx context.Context) ([]byte, error) {
	var buf []byte
	action := chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := cdppage.PrintToPDF().
			WithPrintBackground(true).
			WithPreferCSSPageSize(true).
			WithLandscape(false).
			WithMarginTop(0).
			WithMarginBottom(0).
			WithMarginLeft(0).
			WithMarginRight(0).
			WithPaperWidth(8.27).
			WithPaperHeight(11.69).
			Do(ctx)
		if err != nil {
			return err
		}
		buf = data
		return nil
	})

	opCtx, cancel := context.WithTimeout(ctx, p.waitTimeout)
	defer cancel()
	if err := p.session.run(opCtx, action); err != nil {
		return nil, fmt.Errorf("pdf render failed: %w", err)
	}
	return buf, nil
}

func (p *chromePage) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *chromePage) evaluate(ctx context.Context, script string, out interface{}) error {
	opCtx, cancel := context.WithTimeout(ctx, p.waitTimeout)
	defer cancel()
	return p.session.run(opCtx, chromedp.Evaluate(script, out))
}

// jsonEncode safely encodes a value for injection into a JS expression.
func jsonEncode(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `""`
	}
	return string(b)
}
