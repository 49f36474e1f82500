// File: internal/browser/session.go
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/einfill/internal/config"
)

// dialogSuppressScript auto-accepts any alert/confirm/prompt the form
// raises so a stray dialog can never stall a run.
const dialogSuppressScript = `
	window.alert = function() {};
	window.confirm = function() { return true; };
	window.prompt = function() { return ''; };
`

// Session owns one headless Chrome instance and the tab the navigation
// drives. It is single-use: one session per automation run.
type Session struct {
	id          string
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      *zap.Logger
}

// NewSession launches a browser per the configuration and returns a live
// session whose tab has the dialog suppression script installed.
func NewSession(parentCtx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	sessionID := uuid.New().String()
	log := logger.With(zap.String("session_id", sessionID))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
		chromedp.NoSandbox,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, opts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		log.Debug(fmt.Sprintf(format, args...))
	}))

	s := &Session{
		id:          sessionID,
		ctx:         taskCtx,
		cancel:      taskCancel,
		allocCancel: allocCancel,
		logger:      log,
	}

	// Start the browser and arm the dialog suppression for every document
	// the tab will ever load.
	if err := chromedp.Run(taskCtx, installOnNewDocument(dialogSuppressScript)); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to launch browser session: %w", err)
	}

	log.Info("Browser session started.",
		zap.Bool("headless", cfg.Headless),
		zap.Int("window_width", cfg.WindowWidth),
		zap.Int("window_height", cfg.WindowHeight))
	return s, nil
}

// ID returns the session identifier used in log correlation.
func (s *Session) ID() string {
	return s.id
}

// Context returns the tab's lifecycle context.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Page returns the primitives bound to this session's tab.
func (s *Session) Page(cfg config.BrowserConfig) Page {
	return newChromePage(s, cfg)
}

// Close tears down the tab and the browser process. Safe to call more
// than once.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
	s.logger.Info("Browser session closed.")
}

// run executes chromedp actions on the session tab, combining the caller's
// context with the tab lifecycle.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("browser session is closed: %w", err)
	}
	// chromedp actions must run on a descendant of the tab context, so the
	// caller's cancellation is forwarded instead of passed through.
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}
