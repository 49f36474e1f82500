// File: internal/orchestrator/orchestrator.go
// Coordinates one automation run end to end: browser lifecycle, form
// navigation, artifact capture, blob uploads, and run history. The outcome
// document is uploaded exactly once per run, success or fail.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/einfill/internal/browser"
	"github.com/xkilldash9x/einfill/internal/capture"
	"github.com/xkilldash9x/einfill/internal/config"
	"github.com/xkilldash9x/einfill/internal/ein"
	"github.com/xkilldash9x/einfill/internal/interact"
	"github.com/xkilldash9x/einfill/internal/navigator"
	"github.com/xkilldash9x/einfill/internal/records"
	"github.com/xkilldash9x/einfill/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Automation is one live browser run. Implementations are single-use.
type Automation interface {
	// Navigate walks the record through the whole form.
	Navigate(ctx context.Context, rec *ein.Record) error
	// Capture saves the confirmation page and returns its local path and
	// public URL.
	Capture(ctx context.Context, recordID string) (path, url string, err error)
	Close()
}

// AutomationFactory builds a fresh Automation per run.
type AutomationFactory func(ctx context.Context) (Automation, error)

// Result is what the HTTP layer reports back to the caller.
type Result struct {
	OK           bool
	Message      string
	ArtifactPath string
	ArtifactURL  string
	BlobURL      string
}

// Runner executes runs. The blob store and the run history store are both
// optional; a nil value disables that sink.
type Runner struct {
	factory AutomationFactory
	blobs   storage.BlobStore
	history *records.Store
	logger  *zap.Logger
}

func NewRunner(factory AutomationFactory, blobs storage.BlobStore, history *records.Store, logger *zap.Logger) *Runner {
	return &Runner{factory: factory, blobs: blobs, history: history, logger: logger}
}

// Run performs one automation attempt for the record. Navigation failure
// fails the run; capture, upload, and history failures are tolerated and
// logged, since the filing itself already went through.
func (r *Runner) Run(ctx context.Context, rec *ein.Record) Result {
	started := time.Now()
	log := r.logger.With(zap.String("record_id", rec.RecordID))
	outcome := &ein.Outcome{Record: *rec, ResponseStatus: ein.StatusFail}

	auto, err := r.factory(ctx)
	if err != nil {
		log.Error("Failed to start automation.", zap.Error(err))
		r.saveOutcome(ctx, outcome, log)
		res := Result{OK: false, Message: fmt.Sprintf("failed to start automation: %v", err)}
		r.recordRun(ctx, rec, res, started, log)
		return res
	}
	defer auto.Close()

	if err := auto.Navigate(ctx, rec); err != nil {
		log.Error("Form navigation failed.", zap.Error(err))
		r.saveOutcome(ctx, outcome, log)
		res := Result{OK: false, Message: err.Error()}
		r.recordRun(ctx, rec, res, started, log)
		return res
	}
	outcome.ResponseStatus = ein.StatusSuccess

	res := Result{OK: true, Message: "Form submitted successfully"}
	path, url, capErr := auto.Capture(ctx, rec.RecordID)
	if capErr != nil {
		log.Warn("Artifact capture failed; the filing itself succeeded.", zap.Error(capErr))
	} else {
		res.ArtifactPath = path
		res.ArtifactURL = url
		res.BlobURL = r.uploadScreenshot(ctx, rec, path, log)
	}

	r.saveOutcome(ctx, outcome, log)
	r.recordRun(ctx, rec, res, started, log)

	log.Info("Run completed.",
		zap.String("artifact", res.ArtifactPath),
		zap.Duration("elapsed", time.Since(started)))
	return res
}

func (r *Runner) uploadScreenshot(ctx context.Context, rec *ein.Record, path string, log *zap.Logger) string {
	if r.blobs == nil || path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Failed to read screenshot for upload.", zap.String("path", path), zap.Error(err))
		return ""
	}
	url, err := r.blobs.Store(ctx, storage.ScreenshotKey(rec.RecordID, rec.EntityName), data, "image/png")
	if err != nil {
		log.Warn("Screenshot upload failed.", zap.Error(err))
		return ""
	}
	return url
}

func (r *Runner) saveOutcome(ctx context.Context, outcome *ein.Outcome, log *zap.Logger) {
	if r.blobs == nil {
		return
	}
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		log.Warn("Failed to encode outcome document.", zap.Error(err))
		return
	}
	key := storage.OutcomeKey(outcome.RecordID, outcome.EntityName)
	if _, err := r.blobs.Store(ctx, key, data, "application/json"); err != nil {
		log.Warn("Outcome upload failed.", zap.String("key", key), zap.Error(err))
	}
}

func (r *Runner) recordRun(ctx context.Context, rec *ein.Record, res Result, started time.Time, log *zap.Logger) {
	if r.history == nil {
		return
	}
	status := ein.StatusFail
	if res.OK {
		status = ein.StatusSuccess
	}
	run := &records.RunRecord{
		RecordID:     rec.RecordID,
		Status:       status,
		Message:      res.Message,
		ArtifactPath: res.ArtifactPath,
		ArtifactURL:  res.ArtifactURL,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if err := r.history.InsertRun(ctx, run); err != nil {
		log.Warn("Failed to persist run history.", zap.Error(err))
	}
}

// browserAutomation is the production Automation: a real Chrome session
// with the navigator and capturer bound to its tab.
type browserAutomation struct {
	session  *browser.Session
	nav      *navigator.Navigator
	capturer *capture.Capturer
}

func (b *browserAutomation) Navigate(ctx context.Context, rec *ein.Record) error {
	return b.nav.Run(ctx, rec)
}

func (b *browserAutomation) Capture(ctx context.Context, recordID string) (string, string, error) {
	return b.capturer.CapturePNG(ctx, storage.ScreenshotFilename(recordID, time.Now()))
}

func (b *browserAutomation) Close() {
	b.session.Close()
}

// NewBrowserFactory builds the production factory from configuration.
func NewBrowserFactory(cfg *config.Config, logger *zap.Logger) AutomationFactory {
	return func(ctx context.Context) (Automation, error) {
		sess, err := browser.NewSession(ctx, cfg.Browser, logger)
		if err != nil {
			return nil, err
		}
		page := sess.Page(cfg.Browser)
		prims := interact.New(page, cfg.Browser, logger)
		return &browserAutomation{
			session:  sess,
			nav:      navigator.New(prims, cfg.Form.URL, logger),
			capturer: capture.New(page, cfg.Server.StaticDir, cfg.Server.HostURL, logger),
		}, nil
	}
}
