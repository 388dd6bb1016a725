// Package capture renders the calendar page to a PNG with headless
// Chromium.
package capture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"

	"teamcal/internal/config"
	appLog "teamcal/internal/log"
)

// Default capture parameters. The width is above the grid breakpoint so
// the snapshot shows the month grid rather than the agenda.
const (
	DefaultWidth   = 1280
	DefaultHeight  = 900
	DefaultTimeout = 30 * time.Second
)

// ReadySelector is the element the calendar page marks once rendered.
const ReadySelector = `[data-ready="true"]`

// Options defines parameters for a snapshot.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/calendar".
	URL string

	// OutputPath is where the PNG is written.
	OutputPath string

	// Width and Height are the viewport size in pixels. Zero means the
	// defaults.
	Width  int
	Height int

	// Timeout bounds the whole capture. Zero means DefaultTimeout.
	Timeout time.Duration

	// Username / Password are sent as basic auth when set.
	Username string
	Password string
}

// normalize validates o and fills in defaults.
func (o *Options) normalize() error {
	if o.URL == "" {
		return errors.New("capture: URL is required")
	}
	if o.OutputPath == "" {
		return errors.New("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}

// target returns URL with the basic auth credentials embedded.
func (o Options) target() (string, error) {
	u, err := url.Parse(o.URL)
	if err != nil {
		return "", fmt.Errorf("capture: invalid URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("capture: URL %q must be absolute", o.URL)
	}
	if o.Username != "" {
		u.User = url.UserPassword(o.Username, o.Password)
	}
	return u.String(), nil
}

// OptionsFor builds snapshot options for the server described by cfg.
func OptionsFor(cfg *config.Config) Options {
	o := Options{
		URL:        "http://" + cfg.Listen + "/calendar",
		OutputPath: cfg.SnapshotPath,
	}
	if cfg.BasicAuth != nil {
		o.Username = cfg.BasicAuth.Username
		o.Password = cfg.BasicAuth.Password
	}
	return o
}

// SnapshotPNG navigates headless Chromium to opts.URL, waits until the
// page exposes ReadySelector and writes a full-page PNG to
// opts.OutputPath.
func SnapshotPNG(parentCtx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	target, err := opts.target()
	if err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(target),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := config.WriteFileAtomic(opts.OutputPath, png); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}

	appLog.Info("snapshot written", "path", opts.OutputPath, "bytes", len(png))
	return nil
}
