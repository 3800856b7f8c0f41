package chart

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

// Snapshotter renders an HTML chart page to a PNG file.
type Snapshotter interface {
	Snapshot(ctx context.Context, htmlPath, pngPath string, width, height int) error
}

// ChromeSnapshotter takes snapshots with a headless Chrome per call.
type ChromeSnapshotter struct {
	Timeout time.Duration
	// Settle is the pause after the plot appears, for transitions to finish.
	Settle time.Duration
}

// NewChromeSnapshotter returns a ChromeSnapshotter with the given timeout (30s if zero).
func NewChromeSnapshotter(timeout time.Duration) *ChromeSnapshotter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChromeSnapshotter{Timeout: timeout, Settle: 500 * time.Millisecond}
}

// Snapshot loads htmlPath, waits for plotly to draw and saves a full-page PNG.
func (s *ChromeSnapshotter) Snapshot(ctx context.Context, htmlPath, pngPath string, width, height int) error {
	if width <= 0 {
		width = 1200
	}
	if height <= 0 {
		height = 800
	}

	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return eris.Wrap(err, "snapshot: resolve path")
	}
	pageURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.WindowSize(width, height),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, s.Timeout)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(`svg.main-svg`, chromedp.ByQuery),
		chromedp.Sleep(s.Settle),
		chromedp.FullScreenshot(&buf, 100),
	); err != nil {
		return eris.Wrapf(err, "snapshot: render %s", htmlPath)
	}

	if err := os.WriteFile(pngPath, buf, 0o644); err != nil {
		return eris.Wrap(err, "snapshot: write png")
	}
	return nil
}
