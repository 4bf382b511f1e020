// Package kbpdf renders a knowledge-base article page to PDF with a local
// headless Chrome.
package kbpdf

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"kb-chat/internal/common/config"
	"kb-chat/internal/common/errors"
	"kb-chat/internal/common/logger"
	"kb-chat/pkg/sources"
)

const (
	DefaultTimeout = 20 * time.Second

	printableViewText   = "Printable View"
	printableViewBudget = 2 * time.Second
	settleBudget        = 5 * time.Second

	// A4 in inches, as the DevTools protocol expects.
	a4Width   = 8.27
	a4Height  = 11.69
	mmPerInch = 25.4
)

type Config struct {
	ViewBase   string
	Timeout    time.Duration
	ChromePath string
	NoSandbox  bool
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		ViewBase:   cfg.Backend.KBViewBaseURL,
		Timeout:    config.GetDuration(cfg.KBRender.Timeout),
		ChromePath: cfg.KBRender.ChromePath,
		NoSandbox:  cfg.KBRender.NoSandbox,
	}
}

type Renderer struct {
	cfg    Config
	logger logger.Logger
}

func NewRenderer(cfg Config, log logger.Logger) *Renderer {
	if cfg.ViewBase == "" {
		cfg.ViewBase = sources.DefaultViewBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Renderer{cfg: cfg, logger: log.With(map[string]interface{}{"component": "kbpdf"})}
}

// PageURL is the article page rendered for kbID.
func (r *Renderer) PageURL(kbID string) string {
	return r.cfg.ViewBase + url.QueryEscape(kbID)
}

// Render loads the article page, switches to its printable view when the
// page offers one, and prints it to an A4 PDF.
func (r *Renderer) Render(ctx context.Context, kbID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	target := r.PageURL(kbID)
	r.logger.Info("Rendering KB page", map[string]interface{}{"kbId": kbID, "url": target})

	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return nil, errors.NewKBRenderFailedError(kbID, fmt.Errorf("load page: %w", err))
	}

	if err := r.openPrintableView(browserCtx); err != nil {
		r.logger.Debug("No printable view, printing article page", map[string]interface{}{
			"kbId":  kbID,
			"error": err.Error(),
		})
	}

	var pdf []byte
	if err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		pdf, _, err = PrintParams().Do(ctx)
		return err
	})); err != nil {
		return nil, errors.NewKBRenderFailedError(kbID, fmt.Errorf("print to pdf: %w", err))
	}

	r.logger.Info("KB page rendered", map[string]interface{}{"kbId": kbID, "bytes": len(pdf)})
	return pdf, nil
}

func (r *Renderer) openPrintableView(browserCtx context.Context) error {
	clickCtx, cancel := context.WithTimeout(browserCtx, printableViewBudget)
	defer cancel()
	selector := fmt.Sprintf(`//a[normalize-space(.)=%q] | //button[normalize-space(.)=%q]`, printableViewText, printableViewText)
	if err := chromedp.Run(clickCtx, chromedp.Click(selector, chromedp.BySearch, chromedp.NodeVisible)); err != nil {
		return err
	}

	settleCtx, cancelSettle := context.WithTimeout(browserCtx, settleBudget)
	defer cancelSettle()
	return chromedp.Run(settleCtx, chromedp.WaitReady("body", chromedp.ByQuery))
}

func (r *Renderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
	)
	if r.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if r.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.cfg.ChromePath))
	}
	return opts
}

// PrintParams is A4 with backgrounds, 12mm top/bottom and 10mm side margins.
func PrintParams() *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(a4Width).
		WithPaperHeight(a4Height).
		WithMarginTop(mm(12)).
		WithMarginBottom(mm(12)).
		WithMarginLeft(mm(10)).
		WithMarginRight(mm(10))
}

func mm(v float64) float64 {
	return v / mmPerInch
}
