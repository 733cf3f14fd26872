package render

import (
	"context"
	"log/slog"
	"os"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PDFRenderer renders HTML documents to PDF files through headless Chrome
type PDFRenderer struct {
	logger *slog.Logger
}

// NewPDFRenderer creates a headless-Chrome PDF renderer
func NewPDFRenderer(logger *slog.Logger) *PDFRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFRenderer{logger: logger.With("component", "render.pdf")}
}

// Render prints the given HTML to a PDF file at destPath. It returns false
// on any failure; errors never escape this boundary.
func (r *PDFRenderer) Render(ctx context.Context, html, destPath string) bool {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Headless)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var pdf []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		r.logger.Error("failed to print HTML to PDF", "dest", destPath, "error", err)
		return false
	}

	if err := os.WriteFile(destPath, pdf, 0644); err != nil {
		r.logger.Error("failed to write PDF artifact", "dest", destPath, "error", err)
		return false
	}

	return true
}
