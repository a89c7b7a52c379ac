package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sellerhub/backoffice/catalog-service/internal/domain/models"
)

// Таблица каталога, печатаемая в PDF через headless Chrome
var pdfTemplate = template.Must(template.New("catalog").Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<style>
  body { font-family: sans-serif; font-size: 10pt; margin: 12mm; }
  h1 { font-size: 14pt; }
  table { border-collapse: collapse; width: 100%; }
  th, td { border: 1px solid #999; padding: 4px 6px; text-align: left; }
  th { background: #eee; }
  tr { page-break-inside: avoid; }
</style>
</head>
<body>
<h1>Каталог товаров</h1>
<table>
  <thead>
    <tr>{{range .Fields}}<th>{{.}}</th>{{end}}</tr>
  </thead>
  <tbody>
    {{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
    {{end}}
  </tbody>
</table>
</body>
</html>`))

// PDFPrinter печатает HTML в PDF через chromedp
type PDFPrinter struct {
	chromePath string
	timeout    time.Duration
}

// NewPDFPrinter создает принтер. Пустой chromePath включает автоопределение.
func NewPDFPrinter(chromePath string, timeout time.Duration) *PDFPrinter {
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PDFPrinter{
		chromePath: chromePath,
		timeout:    timeout,
	}
}

// detectChromePath ищет исполняемый файл Chrome/Chromium:
// сначала переменная окружения CHROME_PATH, затем типовые пути установки
func detectChromePath() string {
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// Print печатает HTML-документ в PDF формата A4
func (p *PDFPrinter) Print(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Требуется для запуска в Docker-контейнерах
	)
	if p.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(p.chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).   // 210mm в дюймах
				WithPaperHeight(11.69). // 297mm в дюймах
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка печати PDF: %w", err)
	}

	return pdfBuf, nil
}

// encodePDF строит HTML-таблицу проекции и печатает ее в PDF
func (s *Serializer) encodePDF(ctx context.Context, entries []*models.CatalogEntry, fields []string) (*Result, error) {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		row := make([]string, len(fields))
		for j, f := range fields {
			row[j] = cellValue(exportFields[f](e))
		}
		rows[i] = row
	}

	var buf bytes.Buffer
	err := pdfTemplate.Execute(&buf, struct {
		Fields []string
		Rows   [][]string
	}{Fields: fields, Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("ошибка рендеринга HTML-таблицы: %w", err)
	}

	data, err := s.printer.Print(ctx, buf.String())
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:        data,
		ContentType: "application/pdf",
	}, nil
}
