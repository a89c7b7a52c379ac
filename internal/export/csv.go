package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/sellerhub/backoffice/catalog-service/internal/domain/models"
)

// utf8BOM нужен, чтобы Excel распознал кодировку файла
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// encodeCSV кодирует проекцию в CSV с экранированием по RFC 4180
func encodeCSV(entries []*models.CatalogEntry, fields []string) (*Result, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)

	if err := w.Write(fields); err != nil {
		return nil, fmt.Errorf("ошибка записи заголовка CSV: %w", err)
	}

	row := make([]string, len(fields))
	for _, e := range entries {
		for i, f := range fields {
			row[i] = cellValue(exportFields[f](e))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("ошибка записи строки CSV: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("ошибка кодирования CSV: %w", err)
	}

	return &Result{
		Data:        buf.Bytes(),
		ContentType: "text/csv; charset=utf-8",
	}, nil
}
