package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sellerhub/backoffice/catalog-service/internal/domain/models"
	"github.com/sellerhub/backoffice/catalog-service/internal/utils"
	"github.com/sellerhub/backoffice/catalog-service/pkg/interfaces"
)

// Result — полностью закодированный файл экспорта.
// Байты отдаются наружу только после окончания кодирования:
// частично записанный файл не покидает сериализатор.
type Result struct {
	Data        []byte
	ContentType string
	Filename    string
}

// fieldGetter возвращает значение поля записи; nil означает отсутствие значения
type fieldGetter func(e *models.CatalogEntry) interface{}

// exportFields — реестр полей, доступных для проекции
var exportFields = map[string]fieldGetter{
	"id":       func(e *models.CatalogEntry) interface{} { return e.ID },
	"name":     func(e *models.CatalogEntry) interface{} { return e.Name },
	"category": func(e *models.CatalogEntry) interface{} { return e.Category },
	"brand": func(e *models.CatalogEntry) interface{} {
		if e.Brand == "" {
			return nil
		}
		return e.Brand
	},
	"description": func(e *models.CatalogEntry) interface{} {
		if e.Description == "" {
			return nil
		}
		return e.Description
	},
	"price":    func(e *models.CatalogEntry) interface{} { return e.Price },
	"currency": func(e *models.CatalogEntry) interface{} { return e.Currency },
	"in_stock": func(e *models.CatalogEntry) interface{} { return e.InStock },
	"sizes":    func(e *models.CatalogEntry) interface{} { return e.Sizes },
	"colors":   func(e *models.CatalogEntry) interface{} { return e.Colors },
	"tags":     func(e *models.CatalogEntry) interface{} { return e.Tags },
	"season":   func(e *models.CatalogEntry) interface{} { return []string(e.Season) },
	"rating": func(e *models.CatalogEntry) interface{} {
		if e.Rating == nil {
			return nil
		}
		return *e.Rating
	},
	"images":     func(e *models.CatalogEntry) interface{} { return e.Images },
	"created_at": func(e *models.CatalogEntry) interface{} { return e.CreatedAt },
	"updated_at": func(e *models.CatalogEntry) interface{} { return e.UpdatedAt },
}

// Serializer проецирует выбранные поля выбранных записей
// и передает их кодировщику формата
type Serializer struct {
	logger  interfaces.LoggerPort
	printer *PDFPrinter
}

// NewSerializer создает сериализатор экспорта
func NewSerializer(logger interfaces.LoggerPort, printer *PDFPrinter) *Serializer {
	return &Serializer{
		logger:  logger,
		printer: printer,
	}
}

// Serialize выполняет экспорт: валидация, фильтр по дате, проекция, кодирование.
// Каталог не изменяется; stats нужна только для сводного листа XLSX.
func (s *Serializer) Serialize(ctx context.Context, entries []*models.CatalogEntry, stats models.Stats, spec models.ExportSpec) (*Result, error) {
	// Вся валидация до первого байта кодирования
	fields, err := resolveFields(spec)
	if err != nil {
		return nil, err
	}

	if spec.DateRange != nil {
		kept := make([]*models.CatalogEntry, 0, len(entries))
		for _, e := range entries {
			if spec.DateRange.Contains(e.CreatedAt) {
				kept = append(kept, e)
			}
		}
		entries = kept
	}

	if len(entries) == 0 {
		return nil, utils.ErrNothingToExport
	}

	var result *Result
	switch spec.Format {
	case models.ExportCSV:
		result, err = encodeCSV(entries, fields)
	case models.ExportJSON:
		result, err = encodeJSON(entries, fields)
	case models.ExportXLSX:
		result, err = encodeXLSX(entries, fields, stats, spec.WithSummary)
	case models.ExportPDF:
		result, err = s.encodePDF(ctx, entries, fields)
	default:
		return nil, fmt.Errorf("%w: %s", utils.ErrUnknownFormat, spec.Format)
	}
	if err != nil {
		return nil, err
	}

	result.Filename = exportFilename(spec.Format)

	s.logger.InfoWithContext(ctx, "Экспорт каталога завершен",
		interfaces.LogField{Key: "format", Value: spec.Format},
		interfaces.LogField{Key: "entries", Value: len(entries)},
		interfaces.LogField{Key: "bytes", Value: len(result.Data)},
	)

	return result, nil
}

// resolveFields проверяет список полей и дополняет его колонкой изображений
func resolveFields(spec models.ExportSpec) ([]string, error) {
	if len(spec.Fields) == 0 {
		return nil, utils.ErrNoExportFields
	}

	fields := make([]string, 0, len(spec.Fields)+1)
	seen := make(map[string]struct{}, len(spec.Fields))
	for _, f := range spec.Fields {
		if _, ok := exportFields[f]; !ok {
			return nil, fmt.Errorf("%w: %s", utils.ErrUnknownExportField, f)
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}

	if spec.IncludeImages {
		if _, ok := seen["images"]; !ok {
			fields = append(fields, "images")
		}
	}

	return fields, nil
}

// cellValue приводит значение поля к строке для табличных форматов;
// отсутствующее значение становится пустой ячейкой
func cellValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		if value {
			return "true"
		}
		return "false"
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", value), "0"), ".")
	case []string:
		return strings.Join(value, "; ")
	case time.Time:
		if value.IsZero() {
			return ""
		}
		return value.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func exportFilename(format string) string {
	return fmt.Sprintf("catalog_%s.%s", time.Now().Format("20060102_150405"), format)
}
