package models

import "time"

// Форматы экспорта
const (
	ExportCSV  = "csv"
	ExportJSON = "json"
	ExportXLSX = "xlsx"
	ExportPDF  = "pdf"
)

// DateRange ограничивает экспорт по дате создания записи, границы включительно
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains проверяет попадание метки времени в диапазон.
// Нулевая граница означает отсутствие ограничения с этой стороны.
func (r *DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// ExportSpec описывает один запрос на экспорт
type ExportSpec struct {
	Format string `json:"format"`

	// Fields — упорядоченный список полей для проекции
	Fields []string `json:"fields"`

	// IncludeImages добавляет колонку со склеенными URL изображений;
	// бинарные данные изображений не встраиваются ни в один формат
	IncludeImages bool `json:"include_images"`

	// DateRange применяется к created_at до проекции
	DateRange *DateRange `json:"date_range,omitempty"`

	// WithSummary добавляет сводный лист со статистикой
	// (только для XLSX, расширенный аналитический вариант)
	WithSummary bool `json:"with_summary,omitempty"`
}
