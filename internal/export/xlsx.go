package export

import (
	"fmt"
	"sort"

	"github.com/sellerhub/backoffice/catalog-service/internal/domain/models"
	"github.com/xuri/excelize/v2"
)

const (
	catalogSheet = "Каталог"
	summarySheet = "Сводка"
)

// encodeXLSX кодирует проекцию в книгу Excel.
// Обычный экспорт — один лист; аналитический вариант добавляет
// лист со сводными показателями каталога.
func encodeXLSX(entries []*models.CatalogEntry, fields []string, stats models.Stats, withSummary bool) (*Result, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(catalogSheet)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания листа: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("ошибка удаления листа по умолчанию: %w", err)
	}

	for col, field := range fields {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(catalogSheet, cell, field); err != nil {
			return nil, fmt.Errorf("ошибка записи заголовка: %w", err)
		}
	}

	for row, e := range entries {
		for col, field := range fields {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(catalogSheet, cell, cellValue(exportFields[field](e))); err != nil {
				return nil, fmt.Errorf("ошибка записи ячейки: %w", err)
			}
		}
	}

	if withSummary {
		if err := writeSummarySheet(f, stats); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования XLSX: %w", err)
	}

	return &Result{
		Data:        buf.Bytes(),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}, nil
}

func writeSummarySheet(f *excelize.File, stats models.Stats) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("ошибка создания сводного листа: %w", err)
	}

	rows := [][]interface{}{
		{"Всего записей", stats.Total},
		{"В наличии", stats.Active},
		{"Не в наличии", stats.Inactive},
		{"Средняя цена", stats.AveragePrice},
		{"Сумма цен", stats.PriceSum},
	}

	// Категории в алфавитном порядке, чтобы файл был воспроизводимым
	categories := make([]string, 0, len(stats.Categories))
	for c := range stats.Categories {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		rows = append(rows, []interface{}{"Категория: " + c, stats.Categories[c]})
	}

	brands := make([]string, 0, len(stats.Brands))
	for b := range stats.Brands {
		brands = append(brands, b)
	}
	sort.Strings(brands)
	for _, b := range brands {
		rows = append(rows, []interface{}{"Бренд: " + b, stats.Brands[b]})
	}

	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(summarySheet, cell, value); err != nil {
				return fmt.Errorf("ошибка записи сводки: %w", err)
			}
		}
	}

	return nil
}
