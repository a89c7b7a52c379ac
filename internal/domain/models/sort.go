package models

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Поля сортировки
const (
	SortByName      = "name"
	SortByPrice     = "price"
	SortByCreatedAt = "created_at"
)

// Направления сортировки
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// SortSpec задает поле и направление сортировки.
// Одновременно активна ровно одна сортировка.
type SortSpec struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// Valid проверяет, что поле и направление известны
func (s *SortSpec) Valid() bool {
	switch s.Field {
	case SortByName, SortByPrice, SortByCreatedAt:
	default:
		return false
	}
	switch s.Direction {
	case SortAsc, SortDesc, "":
		return true
	}
	return false
}

// Compare возвращает отрицательное, нулевое или положительное число,
// упорядочивая a относительно b. Записи без даты создания считаются
// созданными в нулевой момент эпохи и уходят в один край — это
// осознанный выбор, а не случайность.
func (s *SortSpec) Compare(a, b *CatalogEntry, col *collate.Collator) int {
	var c int
	switch s.Field {
	case SortByPrice:
		switch {
		case a.Price < b.Price:
			c = -1
		case a.Price > b.Price:
			c = 1
		}
	case SortByCreatedAt:
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			c = -1
		case a.CreatedAt.After(b.CreatedAt):
			c = 1
		}
	default:
		c = col.CompareString(a.Name, b.Name)
	}

	if s.Direction == SortDesc {
		c = -c
	}

	// Детерминированная добивка по ID: равные ключи не меняют
	// взаимный порядок между перерисовками
	if c == 0 {
		c = strings.Compare(a.ID, b.ID)
	}

	return c
}

// SortEntries возвращает новый срез, отсортированный по spec.
// Исходный срез не изменяется. Сортировка устойчивая, с добивкой по ID,
// поэтому порожденный порядок воспроизводим.
func SortEntries(entries []*CatalogEntry, spec SortSpec) []*CatalogEntry {
	sorted := make([]*CatalogEntry, len(entries))
	copy(sorted, entries)

	col := collate.New(language.Russian, collate.IgnoreCase)
	sort.SliceStable(sorted, func(i, j int) bool {
		return spec.Compare(sorted[i], sorted[j], col) < 0
	})

	return sorted
}
